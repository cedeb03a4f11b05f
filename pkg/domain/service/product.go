package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"posservice/pkg/domain/model"
)

var (
	ErrInvalidStockQuantity = errors.New("stock quantity must be a positive number")
	ErrNegativePrice        = errors.New("price cannot be negative")
)

type ProductService interface {
	CreateProduct(ctx context.Context, name, description string, priceCents int64, initialStock int) (*model.Product, error)
	UpdateProductDetails(ctx context.Context, productID uuid.UUID, name, description string) error
	ChangeProductPrice(ctx context.Context, productID uuid.UUID, newPriceCents int64) error
	ReceiveStock(ctx context.Context, productID uuid.UUID, quantity int) error
	ArchiveProduct(ctx context.Context, productID uuid.UUID) error
	ListAvailableProducts(ctx context.Context) ([]*model.Product, error)
	SearchProducts(ctx context.Context, query string) ([]*model.Product, error)
}

func NewProductService(repo model.ProductRepository, dispatcher EventDispatcher) ProductService {
	return &productService{repo: repo, dispatcher: dispatcher}
}

type productService struct {
	repo       model.ProductRepository
	dispatcher EventDispatcher
}

func (s *productService) CreateProduct(ctx context.Context, name, description string, priceCents int64, initialStock int) (*model.Product, error) {
	if priceCents < 0 {
		return nil, ErrNegativePrice
	}
	if initialStock < 0 {
		return nil, ErrInvalidStockQuantity
	}

	productID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:            productID,
		Name:          name,
		Description:   description,
		PriceCents:    priceCents,
		StockQuantity: initialStock,
		Status:        model.Available,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ProductCreated{ProductID: productID, Name: name})
	return product, nil
}

func (s *productService) UpdateProductDetails(ctx context.Context, productID uuid.UUID, name, description string) error {
	product, err := s.repo.Find(ctx, productID)
	if err != nil {
		return err
	}
	if product.Status == model.Archived {
		return model.ErrProductUnavailable
	}

	product.Name = name
	product.Description = description
	return s.updateProduct(ctx, product)
}

func (s *productService) ChangeProductPrice(ctx context.Context, productID uuid.UUID, newPriceCents int64) error {
	if newPriceCents < 0 {
		return ErrNegativePrice
	}

	product, err := s.repo.Find(ctx, productID)
	if err != nil {
		return err
	}
	if product.Status == model.Archived {
		return model.ErrProductUnavailable
	}

	oldPrice := product.PriceCents
	product.PriceCents = newPriceCents

	if err := s.updateProduct(ctx, product); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ProductPriceChanged{
		ProductID:     productID,
		OldPriceCents: oldPrice,
		NewPriceCents: newPriceCents,
	})
	return nil
}

// ReceiveStock adds incoming stock. Sale-time decrements never go through
// here, they use the conditional DecrementStock write instead.
func (s *productService) ReceiveStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidStockQuantity
	}

	product, err := s.repo.Find(ctx, productID)
	if err != nil {
		return err
	}
	if product.Status != model.Available {
		return model.ErrProductUnavailable
	}

	product.StockQuantity += quantity

	if err := s.updateProduct(ctx, product); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ProductStockChanged{
		ProductID:    productID,
		ChangeAmount: quantity,
		NewQuantity:  product.StockQuantity,
	})
	return nil
}

func (s *productService) ArchiveProduct(ctx context.Context, productID uuid.UUID) error {
	product, err := s.repo.Find(ctx, productID)
	if err != nil {
		return err
	}
	if product.Status == model.Archived {
		return nil
	}

	product.Status = model.Archived

	if err := s.updateProduct(ctx, product); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ProductArchived{ProductID: productID})
	return nil
}

func (s *productService) ListAvailableProducts(ctx context.Context) ([]*model.Product, error) {
	return s.repo.FindAvailable(ctx)
}

func (s *productService) SearchProducts(ctx context.Context, query string) ([]*model.Product, error) {
	return s.repo.Search(ctx, query)
}

func (s *productService) updateProduct(ctx context.Context, product *model.Product) error {
	product.Version++
	product.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, product)
}
