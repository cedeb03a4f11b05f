package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"posservice/pkg/domain/model"
)

var ErrEmptyCart = errors.New("cannot process a sale without items")

type Event interface {
	Type() string
}

type EventDispatcher interface {
	Dispatch(event Event) error
}

// CheckoutConfig carries the business rates of the sale engine. All rates are
// integers over minor currency units so reconciliation is exact.
type CheckoutConfig struct {
	// RedemptionCentsPerPoint is the monetary value of one loyalty point
	// when redeemed as payment.
	RedemptionCentsPerPoint int64
	// EarnRateBasisPoints is the fraction of the taxable total awarded as
	// points, in basis points. 1000 means 10 points per 100 cents.
	EarnRateBasisPoints int64
	// TaxRateBasisPoints is the tax applied to subtotal minus discount,
	// in basis points.
	TaxRateBasisPoints int64
}

type CheckoutService interface {
	ProcessSale(ctx context.Context, customerID *uuid.UUID, cart []model.CartLine, payments []model.Payment, discountCents int64, operatorID uuid.UUID) (*model.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	ListSales(ctx context.Context, limit, offset int) ([]*model.Sale, int, error)
}

func NewCheckoutService(
	products model.ProductRepository,
	customers model.CustomerRepository,
	sales model.SaleRepository,
	uow model.UnitOfWork,
	dispatcher EventDispatcher,
	cfg CheckoutConfig,
) CheckoutService {
	return &checkoutService{
		products:   products,
		customers:  customers,
		sales:      sales,
		uow:        uow,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

type checkoutService struct {
	products   model.ProductRepository
	customers  model.CustomerRepository
	sales      model.SaleRepository
	uow        model.UnitOfWork
	dispatcher EventDispatcher
	cfg        CheckoutConfig
}

// ProcessSale validates the cart against current catalog state, reconciles
// the payments against the grand total, then commits the stock decrements,
// the loyalty balance delta and the sale record as one unit of work. Any
// failure before or inside the commit leaves no persisted side effects.
func (s *checkoutService) ProcessSale(
	ctx context.Context,
	customerID *uuid.UUID,
	cart []model.CartLine,
	payments []model.Payment,
	discountCents int64,
	operatorID uuid.UUID,
) (*model.Sale, error) {
	items, subtotal, err := s.priceCart(ctx, cart)
	if err != nil {
		return nil, err
	}

	if discountCents < 0 || discountCents > subtotal {
		return nil, errors.Wrapf(model.ErrInvalidDiscount, "discount %d against subtotal %d", discountCents, subtotal)
	}
	taxable := subtotal - discountCents
	tax := taxable * s.cfg.TaxRateBasisPoints / 10000
	total := taxable + tax

	var customer *model.Customer
	if customerID != nil {
		customer, err = s.customers.Find(ctx, *customerID)
		if err != nil {
			return nil, err
		}
	}

	redeemed, err := s.reconcilePayments(total, payments, customer)
	if err != nil {
		return nil, err
	}

	var earned int64
	if customer != nil {
		earned = pointsEarned(taxable, s.cfg.EarnRateBasisPoints)
	}

	saleID, err := s.sales.NextID()
	if err != nil {
		return nil, err
	}

	sale := &model.Sale{
		ID:             saleID,
		CustomerID:     customerID,
		OperatorID:     operatorID,
		Items:          items,
		Payments:       payments,
		SubtotalCents:  subtotal,
		DiscountCents:  discountCents,
		TaxCents:       tax,
		TotalCents:     total,
		PointsEarned:   earned,
		PointsRedeemed: redeemed,
		CreatedAt:      time.Now().UTC(),
	}

	err = s.uow.Execute(ctx, func(r model.Repositories) error {
		for _, item := range sale.Items {
			if err := r.Products().DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return errors.Wrapf(err, "product %s", item.ProductID)
			}
		}
		if customer != nil && (earned > 0 || redeemed > 0) {
			// One combined write so no intermediate balance is observable;
			// the redeemed points are re-checked against the balance at
			// write time, like the stock decrement.
			if err := r.Customers().SettleLoyalty(ctx, customer.ID, earned, redeemed); err != nil {
				return errors.Wrapf(err, "customer %s", customer.ID)
			}
		}
		return r.Sales().Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.SaleCompleted{
		SaleID:         sale.ID,
		CustomerID:     sale.CustomerID,
		OperatorID:     sale.OperatorID,
		TotalCents:     sale.TotalCents,
		PointsEarned:   sale.PointsEarned,
		PointsRedeemed: sale.PointsRedeemed,
	})
	return sale, nil
}

func (s *checkoutService) GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	return s.sales.Find(ctx, id)
}

func (s *checkoutService) ListSales(ctx context.Context, limit, offset int) ([]*model.Sale, int, error) {
	total, err := s.sales.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	sales, err := s.sales.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}
