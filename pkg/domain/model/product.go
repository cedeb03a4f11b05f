package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available for sale")
	ErrOutOfStock         = errors.New("insufficient stock quantity")
	ErrStockConflict      = errors.New("stock was depleted by a concurrent sale")
)

type ProductStatus int

const (
	Available ProductStatus = iota
	Unavailable
	Archived
)

type Product struct {
	ID            uuid.UUID
	Name          string
	Description   string
	PriceCents    int64
	StockQuantity int
	Status        ProductStatus
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ProductRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Find(ctx context.Context, id uuid.UUID) (*Product, error)
	FindAvailable(ctx context.Context) ([]*Product, error)
	Search(ctx context.Context, query string) ([]*Product, error)

	// DecrementStock subtracts quantity from the product's stock in one
	// conditional write. Returns ErrStockConflict when the current stock is
	// lower than quantity, so stock can never go negative even under
	// concurrent sales.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}
