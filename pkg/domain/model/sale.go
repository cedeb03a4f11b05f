package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSaleNotFound               = errors.New("sale not found")
	ErrInvalidQuantity            = errors.New("quantity must be a positive integer")
	ErrInvalidDiscount            = errors.New("discount must be between zero and the cart subtotal")
	ErrNoPaymentProvided          = errors.New("at least one payment is required")
	ErrPaymentMismatch            = errors.New("payments do not sum to the sale total")
	ErrRedemptionRequiresCustomer = errors.New("loyalty redemption requires an attached customer")
)

type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentCard          PaymentMethod = "card"
	PaymentTransfer      PaymentMethod = "transfer"
	PaymentLoyaltyPoints PaymentMethod = "loyalty_points"
)

// CartLine is one requested position of a prospective sale. It only lives
// for the duration of a single checkout attempt.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// Payment is one instrument applied to a sale. Amount is in currency minor
// units for monetary methods and a point count for loyalty_points.
type Payment struct {
	Method PaymentMethod
	Amount int64
}

// SaleItem snapshots the product name and unit price at validation time, so
// later catalog changes never affect a persisted sale.
type SaleItem struct {
	ProductID      uuid.UUID
	Name           string
	UnitPriceCents int64
	Quantity       int
	SubtotalCents  int64
}

// Sale is created exactly once by a successful checkout and never updated
// afterwards. Corrections are new compensating records, not mutations.
type Sale struct {
	ID             uuid.UUID
	CustomerID     *uuid.UUID
	OperatorID     uuid.UUID
	Items          []SaleItem
	Payments       []Payment
	SubtotalCents  int64
	DiscountCents  int64
	TaxCents       int64
	TotalCents     int64
	PointsEarned   int64
	PointsRedeemed int64
	CreatedAt      time.Time
}

type SaleRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, sale *Sale) error
	Find(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindAll(ctx context.Context, limit, offset int) ([]*Sale, error)
	Count(ctx context.Context) (int, error)
}
