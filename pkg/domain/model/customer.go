package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrPhoneTaken         = errors.New("phone number is already registered")
	ErrInsufficientPoints = errors.New("insufficient loyalty points")
)

type CustomerStatus int

const (
	Active CustomerStatus = iota
	Inactive
)

type Customer struct {
	ID            uuid.UUID
	Phone         string
	Name          string
	LoyaltyPoints int64
	Status        CustomerStatus
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CustomerRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, customer *Customer) error
	Update(ctx context.Context, customer *Customer) error
	Find(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByPhone(ctx context.Context, phone string) (*Customer, error)

	// AdjustLoyaltyPoints applies delta to the customer's balance in one
	// conditional write. Returns ErrInsufficientPoints when the resulting
	// balance would be negative.
	AdjustLoyaltyPoints(ctx context.Context, id uuid.UUID, delta int64) error

	// SettleLoyalty applies earned minus redeemed as one write, guarded by
	// the current balance still covering the redeemed points. The guard
	// re-checks the balance at write time, so points drained by a
	// concurrent sale after validation cannot be redeemed again.
	SettleLoyalty(ctx context.Context, id uuid.UUID, earned, redeemed int64) error
}
