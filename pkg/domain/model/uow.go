package model

import (
	"context"
	"errors"
)

var ErrOptimisticLock = errors.New("record was modified by another transaction")

type Repositories interface {
	Products() ProductRepository
	Customers() CustomerRepository
	Sales() SaleRepository
}

// UnitOfWork runs fn against repositories bound to a single atomic
// transaction. If fn returns an error, none of its writes become visible.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(r Repositories) error) error
}
