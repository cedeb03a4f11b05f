package mysql

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"posservice/pkg/domain/model"
)

// UnitOfWork implements model.UnitOfWork on a single MySQL transaction.
// The repositories handed to fn share that transaction, so the stock
// decrements, the loyalty delta and the sale insert of one checkout either
// all commit or all roll back.
type UnitOfWork struct {
	db *sqlx.DB
}

func NewUnitOfWork(db *sqlx.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Execute(ctx context.Context, fn func(r model.Repositories) error) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	if err := fn(repositories{ext: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

type repositories struct {
	ext sqlx.ExtContext
}

func (r repositories) Products() model.ProductRepository   { return &ProductRepository{ext: r.ext} }
func (r repositories) Customers() model.CustomerRepository { return &CustomerRepository{ext: r.ext} }
func (r repositories) Sales() model.SaleRepository         { return &SaleRepository{ext: r.ext} }
