package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"posservice/pkg/domain/model"
)

type CustomerRepository struct {
	ext sqlx.ExtContext
}

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{ext: db}
}

func (r *CustomerRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *CustomerRepository) Create(ctx context.Context, customer *model.Customer) error {
	const query = `
		INSERT INTO customers (id, phone, name, loyalty_points, status, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.ext.ExecContext(ctx, query,
		customer.ID.String(), customer.Phone, customer.Name, customer.LoyaltyPoints,
		customer.Status, customer.Version, customer.CreatedAt, customer.UpdatedAt)
	return errors.Wrap(err, "failed to create customer")
}

func (r *CustomerRepository) Update(ctx context.Context, customer *model.Customer) error {
	const query = `
		UPDATE customers
		SET phone = ?, name = ?, status = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?`

	res, err := r.ext.ExecContext(ctx, query,
		customer.Phone, customer.Name, customer.Status, customer.Version, customer.UpdatedAt,
		customer.ID.String(), customer.Version-1)
	if err != nil {
		return errors.Wrap(err, "failed to update customer")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return model.ErrOptimisticLock
	}
	return nil
}

func (r *CustomerRepository) Find(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	const query = `
		SELECT id, phone, name, loyalty_points, status, version, created_at, updated_at
		FROM customers WHERE id = ?`

	var row customerRow
	if err := sqlx.GetContext(ctx, r.ext, &row, query, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrCustomerNotFound
		}
		return nil, errors.Wrap(err, "failed to find customer")
	}
	return row.toModel()
}

func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	const query = `
		SELECT id, phone, name, loyalty_points, status, version, created_at, updated_at
		FROM customers WHERE phone = ?`

	var row customerRow
	if err := sqlx.GetContext(ctx, r.ext, &row, query, phone); err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrCustomerNotFound
		}
		return nil, errors.Wrap(err, "failed to find customer by phone")
	}
	return row.toModel()
}

// AdjustLoyaltyPoints applies one signed delta under a non-negative balance
// guard. Administrative corrections go through here; sale settlement uses
// SettleLoyalty.
func (r *CustomerRepository) AdjustLoyaltyPoints(ctx context.Context, id uuid.UUID, delta int64) error {
	const query = `
		UPDATE customers
		SET loyalty_points = loyalty_points + ?, version = version + 1, updated_at = ?
		WHERE id = ? AND loyalty_points + ? >= 0`

	res, err := r.ext.ExecContext(ctx, query, delta, time.Now().UTC(), id.String(), delta)
	if err != nil {
		return errors.Wrap(err, "failed to adjust loyalty points")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		if _, err := r.Find(ctx, id); err != nil {
			return err
		}
		return model.ErrInsufficientPoints
	}
	return nil
}

// SettleLoyalty applies earned minus redeemed in one write. The guard
// requires the current balance to still cover the redeemed points, so a
// balance drained by a concurrent sale fails the settle instead of
// re-spending points that no longer exist.
func (r *CustomerRepository) SettleLoyalty(ctx context.Context, id uuid.UUID, earned, redeemed int64) error {
	const query = `
		UPDATE customers
		SET loyalty_points = loyalty_points + ?, version = version + 1, updated_at = ?
		WHERE id = ? AND loyalty_points >= ?`

	res, err := r.ext.ExecContext(ctx, query, earned-redeemed, time.Now().UTC(), id.String(), redeemed)
	if err != nil {
		return errors.Wrap(err, "failed to settle loyalty points")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		if _, err := r.Find(ctx, id); err != nil {
			return err
		}
		return model.ErrInsufficientPoints
	}
	return nil
}

type customerRow struct {
	ID            string    `db:"id"`
	Phone         string    `db:"phone"`
	Name          string    `db:"name"`
	LoyaltyPoints int64     `db:"loyalty_points"`
	Status        int       `db:"status"`
	Version       int       `db:"version"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (row customerRow) toModel() (*model.Customer, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse customer id")
	}
	return &model.Customer{
		ID:            id,
		Phone:         row.Phone,
		Name:          row.Name,
		LoyaltyPoints: row.LoyaltyPoints,
		Status:        model.CustomerStatus(row.Status),
		Version:       row.Version,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}
