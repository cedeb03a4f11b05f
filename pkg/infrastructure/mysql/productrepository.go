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

type ProductRepository struct {
	ext sqlx.ExtContext
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{ext: db}
}

func (r *ProductRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	const query = `
		INSERT INTO products (id, name, description, price_cents, stock_quantity, status, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.ext.ExecContext(ctx, query,
		product.ID.String(), product.Name, product.Description, product.PriceCents,
		product.StockQuantity, product.Status, product.Version, product.CreatedAt, product.UpdatedAt)
	return errors.Wrap(err, "failed to create product")
}

func (r *ProductRepository) Update(ctx context.Context, product *model.Product) error {
	const query = `
		UPDATE products
		SET name = ?, description = ?, price_cents = ?, stock_quantity = ?, status = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?`

	res, err := r.ext.ExecContext(ctx, query,
		product.Name, product.Description, product.PriceCents, product.StockQuantity,
		product.Status, product.Version, product.UpdatedAt,
		product.ID.String(), product.Version-1)
	if err != nil {
		return errors.Wrap(err, "failed to update product")
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

func (r *ProductRepository) Find(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	const query = `
		SELECT id, name, description, price_cents, stock_quantity, status, version, created_at, updated_at
		FROM products WHERE id = ?`

	var row productRow
	if err := sqlx.GetContext(ctx, r.ext, &row, query, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProductNotFound
		}
		return nil, errors.Wrap(err, "failed to find product")
	}
	return row.toModel()
}

func (r *ProductRepository) FindAvailable(ctx context.Context) ([]*model.Product, error) {
	const query = `
		SELECT id, name, description, price_cents, stock_quantity, status, version, created_at, updated_at
		FROM products WHERE status = ? ORDER BY name`

	var rows []productRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, query, model.Available); err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}
	return productsToModel(rows)
}

func (r *ProductRepository) Search(ctx context.Context, query string) ([]*model.Product, error) {
	const stmt = `
		SELECT id, name, description, price_cents, stock_quantity, status, version, created_at, updated_at
		FROM products
		WHERE status = ? AND (name LIKE ? OR description LIKE ?)
		ORDER BY name`

	pattern := "%" + query + "%"
	var rows []productRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, stmt, model.Available, pattern, pattern); err != nil {
		return nil, errors.Wrap(err, "failed to search products")
	}
	return productsToModel(rows)
}

// DecrementStock is the single write path for sale-time stock mutation.
// The guard in the WHERE clause re-checks the stock at mutation time, which
// turns a lost race into model.ErrStockConflict instead of negative stock.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	const query = `
		UPDATE products
		SET stock_quantity = stock_quantity - ?, version = version + 1, updated_at = ?
		WHERE id = ? AND status = ? AND stock_quantity >= ?`

	res, err := r.ext.ExecContext(ctx, query, quantity, time.Now().UTC(), id.String(), model.Available, quantity)
	if err != nil {
		return errors.Wrap(err, "failed to decrement stock")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		if _, err := r.Find(ctx, id); err != nil {
			return err
		}
		return model.ErrStockConflict
	}
	return nil
}

type productRow struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Description   string    `db:"description"`
	PriceCents    int64     `db:"price_cents"`
	StockQuantity int       `db:"stock_quantity"`
	Status        int       `db:"status"`
	Version       int       `db:"version"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (row productRow) toModel() (*model.Product, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse product id")
	}
	return &model.Product{
		ID:            id,
		Name:          row.Name,
		Description:   row.Description,
		PriceCents:    row.PriceCents,
		StockQuantity: row.StockQuantity,
		Status:        model.ProductStatus(row.Status),
		Version:       row.Version,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

func productsToModel(rows []productRow) ([]*model.Product, error) {
	products := make([]*model.Product, 0, len(rows))
	for _, row := range rows {
		product, err := row.toModel()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}
