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

type SaleRepository struct {
	ext sqlx.ExtContext
}

func NewSaleRepository(db *sqlx.DB) *SaleRepository {
	return &SaleRepository{ext: db}
}

func (r *SaleRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

// Create persists the sale aggregate: the sale row plus its item and payment
// rows. Callers that need atomicity with the stock and loyalty writes run it
// inside the unit of work.
func (r *SaleRepository) Create(ctx context.Context, sale *model.Sale) error {
	const saleQuery = `
		INSERT INTO sales (id, customer_id, operator_id, subtotal_cents, discount_cents, tax_cents,
			total_cents, points_earned, points_redeemed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var customerID sql.NullString
	if sale.CustomerID != nil {
		customerID = sql.NullString{String: sale.CustomerID.String(), Valid: true}
	}

	_, err := r.ext.ExecContext(ctx, saleQuery,
		sale.ID.String(), customerID, sale.OperatorID.String(),
		sale.SubtotalCents, sale.DiscountCents, sale.TaxCents, sale.TotalCents,
		sale.PointsEarned, sale.PointsRedeemed, sale.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to create sale")
	}

	const itemQuery = `
		INSERT INTO sale_items (sale_id, position, product_id, name, unit_price_cents, quantity, subtotal_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	for i, item := range sale.Items {
		_, err := r.ext.ExecContext(ctx, itemQuery,
			sale.ID.String(), i, item.ProductID.String(), item.Name,
			item.UnitPriceCents, item.Quantity, item.SubtotalCents)
		if err != nil {
			return errors.Wrap(err, "failed to create sale item")
		}
	}

	const paymentQuery = `
		INSERT INTO sale_payments (sale_id, position, method, amount)
		VALUES (?, ?, ?, ?)`
	for i, payment := range sale.Payments {
		_, err := r.ext.ExecContext(ctx, paymentQuery,
			sale.ID.String(), i, string(payment.Method), payment.Amount)
		if err != nil {
			return errors.Wrap(err, "failed to create sale payment")
		}
	}
	return nil
}

func (r *SaleRepository) Find(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	const query = `
		SELECT id, customer_id, operator_id, subtotal_cents, discount_cents, tax_cents,
			total_cents, points_earned, points_redeemed, created_at
		FROM sales WHERE id = ?`

	var row saleRow
	if err := sqlx.GetContext(ctx, r.ext, &row, query, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrSaleNotFound
		}
		return nil, errors.Wrap(err, "failed to find sale")
	}

	sale, err := row.toModel()
	if err != nil {
		return nil, err
	}
	if err := r.loadDetails(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *SaleRepository) FindAll(ctx context.Context, limit, offset int) ([]*model.Sale, error) {
	const query = `
		SELECT id, customer_id, operator_id, subtotal_cents, discount_cents, tax_cents,
			total_cents, points_earned, points_redeemed, created_at
		FROM sales ORDER BY created_at DESC LIMIT ? OFFSET ?`

	var rows []saleRow
	if err := sqlx.SelectContext(ctx, r.ext, &rows, query, limit, offset); err != nil {
		return nil, errors.Wrap(err, "failed to list sales")
	}

	sales := make([]*model.Sale, 0, len(rows))
	for _, row := range rows {
		sale, err := row.toModel()
		if err != nil {
			return nil, err
		}
		if err := r.loadDetails(ctx, sale); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

func (r *SaleRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.ext, &count, `SELECT COUNT(*) FROM sales`); err != nil {
		return 0, errors.Wrap(err, "failed to count sales")
	}
	return count, nil
}

func (r *SaleRepository) loadDetails(ctx context.Context, sale *model.Sale) error {
	const itemQuery = `
		SELECT product_id, name, unit_price_cents, quantity, subtotal_cents
		FROM sale_items WHERE sale_id = ? ORDER BY position`

	var itemRows []saleItemRow
	if err := sqlx.SelectContext(ctx, r.ext, &itemRows, itemQuery, sale.ID.String()); err != nil {
		return errors.Wrap(err, "failed to load sale items")
	}
	sale.Items = make([]model.SaleItem, 0, len(itemRows))
	for _, row := range itemRows {
		productID, err := uuid.Parse(row.ProductID)
		if err != nil {
			return errors.Wrap(err, "failed to parse sale item product id")
		}
		sale.Items = append(sale.Items, model.SaleItem{
			ProductID:      productID,
			Name:           row.Name,
			UnitPriceCents: row.UnitPriceCents,
			Quantity:       row.Quantity,
			SubtotalCents:  row.SubtotalCents,
		})
	}

	const paymentQuery = `
		SELECT method, amount FROM sale_payments WHERE sale_id = ? ORDER BY position`

	var paymentRows []salePaymentRow
	if err := sqlx.SelectContext(ctx, r.ext, &paymentRows, paymentQuery, sale.ID.String()); err != nil {
		return errors.Wrap(err, "failed to load sale payments")
	}
	sale.Payments = make([]model.Payment, 0, len(paymentRows))
	for _, row := range paymentRows {
		sale.Payments = append(sale.Payments, model.Payment{
			Method: model.PaymentMethod(row.Method),
			Amount: row.Amount,
		})
	}
	return nil
}

type saleRow struct {
	ID             string         `db:"id"`
	CustomerID     sql.NullString `db:"customer_id"`
	OperatorID     string         `db:"operator_id"`
	SubtotalCents  int64          `db:"subtotal_cents"`
	DiscountCents  int64          `db:"discount_cents"`
	TaxCents       int64          `db:"tax_cents"`
	TotalCents     int64          `db:"total_cents"`
	PointsEarned   int64          `db:"points_earned"`
	PointsRedeemed int64          `db:"points_redeemed"`
	CreatedAt      time.Time      `db:"created_at"`
}

type saleItemRow struct {
	ProductID      string `db:"product_id"`
	Name           string `db:"name"`
	UnitPriceCents int64  `db:"unit_price_cents"`
	Quantity       int    `db:"quantity"`
	SubtotalCents  int64  `db:"subtotal_cents"`
}

type salePaymentRow struct {
	Method string `db:"method"`
	Amount int64  `db:"amount"`
}

func (row saleRow) toModel() (*model.Sale, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse sale id")
	}
	operatorID, err := uuid.Parse(row.OperatorID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse operator id")
	}

	var customerID *uuid.UUID
	if row.CustomerID.Valid {
		parsed, err := uuid.Parse(row.CustomerID.String)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse customer id")
		}
		customerID = &parsed
	}

	return &model.Sale{
		ID:             id,
		CustomerID:     customerID,
		OperatorID:     operatorID,
		SubtotalCents:  row.SubtotalCents,
		DiscountCents:  row.DiscountCents,
		TaxCents:       row.TaxCents,
		TotalCents:     row.TotalCents,
		PointsEarned:   row.PointsEarned,
		PointsRedeemed: row.PointsRedeemed,
		CreatedAt:      row.CreatedAt,
	}, nil
}
