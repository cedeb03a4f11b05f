package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"posservice/pkg/domain/model"
)

// priceCart resolves every cart line against the catalog and snapshots unit
// prices. Duplicate product lines are merged before the stock check so a
// split cart cannot bypass stock limits. Reads only, no side effects.
func (s *checkoutService) priceCart(ctx context.Context, cart []model.CartLine) ([]model.SaleItem, int64, error) {
	if len(cart) == 0 {
		return nil, 0, ErrEmptyCart
	}

	merged := make([]model.CartLine, 0, len(cart))
	index := make(map[uuid.UUID]int, len(cart))
	for _, line := range cart {
		if line.Quantity <= 0 {
			return nil, 0, errors.Wrapf(model.ErrInvalidQuantity, "product %s: quantity %d", line.ProductID, line.Quantity)
		}
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}

	items := make([]model.SaleItem, 0, len(merged))
	var subtotal int64
	for _, line := range merged {
		product, err := s.products.Find(ctx, line.ProductID)
		if err != nil {
			return nil, 0, err
		}
		if product.Status != model.Available {
			return nil, 0, errors.Wrapf(model.ErrProductUnavailable, "product %s", product.ID)
		}
		if product.StockQuantity < line.Quantity {
			return nil, 0, errors.Wrapf(model.ErrOutOfStock, "product %s: requested %d, available %d", product.ID, line.Quantity, product.StockQuantity)
		}

		lineTotal := product.PriceCents * int64(line.Quantity)
		items = append(items, model.SaleItem{
			ProductID:      product.ID,
			Name:           product.Name,
			UnitPriceCents: product.PriceCents,
			Quantity:       line.Quantity,
			SubtotalCents:  lineTotal,
		})
		subtotal += lineTotal
	}
	return items, subtotal, nil
}
