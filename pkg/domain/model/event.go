package model

import "github.com/google/uuid"

type SaleCompleted struct {
	SaleID         uuid.UUID
	CustomerID     *uuid.UUID
	OperatorID     uuid.UUID
	TotalCents     int64
	PointsEarned   int64
	PointsRedeemed int64
}

func (e SaleCompleted) Type() string { return "SaleCompleted" }

type ProductCreated struct {
	ProductID uuid.UUID
	Name      string
}

func (e ProductCreated) Type() string { return "ProductCreated" }

type ProductPriceChanged struct {
	ProductID     uuid.UUID
	OldPriceCents int64
	NewPriceCents int64
}

func (e ProductPriceChanged) Type() string { return "ProductPriceChanged" }

type ProductStockChanged struct {
	ProductID    uuid.UUID
	ChangeAmount int
	NewQuantity  int
}

func (e ProductStockChanged) Type() string { return "ProductStockChanged" }

type ProductArchived struct {
	ProductID uuid.UUID
}

func (e ProductArchived) Type() string { return "ProductArchived" }

type CustomerRegistered struct {
	CustomerID uuid.UUID
	Phone      string
}

func (e CustomerRegistered) Type() string { return "CustomerRegistered" }

type CustomerDeactivated struct {
	CustomerID uuid.UUID
}

func (e CustomerDeactivated) Type() string { return "CustomerDeactivated" }

type LoyaltyBalanceAdjusted struct {
	CustomerID  uuid.UUID
	DeltaPoints int64
	NewBalance  int64
}

func (e LoyaltyBalanceAdjusted) Type() string { return "LoyaltyBalanceAdjusted" }
