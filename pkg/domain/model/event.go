package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartItemAdded struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
	Qty       int
}

func (e CartItemAdded) Type() string { return "CartItemAdded" }

type CartItemRemoved struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
}

func (e CartItemRemoved) Type() string { return "CartItemRemoved" }

type CartTransferred struct {
	CartID uuid.UUID
	UserID uuid.UUID
}

func (e CartTransferred) Type() string { return "CartTransferred" }

type OrderCreated struct {
	OrderID    uuid.UUID
	UserID     uuid.UUID
	TotalPrice decimal.Decimal
}

func (e OrderCreated) Type() string { return "OrderCreated" }

type OrderPaid struct {
	OrderID       uuid.UUID
	TransactionID string
	AmountPaid    decimal.Decimal
}

func (e OrderPaid) Type() string { return "OrderPaid" }

type OrderDelivered struct {
	OrderID uuid.UUID
}

func (e OrderDelivered) Type() string { return "OrderDelivered" }

type ReviewSubmitted struct {
	ReviewID  uuid.UUID
	ProductID uuid.UUID
	UserID    uuid.UUID
	Rating    int
}

func (e ReviewSubmitted) Type() string { return "ReviewSubmitted" }

type ProductCreated struct {
	ProductID uuid.UUID
	Name      string
}

func (e ProductCreated) Type() string { return "ProductCreated" }

type ProductPriceChanged struct {
	ProductID uuid.UUID
	OldPrice  decimal.Decimal
	NewPrice  decimal.Decimal
}

func (e ProductPriceChanged) Type() string { return "ProductPriceChanged" }

type ProductStockReceived struct {
	ProductID uuid.UUID
	Qty       int
	NewStock  int
}

func (e ProductStockReceived) Type() string { return "ProductStockReceived" }

type UserRegistered struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

func (e UserRegistered) Type() string { return "UserRegistered" }
