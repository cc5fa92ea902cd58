package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderAlreadyPaid = errors.New("order has already been paid")
	ErrOrderNotPaid     = errors.New("order has not been paid yet")
)

// PaymentResult is the provider's report of a completed payment.
type PaymentResult struct {
	TransactionID string
	Status        string
	PayerEmail    string
	AmountPaid    decimal.Decimal
}

// OrderLine is an immutable snapshot of a cart item taken at order creation.
// Later changes to the live product never affect it.
type OrderLine struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	Slug      string
	Image     string
	Price     decimal.Decimal
	Qty       int
}

type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	ShippingAddress ShippingAddress
	PaymentMethod   string
	Totals          Totals // copied from the cart at creation, immutable
	Lines           []OrderLine
	IsPaid          bool
	PaidAt          *time.Time
	PaymentIntentID string // provider reference captured when the intent was created
	PaymentResult   *PaymentResult
	IsDelivered     bool
	DeliveredAt     *time.Time
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderRepository interface {
	NextID() (uuid.UUID, error)
	Create(order *Order) error
	Find(id uuid.UUID) (*Order, error)
	FindByUser(userID uuid.UUID) ([]*Order, error)
	Update(order *Order) error
}
