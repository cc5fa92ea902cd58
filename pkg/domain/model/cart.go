package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
)

// Identity is the principal a cart belongs to: an authenticated user or an
// anonymous browser session. UserID equal to uuid.Nil means anonymous.
type Identity struct {
	UserID        uuid.UUID
	SessionCartID string
}

func (i Identity) Authenticated() bool { return i.UserID != uuid.Nil }

type CartItem struct {
	ProductID uuid.UUID
	Name      string
	Slug      string
	Image     string
	Price     decimal.Decimal // unit price snapshot taken when the item was added
	Qty       int
}

type Cart struct {
	ID            uuid.UUID
	UserID        uuid.UUID // uuid.Nil for anonymous carts
	SessionCartID string
	Items         []CartItem
	Totals        Totals
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CartRepository interface {
	NextID() (uuid.UUID, error)
	Create(cart *Cart) error
	// FindByIdentity prefers the user id when the identity carries both.
	FindByIdentity(identity Identity) (*Cart, error)
	Update(cart *Cart) error
	Delete(id uuid.UUID) error
}
