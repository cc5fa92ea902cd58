package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductSlugTaken  = errors.New("product slug is already taken")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Product struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Category    string
	Brand       string
	Description string
	Images      []string
	Price       decimal.Decimal
	Stock       int
	Rating      decimal.Decimal // derived: mean of all review ratings
	NumReviews  int             // derived: count of reviews
	IsFeatured  bool
	Banner      string
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProductRepository interface {
	NextID() (uuid.UUID, error)
	Create(product *Product) error
	Find(id uuid.UUID) (*Product, error)
	FindBySlug(slug string) (*Product, error)
	ListLatest(limit int) ([]*Product, error)
	Update(product *Product) error
	// DecrementStock subtracts qty from the product's stock as a single
	// atomic operation, not a read-modify-write.
	DecrementStock(productID uuid.UUID, qty int) error
}
