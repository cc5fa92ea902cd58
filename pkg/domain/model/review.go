package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrReviewNotFound = errors.New("review not found")

// Review is unique per (ProductID, UserID); a resubmission updates the
// existing row.
type Review struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Rating      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ReviewRepository interface {
	NextID() (uuid.UUID, error)
	Create(review *Review) error
	Update(review *Review) error
	Find(id uuid.UUID) (*Review, error)
	FindByProductAndUser(productID, userID uuid.UUID) (*Review, error)
	ListByProduct(productID uuid.UUID) ([]*Review, error)
	// AggregateByProduct returns the mean rating and review count for a
	// product, zero values when it has no reviews.
	AggregateByProduct(productID uuid.UUID) (decimal.Decimal, int, error)
	Delete(id uuid.UUID) error
}
