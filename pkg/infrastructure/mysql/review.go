package mysql

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
)

type reviewRow struct {
	ID          uuid.UUID `db:"id"`
	ProductID   uuid.UUID `db:"product_id"`
	UserID      uuid.UUID `db:"user_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Rating      int       `db:"rating"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type reviewRepository struct {
	ext sqlx.Ext
}

func (r *reviewRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *reviewRepository) Create(review *model.Review) error {
	_, err := r.ext.Exec(
		`INSERT INTO reviews (id, product_id, user_id, title, description, rating, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		review.ID, review.ProductID, review.UserID, review.Title, review.Description,
		review.Rating, review.CreatedAt, review.UpdatedAt,
	)
	return errors.Wrap(err, "insert review")
}

func (r *reviewRepository) Update(review *model.Review) error {
	res, err := r.ext.Exec(
		`UPDATE reviews SET title = ?, description = ?, rating = ?, updated_at = ? WHERE id = ?`,
		review.Title, review.Description, review.Rating, review.UpdatedAt, review.ID,
	)
	if err != nil {
		return errors.Wrap(err, "update review")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update review rows affected")
	}
	if affected == 0 {
		return model.ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) Find(id uuid.UUID) (*model.Review, error) {
	var row reviewRow
	err := sqlx.Get(r.ext, &row, `SELECT * FROM reviews WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrReviewNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select review")
	}
	return assembleReview(row), nil
}

func (r *reviewRepository) FindByProductAndUser(productID, userID uuid.UUID) (*model.Review, error) {
	var row reviewRow
	err := sqlx.Get(r.ext, &row, `SELECT * FROM reviews WHERE product_id = ? AND user_id = ?`, productID, userID)
	if err == sql.ErrNoRows {
		return nil, model.ErrReviewNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select review by product and user")
	}
	return assembleReview(row), nil
}

func (r *reviewRepository) ListByProduct(productID uuid.UUID) ([]*model.Review, error) {
	var rows []reviewRow
	err := sqlx.Select(r.ext, &rows, `SELECT * FROM reviews WHERE product_id = ? ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, errors.Wrap(err, "select product reviews")
	}

	reviews := make([]*model.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, assembleReview(row))
	}
	return reviews, nil
}

func (r *reviewRepository) AggregateByProduct(productID uuid.UUID) (decimal.Decimal, int, error) {
	var aggregate struct {
		Rating decimal.Decimal `db:"rating"`
		Count  int             `db:"count"`
	}
	err := sqlx.Get(r.ext, &aggregate,
		`SELECT COALESCE(AVG(rating), 0) AS rating, COUNT(*) AS count FROM reviews WHERE product_id = ?`,
		productID,
	)
	if err != nil {
		return decimal.Zero, 0, errors.Wrap(err, "aggregate product reviews")
	}
	return aggregate.Rating, aggregate.Count, nil
}

func (r *reviewRepository) Delete(id uuid.UUID) error {
	res, err := r.ext.Exec(`DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete review")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete review rows affected")
	}
	if affected == 0 {
		return model.ErrReviewNotFound
	}
	return nil
}

func assembleReview(row reviewRow) *model.Review {
	return &model.Review{
		ID:          row.ID,
		ProductID:   row.ProductID,
		UserID:      row.UserID,
		Title:       row.Title,
		Description: row.Description,
		Rating:      row.Rating,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
