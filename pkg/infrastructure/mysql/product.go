package mysql

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
)

type productRow struct {
	ID          uuid.UUID       `db:"id"`
	Name        string          `db:"name"`
	Slug        string          `db:"slug"`
	Category    string          `db:"category"`
	Brand       string          `db:"brand"`
	Description string          `db:"description"`
	Images      string          `db:"images"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	Rating      decimal.Decimal `db:"rating"`
	NumReviews  int             `db:"num_reviews"`
	IsFeatured  bool            `db:"is_featured"`
	Banner      string          `db:"banner"`
	Version     int             `db:"version"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

type productRepository struct {
	ext sqlx.Ext
}

func (r *productRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *productRepository) Create(product *model.Product) error {
	images, err := json.Marshal(product.Images)
	if err != nil {
		return errors.Wrap(err, "marshal product images")
	}

	_, err = r.ext.Exec(
		`INSERT INTO products (id, name, slug, category, brand, description, images, price, stock, rating, num_reviews, is_featured, banner, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.Slug, product.Category, product.Brand, product.Description,
		string(images), product.Price, product.Stock, product.Rating, product.NumReviews,
		product.IsFeatured, product.Banner, product.Version, product.CreatedAt, product.UpdatedAt,
	)
	return errors.Wrap(err, "insert product")
}

func (r *productRepository) Find(id uuid.UUID) (*model.Product, error) {
	return r.findOne(`SELECT * FROM products WHERE id = ?`, id)
}

func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	return r.findOne(`SELECT * FROM products WHERE slug = ?`, slug)
}

func (r *productRepository) ListLatest(limit int) ([]*model.Product, error) {
	var rows []productRow
	err := sqlx.Select(r.ext, &rows, `SELECT * FROM products ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select latest products")
	}

	products := make([]*model.Product, 0, len(rows))
	for _, row := range rows {
		product, err := assembleProduct(row)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

func (r *productRepository) Update(product *model.Product) error {
	images, err := json.Marshal(product.Images)
	if err != nil {
		return errors.Wrap(err, "marshal product images")
	}

	res, err := r.ext.Exec(
		`UPDATE products
		 SET name = ?, slug = ?, category = ?, brand = ?, description = ?, images = ?, price = ?, stock = ?,
		     rating = ?, num_reviews = ?, is_featured = ?, banner = ?, version = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		product.Name, product.Slug, product.Category, product.Brand, product.Description, string(images),
		product.Price, product.Stock, product.Rating, product.NumReviews, product.IsFeatured, product.Banner,
		product.Version, product.UpdatedAt,
		product.ID, product.Version-1,
	)
	if err != nil {
		return errors.Wrap(err, "update product")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update product rows affected")
	}
	if affected == 0 {
		return model.ErrOptimisticLock
	}
	return nil
}

// DecrementStock is a single atomic UPDATE, never a read-modify-write, so
// concurrent payment confirmations cannot lose each other's decrements.
func (r *productRepository) DecrementStock(productID uuid.UUID, qty int) error {
	res, err := r.ext.Exec(
		`UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ?`,
		qty, time.Now().UTC(), productID,
	)
	if err != nil {
		return errors.Wrap(err, "decrement product stock")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "decrement product stock rows affected")
	}
	if affected == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) findOne(query string, arg interface{}) (*model.Product, error) {
	var row productRow
	err := sqlx.Get(r.ext, &row, query, arg)
	if err == sql.ErrNoRows {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select product")
	}
	return assembleProduct(row)
}

func assembleProduct(row productRow) (*model.Product, error) {
	var images []string
	if row.Images != "" {
		if err := json.Unmarshal([]byte(row.Images), &images); err != nil {
			return nil, errors.Wrap(err, "unmarshal product images")
		}
	}

	return &model.Product{
		ID:          row.ID,
		Name:        row.Name,
		Slug:        row.Slug,
		Category:    row.Category,
		Brand:       row.Brand,
		Description: row.Description,
		Images:      images,
		Price:       row.Price,
		Stock:       row.Stock,
		Rating:      row.Rating,
		NumReviews:  row.NumReviews,
		IsFeatured:  row.IsFeatured,
		Banner:      row.Banner,
		Version:     row.Version,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}
