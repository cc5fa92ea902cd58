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

type cartRow struct {
	ID            uuid.UUID       `db:"id"`
	UserID        sql.NullString  `db:"user_id"`
	SessionCartID string          `db:"session_cart_id"`
	ItemsPrice    decimal.Decimal `db:"items_price"`
	TaxPrice      decimal.Decimal `db:"tax_price"`
	ShippingPrice decimal.Decimal `db:"shipping_price"`
	TotalPrice    decimal.Decimal `db:"total_price"`
	Version       int             `db:"version"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

type cartItemRow struct {
	CartID    uuid.UUID       `db:"cart_id"`
	ProductID uuid.UUID       `db:"product_id"`
	Name      string          `db:"name"`
	Slug      string          `db:"slug"`
	Image     string          `db:"image"`
	Price     decimal.Decimal `db:"price"`
	Qty       int             `db:"qty"`
	Position  int             `db:"position"`
}

type cartRepository struct {
	ext sqlx.Ext
}

func (r *cartRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *cartRepository) Create(cart *model.Cart) error {
	return r.atomically(func(ext sqlx.Ext) error {
		_, err := ext.Exec(
			`INSERT INTO carts (id, user_id, session_cart_id, items_price, tax_price, shipping_price, total_price, version, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cart.ID, nullableUserID(cart.UserID), cart.SessionCartID,
			cart.Totals.ItemsPrice, cart.Totals.TaxPrice, cart.Totals.ShippingPrice, cart.Totals.TotalPrice,
			cart.Version, cart.CreatedAt, cart.UpdatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "insert cart")
		}
		return insertCartItems(ext, cart.ID, cart.Items)
	})
}

func (r *cartRepository) FindByIdentity(identity model.Identity) (*model.Cart, error) {
	var row cartRow
	var err error
	if identity.Authenticated() {
		err = sqlx.Get(r.ext, &row, `SELECT * FROM carts WHERE user_id = ?`, identity.UserID.String())
	} else {
		err = sqlx.Get(r.ext, &row, `SELECT * FROM carts WHERE session_cart_id = ? AND user_id IS NULL`, identity.SessionCartID)
	}
	if err == sql.ErrNoRows {
		return nil, model.ErrCartNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select cart")
	}

	var itemRows []cartItemRow
	err = sqlx.Select(r.ext, &itemRows, `SELECT * FROM cart_items WHERE cart_id = ? ORDER BY position`, row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "select cart items")
	}

	return r.assemble(row, itemRows), nil
}

func (r *cartRepository) Update(cart *model.Cart) error {
	return r.atomically(func(ext sqlx.Ext) error {
		res, err := ext.Exec(
			`UPDATE carts
			 SET user_id = ?, items_price = ?, tax_price = ?, shipping_price = ?, total_price = ?, version = ?, updated_at = ?
			 WHERE id = ? AND version = ?`,
			nullableUserID(cart.UserID),
			cart.Totals.ItemsPrice, cart.Totals.TaxPrice, cart.Totals.ShippingPrice, cart.Totals.TotalPrice,
			cart.Version, cart.UpdatedAt,
			cart.ID, cart.Version-1,
		)
		if err != nil {
			return errors.Wrap(err, "update cart")
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "update cart rows affected")
		}
		if affected == 0 {
			return model.ErrOptimisticLock
		}

		// The item list is a snapshot owned by the cart; rewrite it wholesale.
		if _, err := ext.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cart.ID); err != nil {
			return errors.Wrap(err, "delete cart items")
		}
		return insertCartItems(ext, cart.ID, cart.Items)
	})
}

func (r *cartRepository) Delete(id uuid.UUID) error {
	return r.atomically(func(ext sqlx.Ext) error {
		if _, err := ext.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, id); err != nil {
			return errors.Wrap(err, "delete cart items")
		}
		res, err := ext.Exec(`DELETE FROM carts WHERE id = ?`, id)
		if err != nil {
			return errors.Wrap(err, "delete cart")
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "delete cart rows affected")
		}
		if affected == 0 {
			return model.ErrCartNotFound
		}
		return nil
	})
}

// atomically keeps the cart header and its item rows consistent: a reader
// must never observe totals from one write and items from another. Bound to
// the bare pool the repository opens its own transaction; inside a unit of
// work it joins the caller's.
func (r *cartRepository) atomically(fn func(ext sqlx.Ext) error) error {
	db, ok := r.ext.(*sqlx.DB)
	if !ok {
		return fn(r.ext)
	}

	tx, err := db.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "commit transaction")
}

func insertCartItems(ext sqlx.Ext, cartID uuid.UUID, items []model.CartItem) error {
	for i, item := range items {
		_, err := ext.Exec(
			`INSERT INTO cart_items (cart_id, product_id, name, slug, image, price, qty, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			cartID, item.ProductID, item.Name, item.Slug, item.Image, item.Price, item.Qty, i,
		)
		if err != nil {
			return errors.Wrap(err, "insert cart item")
		}
	}
	return nil
}

func (r *cartRepository) assemble(row cartRow, itemRows []cartItemRow) *model.Cart {
	items := make([]model.CartItem, 0, len(itemRows))
	for _, ir := range itemRows {
		items = append(items, model.CartItem{
			ProductID: ir.ProductID,
			Name:      ir.Name,
			Slug:      ir.Slug,
			Image:     ir.Image,
			Price:     ir.Price,
			Qty:       ir.Qty,
		})
	}

	userID := uuid.Nil
	if row.UserID.Valid {
		userID = uuid.MustParse(row.UserID.String)
	}

	return &model.Cart{
		ID:            row.ID,
		UserID:        userID,
		SessionCartID: row.SessionCartID,
		Items:         items,
		Totals: model.Totals{
			ItemsPrice:    row.ItemsPrice,
			TaxPrice:      row.TaxPrice,
			ShippingPrice: row.ShippingPrice,
			TotalPrice:    row.TotalPrice,
		},
		Version:   row.Version,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func nullableUserID(id uuid.UUID) interface{} {
	if id == uuid.Nil {
		return nil
	}
	return id.String()
}
