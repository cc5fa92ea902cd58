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

type orderRow struct {
	ID              uuid.UUID           `db:"id"`
	UserID          uuid.UUID           `db:"user_id"`
	AddressFullName string              `db:"address_full_name"`
	AddressStreet   string              `db:"address_street"`
	AddressCity     string              `db:"address_city"`
	AddressPostal   string              `db:"address_postal_code"`
	AddressCountry  string              `db:"address_country"`
	PaymentMethod   string              `db:"payment_method"`
	ItemsPrice      decimal.Decimal     `db:"items_price"`
	TaxPrice        decimal.Decimal     `db:"tax_price"`
	ShippingPrice   decimal.Decimal     `db:"shipping_price"`
	TotalPrice      decimal.Decimal     `db:"total_price"`
	IsPaid          bool                `db:"is_paid"`
	PaidAt          *time.Time          `db:"paid_at"`
	PaymentIntentID string              `db:"payment_intent_id"`
	TransactionID   sql.NullString      `db:"transaction_id"`
	PaymentStatus   sql.NullString      `db:"payment_status"`
	PayerEmail      sql.NullString      `db:"payer_email"`
	AmountPaid      decimal.NullDecimal `db:"amount_paid"`
	IsDelivered     bool                `db:"is_delivered"`
	DeliveredAt     *time.Time          `db:"delivered_at"`
	Version         int                 `db:"version"`
	CreatedAt       time.Time           `db:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at"`
}

type orderLineRow struct {
	OrderID   uuid.UUID       `db:"order_id"`
	ProductID uuid.UUID       `db:"product_id"`
	Name      string          `db:"name"`
	Slug      string          `db:"slug"`
	Image     string          `db:"image"`
	Price     decimal.Decimal `db:"price"`
	Qty       int             `db:"qty"`
}

type orderRepository struct {
	ext sqlx.Ext
}

func (r *orderRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *orderRepository) Create(order *model.Order) error {
	_, err := r.ext.Exec(
		`INSERT INTO orders (id, user_id, address_full_name, address_street, address_city, address_postal_code, address_country,
		                     payment_method, items_price, tax_price, shipping_price, total_price,
		                     is_paid, payment_intent_id, is_delivered, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID,
		order.ShippingAddress.FullName, order.ShippingAddress.StreetAddress, order.ShippingAddress.City,
		order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
		order.PaymentMethod,
		order.Totals.ItemsPrice, order.Totals.TaxPrice, order.Totals.ShippingPrice, order.Totals.TotalPrice,
		order.IsPaid, order.PaymentIntentID, order.IsDelivered,
		order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "insert order")
	}

	for _, line := range order.Lines {
		_, err := r.ext.Exec(
			`INSERT INTO order_lines (order_id, product_id, name, slug, image, price, qty)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			line.OrderID, line.ProductID, line.Name, line.Slug, line.Image, line.Price, line.Qty,
		)
		if err != nil {
			return errors.Wrap(err, "insert order line")
		}
	}
	return nil
}

func (r *orderRepository) Find(id uuid.UUID) (*model.Order, error) {
	var row orderRow
	err := sqlx.Get(r.ext, &row, `SELECT * FROM orders WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select order")
	}
	return r.assemble(row)
}

func (r *orderRepository) FindByUser(userID uuid.UUID) ([]*model.Order, error) {
	var rows []orderRow
	err := sqlx.Select(r.ext, &rows, `SELECT * FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "select user orders")
	}

	orders := make([]*model.Order, 0, len(rows))
	for _, row := range rows {
		order, err := r.assemble(row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// Update touches only the payment/delivery status fields; the pricing and
// line snapshots of an order are immutable after creation.
func (r *orderRepository) Update(order *model.Order) error {
	var transactionID, paymentStatus, payerEmail interface{}
	var amountPaid interface{}
	if order.PaymentResult != nil {
		transactionID = order.PaymentResult.TransactionID
		paymentStatus = order.PaymentResult.Status
		payerEmail = order.PaymentResult.PayerEmail
		amountPaid = order.PaymentResult.AmountPaid
	}

	res, err := r.ext.Exec(
		`UPDATE orders
		 SET is_paid = ?, paid_at = ?, payment_intent_id = ?, transaction_id = ?, payment_status = ?, payer_email = ?, amount_paid = ?,
		     is_delivered = ?, delivered_at = ?, version = ?, updated_at = ?
		 WHERE id = ? AND version = ?`,
		order.IsPaid, order.PaidAt, order.PaymentIntentID, transactionID, paymentStatus, payerEmail, amountPaid,
		order.IsDelivered, order.DeliveredAt, order.Version, order.UpdatedAt,
		order.ID, order.Version-1,
	)
	if err != nil {
		return errors.Wrap(err, "update order")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update order rows affected")
	}
	if affected == 0 {
		return model.ErrOptimisticLock
	}
	return nil
}

func (r *orderRepository) assemble(row orderRow) (*model.Order, error) {
	var lineRows []orderLineRow
	err := sqlx.Select(r.ext, &lineRows, `SELECT * FROM order_lines WHERE order_id = ?`, row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "select order lines")
	}

	lines := make([]model.OrderLine, 0, len(lineRows))
	for _, lr := range lineRows {
		lines = append(lines, model.OrderLine{
			OrderID:   lr.OrderID,
			ProductID: lr.ProductID,
			Name:      lr.Name,
			Slug:      lr.Slug,
			Image:     lr.Image,
			Price:     lr.Price,
			Qty:       lr.Qty,
		})
	}

	var result *model.PaymentResult
	if row.TransactionID.Valid {
		result = &model.PaymentResult{
			TransactionID: row.TransactionID.String,
			Status:        row.PaymentStatus.String,
			PayerEmail:    row.PayerEmail.String,
			AmountPaid:    row.AmountPaid.Decimal,
		}
	}

	return &model.Order{
		ID:     row.ID,
		UserID: row.UserID,
		ShippingAddress: model.ShippingAddress{
			FullName:      row.AddressFullName,
			StreetAddress: row.AddressStreet,
			City:          row.AddressCity,
			PostalCode:    row.AddressPostal,
			Country:       row.AddressCountry,
		},
		PaymentMethod: row.PaymentMethod,
		Totals: model.Totals{
			ItemsPrice:    row.ItemsPrice,
			TaxPrice:      row.TaxPrice,
			ShippingPrice: row.ShippingPrice,
			TotalPrice:    row.TotalPrice,
		},
		Lines:           lines,
		IsPaid:          row.IsPaid,
		PaidAt:          row.PaidAt,
		PaymentIntentID: row.PaymentIntentID,
		PaymentResult:   result,
		IsDelivered:     row.IsDelivered,
		DeliveredAt:     row.DeliveredAt,
		Version:         row.Version,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}
