package mysql

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
)

type userRow struct {
	ID              uuid.UUID      `db:"id"`
	Name            string         `db:"name"`
	Email           string         `db:"email"`
	HashedPassword  string         `db:"hashed_password"`
	Role            string         `db:"role"`
	AddressFullName sql.NullString `db:"address_full_name"`
	AddressStreet   sql.NullString `db:"address_street"`
	AddressCity     sql.NullString `db:"address_city"`
	AddressPostal   sql.NullString `db:"address_postal_code"`
	AddressCountry  sql.NullString `db:"address_country"`
	PaymentMethod   string         `db:"payment_method"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type userRepository struct {
	ext sqlx.Ext
}

func (r *userRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *userRepository) Create(user *model.User) error {
	fullName, street, city, postal, country := addressColumns(user.Address)
	_, err := r.ext.Exec(
		`INSERT INTO users (id, name, email, hashed_password, role, address_full_name, address_street, address_city, address_postal_code, address_country, payment_method, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.HashedPassword, user.Role,
		fullName, street, city, postal, country,
		user.PaymentMethod, user.CreatedAt, user.UpdatedAt,
	)
	return errors.Wrap(err, "insert user")
}

func (r *userRepository) Update(user *model.User) error {
	fullName, street, city, postal, country := addressColumns(user.Address)
	res, err := r.ext.Exec(
		`UPDATE users
		 SET name = ?, email = ?, hashed_password = ?, role = ?, address_full_name = ?, address_street = ?,
		     address_city = ?, address_postal_code = ?, address_country = ?, payment_method = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name, user.Email, user.HashedPassword, user.Role,
		fullName, street, city, postal, country,
		user.PaymentMethod, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return errors.Wrap(err, "update user")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update user rows affected")
	}
	if affected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Find(id uuid.UUID) (*model.User, error) {
	return r.findOne(`SELECT * FROM users WHERE id = ?`, id)
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	return r.findOne(`SELECT * FROM users WHERE email = ?`, email)
}

func (r *userRepository) findOne(query string, arg interface{}) (*model.User, error) {
	var row userRow
	err := sqlx.Get(r.ext, &row, query, arg)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select user")
	}

	var address *model.ShippingAddress
	if row.AddressFullName.Valid {
		address = &model.ShippingAddress{
			FullName:      row.AddressFullName.String,
			StreetAddress: row.AddressStreet.String,
			City:          row.AddressCity.String,
			PostalCode:    row.AddressPostal.String,
			Country:       row.AddressCountry.String,
		}
	}

	return &model.User{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		HashedPassword: row.HashedPassword,
		Role:           row.Role,
		Address:        address,
		PaymentMethod:  row.PaymentMethod,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

func addressColumns(address *model.ShippingAddress) (fullName, street, city, postal, country interface{}) {
	if address == nil {
		return nil, nil, nil, nil, nil
	}
	return address.FullName, address.StreetAddress, address.City, address.PostalCode, address.Country
}
