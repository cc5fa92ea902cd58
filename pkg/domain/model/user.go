package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email is already taken")
)

type ShippingAddress struct {
	FullName      string
	StreetAddress string
	City          string
	PostalCode    string
	Country       string
}

type User struct {
	ID             uuid.UUID
	Name           string
	Email          string
	HashedPassword string
	Role           string
	Address        *ShippingAddress
	PaymentMethod  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type UserRepository interface {
	NextID() (uuid.UUID, error)
	Create(user *User) error
	Update(user *User) error
	Find(id uuid.UUID) (*User, error)
	FindByEmail(email string) (*User, error)
}

type PasswordManager interface {
	Hash(plainTextPassword string) (string, error)
	Check(hashedPassword, plainTextPassword string) (bool, error)
}
