package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
)

type BcryptPasswordManager struct {
	cost int
}

var _ model.PasswordManager = BcryptPasswordManager{}

func NewBcryptPasswordManager() BcryptPasswordManager {
	return BcryptPasswordManager{cost: bcrypt.DefaultCost}
}

func (m BcryptPasswordManager) Hash(plainTextPassword string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), m.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (m BcryptPasswordManager) Check(hashedPassword, plainTextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainTextPassword))
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
