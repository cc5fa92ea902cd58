package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
)

var (
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUnknownPaymentMethod = errors.New("payment method is not supported")
	ErrIncompleteAddress    = errors.New("shipping address is incomplete")
)

const minPasswordLength = 6

type UserService interface {
	RegisterUser(name, email, plainTextPassword string) (*model.User, error)
	Authenticate(email, plainTextPassword string) (*model.User, error)
	UpdateShippingAddress(userID uuid.UUID, address model.ShippingAddress) error
	UpdatePaymentMethod(userID uuid.UUID, method string) error
}

func NewUserService(repo model.UserRepository, passManager model.PasswordManager, paymentMethods []string, dispatcher EventDispatcher) UserService {
	return &userService{repo: repo, passManager: passManager, paymentMethods: paymentMethods, dispatcher: dispatcher}
}

type userService struct {
	repo           model.UserRepository
	passManager    model.PasswordManager
	paymentMethods []string
	dispatcher     EventDispatcher
}

func (s *userService) RegisterUser(name, email, plainTextPassword string) (*model.User, error) {
	if len(plainTextPassword) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.repo.FindByEmail(email); err == nil {
		return nil, model.ErrEmailTaken
	}

	hashedPassword, err := s.passManager.Hash(plainTextPassword)
	if err != nil {
		return nil, err
	}

	userID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:             userID,
		Name:           name,
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           "user",
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.UserRegistered{UserID: userID, Email: email, Name: name})
	return user, nil
}

func (s *userService) Authenticate(email, plainTextPassword string) (*model.User, error) {
	user, err := s.repo.FindByEmail(email)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.passManager.Check(user.HashedPassword, plainTextPassword)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) UpdateShippingAddress(userID uuid.UUID, address model.ShippingAddress) error {
	if address.FullName == "" || address.StreetAddress == "" || address.City == "" ||
		address.PostalCode == "" || address.Country == "" {
		return ErrIncompleteAddress
	}

	user, err := s.repo.Find(userID)
	if err != nil {
		return err
	}

	user.Address = &address
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(user)
}

func (s *userService) UpdatePaymentMethod(userID uuid.UUID, method string) error {
	supported := false
	for _, m := range s.paymentMethods {
		if m == method {
			supported = true
			break
		}
	}
	if !supported {
		return ErrUnknownPaymentMethod
	}

	user, err := s.repo.Find(userID)
	if err != nil {
		return err
	}

	user.PaymentMethod = method
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(user)
}
