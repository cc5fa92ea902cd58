package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
)

var (
	ErrEmptyCart              = errors.New("shopping cart is empty")
	ErrMissingShippingAddress = errors.New("no shipping address on file")
	ErrMissingPaymentMethod   = errors.New("no payment method on file")
	ErrNotAuthenticated       = errors.New("operation requires an authenticated user")
)

type OrderService interface {
	CreateOrder(identity model.Identity) (*model.Order, error)
	GetOrder(orderID uuid.UUID) (*model.Order, error)
	ListUserOrders(userID uuid.UUID) ([]*model.Order, error)
	AttachPaymentIntent(orderID uuid.UUID, providerRef string) error
	MarkOrderPaid(orderID uuid.UUID, result model.PaymentResult) (*model.Order, error)
	MarkOrderDelivered(orderID uuid.UUID) error
}

func NewOrderService(uow model.UnitOfWork, repos model.RepositoryProvider, dispatcher EventDispatcher) OrderService {
	return &orderService{uow: uow, repos: repos, dispatcher: dispatcher}
}

type orderService struct {
	uow        model.UnitOfWork
	repos      model.RepositoryProvider
	dispatcher EventDispatcher
}

// CreateOrder snapshots the identity's cart into an immutable order and
// clears the cart, both inside one transaction. Preconditions are checked
// in a fixed sequence; the first failure wins.
func (s *orderService) CreateOrder(identity model.Identity) (*model.Order, error) {
	if !identity.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	cart, err := s.repos.Carts().FindByIdentity(identity)
	if errors.Is(err, model.ErrCartNotFound) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	user, err := s.repos.Users().Find(identity.UserID)
	if err != nil {
		return nil, err
	}
	if user.Address == nil {
		return nil, ErrMissingShippingAddress
	}
	if user.PaymentMethod == "" {
		return nil, ErrMissingPaymentMethod
	}

	orderID, err := s.repos.Orders().NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	lines := make([]model.OrderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, model.OrderLine{
			OrderID:   orderID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Slug:      item.Slug,
			Image:     item.Image,
			Price:     item.Price,
			Qty:       item.Qty,
		})
	}

	order := &model.Order{
		ID:              orderID,
		UserID:          user.ID,
		ShippingAddress: *user.Address,
		PaymentMethod:   user.PaymentMethod,
		Totals:          cart.Totals,
		Lines:           lines,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.uow.Execute(func(r model.RepositoryProvider) error {
		if err := r.Orders().Create(order); err != nil {
			return err
		}

		cart.Items = nil
		cart.Totals = model.ZeroTotals()
		cart.Version++
		cart.UpdatedAt = now
		return r.Carts().Update(cart)
	})
	if err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.OrderCreated{OrderID: orderID, UserID: user.ID, TotalPrice: order.Totals.TotalPrice})
	return order, nil
}

func (s *orderService) GetOrder(orderID uuid.UUID) (*model.Order, error) {
	return s.repos.Orders().Find(orderID)
}

func (s *orderService) ListUserOrders(userID uuid.UUID) ([]*model.Order, error) {
	return s.repos.Orders().FindByUser(userID)
}

func (s *orderService) AttachPaymentIntent(orderID uuid.UUID, providerRef string) error {
	order, err := s.repos.Orders().Find(orderID)
	if err != nil {
		return err
	}
	if order.IsPaid {
		return model.ErrOrderAlreadyPaid
	}

	order.PaymentIntentID = providerRef
	return s.updateOrder(order)
}

// MarkOrderPaid transitions an order from Unpaid to Paid and decrements the
// stock of every ordered product exactly once. A second call for the same
// order fails with ErrOrderAlreadyPaid and changes nothing.
func (s *orderService) MarkOrderPaid(orderID uuid.UUID, result model.PaymentResult) (*model.Order, error) {
	var order *model.Order

	err := s.uow.Execute(func(r model.RepositoryProvider) error {
		var err error
		order, err = r.Orders().Find(orderID)
		if err != nil {
			return err
		}
		if order.IsPaid {
			return model.ErrOrderAlreadyPaid
		}

		// Hard, authoritative decrement. Overselling past zero inside
		// the soft-check window is an accepted race, so there is no
		// floor check here.
		for _, line := range order.Lines {
			if err := r.Products().DecrementStock(line.ProductID, line.Qty); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		order.IsPaid = true
		order.PaidAt = &now
		order.PaymentResult = &result
		order.Version++
		order.UpdatedAt = now
		return r.Orders().Update(order)
	})
	if err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.OrderPaid{OrderID: orderID, TransactionID: result.TransactionID, AmountPaid: result.AmountPaid})
	return order, nil
}

func (s *orderService) MarkOrderDelivered(orderID uuid.UUID) error {
	order, err := s.repos.Orders().Find(orderID)
	if err != nil {
		return err
	}
	if !order.IsPaid {
		return model.ErrOrderNotPaid
	}

	now := time.Now().UTC()
	order.IsDelivered = true
	order.DeliveredAt = &now
	if err := s.updateOrder(order); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.OrderDelivered{OrderID: orderID})
	return nil
}

func (s *orderService) updateOrder(order *model.Order) error {
	order.Version++
	order.UpdatedAt = time.Now().UTC()
	return s.repos.Orders().Update(order)
}
