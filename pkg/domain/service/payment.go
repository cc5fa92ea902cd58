package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
)

var ErrPaymentVerificationFailed = errors.New("payment verification failed")

// PaymentStatusCompleted is the provider's terminal success sentinel.
const PaymentStatusCompleted = "COMPLETED"

// PaymentGateway is the outbound payment-provider client. A failed call
// aborts the surrounding operation without any state change.
type PaymentGateway interface {
	CreateOrder(amount decimal.Decimal) (string, error)
	CapturePayment(providerRef string) (*model.PaymentResult, error)
}

// ConfirmationSender delivers the order confirmation email. Delivery is
// fire-and-forget: a send failure never rolls back the payment.
type ConfirmationSender interface {
	SendOrderConfirmation(order *model.Order) error
}

type PaymentService interface {
	// CreateIntent registers a provider-side payment intent for the order
	// total and stores the returned reference on the order.
	CreateIntent(orderID uuid.UUID) (string, error)
	// ConfirmInteractive is the buyer-present path: capture the approved
	// intent with the provider, verify its report, then mark the order paid.
	ConfirmInteractive(orderID uuid.UUID, providerRef string) (*model.Order, error)
	// HandleChargeSucceeded is the asynchronous webhook path. A retry for
	// an order that is already paid is acknowledged as a no-op.
	HandleChargeSucceeded(orderID uuid.UUID, result model.PaymentResult) error
}

func NewPaymentService(orders OrderService, gateway PaymentGateway, mailer ConfirmationSender) PaymentService {
	return &paymentService{orders: orders, gateway: gateway, mailer: mailer}
}

type paymentService struct {
	orders  OrderService
	gateway PaymentGateway
	mailer  ConfirmationSender
}

func (s *paymentService) CreateIntent(orderID uuid.UUID) (string, error) {
	order, err := s.orders.GetOrder(orderID)
	if err != nil {
		return "", err
	}
	if order.IsPaid {
		return "", model.ErrOrderAlreadyPaid
	}

	providerRef, err := s.gateway.CreateOrder(order.Totals.TotalPrice)
	if err != nil {
		return "", err
	}

	if err := s.orders.AttachPaymentIntent(orderID, providerRef); err != nil {
		return "", err
	}
	return providerRef, nil
}

func (s *paymentService) ConfirmInteractive(orderID uuid.UUID, providerRef string) (*model.Order, error) {
	order, err := s.orders.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return nil, model.ErrOrderAlreadyPaid
	}
	if order.PaymentIntentID == "" || order.PaymentIntentID != providerRef {
		return nil, ErrPaymentVerificationFailed
	}

	result, err := s.gateway.CapturePayment(providerRef)
	if err != nil {
		return nil, err
	}
	if err := verifyResult(order, *result); err != nil {
		return nil, err
	}

	paid, err := s.orders.MarkOrderPaid(orderID, *result)
	if err != nil {
		return nil, err
	}

	s.sendConfirmation(paid)
	return paid, nil
}

func (s *paymentService) HandleChargeSucceeded(orderID uuid.UUID, result model.PaymentResult) error {
	order, err := s.orders.GetOrder(orderID)
	if err != nil {
		return err
	}
	if order.IsPaid {
		return nil
	}
	if err := verifyResult(order, result); err != nil {
		return err
	}

	paid, err := s.orders.MarkOrderPaid(orderID, result)
	if err != nil {
		return err
	}

	s.sendConfirmation(paid)
	return nil
}

// verifyResult is the verification rule shared by both entry paths: the
// reported status must be the terminal success code, the transaction id
// must match the reference stored when the intent was created, and the
// paid amount must match the order total.
func verifyResult(order *model.Order, result model.PaymentResult) error {
	if result.Status != PaymentStatusCompleted {
		return ErrPaymentVerificationFailed
	}
	if order.PaymentIntentID != "" && result.TransactionID != order.PaymentIntentID {
		return ErrPaymentVerificationFailed
	}
	if !result.AmountPaid.Equal(order.Totals.TotalPrice) {
		return ErrPaymentVerificationFailed
	}
	return nil
}

func (s *paymentService) sendConfirmation(order *model.Order) {
	if s.mailer == nil {
		return
	}
	_ = s.mailer.SendOrderConfirmation(order)
}
