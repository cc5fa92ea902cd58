package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
	domainservice "github.com/akaBaytar/buyzio-ecommerce/pkg/domain/service"
)

// Storefront is the application facade the transport layer talks to. Each
// operation delegates to a domain service and recovers every domain error
// into a structured Result.
type Storefront struct {
	carts    domainservice.CartService
	orders   domainservice.OrderService
	payments domainservice.PaymentService
	reviews  domainservice.ReviewService
	products domainservice.ProductService
	users    domainservice.UserService
}

func NewStorefront(
	carts domainservice.CartService,
	orders domainservice.OrderService,
	payments domainservice.PaymentService,
	reviews domainservice.ReviewService,
	products domainservice.ProductService,
	users domainservice.UserService,
) *Storefront {
	return &Storefront{
		carts:    carts,
		orders:   orders,
		payments: payments,
		reviews:  reviews,
		products: products,
		users:    users,
	}
}

func (s *Storefront) GetUserCart(identity model.Identity) (*model.Cart, Result) {
	cart, err := s.carts.GetCart(identity)
	if err != nil {
		return nil, failed(err)
	}
	return cart, succeeded("Cart fetched successfully.")
}

func (s *Storefront) AddToCart(identity model.Identity, productID uuid.UUID, qty int) (*model.Cart, Result) {
	cart, err := s.carts.AddItem(identity, productID, qty)
	if err != nil {
		return nil, failed(err)
	}
	return cart, succeeded("Product added to cart successfully.")
}

func (s *Storefront) RemoveFromCart(identity model.Identity, productID uuid.UUID) (*model.Cart, Result) {
	cart, err := s.carts.RemoveItem(identity, productID)
	if err != nil {
		return nil, failed(err)
	}
	return cart, succeeded("Product removed from cart successfully.")
}

func (s *Storefront) TransferCart(sessionCartID string, userID uuid.UUID) Result {
	if err := s.carts.TransferCart(sessionCartID, userID); err != nil {
		return failed(err)
	}
	return succeeded("Cart transferred successfully.")
}

// PlaceOrder runs the checkout precondition chain; a failed precondition
// comes back with the redirect hint the UI uses to route the buyer.
func (s *Storefront) PlaceOrder(identity model.Identity) (*model.Order, Result) {
	order, err := s.orders.CreateOrder(identity)
	if err != nil {
		return nil, failed(err)
	}
	return order, succeededWithRedirect("Order created successfully.", fmt.Sprintf("/orders/%s", order.ID))
}

func (s *Storefront) GetOrder(orderID uuid.UUID) (*model.Order, Result) {
	order, err := s.orders.GetOrder(orderID)
	if err != nil {
		return nil, failed(err)
	}
	return order, succeeded("Order fetched successfully.")
}

func (s *Storefront) ListUserOrders(userID uuid.UUID) ([]*model.Order, Result) {
	orders, err := s.orders.ListUserOrders(userID)
	if err != nil {
		return nil, failed(err)
	}
	return orders, succeeded("Orders fetched successfully.")
}

func (s *Storefront) CreatePaymentIntent(orderID uuid.UUID) (string, Result) {
	providerRef, err := s.payments.CreateIntent(orderID)
	if err != nil {
		return "", failed(err)
	}
	return providerRef, succeeded("Payment intent created successfully.")
}

func (s *Storefront) ConfirmPayment(orderID uuid.UUID, providerRef string) Result {
	if _, err := s.payments.ConfirmInteractive(orderID, providerRef); err != nil {
		return failed(err)
	}
	return succeeded("Order paid successfully.")
}

func (s *Storefront) RecordChargeSucceeded(orderID uuid.UUID, result model.PaymentResult) Result {
	if err := s.payments.HandleChargeSucceeded(orderID, result); err != nil {
		return failed(err)
	}
	return succeeded("Order updated as paid successfully.")
}

func (s *Storefront) DeliverOrder(orderID uuid.UUID) Result {
	if err := s.orders.MarkOrderDelivered(orderID); err != nil {
		return failed(err)
	}
	return succeeded("Order marked as delivered successfully.")
}

func (s *Storefront) SubmitReview(userID, productID uuid.UUID, title, description string, rating int) Result {
	if _, err := s.reviews.SubmitReview(userID, productID, title, description, rating); err != nil {
		return failed(err)
	}
	return succeeded("Review submitted successfully.")
}

func (s *Storefront) ListProductReviews(productID uuid.UUID) ([]*model.Review, Result) {
	reviews, err := s.reviews.ListProductReviews(productID)
	if err != nil {
		return nil, failed(err)
	}
	return reviews, succeeded("Reviews fetched successfully.")
}

func (s *Storefront) RemoveReview(userID, reviewID uuid.UUID) Result {
	if err := s.reviews.RemoveReview(userID, reviewID); err != nil {
		return failed(err)
	}
	return succeeded("Review removed successfully.")
}

func (s *Storefront) CreateProduct(input domainservice.NewProductInput) (*model.Product, Result) {
	product, err := s.products.CreateProduct(input)
	if err != nil {
		return nil, failed(err)
	}
	return product, succeeded("Product created successfully.")
}

func (s *Storefront) ListLatestProducts(limit int) ([]*model.Product, Result) {
	products, err := s.products.ListLatest(limit)
	if err != nil {
		return nil, failed(err)
	}
	return products, succeeded("Products fetched successfully.")
}

func (s *Storefront) GetProductBySlug(slug string) (*model.Product, Result) {
	product, err := s.products.FindBySlug(slug)
	if err != nil {
		return nil, failed(err)
	}
	return product, succeeded("Product fetched successfully.")
}

func (s *Storefront) RegisterUser(name, email, password string) (*model.User, Result) {
	user, err := s.users.RegisterUser(name, email, password)
	if err != nil {
		return nil, failed(err)
	}
	return user, succeeded("Registered successfully.")
}

func (s *Storefront) SignIn(email, password, sessionCartID string) (*model.User, Result) {
	user, err := s.users.Authenticate(email, password)
	if err != nil {
		return nil, failed(err)
	}

	// Re-own the anonymous cart; a merge failure must not block sign-in.
	if sessionCartID != "" {
		_ = s.carts.TransferCart(sessionCartID, user.ID)
	}
	return user, succeeded("Signed in successfully.")
}

func (s *Storefront) UpdateShippingAddress(userID uuid.UUID, address model.ShippingAddress) Result {
	if err := s.users.UpdateShippingAddress(userID, address); err != nil {
		return failed(err)
	}
	return succeeded("Address saved successfully.")
}

func (s *Storefront) UpdatePaymentMethod(userID uuid.UUID, method string) Result {
	if err := s.users.UpdatePaymentMethod(userID, method); err != nil {
		return failed(err)
	}
	return succeeded("Payment method saved successfully.")
}
