package transport

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/application/service"
	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
	domainservice "github.com/akaBaytar/buyzio-ecommerce/pkg/domain/service"
)

const sessionCartCookie = "sessionCartId"

type Server struct {
	storefront          *service.Storefront
	webhookSecret       string
	latestProductsLimit int
}

func NewServer(storefront *service.Storefront, webhookSecret string, latestProductsLimit int) *Server {
	return &Server{
		storefront:          storefront,
		webhookSecret:       webhookSecret,
		latestProductsLimit: latestProductsLimit,
	}
}

// identityFromRequest builds the principal for cart operations. The user id
// is supplied by the authenticating reverse proxy; the anonymous cart id
// travels in a cookie the storefront UI sets on first visit.
func identityFromRequest(r *http.Request) model.Identity {
	identity := model.Identity{}
	if header := r.Header.Get("X-User-Id"); header != "" {
		if userID, err := uuid.Parse(header); err == nil {
			identity.UserID = userID
		}
	}
	if cookie, err := r.Cookie(sessionCartCookie); err == nil {
		identity.SessionCartID = cookie.Value
	}
	return identity
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	cart, result := s.storefront.GetUserCart(identityFromRequest(r))
	writeResult(w, result, cart)
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID uuid.UUID `json:"productId"`
		Qty       int       `json:"qty"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Qty == 0 {
		body.Qty = 1
	}

	cart, result := s.storefront.AddToCart(identityFromRequest(r), body.ProductID, body.Qty)
	writeResult(w, result, cart)
}

func (s *Server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	cart, result := s.storefront.RemoveFromCart(identityFromRequest(r), productID)
	writeResult(w, result, cart)
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	order, result := s.storefront.PlaceOrder(identityFromRequest(r))
	writeResult(w, result, order)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	identity := identityFromRequest(r)
	if !identity.Authenticated() {
		writeResult(w, service.Result{Reason: service.ReasonUnauthorized, Message: "Sign in to see your orders."}, nil)
		return
	}

	orders, result := s.storefront.ListUserOrders(identity.UserID)
	writeResult(w, result, orders)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "ID")
	if !ok {
		return
	}

	order, result := s.storefront.GetOrder(orderID)
	writeResult(w, result, order)
}

func (s *Server) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "ID")
	if !ok {
		return
	}

	providerRef, result := s.storefront.CreatePaymentIntent(orderID)
	writeResult(w, result, map[string]string{"providerOrderId": providerRef})
}

func (s *Server) confirmPayment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "ID")
	if !ok {
		return
	}

	var body struct {
		ProviderOrderID string `json:"providerOrderId"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	writeResult(w, s.storefront.ConfirmPayment(orderID, body.ProviderOrderID), nil)
}

func (s *Server) deliverOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "ID")
	if !ok {
		return
	}

	writeResult(w, s.storefront.DeliverOrder(orderID), nil)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string          `json:"name"`
		Slug        string          `json:"slug"`
		Category    string          `json:"category"`
		Brand       string          `json:"brand"`
		Description string          `json:"description"`
		Images      []string        `json:"images"`
		Price       decimal.Decimal `json:"price"`
		Stock       int             `json:"stock"`
		IsFeatured  bool            `json:"isFeatured"`
		Banner      string          `json:"banner"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	product, result := s.storefront.CreateProduct(domainservice.NewProductInput{
		Name:        body.Name,
		Slug:        body.Slug,
		Category:    body.Category,
		Brand:       body.Brand,
		Description: body.Description,
		Images:      body.Images,
		Price:       body.Price,
		Stock:       body.Stock,
		IsFeatured:  body.IsFeatured,
		Banner:      body.Banner,
	})
	writeResult(w, result, product)
}

func (s *Server) listLatestProducts(w http.ResponseWriter, r *http.Request) {
	products, result := s.storefront.ListLatestProducts(s.latestProductsLimit)
	writeResult(w, result, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	product, result := s.storefront.GetProductBySlug(mux.Vars(r)["slug"])
	writeResult(w, result, product)
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "ID")
	if !ok {
		return
	}

	reviews, result := s.storefront.ListProductReviews(productID)
	writeResult(w, result, reviews)
}

func (s *Server) submitReview(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "ID")
	if !ok {
		return
	}

	identity := identityFromRequest(r)
	if !identity.Authenticated() {
		writeResult(w, service.Result{Reason: service.ReasonUnauthorized, Message: "Sign in to leave a review."}, nil)
		return
	}

	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Rating      int    `json:"rating"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	writeResult(w, s.storefront.SubmitReview(identity.UserID, productID, body.Title, body.Description, body.Rating), nil)
}

func (s *Server) removeReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "ID")
	if !ok {
		return
	}

	identity := identityFromRequest(r)
	if !identity.Authenticated() {
		writeResult(w, service.Result{Reason: service.ReasonUnauthorized, Message: "Sign in to remove a review."}, nil)
		return
	}

	writeResult(w, s.storefront.RemoveReview(identity.UserID, reviewID), nil)
}

func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	user, result := s.storefront.RegisterUser(body.Name, body.Email, body.Password)
	writeResult(w, result, user)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	identity := identityFromRequest(r)
	user, result := s.storefront.SignIn(body.Email, body.Password, identity.SessionCartID)
	writeResult(w, result, user)
}

func (s *Server) updateAddress(w http.ResponseWriter, r *http.Request) {
	identity := identityFromRequest(r)
	if !identity.Authenticated() {
		writeResult(w, service.Result{Reason: service.ReasonUnauthorized, Message: "Sign in to save an address."}, nil)
		return
	}

	var body model.ShippingAddress
	if !decodeBody(w, r, &body) {
		return
	}

	writeResult(w, s.storefront.UpdateShippingAddress(identity.UserID, body), nil)
}

func (s *Server) updatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	identity := identityFromRequest(r)
	if !identity.Authenticated() {
		writeResult(w, service.Result{Reason: service.ReasonUnauthorized, Message: "Sign in to choose a payment method."}, nil)
		return
	}

	var body struct {
		PaymentMethod string `json:"paymentMethod"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	writeResult(w, s.storefront.UpdatePaymentMethod(identity.UserID, body.PaymentMethod), nil)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeResult(w, service.Result{Reason: service.ReasonValidationError, Message: "Malformed request body."}, nil)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		writeResult(w, service.Result{Reason: service.ReasonValidationError, Message: "Malformed identifier."}, nil)
		return uuid.Nil, false
	}
	return id, true
}
