package transport

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/application/service"
)

func Router(server *Server) http.Handler {
	r := mux.NewRouter()
	s := r.PathPrefix("/api/v1").Subrouter()

	s.HandleFunc("/cart", server.getCart).Methods(http.MethodGet)
	s.HandleFunc("/cart/items", server.addToCart).Methods(http.MethodPost)
	s.HandleFunc("/cart/items/{productID}", server.removeFromCart).Methods(http.MethodDelete)

	s.HandleFunc("/orders", server.placeOrder).Methods(http.MethodPost)
	s.HandleFunc("/orders", server.listOrders).Methods(http.MethodGet)
	s.HandleFunc("/orders/{ID}", server.getOrder).Methods(http.MethodGet)
	s.HandleFunc("/orders/{ID}/payment-intent", server.createPaymentIntent).Methods(http.MethodPost)
	s.HandleFunc("/orders/{ID}/confirm", server.confirmPayment).Methods(http.MethodPost)
	s.HandleFunc("/orders/{ID}/deliver", server.deliverOrder).Methods(http.MethodPost)

	s.HandleFunc("/products", server.createProduct).Methods(http.MethodPost)
	s.HandleFunc("/products/latest", server.listLatestProducts).Methods(http.MethodGet)
	s.HandleFunc("/products/{slug}", server.getProduct).Methods(http.MethodGet)
	s.HandleFunc("/products/{ID}/reviews", server.listReviews).Methods(http.MethodGet)
	s.HandleFunc("/products/{ID}/reviews", server.submitReview).Methods(http.MethodPost)
	s.HandleFunc("/reviews/{ID}", server.removeReview).Methods(http.MethodDelete)

	s.HandleFunc("/users", server.registerUser).Methods(http.MethodPost)
	s.HandleFunc("/users/sign-in", server.signIn).Methods(http.MethodPost)
	s.HandleFunc("/users/address", server.updateAddress).Methods(http.MethodPut)
	s.HandleFunc("/users/payment-method", server.updatePaymentMethod).Methods(http.MethodPut)

	s.HandleFunc("/webhooks/stripe", server.stripeWebhook).Methods(http.MethodPost)

	return logMiddleware(r)
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}

type response struct {
	service.Result
	Data interface{} `json:"data,omitempty"`
}

func writeResult(w http.ResponseWriter, result service.Result, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(result))
	if err := json.NewEncoder(w).Encode(response{Result: result, Data: data}); err != nil {
		log.WithError(err).Error("write response")
	}
}

func statusFor(result service.Result) int {
	if result.Success {
		return http.StatusOK
	}

	switch result.Reason {
	case service.ReasonNotFound:
		return http.StatusNotFound
	case service.ReasonConflict, service.ReasonAlreadyPaid:
		return http.StatusConflict
	case service.ReasonUnauthorized:
		return http.StatusUnauthorized
	case service.ReasonInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}
