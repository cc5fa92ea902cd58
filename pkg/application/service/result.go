package service

import (
	"errors"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
	domainservice "github.com/akaBaytar/buyzio-ecommerce/pkg/domain/service"
)

// Reason is the machine-readable failure code callers branch on.
type Reason string

const (
	ReasonNone                      Reason = ""
	ReasonNotFound                  Reason = "not_found"
	ReasonInsufficientStock         Reason = "insufficient_stock"
	ReasonEmptyCart                 Reason = "empty_cart"
	ReasonMissingShippingAddress    Reason = "missing_shipping_address"
	ReasonMissingPaymentMethod      Reason = "missing_payment_method"
	ReasonAlreadyPaid               Reason = "already_paid"
	ReasonOrderNotPaid              Reason = "order_not_paid"
	ReasonPaymentVerificationFailed Reason = "payment_verification_failed"
	ReasonValidationError           Reason = "validation_error"
	ReasonConflict                  Reason = "conflict"
	ReasonUnauthorized              Reason = "unauthorized"
	ReasonInternalError             Reason = "internal_error"
)

// Result is how every public storefront operation reports its outcome.
// Domain errors never cross this boundary; callers get a reason and a
// user-facing message, plus a redirect hint where the UI can send the
// buyer to fix a failed checkout precondition.
type Result struct {
	Success    bool   `json:"success"`
	Reason     Reason `json:"reason,omitempty"`
	Message    string `json:"message"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

func succeeded(message string) Result {
	return Result{Success: true, Message: message}
}

func succeededWithRedirect(message, redirectTo string) Result {
	return Result{Success: true, Message: message, RedirectTo: redirectTo}
}

func failed(err error) Result {
	reason, redirectTo := classify(err)

	message := err.Error()
	if reason == ReasonInternalError {
		message = "Something went wrong. Please try again."
	}

	return Result{Reason: reason, Message: message, RedirectTo: redirectTo}
}

func classify(err error) (Reason, string) {
	switch {
	case errors.Is(err, model.ErrProductNotFound),
		errors.Is(err, model.ErrCartNotFound),
		errors.Is(err, model.ErrCartItemNotFound),
		errors.Is(err, model.ErrOrderNotFound),
		errors.Is(err, model.ErrReviewNotFound),
		errors.Is(err, model.ErrUserNotFound):
		return ReasonNotFound, ""
	case errors.Is(err, model.ErrInsufficientStock):
		return ReasonInsufficientStock, ""
	case errors.Is(err, domainservice.ErrEmptyCart):
		return ReasonEmptyCart, "/cart"
	case errors.Is(err, domainservice.ErrMissingShippingAddress):
		return ReasonMissingShippingAddress, "/shipping"
	case errors.Is(err, domainservice.ErrMissingPaymentMethod):
		return ReasonMissingPaymentMethod, "/payment"
	case errors.Is(err, model.ErrOrderAlreadyPaid):
		return ReasonAlreadyPaid, ""
	case errors.Is(err, model.ErrOrderNotPaid):
		return ReasonOrderNotPaid, ""
	case errors.Is(err, domainservice.ErrPaymentVerificationFailed):
		return ReasonPaymentVerificationFailed, ""
	case errors.Is(err, domainservice.ErrInvalidQuantity),
		errors.Is(err, domainservice.ErrInvalidRating),
		errors.Is(err, domainservice.ErrNegativePrice),
		errors.Is(err, domainservice.ErrInvalidStockQuantity),
		errors.Is(err, domainservice.ErrPasswordTooShort),
		errors.Is(err, domainservice.ErrIncompleteAddress),
		errors.Is(err, domainservice.ErrUnknownPaymentMethod):
		return ReasonValidationError, ""
	case errors.Is(err, model.ErrEmailTaken),
		errors.Is(err, model.ErrProductSlugTaken),
		errors.Is(err, model.ErrOptimisticLock):
		return ReasonConflict, ""
	case errors.Is(err, domainservice.ErrNotAuthenticated),
		errors.Is(err, domainservice.ErrInvalidCredentials),
		errors.Is(err, domainservice.ErrNotReviewAuthor):
		return ReasonUnauthorized, ""
	default:
		return ReasonInternalError, ""
	}
}
