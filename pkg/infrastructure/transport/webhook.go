package transport

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/application/service"
	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
	domainservice "github.com/akaBaytar/buyzio-ecommerce/pkg/domain/service"
)

const chargeSucceededEvent = "charge.succeeded"

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID             string `json:"id"`
			Amount         int64  `json:"amount"`
			BillingDetails struct {
				Email string `json:"email"`
			} `json:"billing_details"`
			Metadata struct {
				OrderID string `json:"orderId"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// stripeWebhook is the asynchronous payment path. Only charge.succeeded
// events change state; everything else is acknowledged as a no-op.
func (s *Server) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}

	if s.webhookSecret != "" {
		if !verifySignature(payload, r.Header.Get("Stripe-Signature"), s.webhookSecret, time.Now()) {
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		http.Error(w, "malformed event", http.StatusBadRequest)
		return
	}

	if event.Type != chargeSucceededEvent {
		writeResult(w, service.Result{Success: true, Message: "Order is not charged."}, nil)
		return
	}

	orderID, err := uuid.Parse(event.Data.Object.Metadata.OrderID)
	if err != nil {
		http.Error(w, "event has no valid order id", http.StatusBadRequest)
		return
	}

	// The provider reports the amount in minor units; translate before
	// any comparison against the order total.
	amountPaid := decimal.NewFromInt(event.Data.Object.Amount).Div(decimal.NewFromInt(100)).Round(2)

	result := s.storefront.RecordChargeSucceeded(orderID, model.PaymentResult{
		TransactionID: event.Data.Object.ID,
		Status:        domainservice.PaymentStatusCompleted,
		PayerEmail:    event.Data.Object.BillingDetails.Email,
		AmountPaid:    amountPaid,
	})
	if !result.Success {
		log.WithFields(log.Fields{"orderID": orderID, "reason": result.Reason}).Warn("webhook charge rejected")
	}
	writeResult(w, result, nil)
}

// signatureTolerance bounds how old a signed timestamp may be; outside the
// window a captured payload cannot be replayed.
const signatureTolerance = 5 * time.Minute

// verifySignature checks the Stripe-Signature header: an HMAC-SHA256 of
// "<timestamp>.<payload>" keyed with the endpoint secret, with the
// timestamp required to fall within the tolerance window around now.
func verifySignature(payload []byte, header, secret string, now time.Time) bool {
	var timestamp, signature string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signature = value
		}
	}
	if timestamp == "" || signature == "" {
		return false
	}

	signedAt, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	if age := now.Sub(time.Unix(signedAt, 0)); age > signatureTolerance || age < -signatureTolerance {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
