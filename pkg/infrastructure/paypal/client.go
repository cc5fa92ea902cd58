// Package paypal implements the outbound payment gateway against the
// PayPal Orders v2 REST API.
package paypal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/service"
)

type Client struct {
	baseURL    string
	clientID   string
	appSecret  string
	httpClient *http.Client
}

var _ service.PaymentGateway = &Client{}

func NewClient(baseURL, clientID, appSecret string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		clientID:   clientID,
		appSecret:  appSecret,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateOrder registers a capture intent for the given amount and returns
// the provider's order id.
func (c *Client) CreateOrder(amount decimal.Decimal) (string, error) {
	token, err := c.accessToken()
	if err != nil {
		return "", err
	}

	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]string{
					"currency_code": "USD",
					"value":         amount.StringFixed(2),
				},
			},
		},
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.post("/v2/checkout/orders", token, body, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", errors.New("paypal: create order response has no id")
	}
	return created.ID, nil
}

// CapturePayment captures an approved order and reports the outcome.
func (c *Client) CapturePayment(providerRef string) (*model.PaymentResult, error) {
	token, err := c.accessToken()
	if err != nil {
		return nil, err
	}

	var captured struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Payer  struct {
			EmailAddress string `json:"email_address"`
		} `json:"payer"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					Amount struct {
						Value string `json:"value"`
					} `json:"amount"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(providerRef))
	if err := c.post(path, token, nil, &captured); err != nil {
		return nil, err
	}

	amountPaid := decimal.Zero
	if len(captured.PurchaseUnits) > 0 && len(captured.PurchaseUnits[0].Payments.Captures) > 0 {
		amountPaid, err = decimal.NewFromString(captured.PurchaseUnits[0].Payments.Captures[0].Amount.Value)
		if err != nil {
			return nil, errors.Wrap(err, "paypal: parse captured amount")
		}
	}

	return &model.PaymentResult{
		TransactionID: captured.ID,
		Status:        captured.Status,
		PayerEmail:    captured.Payer.EmailAddress,
		AmountPaid:    amountPaid,
	}, nil
}

func (c *Client) accessToken() (string, error) {
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", errors.Wrap(err, "paypal: build token request")
	}
	req.SetBasicAuth(c.clientID, c.appSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "paypal: request access token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("paypal: token request failed with status %d", resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", errors.Wrap(err, "paypal: decode token response")
	}
	return token.AccessToken, nil
}

func (c *Client) post(path, token string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "paypal: encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "paypal: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "paypal: request "+path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message, _ := io.ReadAll(resp.Body)
		return errors.Errorf("paypal: %s failed with status %d: %s", path, resp.StatusCode, string(message))
	}

	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "paypal: decode response")
}
