package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
)

type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	DatabaseDSN string `envconfig:"DATABASE_DSN" required:"true"`
	AMQPURL     string `envconfig:"AMQP_URL"`

	TaxRate               float64 `envconfig:"TAX_RATE" default:"0.18"`
	FreeShippingThreshold float64 `envconfig:"FREE_SHIPPING_THRESHOLD" default:"100"`
	FlatShippingFee       float64 `envconfig:"FLAT_SHIPPING_FEE" default:"12.99"`

	PaymentMethods      []string `envconfig:"PAYMENT_METHODS" default:"Credit Card,Paypal,Bank Transfer,Cash on Delivery"`
	LatestProductsLimit int      `envconfig:"LATEST_PRODUCTS_LIMIT" default:"4"`

	PayPalAPIURL    string `envconfig:"PAYPAL_API_URL" default:"https://api-m.sandbox.paypal.com"`
	PayPalClientID  string `envconfig:"PAYPAL_CLIENT_ID"`
	PayPalAppSecret string `envconfig:"PAYPAL_APP_SECRET"`

	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`

	SMTPHost    string `envconfig:"SMTP_HOST"`
	SMTPPort    int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser    string `envconfig:"SMTP_USER"`
	SMTPPass    string `envconfig:"SMTP_PASS"`
	SenderEmail string `envconfig:"SENDER_EMAIL" default:"onboarding@resend.dev"`
}

func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("buyzio", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) PricingPolicy() model.PricingPolicy {
	return model.PricingPolicy{
		TaxRate:               decimal.NewFromFloat(c.TaxRate),
		FreeShippingThreshold: decimal.NewFromFloat(c.FreeShippingThreshold),
		FlatShippingFee:       decimal.NewFromFloat(c.FlatShippingFee),
	}
}
