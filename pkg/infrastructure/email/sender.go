package email

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/service"
)

// Sender delivers order confirmation emails over SMTP. With no SMTP
// credentials configured it degrades to logging only, so checkout keeps
// working in development.
type Sender struct {
	dialer *gomail.Dialer
	from   string
}

var _ service.ConfirmationSender = &Sender{}

func NewSender(host string, port int, user, pass, from string) *Sender {
	if host == "" || user == "" {
		log.Warn("SMTP is not configured, order confirmation emails are disabled")
		return &Sender{from: from}
	}
	return &Sender{dialer: gomail.NewDialer(host, port, user, pass), from: from}
}

func (s *Sender) SendOrderConfirmation(order *model.Order) error {
	if s.dialer == nil {
		log.WithField("orderID", order.ID).Info("skipping order confirmation email, SMTP disabled")
		return nil
	}

	to := ""
	if order.PaymentResult != nil {
		to = order.PaymentResult.PayerEmail
	}
	if to == "" {
		log.WithField("orderID", order.ID).Warn("no recipient for order confirmation email")
		return nil
	}

	message := gomail.NewMessage()
	message.SetHeader("From", s.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", fmt.Sprintf("Order confirmation %s", order.ID))
	message.SetBody("text/html", buildReceipt(order))

	if err := s.dialer.DialAndSend(message); err != nil {
		log.WithError(err).WithField("orderID", order.ID).Error("failed to send order confirmation email")
		return err
	}
	return nil
}

func buildReceipt(order *model.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>Thanks for your purchase!</h2>")
	fmt.Fprintf(&b, "<p>Order %s</p><ul>", order.ID)
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "<li>%s &times; %d — %s</li>", line.Name, line.Qty, line.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "</ul>")
	fmt.Fprintf(&b, "<p>Items: %s</p>", order.Totals.ItemsPrice.StringFixed(2))
	fmt.Fprintf(&b, "<p>Tax: %s</p>", order.Totals.TaxPrice.StringFixed(2))
	fmt.Fprintf(&b, "<p>Shipping: %s</p>", order.Totals.ShippingPrice.StringFixed(2))
	fmt.Fprintf(&b, "<p><strong>Total: %s</strong></p>", order.Totals.TotalPrice.StringFixed(2))
	return b.String()
}
