package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/service"
)

const exchangeName = "buyzio.events"

// Dispatcher publishes domain events to a topic exchange, routing key set
// to the event type. Events are best-effort: publish failures are logged
// and never surfaced to the domain.
type Dispatcher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

var _ service.EventDispatcher = &Dispatcher{}

func NewDispatcher(amqpURL string) (*Dispatcher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := channel.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Dispatcher{conn: conn, channel: channel}, nil
}

// Close releases the channel and the underlying connection.
func (d *Dispatcher) Close() error {
	if err := d.channel.Close(); err != nil {
		_ = d.conn.Close()
		return err
	}
	return d.conn.Close()
}

func (d *Dispatcher) Dispatch(event service.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).WithField("event", event.Type()).Error("failed to encode event")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = d.channel.PublishWithContext(ctx, exchangeName, event.Type(), false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now().UTC(),
		Body:        body,
	})
	if err != nil {
		log.WithError(err).WithField("event", event.Type()).Error("failed to publish event")
	}
	return err
}

// NopDispatcher is used when no broker is configured.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(event service.Event) error {
	log.WithField("event", event.Type()).Debug("event dropped, no broker configured")
	return nil
}
