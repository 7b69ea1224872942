package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeName is the topic exchange lifecycle events are published to.
const ExchangeName = "storefront.orders"

// AMQPDispatcher publishes lifecycle events to a RabbitMQ topic exchange.
// Routing key: order.status.<toStatus> (e.g. order.status.shipped).
type AMQPDispatcher struct {
	ch *amqp.Channel
}

// NewAMQPDispatcher declares the exchange and returns a dispatcher bound to
// the channel.
func NewAMQPDispatcher(ch *amqp.Channel) (*AMQPDispatcher, error) {
	err := ch.ExchangeDeclare(
		ExchangeName, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-delete
		false,        // internal
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPDispatcher{ch: ch}, nil
}

func (d *AMQPDispatcher) Notify(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}

	routingKey := fmt.Sprintf("order.status.%s", ev.ToStatus)

	return d.ch.PublishWithContext(ctx,
		ExchangeName, // exchange
		routingKey,   // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			MessageId:   ev.ID,
			Timestamp:   ev.OccurredAt,
			Body:        body,
		},
	)
}
