package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ac-opensource/MarkerBuilder/module/core/domain"
	"github.com/ac-opensource/MarkerBuilder/module/core/internal/repository/publisher"
)

var _ publisher.CircleEventPublisher = (*CirclePublisher)(nil)

const (
	ExchangeName = "geofence.events"
	QueueName    = "circle_events"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type CirclePublisher struct {
	ch channel
}

func NewCirclePublisher(conn *amqp.Connection) (*CirclePublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := Declare(ch); err != nil {
		return nil, err
	}

	return &CirclePublisher{ch: ch}, nil
}

// Declare sets up the fanout exchange and the durable queue bound to it.
func Declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

type eventMessage struct {
	Event     domain.CircleEventType `json:"event"`
	CircleID  int64                  `json:"circle_id"`
	Kind      domain.CircleKind      `json:"kind"`
	Center    eventLocation          `json:"center"`
	Radius    float64                `json:"radius"`
	MinRadius float64                `json:"min_radius"`
	MaxRadius float64                `json:"max_radius"`
	Timestamp int64                  `json:"timestamp"`
}

type eventLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p *CirclePublisher) PublishEvent(ctx context.Context, event *domain.CircleEvent) error {
	c := event.Circle
	msg := eventMessage{
		Event:    event.Event,
		CircleID: c.ID,
		Kind:     c.Kind,
		Center: eventLocation{
			Latitude:  c.Center.Lat,
			Longitude: c.Center.Lon,
		},
		Radius:    c.Radius,
		MinRadius: c.MinRadius,
		MaxRadius: c.MaxRadius,
		Timestamp: event.Timestamp,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
