// Package service holds outbound integrations used by handlers. Publisher
// sends favorites events to RabbitMQ.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/venuehub/venuehub/internal/queue"
)

// ErrNoBroker is returned when the publisher has no broker URL configured.
var ErrNoBroker = errors.New("rabbitmq: no broker configured")

// Publisher dials the broker for each message.
type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// PublishFavoritesSaved sends ev to the favorites.saved queue as a persistent
// message. Errors are logged and returned; callers treat them as non-fatal.
func (p *Publisher) PublishFavoritesSaved(ctx context.Context, ev queue.FavoritesSavedEvent) error {
	if p == nil || p.url == "" {
		return ErrNoBroker
	}
	pub, err := newPublishing(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(3 * time.Second)})
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.FavoritesSavedQueue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}
	if err := ch.PublishWithContext(ctx, "", queue.FavoritesSavedQueue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

func newPublishing(ev queue.FavoritesSavedEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}
