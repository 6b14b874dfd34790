// Package service holds glue that sits between handlers and external
// systems, currently the RabbitMQ event publisher.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/alexampersandria/ephemeride/internal/queue"
)

// Publisher emits domain events to RabbitMQ. Publishing is best effort:
// errors are logged and returned, and callers on the request path ignore
// them. An empty URL disables publishing entirely.
type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// PublishUserRegistered emits to the user.registered queue.
func (p *Publisher) PublishUserRegistered(ctx context.Context, event queue.UserRegisteredEvent) error {
	return p.publish(ctx, queue.UserRegisteredQueue, event)
}

// PublishEntryCreated emits to the entry.created queue.
func (p *Publisher) PublishEntryCreated(ctx context.Context, event queue.EntryCreatedEvent) error {
	return p.publish(ctx, queue.EntryCreatedQueue, event)
}

// publish dials the broker, declares the durable queue, and sends one
// persistent JSON message on the default exchange. The connection is
// per-publish; event volume here is a handful per user action.
func (p *Publisher) publish(ctx context.Context, queueName string, event any) error {
	if p == nil || p.url == "" {
		return nil
	}

	conn, err := amqp.Dial(p.url)
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

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
