package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/parking-console/internal/logger"
)

// Publisher dials the broker for every event.  Console mutations are rare
// enough that a long-lived channel is not worth its reconnect handling.
type Publisher struct {
	url string
	log *logger.Log
}

func NewPublisher(url string, log *logger.Log) *Publisher {
	if log == nil {
		log = logger.Discard()
	}
	return &Publisher{url: url, log: log.WithEntryName("audit-publisher")}
}

// Publish sends ev to AuditQueue as a persistent JSON message.  Errors are
// logged and returned; callers are free to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev AuditEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.WithErr(err).Warn("marshal audit event failed")
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.WithErr(err).Warn("dial broker failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.WithErr(err).Warn("open channel failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(AuditQueue, true, false, false, false, nil); err != nil {
		p.log.WithErr(err).Warn("declare audit queue failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Kind,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", AuditQueue, false, false, pub); err != nil {
		p.log.WithErr(err).Warn("publish audit event failed")
		return err
	}
	p.log.WithField("kind", ev.Kind).WithField("subject", ev.Subject).Debug("audit event published")
	return nil
}
