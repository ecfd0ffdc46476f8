package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/vberezan/sport-booking-api/internal/domain"
	"github.com/vberezan/sport-booking-api/internal/mailer"
)

// Channel is one delivery medium for a notification. Channel errors are
// logged by the dispatcher and never propagated to the caller that
// triggered the notification.
type Channel interface {
	Name() string
	Send(ctx context.Context, notification *domain.Notification, customer *domain.Customer) error
}

type LogChannel struct {
	logger *slog.Logger
}

func NewLogChannel(logger *slog.Logger) *LogChannel {
	return &LogChannel{
		logger: logger,
	}
}

func (c *LogChannel) Name() string {
	return "log"
}

func (c *LogChannel) Send(_ context.Context, n *domain.Notification, customer *domain.Customer) error {
	c.logger.Info("notification",
		"customer", customer.FullName(),
		"type", n.Type,
		"message", n.Message,
	)

	return nil
}

type EmailChannel struct {
	mailer mailer.Mailer
}

func NewEmailChannel(m mailer.Mailer) *EmailChannel {
	return &EmailChannel{
		mailer: m,
	}
}

func (c *EmailChannel) Name() string {
	return "email"
}

func (c *EmailChannel) Send(_ context.Context, n *domain.Notification, customer *domain.Customer) error {
	if customer.Email == "" {
		return fmt.Errorf("customer %d has no email", customer.ID)
	}

	subject := fmt.Sprintf("[SportBooking] %s", n.Type)

	return c.mailer.Send(customer.Email, subject, n.Message)
}

// BrokerChannel publishes notifications to a durable RabbitMQ queue so
// external consumers (SMS gateway, push service) can pick them up. Dialing
// happens per publish; a broker outage degrades to a logged error without
// holding a connection hostage.
type BrokerChannel struct {
	url   string
	queue string
}

func NewBrokerChannel(url, queue string) *BrokerChannel {
	return &BrokerChannel{
		url:   url,
		queue: queue,
	}
}

func (c *BrokerChannel) Name() string {
	return "broker"
}

type brokerMessage struct {
	NotificationID int       `json:"notification_id"`
	CustomerID     int       `json:"customer_id"`
	CustomerEmail  string    `json:"customer_email"`
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	SentAt         time.Time `json:"sent_at"`
}

func (c *BrokerChannel) Send(ctx context.Context, n *domain.Notification, customer *domain.Customer) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	// Idempotent declare; durable so messages survive broker restarts.
	_, err = ch.QueueDeclare(c.queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	body, err := json.Marshal(brokerMessage{
		NotificationID: n.ID,
		CustomerID:     customer.ID,
		CustomerEmail:  customer.Email,
		Type:           string(n.Type),
		Message:        n.Message,
		SentAt:         time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, "", c.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
