package domain

import (
	"context"
	"time"
)

type NotificationType string

const (
	NotificationTypeReminder NotificationType = "reminder"
	NotificationTypePromo    NotificationType = "promo"
	NotificationTypeBonus    NotificationType = "bonus"
)

// Notification is a best-effort outbound message. Creation is synchronous;
// delivery to channels happens out of band and never fails the transaction
// that triggered it.
type Notification struct {
	ID         int
	CustomerID int
	Type       NotificationType
	Message    string
	SendAt     time.Time
	IsSent     bool
	SentAt     *time.Time
	IsRead     bool
	CreatedAt  time.Time
}

// Due reports whether the notification should be delivered now.
func (n *Notification) Due(now time.Time) bool {
	return !n.IsSent && !n.SendAt.After(now)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error

	// DuePending returns unsent notifications whose send_at has passed,
	// oldest first, capped at limit.
	DuePending(ctx context.Context, now time.Time, limit int) ([]Notification, error)

	MarkSent(ctx context.Context, id int, sentAt time.Time) error
}
