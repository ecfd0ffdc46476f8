package mocks

import (
	"context"
	"time"

	"github.com/vberezan/sport-booking-api/internal/domain"
)

type MockNotificationRepo struct {
	domain.NotificationRepository
	CreateFunc     func(ctx context.Context, notification *domain.Notification) error
	DuePendingFunc func(ctx context.Context, now time.Time, limit int) ([]domain.Notification, error)
	MarkSentFunc   func(ctx context.Context, id int, sentAt time.Time) error
}

func (m *MockNotificationRepo) Create(ctx context.Context, notification *domain.Notification) error {
	return m.CreateFunc(ctx, notification)
}

func (m *MockNotificationRepo) DuePending(ctx context.Context, now time.Time, limit int) ([]domain.Notification, error) {
	return m.DuePendingFunc(ctx, now, limit)
}

func (m *MockNotificationRepo) MarkSent(ctx context.Context, id int, sentAt time.Time) error {
	return m.MarkSentFunc(ctx, id, sentAt)
}
