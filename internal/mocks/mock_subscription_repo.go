package mocks

import (
	"context"
	"time"

	"github.com/vberezan/sport-booking-api/internal/domain"
)

type MockSubscriptionRepo struct {
	domain.SubscriptionRepository
	GetActiveByIdFunc           func(ctx context.Context, id int) (*domain.Subscription, error)
	GetCustomerSubscriptionFunc func(ctx context.Context, id, customerID int) (*domain.CustomerSubscription, error)
	PurchaseFunc                func(ctx context.Context, customerID, subscriptionID int, start, end time.Time) (*domain.CustomerSubscription, error)
	ConsumeSingleFunc           func(ctx context.Context, id int, usedAt time.Time) error
}

func (m *MockSubscriptionRepo) GetActiveById(ctx context.Context, id int) (*domain.Subscription, error) {
	return m.GetActiveByIdFunc(ctx, id)
}

func (m *MockSubscriptionRepo) GetCustomerSubscription(ctx context.Context, id, customerID int) (*domain.CustomerSubscription, error) {
	return m.GetCustomerSubscriptionFunc(ctx, id, customerID)
}

func (m *MockSubscriptionRepo) Purchase(ctx context.Context, customerID, subscriptionID int, start, end time.Time) (*domain.CustomerSubscription, error) {
	return m.PurchaseFunc(ctx, customerID, subscriptionID, start, end)
}

func (m *MockSubscriptionRepo) ConsumeSingle(ctx context.Context, id int, usedAt time.Time) error {
	return m.ConsumeSingleFunc(ctx, id, usedAt)
}
