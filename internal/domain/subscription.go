package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionType string

const (
	SubscriptionTypeSingle    SubscriptionType = "single"
	SubscriptionTypeMonthly   SubscriptionType = "monthly"
	SubscriptionTypeCorporate SubscriptionType = "corporate"
)

// Subscription is a purchasable pass template: single-entry or period-based.
type Subscription struct {
	ID           int
	Type         SubscriptionType
	DurationDays int
	Price        decimal.Decimal
	Description  string
	Status       string
	CreatedAt    time.Time
}

// CustomerSubscription is a pass held by a customer. Single-entry passes are
// consumed by one booking; period passes stay usable until their end date.
type CustomerSubscription struct {
	ID             int
	CustomerID     int
	SubscriptionID int
	Subscription   *Subscription
	StartDate      time.Time
	EndDate        time.Time
	IsActive       bool
	IsUsed         bool
	UsedAt         *time.Time
	PurchasedAt    time.Time
}

// Usable reports whether the pass can settle a booking at the given time.
func (cs *CustomerSubscription) Usable(now time.Time) bool {
	if !cs.IsActive {
		return false
	}
	if cs.Subscription != nil && cs.Subscription.Type == SubscriptionTypeSingle {
		return !cs.IsUsed
	}

	return !now.Truncate(24 * time.Hour).After(cs.EndDate)
}

type SubscriptionRepository interface {
	GetActiveById(ctx context.Context, id int) (*Subscription, error)
	GetCustomerSubscription(ctx context.Context, id, customerID int) (*CustomerSubscription, error)
	Purchase(ctx context.Context, customerID, subscriptionID int, start, end time.Time) (*CustomerSubscription, error)

	// ConsumeSingle marks a single-entry pass used and deactivates it.
	ConsumeSingle(ctx context.Context, id int, usedAt time.Time) error
}
