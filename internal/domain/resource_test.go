package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int {
	return &v
}

func TestSectionAgeEligible(t *testing.T) {
	tests := []struct {
		name    string
		minAge  *int
		maxAge  *int
		age     *int
		want    bool
	}{
		{name: "no limits", age: intPtr(30), want: true},
		{name: "nil age passes", minAge: intPtr(12), want: true},
		{name: "below minimum", minAge: intPtr(12), age: intPtr(10), want: false},
		{name: "at minimum", minAge: intPtr(12), age: intPtr(12), want: true},
		{name: "above maximum", maxAge: intPtr(18), age: intPtr(19), want: false},
		{name: "within range", minAge: intPtr(12), maxAge: intPtr(18), age: intPtr(15), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			section := Section{MinAge: tt.minAge, MaxAge: tt.maxAge}

			assert.Equal(t, tt.want, section.AgeEligible(tt.age))
		})
	}
}

func TestCustomerSubscriptionUsable(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		sub  CustomerSubscription
		want bool
	}{
		{
			name: "inactive pass",
			sub:  CustomerSubscription{IsActive: false},
			want: false,
		},
		{
			name: "unused single pass",
			sub: CustomerSubscription{
				IsActive:     true,
				Subscription: &Subscription{Type: SubscriptionTypeSingle},
			},
			want: true,
		},
		{
			name: "consumed single pass",
			sub: CustomerSubscription{
				IsActive:     true,
				IsUsed:       true,
				Subscription: &Subscription{Type: SubscriptionTypeSingle},
			},
			want: false,
		},
		{
			name: "monthly pass within period",
			sub: CustomerSubscription{
				IsActive:     true,
				EndDate:      now.AddDate(0, 0, 10),
				Subscription: &Subscription{Type: SubscriptionTypeMonthly},
			},
			want: true,
		},
		{
			name: "monthly pass expired",
			sub: CustomerSubscription{
				IsActive:     true,
				EndDate:      now.AddDate(0, 0, -1),
				Subscription: &Subscription{Type: SubscriptionTypeMonthly},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.Usable(now))
		})
	}
}
