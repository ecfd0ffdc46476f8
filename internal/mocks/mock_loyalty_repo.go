package mocks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/vberezan/sport-booking-api/internal/domain"
)

type MockLoyaltyRepo struct {
	domain.LoyaltyRepository
	AccrueFunc  func(ctx context.Context, reservationID int) (decimal.Decimal, error)
	RedeemFunc  func(ctx context.Context, customerID, reservationID int, points decimal.Decimal) (*domain.Redemption, error)
	SummaryFunc func(ctx context.Context, customerID int) (*domain.LoyaltySummary, error)
}

func (m *MockLoyaltyRepo) Accrue(ctx context.Context, reservationID int) (decimal.Decimal, error) {
	return m.AccrueFunc(ctx, reservationID)
}

func (m *MockLoyaltyRepo) Redeem(ctx context.Context, customerID, reservationID int, points decimal.Decimal) (*domain.Redemption, error) {
	return m.RedeemFunc(ctx, customerID, reservationID, points)
}

func (m *MockLoyaltyRepo) Summary(ctx context.Context, customerID int) (*domain.LoyaltySummary, error) {
	return m.SummaryFunc(ctx, customerID)
}
