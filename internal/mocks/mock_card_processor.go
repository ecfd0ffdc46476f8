package mocks

import (
	"context"

	"github.com/vberezan/sport-booking-api/internal/domain"
)

type MockCardProcessor struct {
	ChargeFunc func(ctx context.Context, customer *domain.Customer, reservation *domain.Reservation) (*domain.CardCharge, error)
}

func (m *MockCardProcessor) Charge(ctx context.Context, customer *domain.Customer, reservation *domain.Reservation) (*domain.CardCharge, error) {
	return m.ChargeFunc(ctx, customer, reservation)
}
