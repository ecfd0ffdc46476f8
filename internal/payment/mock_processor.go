package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/vberezan/sport-booking-api/internal/domain"
)

// MockCardProcessor approves every charge. Used when no Stripe key is
// configured, and in tests.
type MockCardProcessor struct {
}

func NewMockCardProcessor() *MockCardProcessor {
	return &MockCardProcessor{}
}

func (m *MockCardProcessor) Charge(
	ctx context.Context,
	customer *domain.Customer,
	reservation *domain.Reservation) (*domain.CardCharge, error) {

	return &domain.CardCharge{
		Reference: "mock-" + uuid.New().String(),
		Amount:    reservation.Price,
		Currency:  "usd",
	}, nil
}
