package mocks

import (
	"context"

	"github.com/vberezan/sport-booking-api/internal/domain"
)

type MockCustomerRepo struct {
	domain.CustomerRepository
	GetByIdFunc    func(ctx context.Context, id int) (*domain.Customer, error)
	AssignCardFunc func(ctx context.Context, customerID int, cardType domain.CardType) error
}

func (m *MockCustomerRepo) GetById(ctx context.Context, id int) (*domain.Customer, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockCustomerRepo) AssignCard(ctx context.Context, customerID int, cardType domain.CardType) error {
	return m.AssignCardFunc(ctx, customerID, cardType)
}
