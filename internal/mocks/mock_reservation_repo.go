package mocks

import (
	"context"

	"github.com/vberezan/sport-booking-api/internal/domain"
)

type MockReservationRepo struct {
	domain.ReservationRepository
	CreateFunc                       func(ctx context.Context, reservation *domain.Reservation, seatsLimit int) error
	GetByIdFunc                      func(ctx context.Context, id int) (*domain.Reservation, error)
	GetByIdAndCustomerFunc           func(ctx context.Context, id, customerID int) (*domain.Reservation, error)
	OccupancyFunc                    func(ctx context.Context, target domain.SlotTarget) (int, error)
	ExistsForCustomerAndTimeSlotFunc func(ctx context.Context, customerID, timeSlotID int) (bool, error)
	UpdateStatusFunc                 func(ctx context.Context, id int, status domain.ReservationStatus) error
	SetPaidFunc                      func(ctx context.Context, id int) error
	MarkFailedFunc                   func(ctx context.Context, id int) error
	AttachSubscriptionFunc           func(ctx context.Context, id, customerSubscriptionID int) error
}

func (m *MockReservationRepo) Create(ctx context.Context, reservation *domain.Reservation, seatsLimit int) error {
	return m.CreateFunc(ctx, reservation, seatsLimit)
}

func (m *MockReservationRepo) GetById(ctx context.Context, id int) (*domain.Reservation, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockReservationRepo) GetByIdAndCustomer(ctx context.Context, id, customerID int) (*domain.Reservation, error) {
	return m.GetByIdAndCustomerFunc(ctx, id, customerID)
}

func (m *MockReservationRepo) Occupancy(ctx context.Context, target domain.SlotTarget) (int, error) {
	return m.OccupancyFunc(ctx, target)
}

func (m *MockReservationRepo) ExistsForCustomerAndTimeSlot(ctx context.Context, customerID, timeSlotID int) (bool, error) {
	return m.ExistsForCustomerAndTimeSlotFunc(ctx, customerID, timeSlotID)
}

func (m *MockReservationRepo) UpdateStatus(ctx context.Context, id int, status domain.ReservationStatus) error {
	return m.UpdateStatusFunc(ctx, id, status)
}

func (m *MockReservationRepo) SetPaid(ctx context.Context, id int) error {
	return m.SetPaidFunc(ctx, id)
}

func (m *MockReservationRepo) MarkFailed(ctx context.Context, id int) error {
	return m.MarkFailedFunc(ctx, id)
}

func (m *MockReservationRepo) AttachSubscription(ctx context.Context, id, customerSubscriptionID int) error {
	return m.AttachSubscriptionFunc(ctx, id, customerSubscriptionID)
}
