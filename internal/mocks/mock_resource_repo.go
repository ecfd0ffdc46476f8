package mocks

import (
	"context"
	"time"

	"github.com/vberezan/sport-booking-api/internal/domain"
)

type MockResourceRepo struct {
	domain.ResourceRepository
	GetHallFunc             func(ctx context.Context, id int) (*domain.Hall, error)
	GetSectionFunc          func(ctx context.Context, id int) (*domain.Section, error)
	GetTimeSlotFunc         func(ctx context.Context, id int) (*domain.TimeSlot, error)
	SectionScheduledAtFunc  func(ctx context.Context, sectionID, timeSlotID int) (bool, error)
	HallDayBlockedFunc      func(ctx context.Context, hallID int, date time.Time) (bool, error)
	SectionAvailabilityFunc func(ctx context.Context, sectionID int) ([]domain.SlotAvailability, error)
	HallAvailabilityFunc    func(ctx context.Context, hallID int) ([]domain.SlotAvailability, error)
}

func (m *MockResourceRepo) GetHall(ctx context.Context, id int) (*domain.Hall, error) {
	return m.GetHallFunc(ctx, id)
}

func (m *MockResourceRepo) GetSection(ctx context.Context, id int) (*domain.Section, error) {
	return m.GetSectionFunc(ctx, id)
}

func (m *MockResourceRepo) GetTimeSlot(ctx context.Context, id int) (*domain.TimeSlot, error) {
	return m.GetTimeSlotFunc(ctx, id)
}

func (m *MockResourceRepo) SectionScheduledAt(ctx context.Context, sectionID, timeSlotID int) (bool, error) {
	return m.SectionScheduledAtFunc(ctx, sectionID, timeSlotID)
}

func (m *MockResourceRepo) HallDayBlocked(ctx context.Context, hallID int, date time.Time) (bool, error) {
	return m.HallDayBlockedFunc(ctx, hallID, date)
}

func (m *MockResourceRepo) SectionAvailability(ctx context.Context, sectionID int) ([]domain.SlotAvailability, error) {
	return m.SectionAvailabilityFunc(ctx, sectionID)
}

func (m *MockResourceRepo) HallAvailability(ctx context.Context, hallID int) ([]domain.SlotAvailability, error) {
	return m.HallAvailabilityFunc(ctx, hallID)
}
