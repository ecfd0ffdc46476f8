package integration_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/vberezan/sport-booking-api/internal/booking"
	"github.com/vberezan/sport-booking-api/internal/domain"
)

type BookingSuite struct {
	BaseSuite
}

func TestBookingSuite(t *testing.T) {
	suite.Run(t, new(BookingSuite))
}

func intPtr(v int) *int {
	return &v
}

// Forty customers race for ten seats. Whatever the interleaving, the sum of
// confirmed seats must never exceed the section's limit.
func (s *BookingSuite) TestConcurrentSectionCapacityInvariant() {
	ctx, cancel := timeout(60 * time.Second)
	defer cancel()

	const (
		seatsLimit = 10
		contenders = 40
	)

	f := s.seedSectionFixtures(ctx, seatsLimit, decimal.NewFromInt(40))

	customerIDs := make([]int, contenders)
	for i := range customerIDs {
		customerIDs[i] = s.seedCustomer(ctx, fmt.Sprintf("racer%d@example.com", i), nil, decimal.Zero)
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)

	for i, customerID := range customerIDs {
		wg.Add(1)
		go func(i, customerID int) {
			defer wg.Done()

			_, errs[i] = s.bookings.CreateBooking(ctx, &domain.Customer{ID: customerID}, booking.Request{
				SectionID:  intPtr(f.sectionID),
				TimeSlotID: intPtr(f.slotID),
			})
		}(i, customerID)
	}

	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.Require().ErrorIs(err, domain.ErrCapacityExceeded)
	}

	s.Equal(seatsLimit, succeeded)
	s.Equal(seatsLimit, s.confirmedSeats(ctx, f.sectionID, f.slotID))
}

// Concurrent whole-hall bookings for the same slot: exactly one wins, the
// rest get the hall-already-booked rejection.
func (s *BookingSuite) TestConcurrentHallExclusivity() {
	ctx, cancel := timeout(60 * time.Second)
	defer cancel()

	const contenders = 20

	f := s.seedHallFixtures(ctx, decimal.NewFromInt(200))

	customerIDs := make([]int, contenders)
	for i := range customerIDs {
		customerIDs[i] = s.seedCustomer(ctx, fmt.Sprintf("hall%d@example.com", i), nil, decimal.Zero)
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)

	for i, customerID := range customerIDs {
		wg.Add(1)
		go func(i, customerID int) {
			defer wg.Done()

			_, errs[i] = s.bookings.CreateBooking(ctx, &domain.Customer{ID: customerID}, booking.Request{
				HallID:     intPtr(f.hallID),
				TimeSlotID: intPtr(f.slotID),
			})
		}(i, customerID)
	}

	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.Require().ErrorIs(err, domain.ErrHallAlreadyBooked)
	}

	s.Equal(1, succeeded)
}

// Concurrent retries of the same customer for the same slot must produce at
// most one reservation.
func (s *BookingSuite) TestConcurrentDuplicateSuppression() {
	ctx, cancel := timeout(60 * time.Second)
	defer cancel()

	f := s.seedSectionFixtures(ctx, 10, decimal.NewFromInt(40))
	customerID := s.seedCustomer(ctx, "dup@example.com", nil, decimal.Zero)

	const attempts = 10

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			_, errs[i] = s.bookings.CreateBooking(ctx, &domain.Customer{ID: customerID}, booking.Request{
				SectionID:  intPtr(f.sectionID),
				TimeSlotID: intPtr(f.slotID),
			})
		}(i)
	}

	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, domain.ErrDuplicateBooking) {
			s.Failf("unexpected error", "%v", err)
		}
	}

	s.Equal(1, succeeded)

	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM reservations WHERE customer_id = $1 AND time_slot_id = $2`,
		customerID, f.slotID).Scan(&count)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *BookingSuite) TestHallBlockedByScheduledSections() {
	ctx, cancel := timeout(30 * time.Second)
	defer cancel()

	f := s.seedSectionFixtures(ctx, 10, decimal.NewFromInt(40))
	customerID := s.seedCustomer(ctx, "blocked@example.com", nil, decimal.Zero)

	_, err := s.bookings.CreateBooking(ctx, &domain.Customer{ID: customerID}, booking.Request{
		HallID:     intPtr(f.hallID),
		TimeSlotID: intPtr(f.slotID),
	})

	s.ErrorIs(err, domain.ErrHallDayBlocked)
}

func (s *BookingSuite) TestCancelledReservationFreesCapacity() {
	ctx, cancel := timeout(30 * time.Second)
	defer cancel()

	f := s.seedSectionFixtures(ctx, 1, decimal.NewFromInt(40))
	first := s.seedCustomer(ctx, "first@example.com", nil, decimal.Zero)
	second := s.seedCustomer(ctx, "second@example.com", nil, decimal.Zero)

	reservation, err := s.bookings.CreateBooking(ctx, &domain.Customer{ID: first}, booking.Request{
		SectionID:  intPtr(f.sectionID),
		TimeSlotID: intPtr(f.slotID),
	})
	s.Require().NoError(err)

	_, err = s.bookings.CreateBooking(ctx, &domain.Customer{ID: second}, booking.Request{
		SectionID:  intPtr(f.sectionID),
		TimeSlotID: intPtr(f.slotID),
	})
	s.Require().ErrorIs(err, domain.ErrCapacityExceeded)

	_, err = s.bookings.Cancel(ctx, reservation.ID)
	s.Require().NoError(err)

	_, err = s.bookings.CreateBooking(ctx, &domain.Customer{ID: second}, booking.Request{
		SectionID:  intPtr(f.sectionID),
		TimeSlotID: intPtr(f.slotID),
	})
	s.NoError(err)
}
