package integration_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vberezan/sport-booking-api/internal/domain"
)

type fixtures struct {
	hallID    int
	sectionID int
	slotID    int
}

func (s *BaseSuite) seedCustomer(ctx context.Context, email string, age *int, points decimal.Decimal) int {
	var id int
	err := s.db.QueryRow(ctx, `
		INSERT INTO customers (first_name, last_name, email, age, bonus_points)
		VALUES ('Test', 'Customer', $1, $2, $3)
		RETURNING id`, email, age, points).Scan(&id)
	s.Require().NoError(err)

	return id
}

// seedSectionFixtures creates a hall with one section, one timeslot and the
// schedule entry binding them.
func (s *BaseSuite) seedSectionFixtures(ctx context.Context, seatsLimit int, price decimal.Decimal) fixtures {
	f := s.seedHallFixtures(ctx, decimal.NewFromInt(200))

	err := s.db.QueryRow(ctx, `
		INSERT INTO sections (hall_id, sport_type, price, seats_limit)
		VALUES ($1, 'yoga', $2, $3)
		RETURNING id`, f.hallID, price, seatsLimit).Scan(&f.sectionID)
	s.Require().NoError(err)

	_, err = s.db.Exec(ctx, `
		INSERT INTO section_schedules (section_id, time_slot_id)
		VALUES ($1, $2)`, f.sectionID, f.slotID)
	s.Require().NoError(err)

	return f
}

func (s *BaseSuite) seedHallFixtures(ctx context.Context, price decimal.Decimal) fixtures {
	var f fixtures

	err := s.db.QueryRow(ctx, `
		INSERT INTO halls (name, capacity, price, is_active)
		VALUES ('Main Hall', 100, $1, TRUE)
		RETURNING id`, price).Scan(&f.hallID)
	s.Require().NoError(err)

	slotDate := time.Now().AddDate(0, 0, 7)

	err = s.db.QueryRow(ctx, `
		INSERT INTO time_slots (hall_id, slot_date, start_time, end_time)
		VALUES ($1, $2, '18:00', '19:00')
		RETURNING id`, f.hallID, slotDate).Scan(&f.slotID)
	s.Require().NoError(err)

	return f
}

func (s *BaseSuite) reservationStatus(ctx context.Context, id int) (domain.ReservationStatus, domain.PaymentStatus) {
	var reservationStatus domain.ReservationStatus
	var paymentStatus domain.PaymentStatus

	err := s.db.QueryRow(ctx, `
		SELECT reservation_status, payment_status FROM reservations WHERE id = $1`, id).
		Scan(&reservationStatus, &paymentStatus)
	s.Require().NoError(err)

	return reservationStatus, paymentStatus
}

func (s *BaseSuite) confirmedSeats(ctx context.Context, sectionID, slotID int) int {
	var seats int
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(seats), 0) FROM reservations
		WHERE section_id = $1 AND time_slot_id = $2 AND reservation_status = 'confirmed'`,
		sectionID, slotID).Scan(&seats)
	s.Require().NoError(err)

	return seats
}
