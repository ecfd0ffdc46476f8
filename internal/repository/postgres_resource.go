package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vberezan/sport-booking-api/internal/domain"
)

type PostgresResourceRepository struct {
	db *pgxpool.Pool
}

func NewPostgresResourceRepository(db *pgxpool.Pool) *PostgresResourceRepository {
	return &PostgresResourceRepository{
		db: db,
	}
}

func (p *PostgresResourceRepository) GetHall(ctx context.Context, id int) (*domain.Hall, error) {
	query := `
		SELECT id, name, room_number, event_type, capacity, price, is_active
		FROM halls
		WHERE id = $1
	`

	var hall domain.Hall
	err := p.db.QueryRow(ctx, query, id).Scan(
		&hall.ID,
		&hall.Name,
		&hall.RoomNumber,
		&hall.EventType,
		&hall.Capacity,
		&hall.Price,
		&hall.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &hall, nil
}

func (p *PostgresResourceRepository) GetSection(ctx context.Context, id int) (*domain.Section, error) {
	query := `
		SELECT
			s.id, s.hall_id, s.trainer_id, s.sport_type, s.preparation_level,
			s.min_age, s.max_age, s.price, s.seats_limit,
			h.id, h.name, h.room_number, h.event_type, h.capacity, h.price, h.is_active
		FROM sections s
		JOIN halls h ON s.hall_id = h.id
		WHERE s.id = $1
	`

	var (
		section domain.Section
		hall    domain.Hall
	)

	err := p.db.QueryRow(ctx, query, id).Scan(
		&section.ID,
		&section.HallID,
		&section.TrainerID,
		&section.SportType,
		&section.PreparationLevel,
		&section.MinAge,
		&section.MaxAge,
		&section.Price,
		&section.SeatsLimit,
		&hall.ID,
		&hall.Name,
		&hall.RoomNumber,
		&hall.EventType,
		&hall.Capacity,
		&hall.Price,
		&hall.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	section.Hall = &hall

	return &section, nil
}

func (p *PostgresResourceRepository) GetTimeSlot(ctx context.Context, id int) (*domain.TimeSlot, error) {
	query := `
		SELECT id, hall_id, slot_date, start_time, end_time
		FROM time_slots
		WHERE id = $1
	`

	var slot domain.TimeSlot
	err := p.db.QueryRow(ctx, query, id).Scan(
		&slot.ID,
		&slot.HallID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &slot, nil
}

func (p *PostgresResourceRepository) SectionScheduledAt(
	ctx context.Context,
	sectionID,
	timeSlotID int) (bool, error) {

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM section_schedules
			WHERE section_id = $1 AND time_slot_id = $2
		)
	`

	var scheduled bool
	err := p.db.QueryRow(ctx, query, sectionID, timeSlotID).Scan(&scheduled)
	if err != nil {
		return false, err
	}

	return scheduled, nil
}

func (p *PostgresResourceRepository) HallDayBlocked(
	ctx context.Context,
	hallID int,
	date time.Time) (bool, error) {

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM section_schedules ss
			JOIN sections s ON ss.section_id = s.id
			JOIN time_slots t ON ss.time_slot_id = t.id
			WHERE s.hall_id = $1 AND t.slot_date = $2
		)
	`

	var blocked bool
	err := p.db.QueryRow(ctx, query, hallID, date).Scan(&blocked)
	if err != nil {
		return false, err
	}

	return blocked, nil
}

func (p *PostgresResourceRepository) SectionAvailability(
	ctx context.Context,
	sectionID int) ([]domain.SlotAvailability, error) {

	query := `
		SELECT
			t.id, t.hall_id, t.slot_date, t.start_time, t.end_time,
			s.seats_limit,
			COALESCE((
				SELECT SUM(r.seats)
				FROM reservations r
				WHERE r.section_id = s.id
				  AND r.time_slot_id = t.id
				  AND r.reservation_status = 'confirmed'
			), 0) AS occupied
		FROM section_schedules ss
		JOIN sections s ON ss.section_id = s.id
		JOIN time_slots t ON ss.time_slot_id = t.id
		WHERE s.id = $1
		ORDER BY t.slot_date, t.start_time
	`

	rows, err := p.db.Query(ctx, query, sectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	availability := make([]domain.SlotAvailability, 0)

	for rows.Next() {
		var (
			sa       domain.SlotAvailability
			occupied int
		)

		err = rows.Scan(
			&sa.TimeSlot.ID,
			&sa.TimeSlot.HallID,
			&sa.TimeSlot.Date,
			&sa.TimeSlot.StartTime,
			&sa.TimeSlot.EndTime,
			&sa.TotalSeats,
			&occupied,
		)
		if err != nil {
			return nil, err
		}

		sa.AvailableSeats = max(0, sa.TotalSeats-occupied)
		sa.Blocked = sa.AvailableSeats == 0

		availability = append(availability, sa)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return availability, nil
}

func (p *PostgresResourceRepository) HallAvailability(
	ctx context.Context,
	hallID int) ([]domain.SlotAvailability, error) {

	query := `
		SELECT
			t.id, t.hall_id, t.slot_date, t.start_time, t.end_time,
			h.capacity,
			EXISTS (
				SELECT 1
				FROM section_schedules ss
				JOIN sections s ON ss.section_id = s.id
				JOIN time_slots ts ON ss.time_slot_id = ts.id
				WHERE s.hall_id = h.id AND ts.slot_date = t.slot_date
			) AS has_sections,
			EXISTS (
				SELECT 1
				FROM reservations r
				WHERE r.hall_id = h.id
				  AND r.section_id IS NULL
				  AND r.time_slot_id = t.id
				  AND r.reservation_status <> 'cancelled'
			) AS has_booking
		FROM time_slots t
		JOIN halls h ON t.hall_id = h.id
		WHERE h.id = $1
		ORDER BY t.slot_date, t.start_time
	`

	rows, err := p.db.Query(ctx, query, hallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	availability := make([]domain.SlotAvailability, 0)

	for rows.Next() {
		var (
			sa          domain.SlotAvailability
			hasSections bool
			hasBooking  bool
		)

		err = rows.Scan(
			&sa.TimeSlot.ID,
			&sa.TimeSlot.HallID,
			&sa.TimeSlot.Date,
			&sa.TimeSlot.StartTime,
			&sa.TimeSlot.EndTime,
			&sa.TotalSeats,
			&hasSections,
			&hasBooking,
		)
		if err != nil {
			return nil, err
		}

		sa.Blocked = hasSections || hasBooking
		if !sa.Blocked {
			sa.AvailableSeats = 1
		}

		availability = append(availability, sa)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return availability, nil
}
