package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vberezan/sport-booking-api/internal/domain"
)

type PostgresReservationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresReservationRepository(db *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{
		db: db,
	}
}

// Create admits the reservation under the at-most-N-confirmed-per-slot
// guarantee. All admission decisions for a timeslot serialize on the
// time_slots row lock: locking only the competing reservation rows cannot
// exclude a concurrent insert, so the parent row is the lock anchor. The
// capacity, hall-exclusivity and duplicate checks are re-run while the lock
// is held; the first transaction to commit wins and later ones are rejected.
func (p *PostgresReservationRepository) Create(
	ctx context.Context,
	reservation *domain.Reservation,
	seatsLimit int) error {

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		var slotID int
		err := tx.QueryRow(ctx, `SELECT id FROM time_slots WHERE id = $1 FOR UPDATE`,
			reservation.TimeSlotID).Scan(&slotID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}
			return err
		}

		var duplicates int
		err = tx.QueryRow(ctx, `
			SELECT COUNT(*)
			FROM reservations
			WHERE customer_id = $1
			  AND time_slot_id = $2
			  AND reservation_status <> 'cancelled'
		`, reservation.CustomerID, reservation.TimeSlotID).Scan(&duplicates)
		if err != nil {
			return err
		}

		if duplicates > 0 {
			return domain.ErrDuplicateBooking
		}

		if reservation.IsSectionBooking() {
			var occupied int
			err = tx.QueryRow(ctx, `
				SELECT COALESCE(SUM(seats), 0)
				FROM reservations
				WHERE section_id = $1
				  AND time_slot_id = $2
				  AND reservation_status = 'confirmed'
			`, *reservation.SectionID, reservation.TimeSlotID).Scan(&occupied)
			if err != nil {
				return err
			}

			if occupied+reservation.Seats > seatsLimit {
				return domain.ErrCapacityExceeded
			}
		} else {
			var competing int
			err = tx.QueryRow(ctx, `
				SELECT COUNT(*)
				FROM reservations
				WHERE hall_id = $1
				  AND section_id IS NULL
				  AND time_slot_id = $2
				  AND reservation_status <> 'cancelled'
			`, reservation.HallID, reservation.TimeSlotID).Scan(&competing)
			if err != nil {
				return err
			}

			if competing > 0 {
				return domain.ErrHallAlreadyBooked
			}
		}

		query := `
			INSERT INTO reservations
				(customer_id, hall_id, section_id, time_slot_id, seats,
				 reservation_status, payment_status, price, points_awarded)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
			RETURNING id, created_at, updated_at
		`

		return tx.QueryRow(ctx, query,
			reservation.CustomerID,
			reservation.HallID,
			reservation.SectionID,
			reservation.TimeSlotID,
			reservation.Seats,
			reservation.Status,
			reservation.PaymentStatus,
			reservation.Price,
		).Scan(&reservation.ID, &reservation.CreatedAt, &reservation.UpdatedAt)
	})
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

const reservationColumns = `
	id, customer_id, hall_id, section_id, time_slot_id, seats,
	reservation_status, payment_status, price, points_awarded,
	used_subscription_id, created_at, updated_at
`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var r domain.Reservation

	err := row.Scan(
		&r.ID,
		&r.CustomerID,
		&r.HallID,
		&r.SectionID,
		&r.TimeSlotID,
		&r.Seats,
		&r.Status,
		&r.PaymentStatus,
		&r.Price,
		&r.PointsAwarded,
		&r.UsedSubscriptionID,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &r, nil
}

func (p *PostgresReservationRepository) GetById(ctx context.Context, id int) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	return scanReservation(p.db.QueryRow(ctx, query, id))
}

func (p *PostgresReservationRepository) GetByIdAndCustomer(
	ctx context.Context,
	id,
	customerID int) (*domain.Reservation, error) {

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 AND customer_id = $2`

	return scanReservation(p.db.QueryRow(ctx, query, id, customerID))
}

func (p *PostgresReservationRepository) Occupancy(
	ctx context.Context,
	target domain.SlotTarget) (int, error) {

	var (
		query string
		args  []any
	)

	if target.SectionID != nil {
		query = `
			SELECT COALESCE(SUM(seats), 0)
			FROM reservations
			WHERE section_id = $1
			  AND time_slot_id = $2
			  AND reservation_status = 'confirmed'
		`
		args = []any{*target.SectionID, target.TimeSlotID}
	} else {
		query = `
			SELECT COALESCE(SUM(seats), 0)
			FROM reservations
			WHERE hall_id = $1
			  AND section_id IS NULL
			  AND time_slot_id = $2
			  AND reservation_status IN ('confirmed', 'pending')
		`
		args = []any{target.HallID, target.TimeSlotID}
	}

	var occupied int
	err := p.db.QueryRow(ctx, query, args...).Scan(&occupied)
	if err != nil {
		return 0, err
	}

	return occupied, nil
}

func (p *PostgresReservationRepository) ExistsForCustomerAndTimeSlot(
	ctx context.Context,
	customerID,
	timeSlotID int) (bool, error) {

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM reservations
			WHERE customer_id = $1
			  AND time_slot_id = $2
			  AND reservation_status <> 'cancelled'
		)
	`

	var exists bool
	err := p.db.QueryRow(ctx, query, customerID, timeSlotID).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (p *PostgresReservationRepository) UpdateStatus(
	ctx context.Context,
	id int,
	status domain.ReservationStatus) error {

	query := `
		UPDATE reservations
		SET reservation_status = $1, updated_at = NOW()
		WHERE id = $2
	`

	tag, err := p.db.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresReservationRepository) SetPaid(ctx context.Context, id int) error {
	query := `
		UPDATE reservations
		SET payment_status = 'paid', updated_at = NOW()
		WHERE id = $1 AND payment_status = 'unpaid'
	`

	tag, err := p.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEditConflict
	}

	return nil
}

func (p *PostgresReservationRepository) MarkFailed(ctx context.Context, id int) error {
	query := `
		UPDATE reservations
		SET payment_status = 'error', reservation_status = 'cancelled', updated_at = NOW()
		WHERE id = $1
	`

	tag, err := p.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresReservationRepository) AttachSubscription(
	ctx context.Context,
	id,
	customerSubscriptionID int) error {

	query := `
		UPDATE reservations
		SET used_subscription_id = $1, updated_at = NOW()
		WHERE id = $2
	`

	tag, err := p.db.Exec(ctx, query, customerSubscriptionID, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
