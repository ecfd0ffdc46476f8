package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/vberezan/sport-booking-api/internal/domain"
)

// PostgresLoyaltyRepository owns the bonus-points balance. Both Accrue and
// Redeem lock the reservation row before the customer row, so the two
// operations can never deadlock each other.
type PostgresLoyaltyRepository struct {
	db         *pgxpool.Pool
	pointValue decimal.Decimal
}

func NewPostgresLoyaltyRepository(db *pgxpool.Pool, pointValue decimal.Decimal) *PostgresLoyaltyRepository {
	return &PostgresLoyaltyRepository{
		db:         db,
		pointValue: pointValue,
	}
}

func (p *PostgresLoyaltyRepository) Accrue(ctx context.Context, reservationID int) (decimal.Decimal, error) {
	points := decimal.Zero

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		var (
			customerID    int
			price         decimal.Decimal
			paymentStatus domain.PaymentStatus
			alreadyAwarded bool
		)

		err := tx.QueryRow(ctx, `
			SELECT customer_id, price, payment_status, points_awarded
			FROM reservations
			WHERE id = $1
			FOR UPDATE
		`, reservationID).Scan(&customerID, &price, &paymentStatus, &alreadyAwarded)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}
			return err
		}

		if paymentStatus != domain.PaymentStatusPaid || alreadyAwarded {
			return nil
		}

		var multiplier float64
		err = tx.QueryRow(ctx, `
			SELECT COALESCE(k.bonus_multiplier, 1.0)
			FROM customers c
			LEFT JOIN cards k ON c.card_id = k.id
			WHERE c.id = $1
			FOR UPDATE OF c
		`, customerID).Scan(&multiplier)
		if err != nil {
			return err
		}

		points = domain.CalculatePoints(price, multiplier)

		if points.IsPositive() {
			_, err = tx.Exec(ctx, `
				UPDATE customers
				SET bonus_points = bonus_points + $1, updated_at = NOW()
				WHERE id = $2
			`, points, customerID)
			if err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE reservations
			SET points_awarded = TRUE, updated_at = NOW()
			WHERE id = $1
		`, reservationID)

		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	return points, nil
}

func (p *PostgresLoyaltyRepository) Redeem(
	ctx context.Context,
	customerID,
	reservationID int,
	requested decimal.Decimal) (*domain.Redemption, error) {

	var redemption domain.Redemption

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		var price decimal.Decimal
		err := tx.QueryRow(ctx, `
			SELECT price
			FROM reservations
			WHERE id = $1 AND customer_id = $2
			FOR UPDATE
		`, reservationID, customerID).Scan(&price)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}
			return err
		}

		var available decimal.Decimal
		err = tx.QueryRow(ctx, `
			SELECT bonus_points
			FROM customers
			WHERE id = $1
			FOR UPDATE
		`, customerID).Scan(&available)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}
			return err
		}

		redemption = domain.QuoteRedemption(price, available, requested, p.pointValue)

		if redemption.UsedPoints.IsZero() {
			return nil
		}

		_, err = tx.Exec(ctx, `
			UPDATE customers
			SET bonus_points = bonus_points - $1, updated_at = NOW()
			WHERE id = $2
		`, redemption.UsedPoints, customerID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE reservations
			SET price = $1, updated_at = NOW()
			WHERE id = $2
		`, redemption.RemainingPrice, reservationID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return &redemption, nil
}

func (p *PostgresLoyaltyRepository) Summary(ctx context.Context, customerID int) (*domain.LoyaltySummary, error) {
	query := `
		SELECT
			c.id, c.bonus_points,
			k.id, k.type, k.benefits, k.price, k.bonus_multiplier
		FROM customers c
		LEFT JOIN cards k ON c.card_id = k.id
		WHERE c.id = $1
	`

	var (
		summary        domain.LoyaltySummary
		cardID         *int
		cardType       *domain.CardType
		cardBenefits   *string
		cardPrice      *decimal.Decimal
		cardMultiplier *float64
	)

	err := p.db.QueryRow(ctx, query, customerID).Scan(
		&summary.CustomerID,
		&summary.BonusPoints,
		&cardID,
		&cardType,
		&cardBenefits,
		&cardPrice,
		&cardMultiplier,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	if cardID != nil {
		summary.Card = &domain.Card{
			ID:              *cardID,
			Type:            *cardType,
			Benefits:        *cardBenefits,
			Price:           *cardPrice,
			BonusMultiplier: *cardMultiplier,
		}
	}

	return &summary, nil
}
