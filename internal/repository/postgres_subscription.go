package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vberezan/sport-booking-api/internal/domain"
)

type PostgresSubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSubscriptionRepository(db *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{
		db: db,
	}
}

func (p *PostgresSubscriptionRepository) GetActiveById(ctx context.Context, id int) (*domain.Subscription, error) {
	query := `
		SELECT id, type, duration_days, price, description, status, created_at
		FROM subscriptions
		WHERE id = $1 AND status = 'active'
	`

	var sub domain.Subscription
	err := p.db.QueryRow(ctx, query, id).Scan(
		&sub.ID,
		&sub.Type,
		&sub.DurationDays,
		&sub.Price,
		&sub.Description,
		&sub.Status,
		&sub.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &sub, nil
}

func (p *PostgresSubscriptionRepository) GetCustomerSubscription(
	ctx context.Context,
	id,
	customerID int) (*domain.CustomerSubscription, error) {

	query := `
		SELECT
			cs.id, cs.customer_id, cs.subscription_id, cs.start_date, cs.end_date,
			cs.is_active, cs.is_used, cs.used_at, cs.purchased_at,
			s.id, s.type, s.duration_days, s.price, s.description, s.status, s.created_at
		FROM customer_subscriptions cs
		JOIN subscriptions s ON cs.subscription_id = s.id
		WHERE cs.id = $1 AND cs.customer_id = $2
	`

	var (
		cs  domain.CustomerSubscription
		sub domain.Subscription
	)

	err := p.db.QueryRow(ctx, query, id, customerID).Scan(
		&cs.ID,
		&cs.CustomerID,
		&cs.SubscriptionID,
		&cs.StartDate,
		&cs.EndDate,
		&cs.IsActive,
		&cs.IsUsed,
		&cs.UsedAt,
		&cs.PurchasedAt,
		&sub.ID,
		&sub.Type,
		&sub.DurationDays,
		&sub.Price,
		&sub.Description,
		&sub.Status,
		&sub.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	cs.Subscription = &sub

	return &cs, nil
}

func (p *PostgresSubscriptionRepository) Purchase(
	ctx context.Context,
	customerID,
	subscriptionID int,
	start,
	end time.Time) (*domain.CustomerSubscription, error) {

	query := `
		INSERT INTO customer_subscriptions (customer_id, subscription_id, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, purchased_at
	`

	cs := domain.CustomerSubscription{
		CustomerID:     customerID,
		SubscriptionID: subscriptionID,
		StartDate:      start,
		EndDate:        end,
		IsActive:       true,
	}

	err := p.db.QueryRow(ctx, query, customerID, subscriptionID, start, end).
		Scan(&cs.ID, &cs.PurchasedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &cs, nil
}

func (p *PostgresSubscriptionRepository) ConsumeSingle(ctx context.Context, id int, usedAt time.Time) error {
	query := `
		UPDATE customer_subscriptions
		SET is_used = TRUE, used_at = $1, is_active = FALSE
		WHERE id = $2 AND is_used = FALSE
	`

	tag, err := p.db.Exec(ctx, query, usedAt, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEditConflict
	}

	return nil
}
