package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/vberezan/sport-booking-api/internal/domain"
)

type PostgresCustomerRepository struct {
	db *pgxpool.Pool
}

func NewPostgresCustomerRepository(db *pgxpool.Pool) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{
		db: db,
	}
}

func (p *PostgresCustomerRepository) GetById(ctx context.Context, id int) (*domain.Customer, error) {
	query := `
		SELECT
			c.id, c.first_name, c.last_name, c.email, c.phone, c.age,
			c.bonus_points, c.card_id, c.created_at, c.updated_at,
			k.type, k.benefits, k.price, k.bonus_multiplier, k.created_at
		FROM customers c
		LEFT JOIN cards k ON c.card_id = k.id
		WHERE c.id = $1
	`

	var (
		customer       domain.Customer
		cardType       *domain.CardType
		cardBenefits   *string
		cardPrice      *decimal.Decimal
		cardMultiplier *float64
		cardCreatedAt  *time.Time
	)

	err := p.db.QueryRow(ctx, query, id).Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.Phone,
		&customer.Age,
		&customer.BonusPoints,
		&customer.CardID,
		&customer.CreatedAt,
		&customer.UpdatedAt,
		&cardType,
		&cardBenefits,
		&cardPrice,
		&cardMultiplier,
		&cardCreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	if customer.CardID != nil && cardType != nil {
		customer.Card = &domain.Card{
			ID:              *customer.CardID,
			Type:            *cardType,
			Benefits:        *cardBenefits,
			Price:           *cardPrice,
			BonusMultiplier: *cardMultiplier,
			CreatedAt:       *cardCreatedAt,
		}
	}

	return &customer, nil
}

// AssignCard reassigns the customer to the card row of the given tier. The
// statement is idempotent; reassigning the current tier changes nothing.
func (p *PostgresCustomerRepository) AssignCard(
	ctx context.Context,
	customerID int,
	cardType domain.CardType) error {

	query := `
		UPDATE customers
		SET card_id = (SELECT id FROM cards WHERE type = $1), updated_at = NOW()
		WHERE id = $2
	`

	tag, err := p.db.Exec(ctx, query, cardType, customerID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
