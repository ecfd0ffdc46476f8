package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Customer is supplied by the identity layer; the core never authenticates,
// it only consumes the resolved identity and owns the loyalty account
// embedded in it (bonus points balance and card tier).
type Customer struct {
	ID          int
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Age         *int
	BonusPoints decimal.Decimal
	CardID      *int
	Card        *Card
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}

	return c.FirstName + " " + c.LastName
}

// HasPremiumCard reports whether the customer holds a premium or corporate
// card; both tiers carry the premium benefits.
func (c *Customer) HasPremiumCard() bool {
	if c.Card == nil {
		return false
	}

	return c.Card.Type == CardTypePremium || c.Card.Type == CardTypeCorporate
}

type CustomerRepository interface {
	GetById(ctx context.Context, id int) (*Customer, error)
	AssignCard(ctx context.Context, customerID int, cardType CardType) error
}
