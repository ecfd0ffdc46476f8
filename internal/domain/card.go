package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CardType string

const (
	CardTypeStandard  CardType = "standard"
	CardTypePremium   CardType = "premium"
	CardTypeCorporate CardType = "corporate"
)

// Card is a loyalty tier descriptor. The bonus multiplier drives point
// accrual; premium tiers additionally halve the price of swimming sections.
type Card struct {
	ID              int
	Type            CardType
	Benefits        string
	Price           decimal.Decimal
	BonusMultiplier float64
	CreatedAt       time.Time
}

// Multiplier returns the card's bonus multiplier, defaulting to 1.0 for
// customers without a card.
func (c *Card) Multiplier() float64 {
	if c == nil {
		return 1.0
	}

	return c.BonusMultiplier
}
