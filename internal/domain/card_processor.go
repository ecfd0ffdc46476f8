package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// CardCharge is the outcome of a successful card charge at the external
// payment provider.
type CardCharge struct {
	Reference string
	Amount    decimal.Decimal
	Currency  string
}

// CardProcessor charges a customer's card for a reservation. The core only
// decides when to charge; the provider owns the mechanics.
type CardProcessor interface {
	Charge(ctx context.Context, customer *Customer, reservation *Reservation) (*CardCharge, error)
}
