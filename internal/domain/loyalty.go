package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Redemption is the outcome of spending loyalty points against a
// reservation's price.
type Redemption struct {
	UsedPoints     decimal.Decimal
	Discount       decimal.Decimal
	RemainingPrice decimal.Decimal
}

// LoyaltySummary is the read model for a customer's loyalty account.
type LoyaltySummary struct {
	CustomerID  int
	BonusPoints decimal.Decimal
	Card        *Card
}

// CalculatePoints computes the loyalty points earned for a paid amount:
// amount times the card multiplier, rounded to two decimal places half-up.
// Never negative.
func CalculatePoints(amount decimal.Decimal, multiplier float64) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}

	pts := amount.Mul(decimal.NewFromFloat(multiplier)).Round(2)
	if pts.IsNegative() {
		return decimal.Zero
	}

	return pts
}

// QuoteRedemption caps the requested points by the available balance, and
// further so the remaining price never goes negative: when the naive cap
// would overshoot, the points needed to cover the price are recomputed
// instead of burning the surplus. The recompute rounds down and the
// discount is capped at the price, so no point value can drive the
// remainder below zero.
func QuoteRedemption(price, available, requested, pointValue decimal.Decimal) Redemption {
	if requested.IsNegative() || requested.IsZero() || pointValue.IsZero() {
		return Redemption{
			UsedPoints:     decimal.Zero,
			Discount:       decimal.Zero,
			RemainingPrice: price,
		}
	}

	used := decimal.Min(available, requested)
	discount := used.Mul(pointValue).Round(2)
	remaining := price.Sub(discount)

	if remaining.IsNegative() {
		needed := price.Div(pointValue).RoundDown(2)
		used = decimal.Min(available, needed)
		discount = decimal.Min(used.Mul(pointValue).Round(2), price)
		remaining = price.Sub(discount)
	}

	return Redemption{
		UsedPoints:     used,
		Discount:       discount,
		RemainingPrice: remaining.Round(2),
	}
}

type LoyaltyRepository interface {
	// Accrue awards points for a paid reservation exactly once. The
	// customer row is locked for the balance update and the reservation's
	// points_awarded flag is set in the same transaction, so concurrent
	// retries accrue nothing. Returns the points awarded (zero when the
	// reservation is not paid or was already rewarded).
	Accrue(ctx context.Context, reservationID int) (decimal.Decimal, error)

	// Redeem spends points against the reservation's price. Balance
	// decrement and price reduction happen in one transaction holding the
	// customer row lock; the invariants remaining_price >= 0 and
	// balance >= 0 always hold afterwards.
	Redeem(ctx context.Context, customerID, reservationID int, points decimal.Decimal) (*Redemption, error)

	Summary(ctx context.Context, customerID int) (*LoyaltySummary, error)
}
