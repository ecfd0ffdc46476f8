// Package loyalty implements the loyalty ledger: point accrual after
// successful payments, redemption against reservation prices, and card tier
// upgrades once balances cross the configured thresholds.
package loyalty

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vberezan/sport-booking-api/internal/domain"
	"github.com/vberezan/sport-booking-api/internal/notifier"
)

type Config struct {
	PointValue         decimal.Decimal
	PremiumThreshold   decimal.Decimal
	CorporateThreshold decimal.Decimal
}

type Service struct {
	loyalty   domain.LoyaltyRepository
	customers domain.CustomerRepository
	notifier  *notifier.Dispatcher
	config    Config
	logger    *slog.Logger
}

func NewService(
	loyaltyRepo domain.LoyaltyRepository,
	customers domain.CustomerRepository,
	dispatcher *notifier.Dispatcher,
	config Config,
	logger *slog.Logger) *Service {

	return &Service{
		loyalty:   loyaltyRepo,
		customers: customers,
		notifier:  dispatcher,
		config:    config,
		logger:    logger,
	}
}

// Accrue awards points for a paid reservation. The repository enforces the
// exactly-once guarantee via the points_awarded flag; calling Accrue again
// on the same reservation returns zero. A positive accrual may trigger a
// tier upgrade and emits a bonus notification, neither of which can fail
// the accrual itself.
func (s *Service) Accrue(ctx context.Context, reservation *domain.Reservation) (decimal.Decimal, error) {
	points, err := s.loyalty.Accrue(ctx, reservation.ID)
	if err != nil {
		return decimal.Zero, err
	}

	if !points.IsPositive() {
		return points, nil
	}

	if _, err := s.MaybeUpgradeTier(ctx, reservation.CustomerID); err != nil {
		s.logger.Error("tier upgrade check failed",
			"customer_id", reservation.CustomerID, "error", err)
	}

	message := fmt.Sprintf("You earned %s bonus points for reservation #%d.", points, reservation.ID)
	_, err = s.notifier.CreateAndNotify(ctx,
		reservation.CustomerID, domain.NotificationTypeBonus, message, time.Now())
	if err != nil {
		s.logger.Error("failed to create bonus notification",
			"customer_id", reservation.CustomerID, "error", err)
	}

	return points, nil
}

// Redeem spends up to the requested points against the reservation's price.
// The result always satisfies remaining_price >= 0 and balance >= 0.
func (s *Service) Redeem(
	ctx context.Context,
	customerID,
	reservationID int,
	points decimal.Decimal) (*domain.Redemption, error) {

	return s.loyalty.Redeem(ctx, customerID, reservationID, points)
}

// MaybeUpgradeTier reassigns the customer's card when the balance crosses a
// tier threshold. Idempotent: a customer already at or above the target
// tier keeps their card.
func (s *Service) MaybeUpgradeTier(ctx context.Context, customerID int) (domain.CardType, error) {
	summary, err := s.loyalty.Summary(ctx, customerID)
	if err != nil {
		return "", err
	}

	var target domain.CardType
	switch {
	case summary.BonusPoints.GreaterThanOrEqual(s.config.CorporateThreshold):
		target = domain.CardTypeCorporate
	case summary.BonusPoints.GreaterThanOrEqual(s.config.PremiumThreshold):
		target = domain.CardTypePremium
	default:
		return "", nil
	}

	if summary.Card != nil && tierRank(summary.Card.Type) >= tierRank(target) {
		return "", nil
	}

	if err := s.customers.AssignCard(ctx, customerID, target); err != nil {
		return "", err
	}

	s.logger.Info("loyalty tier upgraded", "customer_id", customerID, "tier", target)

	message := fmt.Sprintf("Congratulations! Your loyalty card was upgraded to %s.", target)
	_, err = s.notifier.CreateAndNotify(ctx, customerID, domain.NotificationTypeBonus, message, time.Now())
	if err != nil {
		s.logger.Error("failed to create upgrade notification", "customer_id", customerID, "error", err)
	}

	return target, nil
}

func (s *Service) Summary(ctx context.Context, customerID int) (*domain.LoyaltySummary, error) {
	return s.loyalty.Summary(ctx, customerID)
}

func tierRank(t domain.CardType) int {
	switch t {
	case domain.CardTypeCorporate:
		return 2
	case domain.CardTypePremium:
		return 1
	default:
		return 0
	}
}
