// Package payment implements payment settlement for reservations. The
// settlement methods form a closed set dispatched by a single Settler; a
// failed settlement leaves the reservation in a terminal cancelled/error
// state so its capacity is released, never in a paid-but-uncharged limbo.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vberezan/sport-booking-api/internal/domain"
	"github.com/vberezan/sport-booking-api/internal/loyalty"
	"github.com/vberezan/sport-booking-api/internal/notifier"
)

type Method string

const (
	MethodCard         Method = "card"
	MethodCash         Method = "cash"
	MethodBonus        Method = "bonus"
	MethodSubscription Method = "subscription"
)

// Request selects the settlement method and its parameters.
type Request struct {
	Method                 Method
	PointsToUse            decimal.Decimal
	Fallback               Method
	CustomerSubscriptionID int
}

// Result describes the reservation's payment state after settlement.
type Result struct {
	Reference         string
	PaymentStatus     domain.PaymentStatus
	ReservationStatus domain.ReservationStatus
	UsedPoints        decimal.Decimal
	Discount          decimal.Decimal
	AmountDue         decimal.Decimal
	PointsAccrued     decimal.Decimal
	Message           string
}

// SettlementError wraps a failure that already flipped the reservation to
// the cancelled/error terminal state.
type SettlementError struct {
	ReservationID int
	Err           error
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("settlement of reservation %d failed: %v", e.ReservationID, e.Err)
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}

type Settler struct {
	reservations  domain.ReservationRepository
	subscriptions domain.SubscriptionRepository
	resources     domain.ResourceRepository
	loyalty       *loyalty.Service
	cards         domain.CardProcessor
	notifier      *notifier.Dispatcher
	logger        *slog.Logger
}

func NewSettler(
	reservations domain.ReservationRepository,
	subscriptions domain.SubscriptionRepository,
	resources domain.ResourceRepository,
	loyaltyService *loyalty.Service,
	cards domain.CardProcessor,
	dispatcher *notifier.Dispatcher,
	logger *slog.Logger) *Settler {

	return &Settler{
		reservations:  reservations,
		subscriptions: subscriptions,
		resources:     resources,
		loyalty:       loyaltyService,
		cards:         cards,
		notifier:      dispatcher,
		logger:        logger,
	}
}

// Settle applies the requested method to the reservation. Precondition
// violations (already paid, unusable subscription) return their domain
// error without touching state; failures past the point of no return mark
// the reservation cancelled/error and come back as a *SettlementError.
func (s *Settler) Settle(
	ctx context.Context,
	customer *domain.Customer,
	reservation *domain.Reservation,
	req Request) (*Result, error) {

	if reservation.PaymentStatus != domain.PaymentStatusUnpaid {
		return nil, domain.ErrReservationNotPayable
	}

	switch req.Method {
	case MethodCard:
		return s.settleCard(ctx, customer, reservation)
	case MethodCash:
		return s.settleCash(ctx, reservation)
	case MethodBonus:
		return s.settleBonus(ctx, customer, reservation, req)
	case MethodSubscription:
		return s.settleSubscription(ctx, customer, reservation, req)
	default:
		return nil, fmt.Errorf("unknown payment method %q", req.Method)
	}
}

func (s *Settler) settleCard(
	ctx context.Context,
	customer *domain.Customer,
	reservation *domain.Reservation) (*Result, error) {

	charge, err := s.cards.Charge(ctx, customer, reservation)
	if err != nil {
		return nil, s.fail(ctx, reservation, fmt.Errorf("card charge: %w", err))
	}

	if err := s.markPaid(ctx, reservation); err != nil {
		return nil, s.fail(ctx, reservation, err)
	}

	points, err := s.loyalty.Accrue(ctx, reservation)
	if err != nil {
		return nil, s.fail(ctx, reservation, fmt.Errorf("point accrual: %w", err))
	}

	s.scheduleReminder(ctx, reservation)

	return &Result{
		Reference:         charge.Reference,
		PaymentStatus:     domain.PaymentStatusPaid,
		ReservationStatus: reservation.Status,
		AmountDue:         decimal.Zero,
		PointsAccrued:     points,
		Message:           fmt.Sprintf("Card payment of %s accepted.", charge.Amount),
	}, nil
}

func (s *Settler) settleCash(ctx context.Context, reservation *domain.Reservation) (*Result, error) {
	// Cash stays unpaid until an administrator confirms the receipt.
	// Section bookings are already confirmed, so the seat is held and the
	// reminder goes out right away; hall bookings wait for confirmation.
	if reservation.IsSectionBooking() {
		s.scheduleReminder(ctx, reservation)
	}

	return &Result{
		Reference:         uuid.New().String(),
		PaymentStatus:     domain.PaymentStatusUnpaid,
		ReservationStatus: reservation.Status,
		AmountDue:         reservation.Price,
		Message:           "Cash payment on site, awaiting confirmation.",
	}, nil
}

func (s *Settler) settleBonus(
	ctx context.Context,
	customer *domain.Customer,
	reservation *domain.Reservation,
	req Request) (*Result, error) {

	redemption, err := s.loyalty.Redeem(ctx, customer.ID, reservation.ID, req.PointsToUse)
	if err != nil {
		return nil, s.fail(ctx, reservation, fmt.Errorf("point redemption: %w", err))
	}

	reservation.Price = redemption.RemainingPrice

	if redemption.RemainingPrice.IsZero() {
		if err := s.markPaid(ctx, reservation); err != nil {
			return nil, s.fail(ctx, reservation, err)
		}

		points, err := s.loyalty.Accrue(ctx, reservation)
		if err != nil {
			return nil, s.fail(ctx, reservation, fmt.Errorf("point accrual: %w", err))
		}

		s.scheduleReminder(ctx, reservation)

		return &Result{
			Reference:         uuid.New().String(),
			PaymentStatus:     domain.PaymentStatusPaid,
			ReservationStatus: reservation.Status,
			UsedPoints:        redemption.UsedPoints,
			Discount:          redemption.Discount,
			AmountDue:         decimal.Zero,
			PointsAccrued:     points,
			Message:           fmt.Sprintf("Paid in full with %s bonus points.", redemption.UsedPoints),
		}, nil
	}

	var result *Result

	switch req.Fallback {
	case MethodCard:
		result, err = s.settleCard(ctx, customer, reservation)
	case MethodCash:
		result, err = s.settleCash(ctx, reservation)
	default:
		return &Result{
			Reference:         uuid.New().String(),
			PaymentStatus:     domain.PaymentStatusUnpaid,
			ReservationStatus: reservation.Status,
			UsedPoints:        redemption.UsedPoints,
			Discount:          redemption.Discount,
			AmountDue:         redemption.RemainingPrice,
			Message:           fmt.Sprintf("Redeemed %s points, %s left to pay.", redemption.UsedPoints, redemption.RemainingPrice),
		}, nil
	}

	if err != nil {
		return nil, err
	}

	result.UsedPoints = redemption.UsedPoints
	result.Discount = redemption.Discount

	return result, nil
}

func (s *Settler) settleSubscription(
	ctx context.Context,
	customer *domain.Customer,
	reservation *domain.Reservation,
	req Request) (*Result, error) {

	pass, err := s.subscriptions.GetCustomerSubscription(ctx, req.CustomerSubscriptionID, customer.ID)
	if err != nil {
		return nil, err
	}

	if !pass.Usable(time.Now()) {
		return nil, domain.ErrSubscriptionNotUsable
	}

	if err := s.reservations.AttachSubscription(ctx, reservation.ID, pass.ID); err != nil {
		return nil, s.fail(ctx, reservation, err)
	}

	if err := s.markPaid(ctx, reservation); err != nil {
		return nil, s.fail(ctx, reservation, err)
	}

	if reservation.Status == domain.ReservationStatusPending {
		if err := s.reservations.UpdateStatus(ctx, reservation.ID, domain.ReservationStatusConfirmed); err != nil {
			return nil, s.fail(ctx, reservation, err)
		}
		reservation.Status = domain.ReservationStatusConfirmed
	}

	if pass.Subscription != nil && pass.Subscription.Type == domain.SubscriptionTypeSingle {
		if err := s.subscriptions.ConsumeSingle(ctx, pass.ID, time.Now()); err != nil {
			return nil, s.fail(ctx, reservation, err)
		}
	}

	points, err := s.loyalty.Accrue(ctx, reservation)
	if err != nil {
		return nil, s.fail(ctx, reservation, fmt.Errorf("point accrual: %w", err))
	}

	s.scheduleReminder(ctx, reservation)

	return &Result{
		Reference:         uuid.New().String(),
		PaymentStatus:     domain.PaymentStatusPaid,
		ReservationStatus: reservation.Status,
		AmountDue:         decimal.Zero,
		PointsAccrued:     points,
		Message:           "Paid with subscription.",
	}, nil
}

// ConfirmCashPayment is the administrator acknowledging a cash receipt:
// the reservation becomes paid, points accrue, and the reminder goes out.
func (s *Settler) ConfirmCashPayment(ctx context.Context, reservation *domain.Reservation) (*Result, error) {
	if reservation.Status == domain.ReservationStatusCancelled {
		return nil, domain.ErrReservationNotPayable
	}

	if err := s.markPaid(ctx, reservation); err != nil {
		if errors.Is(err, domain.ErrEditConflict) {
			return nil, domain.ErrReservationNotPayable
		}
		return nil, err
	}

	points, err := s.loyalty.Accrue(ctx, reservation)
	if err != nil {
		return nil, s.fail(ctx, reservation, fmt.Errorf("point accrual: %w", err))
	}

	s.scheduleReminder(ctx, reservation)

	return &Result{
		Reference:         uuid.New().String(),
		PaymentStatus:     domain.PaymentStatusPaid,
		ReservationStatus: reservation.Status,
		PointsAccrued:     points,
		Message:           "Cash payment confirmed.",
	}, nil
}

func (s *Settler) markPaid(ctx context.Context, reservation *domain.Reservation) error {
	if err := s.reservations.SetPaid(ctx, reservation.ID); err != nil {
		return err
	}

	reservation.PaymentStatus = domain.PaymentStatusPaid

	return nil
}

// fail flips the reservation to the cancelled/error terminal state so the
// capacity it held is released, then wraps the cause.
func (s *Settler) fail(ctx context.Context, reservation *domain.Reservation, cause error) error {
	if err := s.reservations.MarkFailed(ctx, reservation.ID); err != nil {
		s.logger.Error("failed to mark reservation failed",
			"reservation_id", reservation.ID, "error", err)
	} else {
		reservation.PaymentStatus = domain.PaymentStatusError
		reservation.Status = domain.ReservationStatusCancelled
	}

	s.logger.Error("settlement failed", "reservation_id", reservation.ID, "error", cause)

	return &SettlementError{ReservationID: reservation.ID, Err: cause}
}

// scheduleReminder creates a reminder notification due one day before the
// slot starts. Best effort: any error is logged and swallowed.
func (s *Settler) scheduleReminder(ctx context.Context, reservation *domain.Reservation) {
	slot, err := s.resources.GetTimeSlot(ctx, reservation.TimeSlotID)
	if err != nil {
		s.logger.Error("failed to load timeslot for reminder",
			"reservation_id", reservation.ID, "error", err)
		return
	}

	startsAt := slot.StartsAt()
	message := fmt.Sprintf("Reminder: reservation #%d on %s.",
		reservation.ID, startsAt.Format("2006-01-02 15:04"))

	_, err = s.notifier.CreateAndNotify(ctx,
		reservation.CustomerID, domain.NotificationTypeReminder, message, startsAt.AddDate(0, 0, -1))
	if err != nil {
		s.logger.Error("failed to create reminder",
			"reservation_id", reservation.ID, "error", err)
	}
}
