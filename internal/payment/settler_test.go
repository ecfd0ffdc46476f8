package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/vberezan/sport-booking-api/internal/domain"
	"github.com/vberezan/sport-booking-api/internal/loyalty"
	"github.com/vberezan/sport-booking-api/internal/mocks"
	"github.com/vberezan/sport-booking-api/internal/notifier"
)

type SettlerTestSuite struct {
	suite.Suite
	reservations  *mocks.MockReservationRepo
	subscriptions *mocks.MockSubscriptionRepo
	resources     *mocks.MockResourceRepo
	loyaltyRepo   *mocks.MockLoyaltyRepo
	customers     *mocks.MockCustomerRepo
	notifications *mocks.MockNotificationRepo
	cards         *mocks.MockCardProcessor
	settler       *Settler

	markedFailed bool
}

func (s *SettlerTestSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.reservations = &mocks.MockReservationRepo{}
	s.subscriptions = &mocks.MockSubscriptionRepo{}
	s.resources = &mocks.MockResourceRepo{}
	s.loyaltyRepo = &mocks.MockLoyaltyRepo{}
	s.customers = &mocks.MockCustomerRepo{}
	s.notifications = &mocks.MockNotificationRepo{}
	s.cards = &mocks.MockCardProcessor{}
	s.markedFailed = false

	dispatcher := notifier.New(s.notifications, s.customers, logger)

	loyaltyService := loyalty.NewService(s.loyaltyRepo, s.customers, dispatcher, loyalty.Config{
		PointValue:         decimal.NewFromFloat(0.01),
		PremiumThreshold:   decimal.NewFromInt(1000),
		CorporateThreshold: decimal.NewFromInt(5000),
	}, logger)

	s.settler = NewSettler(
		s.reservations, s.subscriptions, s.resources, loyaltyService, s.cards, dispatcher, logger)

	// Defaults for the happy path; individual tests override what they need.
	s.reservations.SetPaidFunc = func(ctx context.Context, id int) error {
		return nil
	}
	s.reservations.MarkFailedFunc = func(ctx context.Context, id int) error {
		s.markedFailed = true
		return nil
	}
	s.loyaltyRepo.AccrueFunc = func(ctx context.Context, reservationID int) (decimal.Decimal, error) {
		return decimal.Zero, nil
	}
	s.resources.GetTimeSlotFunc = func(ctx context.Context, id int) (*domain.TimeSlot, error) {
		return &domain.TimeSlot{
			ID:        id,
			Date:      time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			StartTime: time.Date(0, 1, 1, 18, 0, 0, 0, time.UTC),
		}, nil
	}
	s.notifications.CreateFunc = func(ctx context.Context, notification *domain.Notification) error {
		notification.ID = 1
		return nil
	}
	s.notifications.MarkSentFunc = func(ctx context.Context, id int, sentAt time.Time) error {
		return nil
	}
	s.customers.GetByIdFunc = func(ctx context.Context, id int) (*domain.Customer, error) {
		return &domain.Customer{ID: id, Email: "customer@example.com"}, nil
	}
}

func TestSettlerSuite(t *testing.T) {
	suite.Run(t, new(SettlerTestSuite))
}

func unpaidReservation() *domain.Reservation {
	return &domain.Reservation{
		ID:            42,
		CustomerID:    1,
		HallID:        3,
		TimeSlotID:    7,
		Seats:         1,
		Status:        domain.ReservationStatusConfirmed,
		PaymentStatus: domain.PaymentStatusUnpaid,
		Price:         decimal.NewFromInt(50),
	}
}

func (s *SettlerTestSuite) TestRejectsAlreadyPaidReservation() {
	reservation := unpaidReservation()
	reservation.PaymentStatus = domain.PaymentStatusPaid

	_, err := s.settler.Settle(context.Background(), &domain.Customer{ID: 1}, reservation, Request{
		Method: MethodCard,
	})

	s.ErrorIs(err, domain.ErrReservationNotPayable)
	s.False(s.markedFailed)
}

func (s *SettlerTestSuite) TestCardPaymentHappyPath() {
	reservation := unpaidReservation()

	s.cards.ChargeFunc = func(ctx context.Context, customer *domain.Customer, r *domain.Reservation) (*domain.CardCharge, error) {
		return &domain.CardCharge{Reference: "ch_123", Amount: r.Price, Currency: "usd"}, nil
	}
	s.loyaltyRepo.AccrueFunc = func(ctx context.Context, reservationID int) (decimal.Decimal, error) {
		return decimal.NewFromFloat(0.50), nil
	}
	s.loyaltyRepo.SummaryFunc = func(ctx context.Context, customerID int) (*domain.LoyaltySummary, error) {
		return &domain.LoyaltySummary{CustomerID: customerID, BonusPoints: decimal.NewFromFloat(0.50)}, nil
	}

	result, err := s.settler.Settle(context.Background(), &domain.Customer{ID: 1}, reservation, Request{
		Method: MethodCard,
	})

	s.NoError(err)
	s.Equal("ch_123", result.Reference)
	s.Equal(domain.PaymentStatusPaid, result.PaymentStatus)
	s.True(decimal.NewFromFloat(0.50).Equal(result.PointsAccrued))
	s.Equal(domain.PaymentStatusPaid, reservation.PaymentStatus)
}

func (s *SettlerTestSuite) TestCardFailureCancelsReservation() {
	reservation := unpaidReservation()

	s.cards.ChargeFunc = func(ctx context.Context, customer *domain.Customer, r *domain.Reservation) (*domain.CardCharge, error) {
		return nil, errors.New("card declined")
	}

	_, err := s.settler.Settle(context.Background(), &domain.Customer{ID: 1}, reservation, Request{
		Method: MethodCard,
	})

	var settlementErr *SettlementError
	s.ErrorAs(err, &settlementErr)
	s.Equal(42, settlementErr.ReservationID)
	s.True(s.markedFailed)
	s.Equal(domain.PaymentStatusError, reservation.PaymentStatus)
	s.Equal(domain.ReservationStatusCancelled, reservation.Status)
}

func (s *SettlerTestSuite) TestCashStaysUnpaid() {
	reservation := unpaidReservation()

	result, err := s.settler.Settle(context.Background(), &domain.Customer{ID: 1}, reservation, Request{
		Method: MethodCash,
	})

	s.NoError(err)
	s.Equal(domain.PaymentStatusUnpaid, result.PaymentStatus)
	s.True(reservation.Price.Equal(result.AmountDue))
	s.Equal(domain.PaymentStatusUnpaid, reservation.PaymentStatus)
}

func (s *SettlerTestSuite) TestBonusFullRedemption() {
	reservation := unpaidReservation()

	s.loyaltyRepo.RedeemFunc = func(ctx context.Context, customerID, reservationID int, points decimal.Decimal) (*domain.Redemption, error) {
		return &domain.Redemption{
			UsedPoints:     decimal.NewFromInt(5000),
			Discount:       decimal.NewFromInt(50),
			RemainingPrice: decimal.Zero,
		}, nil
	}

	result, err := s.settler.Settle(context.Background(), &domain.Customer{ID: 1}, reservation, Request{
		Method:      MethodBonus,
		PointsToUse: decimal.NewFromInt(6000),
	})

	s.NoError(err)
	s.Equal(domain.PaymentStatusPaid, result.PaymentStatus)
	s.True(decimal.NewFromInt(5000).Equal(result.UsedPoints))
	s.True(result.AmountDue.IsZero())
}

func (s *SettlerTestSuite) TestBonusPartialRedemptionWithoutFallback() {
	reservation := unpaidReservation()

	s.loyaltyRepo.RedeemFunc = func(ctx context.Context, customerID, reservationID int, points decimal.Decimal) (*domain.Redemption, error) {
		return &domain.Redemption{
			UsedPoints:     decimal.NewFromInt(1000),
			Discount:       decimal.NewFromInt(10),
			RemainingPrice: decimal.NewFromInt(40),
		}, nil
	}

	result, err := s.settler.Settle(context.Background(), &domain.Customer{ID: 1}, reservation, Request{
		Method:      MethodBonus,
		PointsToUse: decimal.NewFromInt(1000),
	})

	s.NoError(err)
	s.Equal(domain.PaymentStatusUnpaid, result.PaymentStatus)
	s.True(decimal.NewFromInt(40).Equal(result.AmountDue))
	s.True(decimal.NewFromInt(40).Equal(reservation.Price))
}

func (s *SettlerTestSuite) TestBonusWithCardFallback() {
	reservation := unpaidReservation()

	s.loyaltyRepo.RedeemFunc = func(ctx context.Context, customerID, reservationID int, points decimal.Decimal) (*domain.Redemption, error) {
		return &domain.Redemption{
			UsedPoints:     decimal.NewFromInt(1000),
			Discount:       decimal.NewFromInt(10),
			RemainingPrice: decimal.NewFromInt(40),
		}, nil
	}

	var chargedAmount decimal.Decimal
	s.cards.ChargeFunc = func(ctx context.Context, customer *domain.Customer, r *domain.Reservation) (*domain.CardCharge, error) {
		chargedAmount = r.Price
		return &domain.CardCharge{Reference: "ch_456", Amount: r.Price, Currency: "usd"}, nil
	}

	result, err := s.settler.Settle(context.Background(), &domain.Customer{ID: 1}, reservation, Request{
		Method:      MethodBonus,
		PointsToUse: decimal.NewFromInt(1000),
		Fallback:    MethodCard,
	})

	s.NoError(err)
	s.Equal(domain.PaymentStatusPaid, result.PaymentStatus)
	s.Equal("ch_456", result.Reference)
	s.True(decimal.NewFromInt(40).Equal(chargedAmount), "card must be charged the discounted price")
	s.True(decimal.NewFromInt(1000).Equal(result.UsedPoints))
}

func (s *SettlerTestSuite) TestSubscriptionSettlement() {
	reservation := unpaidReservation()
	reservation.Status = domain.ReservationStatusPending

	consumed := false
	attached := false

	s.subscriptions.GetCustomerSubscriptionFunc = func(ctx context.Context, id, customerID int) (*domain.CustomerSubscription, error) {
		return &domain.CustomerSubscription{
			ID:             8,
			CustomerID:     customerID,
			SubscriptionID: 2,
			Subscription:   &domain.Subscription{ID: 2, Type: domain.SubscriptionTypeSingle},
			IsActive:       true,
		}, nil
	}
	s.subscriptions.ConsumeSingleFunc = func(ctx context.Context, id int, usedAt time.Time) error {
		consumed = true
		return nil
	}
	s.reservations.AttachSubscriptionFunc = func(ctx context.Context, id, customerSubscriptionID int) error {
		attached = true
		return nil
	}
	s.reservations.UpdateStatusFunc = func(ctx context.Context, id int, status domain.ReservationStatus) error {
		return nil
	}

	result, err := s.settler.Settle(context.Background(), &domain.Customer{ID: 1}, reservation, Request{
		Method:                 MethodSubscription,
		CustomerSubscriptionID: 8,
	})

	s.NoError(err)
	s.Equal(domain.PaymentStatusPaid, result.PaymentStatus)
	s.Equal(domain.ReservationStatusConfirmed, reservation.Status)
	s.True(consumed, "single pass must be consumed")
	s.True(attached)
}

func (s *SettlerTestSuite) TestUnusableSubscriptionRejectedWithoutStateChange() {
	reservation := unpaidReservation()

	s.subscriptions.GetCustomerSubscriptionFunc = func(ctx context.Context, id, customerID int) (*domain.CustomerSubscription, error) {
		return &domain.CustomerSubscription{
			ID:           8,
			CustomerID:   customerID,
			Subscription: &domain.Subscription{ID: 2, Type: domain.SubscriptionTypeSingle},
			IsActive:     true,
			IsUsed:       true,
		}, nil
	}

	_, err := s.settler.Settle(context.Background(), &domain.Customer{ID: 1}, reservation, Request{
		Method:                 MethodSubscription,
		CustomerSubscriptionID: 8,
	})

	s.ErrorIs(err, domain.ErrSubscriptionNotUsable)
	s.False(s.markedFailed)
	s.Equal(domain.PaymentStatusUnpaid, reservation.PaymentStatus)
}

func (s *SettlerTestSuite) TestConfirmCashPayment() {
	reservation := unpaidReservation()

	s.loyaltyRepo.AccrueFunc = func(ctx context.Context, reservationID int) (decimal.Decimal, error) {
		return decimal.NewFromFloat(0.50), nil
	}
	s.loyaltyRepo.SummaryFunc = func(ctx context.Context, customerID int) (*domain.LoyaltySummary, error) {
		return &domain.LoyaltySummary{CustomerID: customerID, BonusPoints: decimal.NewFromFloat(0.50)}, nil
	}

	result, err := s.settler.ConfirmCashPayment(context.Background(), reservation)

	s.NoError(err)
	s.Equal(domain.PaymentStatusPaid, result.PaymentStatus)
	s.True(decimal.NewFromFloat(0.50).Equal(result.PointsAccrued))
}

func (s *SettlerTestSuite) TestCancelledReservationCannotBeCashConfirmed() {
	reservation := unpaidReservation()
	reservation.Status = domain.ReservationStatusCancelled

	s.reservations.SetPaidFunc = func(ctx context.Context, id int) error {
		s.Fail("a cancelled reservation must not be marked paid")
		return nil
	}

	_, err := s.settler.ConfirmCashPayment(context.Background(), reservation)

	s.ErrorIs(err, domain.ErrReservationNotPayable)
	s.Equal(domain.PaymentStatusUnpaid, reservation.PaymentStatus)
}

func (s *SettlerTestSuite) TestConfirmCashPaymentTwiceFails() {
	reservation := unpaidReservation()

	s.reservations.SetPaidFunc = func(ctx context.Context, id int) error {
		return domain.ErrEditConflict
	}

	_, err := s.settler.ConfirmCashPayment(context.Background(), reservation)

	s.ErrorIs(err, domain.ErrReservationNotPayable)
}
