package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/vberezan/sport-booking-api/internal/domain"
)

type StripeCardProcessor struct {
	currency string
}

func NewStripeCardProcessor(currency string) *StripeCardProcessor {
	return &StripeCardProcessor{currency: currency}
}

func (s *StripeCardProcessor) Charge(
	ctx context.Context,
	customer *domain.Customer,
	reservation *domain.Reservation) (*domain.CardCharge, error) {

	priceCents := reservation.Price.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(priceCents),
		Currency: stripe.String(s.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description:  stripe.String(fmt.Sprintf("Reservation #%d", reservation.ID)),
		ReceiptEmail: stripe.String(customer.Email),
		Metadata: map[string]string{
			"reservation_id": strconv.Itoa(reservation.ID),
			"customer_id":    strconv.Itoa(customer.ID),
		},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}

	return &domain.CardCharge{
		Reference: intent.ID,
		Amount:    reservation.Price,
		Currency:  s.currency,
	}, nil
}
