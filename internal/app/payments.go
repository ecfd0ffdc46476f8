package app

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/vberezan/sport-booking-api/internal/payment"
)

type SettlementResponse struct {
	Reference         string          `json:"reference"`
	PaymentStatus     string          `json:"payment_status"`
	ReservationStatus string          `json:"reservation_status"`
	UsedPoints        decimal.Decimal `json:"used_points"`
	Discount          decimal.Decimal `json:"discount"`
	AmountDue         decimal.Decimal `json:"amount_due"`
	PointsAccrued     decimal.Decimal `json:"points_accrued"`
	Message           string          `json:"message"`
}

func toSettlementResponse(result *payment.Result) *SettlementResponse {
	return &SettlementResponse{
		Reference:         result.Reference,
		PaymentStatus:     string(result.PaymentStatus),
		ReservationStatus: string(result.ReservationStatus),
		UsedPoints:        result.UsedPoints,
		Discount:          result.Discount,
		AmountDue:         result.AmountDue,
		PointsAccrued:     result.PointsAccrued,
		Message:           result.Message,
	}
}

// SettlePaymentHandler settles an existing unpaid reservation.
func (app *application) SettlePaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "reservationId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input PaymentInput

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if errs := app.validate(input); errs != nil {
		app.failedValidationResponse(w, r, errs)
		return
	}

	customerId := app.contextGetCustomerId(r)

	customer, err := app.customerRepo.GetById(r.Context(), customerId)
	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	reservation, err := app.reservationRepo.GetByIdAndCustomer(r.Context(), id, customerId)
	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	result, err := app.settler.Settle(r.Context(), customer, reservation, payment.Request{
		Method:                 payment.Method(input.Method),
		PointsToUse:            input.PointsToUse,
		Fallback:               payment.Method(input.Fallback),
		CustomerSubscriptionID: input.CustomerSubscriptionId,
	})
	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	app.metrics.paymentsSettled.Add(r.Context(), 1)

	err = app.writeJSON(w, http.StatusOK, toSettlementResponse(result), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
