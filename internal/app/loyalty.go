package app

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type LoyaltySummaryResponse struct {
	CustomerId      int             `json:"customer_id"`
	BonusPoints     decimal.Decimal `json:"bonus_points"`
	CardType        *string         `json:"card_type,omitempty"`
	BonusMultiplier *float64        `json:"bonus_multiplier,omitempty"`
}

func (app *application) GetLoyaltySummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := app.loyalty.Summary(r.Context(), app.contextGetCustomerId(r))
	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	resp := LoyaltySummaryResponse{
		CustomerId:  summary.CustomerID,
		BonusPoints: summary.BonusPoints,
	}

	if summary.Card != nil {
		cardType := string(summary.Card.Type)
		resp.CardType = &cardType
		resp.BonusMultiplier = &summary.Card.BonusMultiplier
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type RedeemPointsRequest struct {
	ReservationId int             `json:"reservation_id" validate:"required,gt=0"`
	Points        decimal.Decimal `json:"points" validate:"positive_points"`
}

type RedemptionResponse struct {
	UsedPoints     decimal.Decimal `json:"used_points"`
	Discount       decimal.Decimal `json:"discount"`
	RemainingPrice decimal.Decimal `json:"remaining_price"`
}

// RedeemPointsHandler lowers a reservation's price by spending points,
// without settling the remainder.
func (app *application) RedeemPointsHandler(w http.ResponseWriter, r *http.Request) {
	var input RedeemPointsRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if errs := app.validate(input); errs != nil {
		app.failedValidationResponse(w, r, errs)
		return
	}

	customerId := app.contextGetCustomerId(r)

	reservation, err := app.reservationRepo.GetByIdAndCustomer(r.Context(), input.ReservationId, customerId)
	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	redemption, err := app.loyalty.Redeem(r.Context(), customerId, reservation.ID, input.Points)
	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	resp := RedemptionResponse{
		UsedPoints:     redemption.UsedPoints,
		Discount:       redemption.Discount,
		RemainingPrice: redemption.RemainingPrice,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
