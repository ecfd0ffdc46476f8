package app

import (
	"net/http"
	"time"
)

type CustomerSubscriptionResponse struct {
	Id             int    `json:"id"`
	SubscriptionId int    `json:"subscription_id"`
	Type           string `json:"type"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	IsActive       bool   `json:"is_active"`
}

// PurchaseSubscriptionHandler grants the customer a pass from an active
// subscription template. The pass period starts today and runs for the
// template's duration.
func (app *application) PurchaseSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "subscriptionId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	subscription, err := app.subscriptionRepo.GetActiveById(r.Context(), id)
	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	start := time.Now().Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, subscription.DurationDays)

	pass, err := app.subscriptionRepo.Purchase(r.Context(), app.contextGetCustomerId(r), subscription.ID, start, end)
	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	resp := CustomerSubscriptionResponse{
		Id:             pass.ID,
		SubscriptionId: pass.SubscriptionID,
		Type:           string(subscription.Type),
		StartDate:      pass.StartDate.Format("2006-01-02"),
		EndDate:        pass.EndDate.Format("2006-01-02"),
		IsActive:       pass.IsActive,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
