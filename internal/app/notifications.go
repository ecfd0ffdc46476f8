package app

import (
	"net/http"
	"time"

	"github.com/vberezan/sport-booking-api/internal/domain"
)

type CreateNotificationRequest struct {
	CustomerId int    `json:"customer_id" validate:"required,gt=0"`
	Type       string `json:"type" validate:"required,oneof=reminder promo bonus"`
	Message    string `json:"message" validate:"required,max=500"`
	SendAt     string `json:"send_at" validate:"omitempty,date"`
}

type NotificationResponse struct {
	Id         int       `json:"id"`
	CustomerId int       `json:"customer_id"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	SendAt     time.Time `json:"send_at"`
}

// CreateNotificationHandler lets administrators schedule promos and other
// ad hoc notifications. Immediate ones are broadcast right away.
func (app *application) CreateNotificationHandler(w http.ResponseWriter, r *http.Request) {
	var input CreateNotificationRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if errs := app.validate(input); errs != nil {
		app.failedValidationResponse(w, r, errs)
		return
	}

	sendAt := time.Now()
	if input.SendAt != "" {
		sendAt, _ = time.Parse("2006-01-02", input.SendAt)
	}

	notification, err := app.dispatcher.CreateAndNotify(r.Context(),
		input.CustomerId, domain.NotificationType(input.Type), input.Message, sendAt)
	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	app.metrics.notificationsSent.Add(r.Context(), 1)

	resp := NotificationResponse{
		Id:         notification.ID,
		CustomerId: notification.CustomerID,
		Type:       string(notification.Type),
		Message:    notification.Message,
		SendAt:     notification.SendAt,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
