package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/vberezan/sport-booking-api/internal/domain"
	"github.com/vberezan/sport-booking-api/internal/payment"
)

type ErrorResponse struct {
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	RequestId string            `json:"request_id"`
	Timestamp time.Time         `json:"timestamp"`
}

func (app *application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	message := "The server encountered a problem and could not process your request"
	app.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "The requested resource not found"
	app.errorResponse(w, r, http.StatusNotFound, message)
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, errs map[string]string) {
	resp := ErrorResponse{
		Message:   "The request contains invalid fields",
		Errors:    errs,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *application) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	message := "Unable to update the record due to an edit conflict, please try again"
	app.errorResponse(w, r, http.StatusConflict, message)
}

func (app *application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	message := "You must be authenticated to access this resource"
	app.errorResponse(w, r, http.StatusUnauthorized, message)
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	message := "You do not have permission to access this resource"
	app.errorResponse(w, r, http.StatusForbidden, message)
}

// mapDomainError translates service and repository errors into HTTP
// responses. Booking rejections and payment failures carry a client-facing
// message; everything else is a 500.
func (app *application) mapDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var settlementErr *payment.SettlementError

	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, domain.ErrEditConflict):
		app.editConflictResponse(w, r)
	case domain.IsBookingRejection(err):
		app.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrReservationNotPayable),
		errors.Is(err, domain.ErrSubscriptionNotUsable):
		app.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &settlementErr):
		app.errorResponse(w, r, http.StatusPaymentRequired,
			"Payment failed and the reservation was cancelled")
	default:
		app.serverErrorResponse(w, r, err)
	}
}
