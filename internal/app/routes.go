package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)

	r.Get("/healthcheck", app.GetHealth)

	r.Get("/availability", app.GetAvailability)

	r.With(app.requireAuthentication).Group(func(r chi.Router) {
		r.Post("/bookings", app.CreateBookingHandler)

		r.Route("/reservations/{reservationId}", func(r chi.Router) {
			r.Get("/", app.GetReservationHandler)
			r.Post("/payment", app.SettlePaymentHandler)
			r.Post("/cancellation", app.CancelReservationHandler)
		})

		r.Get("/loyalty", app.GetLoyaltySummaryHandler)
		r.Post("/loyalty/redemptions", app.RedeemPointsHandler)

		r.Post("/subscriptions/{subscriptionId}/purchase", app.PurchaseSubscriptionHandler)
	})

	r.With(app.requireAdmin).Group(func(r chi.Router) {
		r.Patch("/reservations/{reservationId}/status", app.UpdateReservationStatusHandler)
		r.Post("/notifications", app.CreateNotificationHandler)
	})

	return r
}
