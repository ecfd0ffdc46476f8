package app

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vberezan/sport-booking-api/internal/booking"
	"github.com/vberezan/sport-booking-api/internal/domain"
	"github.com/vberezan/sport-booking-api/internal/payment"
)

type CreateBookingRequest struct {
	HallId     *int          `json:"hall_id"`
	SectionId  *int          `json:"section_id"`
	TimeSlotId *int          `json:"time_slot_id"`
	Seats      int           `json:"seats" validate:"omitempty,min=1,max=50"`
	Payment    *PaymentInput `json:"payment"`
}

type PaymentInput struct {
	Method                 string          `json:"method" validate:"required,payment_method"`
	PointsToUse            decimal.Decimal `json:"points_to_use"`
	Fallback               string          `json:"fallback" validate:"omitempty,payment_method"`
	CustomerSubscriptionId int             `json:"customer_subscription_id"`
}

type ReservationResponse struct {
	Id            int             `json:"id"`
	HallId        int             `json:"hall_id"`
	SectionId     *int            `json:"section_id,omitempty"`
	TimeSlotId    int             `json:"time_slot_id"`
	Seats         int             `json:"seats"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	Price         decimal.Decimal `json:"price"`
	CreatedAt     time.Time       `json:"created_at"`
}

type BookingResponse struct {
	Reservation ReservationResponse `json:"reservation"`
	Settlement  *SettlementResponse `json:"settlement,omitempty"`
}

func toReservationResponse(reservation *domain.Reservation) ReservationResponse {
	return ReservationResponse{
		Id:            reservation.ID,
		HallId:        reservation.HallID,
		SectionId:     reservation.SectionID,
		TimeSlotId:    reservation.TimeSlotID,
		Seats:         reservation.Seats,
		Status:        string(reservation.Status),
		PaymentStatus: string(reservation.PaymentStatus),
		Price:         reservation.Price,
		CreatedAt:     reservation.CreatedAt,
	}
}

// CreateBookingHandler admits a booking and, when a payment block is
// present, settles it in the same request.
func (app *application) CreateBookingHandler(w http.ResponseWriter, r *http.Request) {
	var input CreateBookingRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if errs := app.validate(input); errs != nil {
		app.failedValidationResponse(w, r, errs)
		return
	}

	customer, err := app.customerRepo.GetById(r.Context(), app.contextGetCustomerId(r))
	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	reservation, err := app.bookings.CreateBooking(r.Context(), customer, booking.Request{
		HallID:     input.HallId,
		SectionID:  input.SectionId,
		TimeSlotID: input.TimeSlotId,
		Seats:      input.Seats,
	})
	if err != nil {
		if domain.IsBookingRejection(err) {
			app.metrics.bookingsRejected.Add(r.Context(), 1)
		}
		app.mapDomainError(w, r, err)
		return
	}

	app.metrics.bookingsCreated.Add(r.Context(), 1)

	resp := BookingResponse{Reservation: toReservationResponse(reservation)}

	if input.Payment != nil {
		result, err := app.settler.Settle(r.Context(), customer, reservation, payment.Request{
			Method:                 payment.Method(input.Payment.Method),
			PointsToUse:            input.Payment.PointsToUse,
			Fallback:               payment.Method(input.Payment.Fallback),
			CustomerSubscriptionID: input.Payment.CustomerSubscriptionId,
		})
		if err != nil {
			app.mapDomainError(w, r, err)
			return
		}

		app.metrics.paymentsSettled.Add(r.Context(), 1)

		resp.Reservation = toReservationResponse(reservation)
		resp.Settlement = toSettlementResponse(result)
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetReservationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "reservationId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	reservation, err := app.reservationRepo.GetByIdAndCustomer(r.Context(), id, app.contextGetCustomerId(r))
	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) CancelReservationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "reservationId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// Ownership check before the transition.
	_, err = app.reservationRepo.GetByIdAndCustomer(r.Context(), id, app.contextGetCustomerId(r))
	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	reservation, err := app.bookings.Cancel(r.Context(), id)
	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type UpdateReservationStatusRequest struct {
	Status      string `json:"status" validate:"omitempty,oneof=confirmed cancelled"`
	CashReceipt bool   `json:"cash_receipt"`
}

// UpdateReservationStatusHandler is the administrative transition endpoint:
// confirm or cancel a pending reservation, or acknowledge a cash receipt.
func (app *application) UpdateReservationStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "reservationId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input UpdateReservationStatusRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if errs := app.validate(input); errs != nil {
		app.failedValidationResponse(w, r, errs)
		return
	}

	reservation, err := app.reservationRepo.GetById(r.Context(), id)
	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	resp := BookingResponse{}

	if input.CashReceipt {
		result, err := app.settler.ConfirmCashPayment(r.Context(), reservation)
		if err != nil {
			app.mapDomainError(w, r, err)
			return
		}

		app.metrics.paymentsSettled.Add(r.Context(), 1)
		resp.Settlement = toSettlementResponse(result)
	}

	switch input.Status {
	case string(domain.ReservationStatusConfirmed):
		reservation, err = app.bookings.Confirm(r.Context(), id)
	case string(domain.ReservationStatusCancelled):
		reservation, err = app.bookings.Cancel(r.Context(), id)
	}
	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	resp.Reservation = toReservationResponse(reservation)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
