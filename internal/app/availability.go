package app

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/vberezan/sport-booking-api/internal/domain"
)

type SlotAvailabilityResponse struct {
	TimeSlotId     int    `json:"time_slot_id"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Available      bool   `json:"available"`
	AvailableSeats int    `json:"available_seats"`
	TotalSeats     int    `json:"total_seats,omitempty"`
}

// GetAvailability lists bookable slots for either a section or a whole
// hall, selected by query parameter.
func (app *application) GetAvailability(w http.ResponseWriter, r *http.Request) {
	sectionParam := r.URL.Query().Get("section_id")
	hallParam := r.URL.Query().Get("hall_id")

	if (sectionParam == "") == (hallParam == "") {
		app.badRequestResponse(w, r, errors.New("provide exactly one of section_id or hall_id"))
		return
	}

	var (
		slots []domain.SlotAvailability
		err   error
	)

	if sectionParam != "" {
		sectionId, convErr := strconv.Atoi(sectionParam)
		if convErr != nil || sectionId < 1 {
			app.badRequestResponse(w, r, errors.New("invalid section_id parameter"))
			return
		}

		slots, err = app.bookings.SectionAvailability(r.Context(), sectionId)
	} else {
		hallId, convErr := strconv.Atoi(hallParam)
		if convErr != nil || hallId < 1 {
			app.badRequestResponse(w, r, errors.New("invalid hall_id parameter"))
			return
		}

		slots, err = app.bookings.HallAvailability(r.Context(), hallId)
	}

	if err != nil {
		app.mapDomainError(w, r, err)
		return
	}

	resp := make([]SlotAvailabilityResponse, 0, len(slots))
	for _, slot := range slots {
		resp = append(resp, SlotAvailabilityResponse{
			TimeSlotId:     slot.TimeSlot.ID,
			Date:           slot.TimeSlot.Date.Format("2006-01-02"),
			StartTime:      slot.TimeSlot.StartTime.Format("15:04"),
			EndTime:        slot.TimeSlot.EndTime.Format("15:04"),
			Available:      !slot.Blocked && slot.AvailableSeats > 0,
			AvailableSeats: slot.AvailableSeats,
			TotalSeats:     slot.TotalSeats,
		})
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
