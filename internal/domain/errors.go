package domain

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrEditConflict   = errors.New("edit conflict")

	// Reservation Guard rejections. Each one maps to a distinct business
	// rule, so callers can surface a precise reason to the client.
	ErrMissingTimeslot     = errors.New("a timeslot must be provided")
	ErrAmbiguousTarget     = errors.New("exactly one of hall or section must be specified")
	ErrSectionNotScheduled = errors.New("section is not scheduled for this timeslot")
	ErrAgeIneligible       = errors.New("customer age is outside the section's age limits")
	ErrCapacityExceeded    = errors.New("not enough free seats for this timeslot")
	ErrHallDayBlocked      = errors.New("hall is unavailable on days with scheduled sections")
	ErrHallAlreadyBooked   = errors.New("hall is already booked for this timeslot")
	ErrDuplicateBooking    = errors.New("customer already has a reservation for this timeslot")

	ErrReservationNotPayable = errors.New("reservation is not in a payable state")
	ErrSubscriptionNotUsable = errors.New("subscription cannot be used for this booking")
)

// IsBookingRejection reports whether err is one of the Reservation Guard's
// business-rule rejections, as opposed to an infrastructure failure. A
// rejected request leaves no partial state behind.
func IsBookingRejection(err error) bool {
	for _, target := range []error{
		ErrMissingTimeslot,
		ErrAmbiguousTarget,
		ErrSectionNotScheduled,
		ErrAgeIneligible,
		ErrCapacityExceeded,
		ErrHallDayBlocked,
		ErrHallAlreadyBooked,
		ErrDuplicateBooking,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
