package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusError  PaymentStatus = "error"
)

// Reservation is the transactional unit of the booking core. A reservation
// always references a hall; section bookings additionally reference the
// section within that hall. Cancellation is a status transition, the row is
// never deleted.
type Reservation struct {
	ID                 int
	CustomerID         int
	HallID             int
	SectionID          *int
	TimeSlotID         int
	Seats              int
	Status             ReservationStatus
	PaymentStatus      PaymentStatus
	Price              decimal.Decimal
	PointsAwarded      bool
	UsedSubscriptionID *int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsSectionBooking reports whether the reservation targets a section slot
// rather than the whole hall.
func (r *Reservation) IsSectionBooking() bool {
	return r.SectionID != nil
}

// SlotTarget identifies the shared capacity unit a reservation competes for.
type SlotTarget struct {
	HallID     int
	SectionID  *int
	TimeSlotID int
}

func (r *Reservation) Target() SlotTarget {
	return SlotTarget{
		HallID:     r.HallID,
		SectionID:  r.SectionID,
		TimeSlotID: r.TimeSlotID,
	}
}

type ReservationRepository interface {
	// Create persists the reservation after re-checking capacity, hall
	// exclusivity and duplicate-booking rules inside a single transaction
	// that serializes writers contending for the same timeslot.
	// seatsLimit is the section's seat limit; it is ignored for hall
	// bookings, which are exclusive.
	Create(ctx context.Context, reservation *Reservation, seatsLimit int) error

	GetById(ctx context.Context, id int) (*Reservation, error)
	GetByIdAndCustomer(ctx context.Context, id, customerID int) (*Reservation, error)

	// Occupancy returns the seats already committed for the target:
	// CONFIRMED seats for sections, CONFIRMED plus PENDING for halls
	// (a pending hall reservation holds the whole room until an
	// administrator decides). Pure read, no side effects.
	Occupancy(ctx context.Context, target SlotTarget) (int, error)

	ExistsForCustomerAndTimeSlot(ctx context.Context, customerID, timeSlotID int) (bool, error)

	UpdateStatus(ctx context.Context, id int, status ReservationStatus) error
	SetPaid(ctx context.Context, id int) error

	// MarkFailed flips the reservation to payment_status=error and
	// reservation_status=cancelled in one statement, releasing the
	// capacity it held.
	MarkFailed(ctx context.Context, id int) error

	AttachSubscription(ctx context.Context, id, customerSubscriptionID int) error
}
