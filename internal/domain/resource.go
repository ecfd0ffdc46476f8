package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Hall is a whole-room bookable resource. Booking a hall is all-or-nothing:
// one non-cancelled reservation takes the room for the entire timeslot.
type Hall struct {
	ID         int
	Name       string
	RoomNumber string
	EventType  string
	Capacity   int
	Price      decimal.Decimal
	IsActive   bool
}

// Section is a sub-capacity slot within a hall, optionally constrained by
// trainer and age limits. A section is only bookable for timeslots it has a
// schedule entry for.
type Section struct {
	ID               int
	HallID           int
	TrainerID        *int
	SportType        string
	PreparationLevel string
	MinAge           *int
	MaxAge           *int
	Price            decimal.Decimal
	SeatsLimit       int

	Hall *Hall
}

// AgeEligible reports whether a customer of the given age may book the
// section. A nil age passes, matching sections open to everyone.
func (s *Section) AgeEligible(age *int) bool {
	if age == nil {
		return true
	}
	if s.MinAge != nil && *age < *s.MinAge {
		return false
	}
	if s.MaxAge != nil && *age > *s.MaxAge {
		return false
	}

	return true
}

type Trainer struct {
	ID              int
	FirstName       string
	LastName        string
	Specialization  string
	ExperienceYears int
}

// TimeSlot is a (date, start, end) tuple scoped to a hall. Uniqueness on
// (hall, date, start, end) is enforced by the storage layer.
type TimeSlot struct {
	ID        int
	HallID    int
	Date      time.Time
	StartTime time.Time
	EndTime   time.Time
}

// StartsAt combines the slot's date and start time into a single instant.
func (t *TimeSlot) StartsAt() time.Time {
	return time.Date(
		t.Date.Year(), t.Date.Month(), t.Date.Day(),
		t.StartTime.Hour(), t.StartTime.Minute(), 0, 0, time.UTC,
	)
}

// SlotAvailability is a read model for the availability listing: remaining
// seats for section slots, bookability for hall slots.
type SlotAvailability struct {
	TimeSlot       TimeSlot
	AvailableSeats int
	TotalSeats     int
	Blocked        bool
}

type ResourceRepository interface {
	GetHall(ctx context.Context, id int) (*Hall, error)
	GetSection(ctx context.Context, id int) (*Section, error)
	GetTimeSlot(ctx context.Context, id int) (*TimeSlot, error)

	// SectionScheduledAt reports whether the section has a schedule entry
	// for the timeslot; without one the section booking is invalid.
	SectionScheduledAt(ctx context.Context, sectionID, timeSlotID int) (bool, error)

	// HallDayBlocked reports whether any section of the hall has a
	// schedule entry on the given date, which makes the hall itself
	// unbookable for the whole day.
	HallDayBlocked(ctx context.Context, hallID int, date time.Time) (bool, error)

	SectionAvailability(ctx context.Context, sectionID int) ([]SlotAvailability, error)
	HallAvailability(ctx context.Context, hallID int) ([]SlotAvailability, error)
}
