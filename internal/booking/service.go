// Package booking implements the reservation core: the capacity ledger
// (occupancy reads) and the reservation guard that admits or rejects
// booking requests and commits admitted ones atomically.
package booking

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vberezan/sport-booking-api/internal/domain"
)

// Sections of this sport type are half price for premium card holders.
const swimmingSportType = "swimming"

// Request is a booking attempt. Exactly one of HallID or SectionID must be
// set; a section implies its parent hall.
type Request struct {
	HallID     *int
	SectionID  *int
	TimeSlotID *int
	Seats      int
}

type Service struct {
	reservations domain.ReservationRepository
	resources    domain.ResourceRepository
	logger       *slog.Logger
}

func NewService(
	reservations domain.ReservationRepository,
	resources domain.ResourceRepository,
	logger *slog.Logger) *Service {

	return &Service{
		reservations: reservations,
		resources:    resources,
		logger:       logger,
	}
}

// CreateBooking validates the request in a fixed order, each failure mapped
// to a distinct rejection, and persists exactly one reservation on success.
// The fail-fast checks here run outside the commit transaction; the
// repository re-checks capacity, hall exclusivity and duplicates under the
// slot lock, so a race lost between check and insert still surfaces as the
// proper rejection instead of an oversold slot.
func (s *Service) CreateBooking(
	ctx context.Context,
	customer *domain.Customer,
	req Request) (*domain.Reservation, error) {

	if req.TimeSlotID == nil {
		return nil, domain.ErrMissingTimeslot
	}

	if (req.HallID == nil) == (req.SectionID == nil) {
		return nil, domain.ErrAmbiguousTarget
	}

	slot, err := s.resources.GetTimeSlot(ctx, *req.TimeSlotID)
	if err != nil {
		return nil, err
	}

	seats := req.Seats
	if seats < 1 {
		seats = 1
	}

	reservation := &domain.Reservation{
		CustomerID:    customer.ID,
		TimeSlotID:    slot.ID,
		Seats:         seats,
		PaymentStatus: domain.PaymentStatusUnpaid,
	}

	var seatsLimit int

	if req.SectionID != nil {
		section, err := s.resources.GetSection(ctx, *req.SectionID)
		if err != nil {
			return nil, err
		}

		if err := s.admitSectionBooking(ctx, customer, section, slot, seats); err != nil {
			return nil, err
		}

		reservation.HallID = section.HallID
		reservation.SectionID = &section.ID
		reservation.Status = domain.ReservationStatusConfirmed
		reservation.Price = s.sectionPrice(customer, section)
		seatsLimit = section.SeatsLimit
	} else {
		hall, err := s.resources.GetHall(ctx, *req.HallID)
		if err != nil {
			return nil, err
		}

		if err := s.admitHallBooking(ctx, hall, slot); err != nil {
			return nil, err
		}

		reservation.HallID = hall.ID
		// Hall bookings wait for administrator confirmation, but a
		// pending reservation already holds the room.
		reservation.Status = domain.ReservationStatusPending
		reservation.Price = hall.Price
	}

	exists, err := s.reservations.ExistsForCustomerAndTimeSlot(ctx, customer.ID, slot.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateBooking
	}

	err = s.reservations.Create(ctx, reservation, seatsLimit)
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation created",
		"reservation_id", reservation.ID,
		"customer_id", customer.ID,
		"time_slot_id", slot.ID,
		"section", reservation.IsSectionBooking(),
		"status", reservation.Status,
	)

	return reservation, nil
}

func (s *Service) admitSectionBooking(
	ctx context.Context,
	customer *domain.Customer,
	section *domain.Section,
	slot *domain.TimeSlot,
	seats int) error {

	scheduled, err := s.resources.SectionScheduledAt(ctx, section.ID, slot.ID)
	if err != nil {
		return err
	}
	if !scheduled {
		return domain.ErrSectionNotScheduled
	}

	if !section.AgeEligible(customer.Age) {
		return domain.ErrAgeIneligible
	}

	occupied, err := s.Occupancy(ctx, domain.SlotTarget{
		HallID:     section.HallID,
		SectionID:  &section.ID,
		TimeSlotID: slot.ID,
	})
	if err != nil {
		return err
	}
	if occupied+seats > section.SeatsLimit {
		return domain.ErrCapacityExceeded
	}

	return nil
}

func (s *Service) admitHallBooking(ctx context.Context, hall *domain.Hall, slot *domain.TimeSlot) error {
	if !hall.IsActive || slot.HallID != hall.ID {
		return domain.ErrRecordNotFound
	}

	blocked, err := s.resources.HallDayBlocked(ctx, hall.ID, slot.Date)
	if err != nil {
		return err
	}
	if blocked {
		return domain.ErrHallDayBlocked
	}

	occupied, err := s.Occupancy(ctx, domain.SlotTarget{
		HallID:     hall.ID,
		TimeSlotID: slot.ID,
	})
	if err != nil {
		return err
	}
	if occupied > 0 {
		return domain.ErrHallAlreadyBooked
	}

	return nil
}

func (s *Service) sectionPrice(customer *domain.Customer, section *domain.Section) decimal.Decimal {
	if customer.HasPremiumCard() && section.SportType == swimmingSportType {
		return section.Price.Mul(decimal.NewFromFloat(0.5)).Round(2)
	}

	return section.Price
}

// Occupancy is the capacity ledger read: seats committed for the target.
func (s *Service) Occupancy(ctx context.Context, target domain.SlotTarget) (int, error) {
	return s.reservations.Occupancy(ctx, target)
}

// HallDayBlocked reports whether the hall is unbookable on the date because
// any of its sections is scheduled then.
func (s *Service) HallDayBlocked(ctx context.Context, hallID int, date time.Time) (bool, error) {
	return s.resources.HallDayBlocked(ctx, hallID, date)
}

// Confirm transitions a pending reservation to confirmed. Used by the
// administrator flow for hall bookings.
func (s *Service) Confirm(ctx context.Context, reservationID int) (*domain.Reservation, error) {
	reservation, err := s.reservations.GetById(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if reservation.Status != domain.ReservationStatusPending {
		return nil, domain.ErrEditConflict
	}

	err = s.reservations.UpdateStatus(ctx, reservationID, domain.ReservationStatusConfirmed)
	if err != nil {
		return nil, err
	}

	reservation.Status = domain.ReservationStatusConfirmed

	return reservation, nil
}

// Cancel is an out-of-band administrative transition. A cancelled
// reservation immediately stops counting toward occupancy.
func (s *Service) Cancel(ctx context.Context, reservationID int) (*domain.Reservation, error) {
	reservation, err := s.reservations.GetById(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if reservation.Status == domain.ReservationStatusCancelled {
		return reservation, nil
	}

	err = s.reservations.UpdateStatus(ctx, reservationID, domain.ReservationStatusCancelled)
	if err != nil {
		return nil, err
	}

	reservation.Status = domain.ReservationStatusCancelled

	return reservation, nil
}

// SectionAvailability lists the section's scheduled slots with remaining
// seat counts.
func (s *Service) SectionAvailability(ctx context.Context, sectionID int) ([]domain.SlotAvailability, error) {
	return s.resources.SectionAvailability(ctx, sectionID)
}

// HallAvailability lists the hall's slots with their bookability.
func (s *Service) HallAvailability(ctx context.Context, hallID int) ([]domain.SlotAvailability, error) {
	return s.resources.HallAvailability(ctx, hallID)
}
