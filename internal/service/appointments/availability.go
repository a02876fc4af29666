package appointments

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"carfixer/backend/internal/domain"
)

type MechanicAvailability struct {
	ID        int64
	Name      string
	PhotoURL  string
	Bookings  int
	Remaining int
	Available bool
}

type AvailabilityReport struct {
	Date      time.Time
	Mechanics []MechanicAvailability
}

// Evaluate annotates each mechanic with remaining capacity. The result is
// ordered by name; mechanics sharing a name keep their input order.
func Evaluate(loads []domain.MechanicLoad, capacity int) []MechanicAvailability {
	out := make([]MechanicAvailability, 0, len(loads))
	for _, l := range loads {
		remaining := capacity - l.Bookings
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, MechanicAvailability{
			ID:        l.ID,
			Name:      l.Name,
			PhotoURL:  l.PhotoURL,
			Bookings:  l.Bookings,
			Remaining: remaining,
			Available: remaining > 0,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Availability reports every mechanic's load on the requested date.
func (s *Service) Availability(ctx context.Context, date string) (AvailabilityReport, error) {
	if strings.TrimSpace(date) == "" {
		return AvailabilityReport{}, validationError(msgNoDate)
	}
	day, err := s.cal.ParseBookingDate(date)
	if err != nil {
		if errors.Is(err, domain.ErrPastDate) {
			return AvailabilityReport{}, validationError(msgUpcomingDate)
		}
		return AvailabilityReport{}, validationError(msgBadDate)
	}

	loads, err := s.repo.MechanicLoads(ctx, day)
	if err != nil {
		return AvailabilityReport{}, err
	}

	return AvailabilityReport{Date: day, Mechanics: Evaluate(loads, s.capacity)}, nil
}

type BookingSlot struct {
	Date     time.Time
	Mechanic MechanicAvailability
	Capacity int
}

// Slot previews one mechanic's capacity on a date before the booking form is
// submitted. A mechanic with no remaining capacity is reported as a conflict.
func (s *Service) Slot(ctx context.Context, mechanicID int64, date string) (BookingSlot, error) {
	if mechanicID <= 0 || strings.TrimSpace(date) == "" {
		return BookingSlot{}, validationError("invalid booking link")
	}
	day, err := s.cal.ParseBookingDate(date)
	if err != nil {
		return BookingSlot{}, validationError(msgInvalidDate)
	}

	loads, err := s.repo.MechanicLoads(ctx, day)
	if err != nil {
		return BookingSlot{}, err
	}
	for _, m := range Evaluate(loads, s.capacity) {
		if m.ID != mechanicID {
			continue
		}
		if !m.Available {
			return BookingSlot{}, conflictError(msgFullyBooked)
		}
		return BookingSlot{Date: day, Mechanic: m, Capacity: s.capacity}, nil
	}
	return BookingSlot{}, notFoundError(msgMechanicNotFound)
}
