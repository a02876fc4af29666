package appointments

import (
	"carfixer/backend/internal/domain"
	"carfixer/backend/internal/store"
)

// Service implements availability, booking and admin editing on top of an
// AppointmentRepository. Every write that depends on a count runs inside
// InDayTransaction for the target date.
type Service struct {
	repo     store.AppointmentRepository
	cal      domain.Calendar
	capacity int
}

func NewService(repo store.AppointmentRepository, cal domain.Calendar, capacity int) *Service {
	if capacity <= 0 {
		capacity = domain.MaxBookingsPerDay
	}
	return &Service{repo: repo, cal: cal, capacity: capacity}
}

func (s *Service) Capacity() int {
	return s.capacity
}

func (s *Service) Calendar() domain.Calendar {
	return s.cal
}
