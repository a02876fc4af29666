package store

import (
	"context"
	"time"

	"carfixer/backend/internal/domain"
)

// BookingTx is the view of the store available inside InDayTransaction.
// Counts only consider active and pending appointments; excludeID removes one
// appointment from the count and is ignored when zero.
type BookingTx interface {
	GetMechanic(ctx context.Context, id int64) (domain.Mechanic, error)
	GetAppointment(ctx context.Context, id int64) (domain.Appointment, error)

	CountMechanicBookings(ctx context.Context, mechanicID int64, day time.Time, excludeID int64) (int, error)
	CountClientBookings(ctx context.Context, phone string, day time.Time, excludeID int64) (int, error)

	InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	UpdateAppointment(ctx context.Context, appt domain.Appointment) error
}
