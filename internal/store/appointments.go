package store

import (
	"context"
	"time"

	"carfixer/backend/internal/domain"
)

type AppointmentRepository interface {
	ListMechanics(ctx context.Context) ([]domain.Mechanic, error)
	MechanicLoads(ctx context.Context, day time.Time) ([]domain.MechanicLoad, error)

	ListAppointments(ctx context.Context) ([]domain.AppointmentListing, error)
	ListForDay(ctx context.Context, day time.Time) ([]domain.AppointmentListing, error)
	GetAppointment(ctx context.Context, id int64) (domain.Appointment, error)
	Delete(ctx context.Context, id int64) error

	// InDayTransaction runs fn in a transaction that holds an exclusive lock
	// for day. Every booking or move onto day goes through it so that counts
	// read inside fn stay true until commit.
	InDayTransaction(ctx context.Context, day time.Time, fn func(ctx context.Context, tx BookingTx) error) error
}

type MechanicWriter interface {
	UpsertMechanic(ctx context.Context, m domain.Mechanic) (domain.Mechanic, error)
}
