package domain

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// MaxBookingsPerDay is the number of active or pending appointments a single
// mechanic can hold on one calendar date.
const MaxBookingsPerDay = 4

type Status string

const (
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

// CountedStatuses are the statuses that occupy a mechanic slot and block a
// second booking for the same phone on the same date.
func CountedStatuses() []Status {
	return []Status{StatusActive, StatusPending}
}

func (s Status) Counts() bool {
	return s == StatusActive || s == StatusPending
}

type Mechanic struct {
	bun.BaseModel `bun:"table:mechanics,alias:m"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Name     string `bun:"name,notnull"`
	PhotoURL string `bun:"photo_url,nullzero"`
}

type Appointment struct {
	bun.BaseModel `bun:"table:appointments,alias:a"`

	ID              int64     `bun:"id,pk,autoincrement"`
	MechanicID      int64     `bun:"mechanic_id,notnull"`
	AppointmentDate time.Time `bun:"appointment_date,type:date,notnull"`
	Status          Status    `bun:"status,notnull"`
	ClientName      string    `bun:"client_name,notnull"`
	Address         string    `bun:"address,notnull"`
	Phone           string    `bun:"phone,notnull"`
	CarLicense      string    `bun:"car_license,notnull"`
	CarEngine       string    `bun:"car_engine,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.Status == "" {
			a.Status = StatusActive
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

// AppointmentListing is an appointment joined with the assigned mechanic's name,
// as shown on the admin dashboard.
type AppointmentListing struct {
	Appointment `bun:",extend"`

	MechanicName string `bun:"mechanic_name,scanonly"`
}

// MechanicLoad is a mechanic together with the number of counted bookings on a
// given date.
type MechanicLoad struct {
	ID       int64  `bun:"id"`
	Name     string `bun:"name"`
	PhotoURL string `bun:"photo_url"`
	Bookings int    `bun:"bookings"`
}

type Admin struct {
	bun.BaseModel `bun:"table:admins"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Username     string    `bun:"username,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}
