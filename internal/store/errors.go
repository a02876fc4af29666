package store

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrClientAlreadyBooked is returned when the one-booking-per-phone-per-day
	// unique index rejects a write.
	ErrClientAlreadyBooked = errors.New("client already booked that date")
)
