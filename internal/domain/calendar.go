package domain

import (
	"errors"
	"strings"
	"time"
)

const (
	DefaultTimezone = "Asia/Dhaka"

	DateLayout   = "2006-01-02"
	PrettyLayout = "January 2, 2006"
)

var (
	ErrMalformedDate = errors.New("malformed date")
	ErrPastDate      = errors.New("date is in the past")
)

// Calendar evaluates booking dates in the shop's timezone. Dates are civil
// dates and are represented as midnight UTC so they compare and persist
// without a zone offset leaking into the value.
type Calendar struct {
	Location     *time.Location
	AllowSameDay bool
	Now          func() time.Time
}

func NewCalendar(timezone string, allowSameDay bool) (Calendar, error) {
	tz := strings.TrimSpace(timezone)
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Calendar{}, errors.New("invalid time_zone")
	}
	return Calendar{Location: loc, AllowSameDay: allowSameDay, Now: time.Now}, nil
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Today returns the current civil date in the calendar's timezone.
func (c Calendar) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	local := now().In(c.location())
	return civilDate(local.Year(), local.Month(), local.Day())
}

func (c Calendar) Tomorrow() time.Time {
	return c.Today().AddDate(0, 0, 1)
}

// ParseDate parses a YYYY-MM-DD string into a civil date. Out of range
// components such as 2025-02-30 are rejected rather than rolled over.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMalformedDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrMalformedDate
	}
	return civilDate(t.Year(), t.Month(), t.Day()), nil
}

// Bookable reports whether a civil date may receive new or moved appointments.
func (c Calendar) Bookable(day time.Time) bool {
	today := c.Today()
	if c.AllowSameDay {
		return !day.Before(today)
	}
	return day.After(today)
}

// ParseBookingDate parses s and checks it against Bookable.
func (c Calendar) ParseBookingDate(s string) (time.Time, error) {
	day, err := ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	if !c.Bookable(day) {
		return time.Time{}, ErrPastDate
	}
	return day, nil
}

func FormatDate(day time.Time) string {
	return day.Format(DateLayout)
}

// PrettyDate renders a civil date as "June 10, 2025".
func PrettyDate(day time.Time) string {
	return day.Format(PrettyLayout)
}

// AsDate truncates t to its civil date, keeping the year, month and day it
// carries in its own location.
func AsDate(t time.Time) time.Time {
	return civilDate(t.Year(), t.Month(), t.Day())
}

func civilDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
