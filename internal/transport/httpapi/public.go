package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"carfixer/backend/internal/domain"
	"carfixer/backend/internal/service/appointments"
)

type mechanicJSON struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	PhotoURL  *string `json:"photo_url"`
	Bookings  int     `json:"bookings"`
	Remaining int     `json:"remaining"`
	Available bool    `json:"available"`
}

func toMechanicJSON(m appointments.MechanicAvailability) mechanicJSON {
	return mechanicJSON{
		ID:        m.ID,
		Name:      m.Name,
		PhotoURL:  optional(m.PhotoURL),
		Bookings:  m.Bookings,
		Remaining: m.Remaining,
		Available: m.Available,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type availabilityResponse struct {
	OK         bool           `json:"ok"`
	Date       string         `json:"date"`
	DatePretty string         `json:"date_pretty"`
	Mechanics  []mechanicJSON `json:"mechanics"`
}

func (a *API) availability(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := a.svc.Availability(r.Context(), f.get("date"))
	if err != nil {
		a.fail(w, r, "availability", err)
		return
	}

	out := availabilityResponse{
		OK:         true,
		Date:       domain.FormatDate(report.Date),
		DatePretty: domain.PrettyDate(report.Date),
		Mechanics:  make([]mechanicJSON, 0, len(report.Mechanics)),
	}
	for _, m := range report.Mechanics {
		out.Mechanics = append(out.Mechanics, toMechanicJSON(m))
	}
	writeJSON(w, http.StatusOK, out)
}

type slotResponse struct {
	OK         bool         `json:"ok"`
	Date       string       `json:"date"`
	DatePretty string       `json:"date_pretty"`
	Capacity   int          `json:"capacity"`
	Mechanic   mechanicJSON `json:"mechanic"`
}

func (a *API) slot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mechanicID, _ := strconv.ParseInt(strings.TrimSpace(q.Get("mechanic_id")), 10, 64)

	slot, err := a.svc.Slot(r.Context(), mechanicID, q.Get("date"))
	if err != nil {
		a.fail(w, r, "booking slot", err)
		return
	}
	writeJSON(w, http.StatusOK, slotResponse{
		OK:         true,
		Date:       domain.FormatDate(slot.Date),
		DatePretty: domain.PrettyDate(slot.Date),
		Capacity:   slot.Capacity,
		Mechanic:   toMechanicJSON(slot.Mechanic),
	})
}

type bookingResponse struct {
	OK            bool   `json:"ok"`
	AppointmentID int64  `json:"appointment_id"`
	MechanicName  string `json:"mechanic_name"`
	Date          string `json:"date"`
	DatePretty    string `json:"date_pretty"`
	Message       string `json:"message"`
}

func (a *API) book(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conf, err := a.svc.Book(r.Context(), appointments.BookingInput{
		MechanicID: f.id("mechanic_id"),
		Date:       f.get("date"),
		ClientName: f.get("client_name"),
		Address:    f.get("address"),
		Phone:      f.get("phone"),
		CarLicense: f.get("car_license"),
		CarEngine:  f.get("car_engine"),
	})
	if err != nil {
		a.fail(w, r, "booking", err)
		return
	}

	writeJSON(w, http.StatusCreated, bookingResponse{
		OK:            true,
		AppointmentID: conf.AppointmentID,
		MechanicName:  conf.MechanicName,
		Date:          domain.FormatDate(conf.Date),
		DatePretty:    conf.DatePretty(),
		Message:       fmt.Sprintf("Booking confirmed with %s on %s.", conf.MechanicName, conf.DatePretty()),
	})
}
