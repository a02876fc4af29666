package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"carfixer/backend/internal/auth"
	"carfixer/backend/internal/domain"
	"carfixer/backend/internal/service/appointments"
)

type loginResponse struct {
	OK        bool   `json:"ok"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	username := strings.TrimSpace(f.get("username"))
	password := f.get("password")
	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}

	ok, err := a.verifier.VerifyCredentials(r.Context(), username, password)
	if err != nil {
		a.log.Error("credential check failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	if !ok {
		a.log.Info("admin login rejected", slog.String("username", username))
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tok, expires, err := a.sessions.Issue(username)
	if err != nil {
		a.log.Error("session issue failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	a.sessions.SetCookie(w, tok, expires)
	a.log.Info("admin logged in", slog.String("username", username))
	writeJSON(w, http.StatusOK, loginResponse{
		OK:        true,
		Token:     tok,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
	})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type appointmentJSON struct {
	ID              int64  `json:"id"`
	MechanicID      int64  `json:"mechanic_id"`
	MechanicName    string `json:"mechanic_name,omitempty"`
	AppointmentDate string `json:"appointment_date"`
	Status          string `json:"status"`
	ClientName      string `json:"client_name"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	CarLicense      string `json:"car_license"`
	CarEngine       string `json:"car_engine"`
	CreatedAt       string `json:"created_at"`
}

func toAppointmentJSON(a domain.Appointment, mechanicName string) appointmentJSON {
	out := appointmentJSON{
		ID:              a.ID,
		MechanicID:      a.MechanicID,
		MechanicName:    mechanicName,
		AppointmentDate: domain.FormatDate(a.AppointmentDate),
		Status:          string(a.Status),
		ClientName:      a.ClientName,
		Address:         a.Address,
		Phone:           a.Phone,
		CarLicense:      a.CarLicense,
		CarEngine:       a.CarEngine,
	}
	if !a.CreatedAt.IsZero() {
		out.CreatedAt = a.CreatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func (a *API) listAppointments(w http.ResponseWriter, r *http.Request) {
	rows, err := a.svc.ListAppointments(r.Context())
	if err != nil {
		a.fail(w, r, "list appointments", err)
		return
	}
	out := make([]appointmentJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, toAppointmentJSON(row.Appointment, row.MechanicName))
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "appointments": out})
}

type mechanicRef struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	PhotoURL *string `json:"photo_url"`
}

func pathID(r *http.Request) int64 {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func (a *API) readAppointment(w http.ResponseWriter, r *http.Request) {
	view, err := a.svc.ReadForEdit(r.Context(), pathID(r))
	if err != nil {
		a.fail(w, r, "read appointment", err)
		return
	}
	mechanics := make([]mechanicRef, 0, len(view.Mechanics))
	for _, m := range view.Mechanics {
		mechanics = append(mechanics, mechanicRef{ID: m.ID, Name: m.Name, PhotoURL: optional(m.PhotoURL)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"appointment": toAppointmentJSON(view.Appointment, ""),
		"mechanics":   mechanics,
	})
}

// intentFrom reads action=update|delete. Forms that post a bare "update" or
// "delete" submit button are accepted too.
func intentFrom(f fields) (appointments.Intent, bool) {
	if f.has("action") {
		return appointments.ParseIntent(f.get("action"))
	}
	switch {
	case f.has("delete"):
		return appointments.IntentDelete, true
	case f.has("update"):
		return appointments.IntentUpdate, true
	}
	return "", false
}

func (a *API) submitAppointment(w http.ResponseWriter, r *http.Request) {
	f, err := readFields(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	intent, _ := intentFrom(f)
	id := pathID(r)

	res, err := a.svc.Submit(r.Context(), appointments.EditRequest{
		Intent: intent,
		UpdateInput: appointments.UpdateInput{
			AppointmentID: id,
			MechanicID:    f.id("mechanic_id"),
			Date:          f.get("date"),
			ClientName:    f.get("client_name"),
			Phone:         f.get("phone"),
			CarLicense:    f.get("car_license"),
			CarEngine:     f.get("car_engine"),
		},
	})
	if err != nil {
		a.fail(w, r, "edit appointment", err)
		return
	}

	admin, _ := auth.AdminFromContext(r.Context())
	a.log.Info("appointment edited",
		slog.String("action", string(res.Intent)),
		slog.Int64("appointment_id", id),
		slog.String("admin", admin),
	)

	body := map[string]any{"ok": true, "action": string(res.Intent)}
	if res.Intent == appointments.IntentUpdate {
		body["appointment"] = toAppointmentJSON(res.Appointment, "")
	} else {
		body["appointment_id"] = id
	}
	writeJSON(w, http.StatusOK, body)
}
