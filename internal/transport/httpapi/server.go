package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"carfixer/backend/internal/auth"
	"carfixer/backend/internal/domain"
	"carfixer/backend/internal/service/appointments"
)

type bookingService interface {
	Availability(ctx context.Context, date string) (appointments.AvailabilityReport, error)
	Slot(ctx context.Context, mechanicID int64, date string) (appointments.BookingSlot, error)
	Book(ctx context.Context, in appointments.BookingInput) (appointments.Confirmation, error)
	ListAppointments(ctx context.Context) ([]domain.AppointmentListing, error)
	ReadForEdit(ctx context.Context, id int64) (appointments.EditView, error)
	Submit(ctx context.Context, req appointments.EditRequest) (appointments.EditResult, error)
}

type Options struct {
	Service  bookingService
	Verifier auth.Verifier
	Sessions *auth.Sessions
	// LoginLimiter throttles POST /api/admin/login. Nil disables throttling.
	LoginLimiter *auth.RateLimiter
	Log          *slog.Logger

	RequestTimeout time.Duration
	AllowedOrigins []string
	// Ping backs GET /healthz. Nil reports healthy.
	Ping func(ctx context.Context) error
}

type API struct {
	svc      bookingService
	verifier auth.Verifier
	sessions *auth.Sessions
	ping     func(ctx context.Context) error
	log      *slog.Logger
}

// NewHandler builds the HTTP surface: the public booking API, the admin API
// behind a session and the health check.
func NewHandler(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	api := &API{
		svc:      opts.Service,
		verifier: opts.Verifier,
		sessions: opts.Sessions,
		ping:     opts.Ping,
		log:      log.With(slog.String("component", "http.api")),
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.HandleFunc("/healthz", api.health).Methods(http.MethodGet)

	// Routes hang off the root router so a method mismatch on any of them
	// reaches MethodNotAllowedHandler; nested subrouters report it as 404.
	r.HandleFunc("/api/availability", api.availability).Methods(http.MethodPost)
	r.HandleFunc("/api/bookings/slot", api.slot).Methods(http.MethodGet)
	r.HandleFunc("/api/bookings", api.book).Methods(http.MethodPost)

	var login http.Handler = http.HandlerFunc(api.login)
	if opts.LoginLimiter != nil {
		login = opts.LoginLimiter.Middleware(login)
	}
	r.Handle("/api/admin/login", login).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/logout", api.logout).Methods(http.MethodPost)

	requireAdmin := opts.Sessions.RequireAdmin(log)
	r.Handle("/api/admin/appointments", requireAdmin(http.HandlerFunc(api.listAppointments))).Methods(http.MethodGet)
	r.Handle("/api/admin/appointments/{id:[0-9]+}", requireAdmin(http.HandlerFunc(api.readAppointment))).Methods(http.MethodGet)
	r.Handle("/api/admin/appointments/{id:[0-9]+}", requireAdmin(http.HandlerFunc(api.submitAppointment))).Methods(http.MethodPost)

	var h http.Handler = r
	h = withTimeout(opts.RequestTimeout)(h)
	h = accessLog(log)(h)
	h = withRequestID(h)
	if len(opts.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(opts.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", requestIDHeader}),
			handlers.ExposedHeaders([]string{auth.RefreshHeader, requestIDHeader}),
			handlers.AllowCredentials(),
		)(h)
	}
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{log: log}),
		handlers.PrintRecoveryStack(false),
	)(h)
	return h
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	if a.ping != nil {
		if err := a.ping(r.Context()); err != nil {
			a.log.Error("health check failed", slog.Any("err", err))
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
