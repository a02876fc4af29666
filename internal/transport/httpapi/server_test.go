package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"carfixer/backend/internal/auth"
	"carfixer/backend/internal/domain"
	"carfixer/backend/internal/service/appointments"
)

type fakeBookingService struct {
	availabilityFn func(ctx context.Context, date string) (appointments.AvailabilityReport, error)
	slotFn         func(ctx context.Context, mechanicID int64, date string) (appointments.BookingSlot, error)
	bookFn         func(ctx context.Context, in appointments.BookingInput) (appointments.Confirmation, error)
	listFn         func(ctx context.Context) ([]domain.AppointmentListing, error)
	readFn         func(ctx context.Context, id int64) (appointments.EditView, error)
	submitFn       func(ctx context.Context, req appointments.EditRequest) (appointments.EditResult, error)
}

func (f *fakeBookingService) Availability(ctx context.Context, date string) (appointments.AvailabilityReport, error) {
	if f.availabilityFn == nil {
		panic("Availability not configured")
	}
	return f.availabilityFn(ctx, date)
}

func (f *fakeBookingService) Slot(ctx context.Context, mechanicID int64, date string) (appointments.BookingSlot, error) {
	if f.slotFn == nil {
		panic("Slot not configured")
	}
	return f.slotFn(ctx, mechanicID, date)
}

func (f *fakeBookingService) Book(ctx context.Context, in appointments.BookingInput) (appointments.Confirmation, error) {
	if f.bookFn == nil {
		panic("Book not configured")
	}
	return f.bookFn(ctx, in)
}

func (f *fakeBookingService) ListAppointments(ctx context.Context) ([]domain.AppointmentListing, error) {
	if f.listFn == nil {
		panic("ListAppointments not configured")
	}
	return f.listFn(ctx)
}

func (f *fakeBookingService) ReadForEdit(ctx context.Context, id int64) (appointments.EditView, error) {
	if f.readFn == nil {
		panic("ReadForEdit not configured")
	}
	return f.readFn(ctx, id)
}

func (f *fakeBookingService) Submit(ctx context.Context, req appointments.EditRequest) (appointments.EditResult, error) {
	if f.submitFn == nil {
		panic("Submit not configured")
	}
	return f.submitFn(ctx, req)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	handler  http.Handler
	sessions *auth.Sessions
}

func newTestEnv(t *testing.T, svc *fakeBookingService, mutate ...func(*Options)) testEnv {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	verifier, err := auth.NewStaticVerifier("admin", string(hash))
	require.NoError(t, err)
	sessions, err := auth.NewSessions("test-secret", 15*time.Minute)
	require.NoError(t, err)

	opts := Options{
		Service:        svc,
		Verifier:       verifier,
		Sessions:       sessions,
		Log:            quietLogger(),
		RequestTimeout: 5 * time.Second,
	}
	for _, m := range mutate {
		m(&opts)
	}
	return testEnv{handler: NewHandler(opts), sessions: sessions}
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestAvailability_ResponseShape(t *testing.T) {
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(t, &fakeBookingService{
		availabilityFn: func(ctx context.Context, date string) (appointments.AvailabilityReport, error) {
			return appointments.AvailabilityReport{
				Date: day,
				Mechanics: []appointments.MechanicAvailability{
					{ID: 1, Name: "Aisha Rahman", PhotoURL: "https://img.example/aisha.jpg", Bookings: 4, Remaining: 0, Available: false},
					{ID: 2, Name: "Karim Uddin", Bookings: 1, Remaining: 3, Available: true},
				},
			}, nil
		},
	})

	rec := serve(env.handler, postForm("/api/availability", url.Values{"date": {"2025-06-10"}}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var pretty bytes.Buffer
	require.NoError(t, json.Indent(&pretty, bytes.TrimSpace(rec.Body.Bytes()), "", "  "))

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "availability", pretty.Bytes())
}

func TestAvailability_ReadsJSONBody(t *testing.T) {
	var gotDate string
	env := newTestEnv(t, &fakeBookingService{
		availabilityFn: func(ctx context.Context, date string) (appointments.AvailabilityReport, error) {
			gotDate = date
			return appointments.AvailabilityReport{Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)}, nil
		},
	})

	rec := serve(env.handler, postJSON("/api/availability", `{"date":"2025-06-10"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-06-10", gotDate)

	body := decodeBody(t, rec)
	assert.Equal(t, []any{}, body["mechanics"])
}

func TestAvailability_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "validation", err: appointments.NewValidationError("No date provided"), wantStatus: http.StatusBadRequest, wantMsg: "No date provided"},
		{name: "conflict", err: appointments.NewConflictError("mechanic fully booked"), wantStatus: http.StatusConflict, wantMsg: "mechanic fully booked"},
		{name: "not found", err: appointments.NewNotFoundError("mechanic not found"), wantStatus: http.StatusNotFound, wantMsg: "mechanic not found"},
		{name: "persistence", err: errors.New("dial tcp 10.0.0.1:5432: connection refused"), wantStatus: http.StatusInternalServerError, wantMsg: "server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &fakeBookingService{
				availabilityFn: func(ctx context.Context, date string) (appointments.AvailabilityReport, error) {
					return appointments.AvailabilityReport{}, tt.err
				},
			})

			rec := serve(env.handler, postForm("/api/availability", url.Values{}))
			require.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["ok"])
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}

func TestAvailability_RejectsOtherMethods(t *testing.T) {
	env := newTestEnv(t, &fakeBookingService{})

	rec := serve(env.handler, httptest.NewRequest(http.MethodGet, "/api/availability", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", decodeBody(t, rec)["error"])
}

func TestRoutes_WrongMethodIs405(t *testing.T) {
	env := newTestEnv(t, &fakeBookingService{})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/availability"},
		{http.MethodPut, "/api/availability"},
		{http.MethodGet, "/api/bookings"},
		{http.MethodPost, "/api/bookings/slot"},
		{http.MethodGet, "/api/admin/login"},
		{http.MethodGet, "/api/admin/logout"},
		{http.MethodPost, "/api/admin/appointments"},
		{http.MethodPut, "/api/admin/appointments/5"},
		{http.MethodDelete, "/api/admin/appointments/5"},
		{http.MethodPost, "/healthz"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := serve(env.handler, httptest.NewRequest(tt.method, tt.path, nil))
			require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["ok"])
			assert.Equal(t, "Method not allowed", body["error"])
		})
	}
}

func TestRoutes_UnknownPathIs404(t *testing.T) {
	env := newTestEnv(t, &fakeBookingService{})

	for _, path := range []string{"/api/nope", "/api/admin/appointments/abc"} {
		rec := serve(env.handler, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "not found", decodeBody(t, rec)["error"], path)
	}
}

func TestAvailability_RejectsNonScalarJSON(t *testing.T) {
	env := newTestEnv(t, &fakeBookingService{})

	rec := serve(env.handler, postJSON("/api/availability", `{"date":["2025-06-10"]}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSlot_PassesQuery(t *testing.T) {
	var gotID int64
	var gotDate string
	env := newTestEnv(t, &fakeBookingService{
		slotFn: func(ctx context.Context, mechanicID int64, date string) (appointments.BookingSlot, error) {
			gotID, gotDate = mechanicID, date
			return appointments.BookingSlot{
				Date:     time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
				Mechanic: appointments.MechanicAvailability{ID: mechanicID, Name: "Karim Uddin", Bookings: 2, Remaining: 2, Available: true},
				Capacity: 4,
			}, nil
		},
	})

	rec := serve(env.handler, httptest.NewRequest(http.MethodGet, "/api/bookings/slot?mechanic_id=7&date=2025-06-10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), gotID)
	assert.Equal(t, "2025-06-10", gotDate)

	body := decodeBody(t, rec)
	assert.Equal(t, "June 10, 2025", body["date_pretty"])
	assert.EqualValues(t, 4, body["capacity"])
	mech := body["mechanic"].(map[string]any)
	assert.EqualValues(t, 2, mech["remaining"])
}

func TestBook_FormSubmission(t *testing.T) {
	var got appointments.BookingInput
	env := newTestEnv(t, &fakeBookingService{
		bookFn: func(ctx context.Context, in appointments.BookingInput) (appointments.Confirmation, error) {
			got = in
			return appointments.Confirmation{
				AppointmentID: 42,
				MechanicID:    in.MechanicID,
				MechanicName:  "Karim Uddin",
				Date:          time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
				Phone:         in.Phone,
				ClientName:    in.ClientName,
			}, nil
		},
	})

	rec := serve(env.handler, postForm("/api/bookings", url.Values{
		"mechanic_id": {"3"},
		"date":        {"2025-06-10"},
		"client_name": {"Rafi"},
		"address":     {"12 Lake Rd"},
		"phone":       {"01711000000"},
		"car_license": {"DHA-1234"},
		"car_engine":  {"EN-99"},
	}))
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, appointments.BookingInput{
		MechanicID: 3,
		Date:       "2025-06-10",
		ClientName: "Rafi",
		Address:    "12 Lake Rd",
		Phone:      "01711000000",
		CarLicense: "DHA-1234",
		CarEngine:  "EN-99",
	}, got)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.EqualValues(t, 42, body["appointment_id"])
	assert.Equal(t, "Booking confirmed with Karim Uddin on June 10, 2025.", body["message"])
}

func TestBook_NumericJSONMechanicID(t *testing.T) {
	var got int64
	env := newTestEnv(t, &fakeBookingService{
		bookFn: func(ctx context.Context, in appointments.BookingInput) (appointments.Confirmation, error) {
			got = in.MechanicID
			return appointments.Confirmation{}, appointments.NewConflictError("client already booked that date")
		},
	})

	rec := serve(env.handler, postJSON("/api/bookings", `{"mechanic_id": 5, "date": "2025-06-10"}`))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, int64(5), got)
	assert.Equal(t, "client already booked that date", decodeBody(t, rec)["error"])
}

func TestBook_MalformedMechanicIDReadsAsMissing(t *testing.T) {
	var got int64 = -1
	env := newTestEnv(t, &fakeBookingService{
		bookFn: func(ctx context.Context, in appointments.BookingInput) (appointments.Confirmation, error) {
			got = in.MechanicID
			return appointments.Confirmation{}, appointments.NewValidationError("all fields required")
		},
	})

	rec := serve(env.handler, postForm("/api/bookings", url.Values{"mechanic_id": {"abc"}}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(0), got)
}

func TestAdmin_RequiresSession(t *testing.T) {
	env := newTestEnv(t, &fakeBookingService{})

	rec := serve(env.handler, httptest.NewRequest(http.MethodGet, "/api/admin/appointments", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeBody(t, rec)["error"])
}

func TestAdmin_LoginAndList(t *testing.T) {
	created := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	env := newTestEnv(t, &fakeBookingService{
		listFn: func(ctx context.Context) ([]domain.AppointmentListing, error) {
			return []domain.AppointmentListing{{
				Appointment: domain.Appointment{
					ID:              9,
					MechanicID:      3,
					AppointmentDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
					Status:          domain.StatusActive,
					ClientName:      "Rafi",
					Phone:           "01711000000",
					CreatedAt:       created,
				},
				MechanicName: "Karim Uddin",
			}}, nil
		},
	})

	rec := serve(env.handler, postForm("/api/admin/login", url.Values{"username": {"admin"}, "password": {"wrong"}}))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(env.handler, postForm("/api/admin/login", url.Values{"username": {"admin"}, "password": {"s3cret"}}))
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeBody(t, rec)
	token, _ := login["token"].(string)
	require.NotEmpty(t, token)
	require.NotEmpty(t, rec.Result().Cookies())
	assert.Equal(t, auth.CookieName, rec.Result().Cookies()[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = serve(env.handler, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(auth.RefreshHeader))

	body := decodeBody(t, rec)
	rows := body["appointments"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "Karim Uddin", row["mechanic_name"])
	assert.Equal(t, "2025-06-10", row["appointment_date"])
	assert.Equal(t, "2025-06-01T08:30:00Z", row["created_at"])
}

func TestAdmin_LoginRequiresBothFields(t *testing.T) {
	env := newTestEnv(t, &fakeBookingService{})

	rec := serve(env.handler, postJSON("/api/admin/login", `{"username":"admin"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_LoginIsRateLimited(t *testing.T) {
	limiter := auth.NewRateLimiter(0.001, 1)
	t.Cleanup(limiter.Close)
	env := newTestEnv(t, &fakeBookingService{}, func(o *Options) { o.LoginLimiter = limiter })

	rec := serve(env.handler, postForm("/api/admin/login", url.Values{"username": {"admin"}, "password": {"nope"}}))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(env.handler, postForm("/api/admin/login", url.Values{"username": {"admin"}, "password": {"nope"}}))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAdmin_Logout(t *testing.T) {
	env := newTestEnv(t, &fakeBookingService{})

	rec := serve(env.handler, httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func adminRequest(t *testing.T, env testEnv, req *http.Request) *http.Request {
	t.Helper()
	tok, _, err := env.sessions.Issue("admin")
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: tok})
	return req
}

func TestAdmin_ReadForEdit(t *testing.T) {
	var gotID int64
	env := newTestEnv(t, &fakeBookingService{
		readFn: func(ctx context.Context, id int64) (appointments.EditView, error) {
			gotID = id
			return appointments.EditView{
				Appointment: domain.Appointment{ID: id, MechanicID: 1, AppointmentDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)},
				Mechanics:   []domain.Mechanic{{ID: 1, Name: "Aisha Rahman"}, {ID: 2, Name: "Karim Uddin", PhotoURL: "https://img.example/k.jpg"}},
			}, nil
		},
	})

	rec := serve(env.handler, adminRequest(t, env, httptest.NewRequest(http.MethodGet, "/api/admin/appointments/12", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(12), gotID)

	body := decodeBody(t, rec)
	assert.Len(t, body["mechanics"], 2)
	appt := body["appointment"].(map[string]any)
	assert.EqualValues(t, 12, appt["id"])
}

func TestAdmin_ReadForEditNotFound(t *testing.T) {
	env := newTestEnv(t, &fakeBookingService{
		readFn: func(ctx context.Context, id int64) (appointments.EditView, error) {
			return appointments.EditView{}, appointments.NewNotFoundError("appointment not found")
		},
	})

	rec := serve(env.handler, adminRequest(t, env, httptest.NewRequest(http.MethodGet, "/api/admin/appointments/99", nil)))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "appointment not found", decodeBody(t, rec)["error"])
}

func TestAdmin_SubmitUpdate(t *testing.T) {
	var got appointments.EditRequest
	env := newTestEnv(t, &fakeBookingService{
		submitFn: func(ctx context.Context, req appointments.EditRequest) (appointments.EditResult, error) {
			got = req
			return appointments.EditResult{
				Intent: appointments.IntentUpdate,
				Appointment: domain.Appointment{
					ID:              req.AppointmentID,
					MechanicID:      req.MechanicID,
					AppointmentDate: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
				},
			}, nil
		},
	})

	req := postForm("/api/admin/appointments/5", url.Values{
		"action":      {"update"},
		"mechanic_id": {"2"},
		"date":        {"2025-06-11"},
		"client_name": {"Rafi"},
		"phone":       {"01711000000"},
		"car_license": {"DHA-1234"},
		"car_engine":  {"EN-99"},
	})
	rec := serve(env.handler, adminRequest(t, env, req))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, appointments.IntentUpdate, got.Intent)
	assert.Equal(t, int64(5), got.AppointmentID)
	assert.Equal(t, int64(2), got.MechanicID)
	assert.Equal(t, "2025-06-11", got.Date)

	body := decodeBody(t, rec)
	assert.Equal(t, "update", body["action"])
	appt := body["appointment"].(map[string]any)
	assert.Equal(t, "2025-06-11", appt["appointment_date"])
}

func TestAdmin_SubmitDeleteButton(t *testing.T) {
	var got appointments.EditRequest
	env := newTestEnv(t, &fakeBookingService{
		submitFn: func(ctx context.Context, req appointments.EditRequest) (appointments.EditResult, error) {
			got = req
			return appointments.EditResult{Intent: appointments.IntentDelete}, nil
		},
	})

	rec := serve(env.handler, adminRequest(t, env, postForm("/api/admin/appointments/8", url.Values{"delete": {"1"}})))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, appointments.IntentDelete, got.Intent)
	assert.EqualValues(t, 8, decodeBody(t, rec)["appointment_id"])
}

func TestIntentFrom(t *testing.T) {
	tests := []struct {
		name   string
		in     fields
		want   appointments.Intent
		wantOK bool
	}{
		{name: "action update", in: fields{"action": "update"}, want: appointments.IntentUpdate, wantOK: true},
		{name: "action delete upper", in: fields{"action": " DELETE "}, want: appointments.IntentDelete, wantOK: true},
		{name: "unknown action wins over buttons", in: fields{"action": "archive", "delete": "1"}, wantOK: false},
		{name: "delete button", in: fields{"delete": ""}, want: appointments.IntentDelete, wantOK: true},
		{name: "update button", in: fields{"update": "Save"}, want: appointments.IntentUpdate, wantOK: true},
		{name: "nothing", in: fields{}, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := intentFrom(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, &fakeBookingService{}, func(o *Options) {
		o.Ping = func(ctx context.Context) error { return errors.New("db down") }
	})
	rec := serve(env.handler, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	env = newTestEnv(t, &fakeBookingService{})
	rec = serve(env.handler, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_RequestIDAndTimeout(t *testing.T) {
	var hadDeadline bool
	var seenID string
	env := newTestEnv(t, &fakeBookingService{
		availabilityFn: func(ctx context.Context, date string) (appointments.AvailabilityReport, error) {
			_, hadDeadline = ctx.Deadline()
			seenID = requestIDFrom(ctx)
			return appointments.AvailabilityReport{}, nil
		},
	})

	req := postForm("/api/availability", url.Values{"date": {"2025-06-10"}})
	req.Header.Set(requestIDHeader, "req-123")
	rec := serve(env.handler, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, hadDeadline)
	assert.Equal(t, "req-123", seenID)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))

	rec = serve(env.handler, postForm("/api/availability", url.Values{"date": {"2025-06-10"}}))
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)
}

func TestMiddleware_RecoversPanics(t *testing.T) {
	env := newTestEnv(t, &fakeBookingService{})

	rec := serve(env.handler, postForm("/api/availability", url.Values{"date": {"2025-06-10"}}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	env := newTestEnv(t, &fakeBookingService{
		availabilityFn: func(ctx context.Context, date string) (appointments.AvailabilityReport, error) {
			return appointments.AvailabilityReport{}, nil
		},
	}, func(o *Options) { o.AllowedOrigins = []string{"https://shop.example"} })

	req := postForm("/api/availability", url.Values{"date": {"2025-06-10"}})
	req.Header.Set("Origin", "https://shop.example")
	rec := serve(env.handler, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
