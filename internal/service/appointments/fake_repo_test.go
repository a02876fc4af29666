package appointments

import (
	"context"
	"sort"
	"time"

	"carfixer/backend/internal/domain"
	"carfixer/backend/internal/store"
)

// memRepo is an in-memory AppointmentRepository. Writes made inside
// InDayTransaction are discarded when fn returns an error.
type memRepo struct {
	mechanics    []domain.Mechanic
	appointments []domain.Appointment
	nextID       int64

	lockedDays []time.Time

	mechanicLoadsErr error
	insertErr        error
	getErr           error
}

func newMemRepo(mechanics ...domain.Mechanic) *memRepo {
	return &memRepo{mechanics: mechanics, nextID: 100}
}

func (r *memRepo) add(mechanicID int64, day time.Time, phone string, status domain.Status) domain.Appointment {
	r.nextID++
	a := domain.Appointment{
		ID:              r.nextID,
		MechanicID:      mechanicID,
		AppointmentDate: day,
		Status:          status,
		ClientName:      "client " + phone,
		Address:         "Road 1",
		Phone:           phone,
		CarLicense:      "DHA-" + phone,
		CarEngine:       "ENG-" + phone,
		CreatedAt:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	r.appointments = append(r.appointments, a)
	return a
}

func (r *memRepo) ListMechanics(ctx context.Context) ([]domain.Mechanic, error) {
	out := append([]domain.Mechanic(nil), r.mechanics...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memRepo) MechanicLoads(ctx context.Context, day time.Time) ([]domain.MechanicLoad, error) {
	if r.mechanicLoadsErr != nil {
		return nil, r.mechanicLoadsErr
	}
	out := make([]domain.MechanicLoad, 0, len(r.mechanics))
	for _, m := range r.mechanics {
		n, _ := r.countMechanic(m.ID, day, 0)
		out = append(out, domain.MechanicLoad{ID: m.ID, Name: m.Name, PhotoURL: m.PhotoURL, Bookings: n})
	}
	return out, nil
}

func (r *memRepo) ListAppointments(ctx context.Context) ([]domain.AppointmentListing, error) {
	out := make([]domain.AppointmentListing, 0, len(r.appointments))
	for _, a := range r.appointments {
		out = append(out, domain.AppointmentListing{Appointment: a, MechanicName: r.mechanicName(a.MechanicID)})
	}
	return out, nil
}

func (r *memRepo) ListForDay(ctx context.Context, day time.Time) ([]domain.AppointmentListing, error) {
	var out []domain.AppointmentListing
	for _, a := range r.appointments {
		if a.AppointmentDate.Equal(day) && a.Status.Counts() {
			out = append(out, domain.AppointmentListing{Appointment: a, MechanicName: r.mechanicName(a.MechanicID)})
		}
	}
	return out, nil
}

func (r *memRepo) GetAppointment(ctx context.Context, id int64) (domain.Appointment, error) {
	if r.getErr != nil {
		return domain.Appointment{}, r.getErr
	}
	for _, a := range r.appointments {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Appointment{}, store.ErrNotFound
}

func (r *memRepo) Delete(ctx context.Context, id int64) error {
	kept := r.appointments[:0]
	for _, a := range r.appointments {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	r.appointments = kept
	return nil
}

func (r *memRepo) InDayTransaction(ctx context.Context, day time.Time, fn func(ctx context.Context, tx store.BookingTx) error) error {
	r.lockedDays = append(r.lockedDays, day)
	snapshot := append([]domain.Appointment(nil), r.appointments...)
	nextID := r.nextID
	if err := fn(ctx, memTx{r: r}); err != nil {
		r.appointments = snapshot
		r.nextID = nextID
		return err
	}
	return nil
}

func (r *memRepo) mechanicName(id int64) string {
	for _, m := range r.mechanics {
		if m.ID == id {
			return m.Name
		}
	}
	return ""
}

func (r *memRepo) countMechanic(mechanicID int64, day time.Time, excludeID int64) (int, error) {
	n := 0
	for _, a := range r.appointments {
		if a.MechanicID == mechanicID && a.AppointmentDate.Equal(day) && a.Status.Counts() && a.ID != excludeID {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) countForDay(mechanicID int64, day time.Time) int {
	n, _ := r.countMechanic(mechanicID, day, 0)
	return n
}

type memTx struct {
	r *memRepo
}

func (t memTx) GetMechanic(ctx context.Context, id int64) (domain.Mechanic, error) {
	for _, m := range t.r.mechanics {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Mechanic{}, store.ErrNotFound
}

func (t memTx) GetAppointment(ctx context.Context, id int64) (domain.Appointment, error) {
	return t.r.GetAppointment(ctx, id)
}

func (t memTx) CountMechanicBookings(ctx context.Context, mechanicID int64, day time.Time, excludeID int64) (int, error) {
	return t.r.countMechanic(mechanicID, day, excludeID)
}

func (t memTx) CountClientBookings(ctx context.Context, phone string, day time.Time, excludeID int64) (int, error) {
	n := 0
	for _, a := range t.r.appointments {
		if a.Phone == phone && a.AppointmentDate.Equal(day) && a.Status.Counts() && a.ID != excludeID {
			n++
		}
	}
	return n, nil
}

func (t memTx) InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if t.r.insertErr != nil {
		return domain.Appointment{}, t.r.insertErr
	}
	t.r.nextID++
	appt.ID = t.r.nextID
	t.r.appointments = append(t.r.appointments, appt)
	return appt, nil
}

func (t memTx) UpdateAppointment(ctx context.Context, appt domain.Appointment) error {
	for i, a := range t.r.appointments {
		if a.ID != appt.ID {
			continue
		}
		a.MechanicID = appt.MechanicID
		a.AppointmentDate = appt.AppointmentDate
		a.ClientName = appt.ClientName
		a.Phone = appt.Phone
		a.CarLicense = appt.CarLicense
		a.CarEngine = appt.CarEngine
		t.r.appointments[i] = a
		return nil
	}
	return store.ErrNotFound
}
