package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"carfixer/backend/internal/domain"
	"carfixer/backend/internal/store"
)

const clientDayIndex = "appointments_client_day_uniq"

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

type bookingTx struct {
	tx bun.Tx
}

func countedStatuses() []string {
	statuses := domain.CountedStatuses()
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func (r *AppointmentRepo) ListMechanics(ctx context.Context) ([]domain.Mechanic, error) {
	var rows []domain.Mechanic
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("m.name ASC, m.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) MechanicLoads(ctx context.Context, day time.Time) ([]domain.MechanicLoad, error) {
	var rows []domain.MechanicLoad
	err := r.db.NewSelect().
		TableExpr("mechanics AS m").
		ColumnExpr("m.id, m.name, COALESCE(m.photo_url, '') AS photo_url").
		ColumnExpr("COUNT(a.id) AS bookings").
		Join(
			"LEFT JOIN appointments AS a ON a.mechanic_id = m.id AND a.appointment_date = ? AND a.status IN (?)",
			domain.FormatDate(day), bun.In(countedStatuses()),
		).
		GroupExpr("m.id, m.name, m.photo_url").
		OrderExpr("m.name ASC, m.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) ListAppointments(ctx context.Context) ([]domain.AppointmentListing, error) {
	var rows []domain.AppointmentListing
	err := r.db.NewSelect().
		Model(&rows).
		ColumnExpr("a.*").
		ColumnExpr("m.name AS mechanic_name").
		Join("JOIN mechanics AS m ON m.id = a.mechanic_id").
		OrderExpr("a.appointment_date ASC, a.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) ListForDay(ctx context.Context, day time.Time) ([]domain.AppointmentListing, error) {
	var rows []domain.AppointmentListing
	err := r.db.NewSelect().
		Model(&rows).
		ColumnExpr("a.*").
		ColumnExpr("m.name AS mechanic_name").
		Join("JOIN mechanics AS m ON m.id = a.mechanic_id").
		Where("a.appointment_date = ?", domain.FormatDate(day)).
		Where("a.status IN (?)", bun.In(countedStatuses())).
		OrderExpr("a.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) GetAppointment(ctx context.Context, id int64) (domain.Appointment, error) {
	return getAppointment(ctx, r.db, id)
}

// Delete removes the appointment if it exists. Deleting an unknown id is not
// an error.
func (r *AppointmentRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*domain.Appointment)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *AppointmentRepo) InDayTransaction(ctx context.Context, day time.Time, fn func(ctx context.Context, tx store.BookingTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockDay(ctx, tx, day); err != nil {
			return err
		}
		return fn(ctx, bookingTx{tx: tx})
	})
}

func dayLockKey(day time.Time) string {
	return "carfixer:day:" + domain.FormatDate(day)
}

func lockDay(ctx context.Context, tx bun.Tx, day time.Time) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", dayLockKey(day)).Exec(ctx)
	return err
}

func getAppointment(ctx context.Context, db bun.IDB, id int64) (domain.Appointment, error) {
	var appt domain.Appointment
	err := db.NewSelect().
		Model(&appt).
		Where("a.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}

func (r bookingTx) GetMechanic(ctx context.Context, id int64) (domain.Mechanic, error) {
	var m domain.Mechanic
	err := r.tx.NewSelect().
		Model(&m).
		Where("m.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Mechanic{}, store.ErrNotFound
		}
		return domain.Mechanic{}, err
	}
	return m, nil
}

func (r bookingTx) GetAppointment(ctx context.Context, id int64) (domain.Appointment, error) {
	return getAppointment(ctx, r.tx, id)
}

func (r bookingTx) CountMechanicBookings(ctx context.Context, mechanicID int64, day time.Time, excludeID int64) (int, error) {
	q := r.tx.NewSelect().
		Model((*domain.Appointment)(nil)).
		Where("a.mechanic_id = ?", mechanicID).
		Where("a.appointment_date = ?", domain.FormatDate(day)).
		Where("a.status IN (?)", bun.In(countedStatuses()))
	if excludeID > 0 {
		q = q.Where("a.id <> ?", excludeID)
	}
	return q.Count(ctx)
}

func (r bookingTx) CountClientBookings(ctx context.Context, phone string, day time.Time, excludeID int64) (int, error) {
	q := r.tx.NewSelect().
		Model((*domain.Appointment)(nil)).
		Where("a.phone = ?", phone).
		Where("a.appointment_date = ?", domain.FormatDate(day)).
		Where("a.status IN (?)", bun.In(countedStatuses()))
	if excludeID > 0 {
		q = q.Where("a.id <> ?", excludeID)
	}
	return q.Count(ctx)
}

func (r bookingTx) InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := domain.Appointment{
		MechanicID:      appt.MechanicID,
		AppointmentDate: domain.AsDate(appt.AppointmentDate),
		Status:          appt.Status,
		ClientName:      appt.ClientName,
		Address:         appt.Address,
		Phone:           appt.Phone,
		CarLicense:      appt.CarLicense,
		CarEngine:       appt.CarEngine,
		CreatedAt:       appt.CreatedAt,
	}

	_, err := r.tx.NewInsert().
		Model(&m).
		Returning("id, created_at, updated_at").
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, mapWriteError(err)
	}
	return m, nil
}

// UpdateAppointment overwrites the editable fields of an existing row. Status,
// address and created_at are left as stored.
func (r bookingTx) UpdateAppointment(ctx context.Context, appt domain.Appointment) error {
	m := domain.Appointment{
		ID:              appt.ID,
		MechanicID:      appt.MechanicID,
		AppointmentDate: domain.AsDate(appt.AppointmentDate),
		ClientName:      appt.ClientName,
		Phone:           appt.Phone,
		CarLicense:      appt.CarLicense,
		CarEngine:       appt.CarEngine,
	}

	res, err := r.tx.NewUpdate().
		Model(&m).
		Column("mechanic_id", "appointment_date", "client_name", "phone", "car_license", "car_engine", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return mapWriteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == clientDayIndex {
			return store.ErrClientAlreadyBooked
		}
		if pgErr.Code == "23503" {
			return store.ErrNotFound
		}
	}
	return err
}
