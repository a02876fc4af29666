package appointments

import (
	"context"
	"errors"
	"strings"

	"carfixer/backend/internal/domain"
	"carfixer/backend/internal/store"
)

type UpdateInput struct {
	AppointmentID int64
	MechanicID    int64
	Date          string
	ClientName    string
	Phone         string
	CarLicense    string
	CarEngine     string
}

func (in UpdateInput) normalized() UpdateInput {
	return UpdateInput{
		AppointmentID: in.AppointmentID,
		MechanicID:    in.MechanicID,
		Date:          domain.NormalizeField(in.Date),
		ClientName:    domain.NormalizeField(in.ClientName),
		Phone:         domain.NormalizeField(in.Phone),
		CarLicense:    domain.NormalizeField(in.CarLicense),
		CarEngine:     domain.NormalizeField(in.CarEngine),
	}
}

func (in UpdateInput) complete() bool {
	return in.AppointmentID > 0 &&
		in.MechanicID > 0 &&
		in.Date != "" &&
		in.ClientName != "" &&
		in.Phone != "" &&
		in.CarLicense != "" &&
		in.CarEngine != ""
}

// Update reassigns an appointment and rewrites its client and vehicle fields.
// Status, address and created_at are never changed here.
func (s *Service) Update(ctx context.Context, in UpdateInput) (domain.Appointment, error) {
	in = in.normalized()
	if !in.complete() {
		return domain.Appointment{}, validationError(msgFieldsRequired)
	}

	if _, err := s.repo.GetAppointment(ctx, in.AppointmentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Appointment{}, notFoundError(msgApptNotFound)
		}
		return domain.Appointment{}, err
	}

	day, err := s.cal.ParseBookingDate(in.Date)
	if err != nil {
		return domain.Appointment{}, validationError(msgInvalidDate)
	}

	var out domain.Appointment
	err = s.repo.InDayTransaction(ctx, day, func(ctx context.Context, tx store.BookingTx) error {
		if _, err := tx.GetMechanic(ctx, in.MechanicID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFoundError(msgMechanicNotFound)
			}
			return err
		}

		if err := s.checkSlot(ctx, tx, in.MechanicID, in.Phone, day, in.AppointmentID); err != nil {
			return err
		}

		err := tx.UpdateAppointment(ctx, domain.Appointment{
			ID:              in.AppointmentID,
			MechanicID:      in.MechanicID,
			AppointmentDate: day,
			ClientName:      in.ClientName,
			Phone:           in.Phone,
			CarLicense:      in.CarLicense,
			CarEngine:       in.CarEngine,
		})
		if err != nil {
			return err
		}

		updated, err := tx.GetAppointment(ctx, in.AppointmentID)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.Appointment{}, mapWriteError(err, msgApptNotFound)
	}
	return out, nil
}

// Delete removes an appointment. An id that does not exist is accepted.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return validationError(msgInvalidID)
	}
	return s.repo.Delete(ctx, id)
}

type EditView struct {
	Appointment domain.Appointment
	Mechanics   []domain.Mechanic
}

func (s *Service) ReadForEdit(ctx context.Context, id int64) (EditView, error) {
	if id <= 0 {
		return EditView{}, validationError(msgInvalidID)
	}
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return EditView{}, notFoundError(msgApptNotFound)
		}
		return EditView{}, err
	}
	mechanics, err := s.repo.ListMechanics(ctx)
	if err != nil {
		return EditView{}, err
	}
	return EditView{Appointment: appt, Mechanics: mechanics}, nil
}

func (s *Service) ListAppointments(ctx context.Context) ([]domain.AppointmentListing, error) {
	return s.repo.ListAppointments(ctx)
}

type Intent string

const (
	IntentUpdate Intent = "update"
	IntentDelete Intent = "delete"
)

func ParseIntent(s string) (Intent, bool) {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentUpdate:
		return IntentUpdate, true
	case IntentDelete:
		return IntentDelete, true
	}
	return "", false
}

// EditRequest is the single admin write entry point. Only AppointmentID is
// read for IntentDelete.
type EditRequest struct {
	Intent Intent
	UpdateInput
}

type EditResult struct {
	Intent      Intent
	Appointment domain.Appointment
}

func (s *Service) Submit(ctx context.Context, req EditRequest) (EditResult, error) {
	switch req.Intent {
	case IntentDelete:
		if err := s.Delete(ctx, req.AppointmentID); err != nil {
			return EditResult{}, err
		}
		return EditResult{Intent: IntentDelete, Appointment: domain.Appointment{ID: req.AppointmentID}}, nil
	case IntentUpdate:
		appt, err := s.Update(ctx, req.UpdateInput)
		if err != nil {
			return EditResult{}, err
		}
		return EditResult{Intent: IntentUpdate, Appointment: appt}, nil
	}
	return EditResult{}, validationError(msgUnknownIntent)
}
