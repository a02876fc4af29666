package appointments

import (
	"context"
	"errors"
	"time"

	"carfixer/backend/internal/domain"
	"carfixer/backend/internal/store"
)

type BookingInput struct {
	MechanicID int64
	Date       string
	ClientName string
	Address    string
	Phone      string
	CarLicense string
	CarEngine  string
}

func (in BookingInput) normalized() BookingInput {
	return BookingInput{
		MechanicID: in.MechanicID,
		Date:       domain.NormalizeField(in.Date),
		ClientName: domain.NormalizeField(in.ClientName),
		Address:    domain.NormalizeField(in.Address),
		Phone:      domain.NormalizeField(in.Phone),
		CarLicense: domain.NormalizeField(in.CarLicense),
		CarEngine:  domain.NormalizeField(in.CarEngine),
	}
}

func (in BookingInput) complete() bool {
	return in.MechanicID > 0 &&
		in.Date != "" &&
		in.ClientName != "" &&
		in.Address != "" &&
		in.Phone != "" &&
		in.CarLicense != "" &&
		in.CarEngine != ""
}

type Confirmation struct {
	AppointmentID int64
	MechanicID    int64
	MechanicName  string
	Date          time.Time
	Phone         string
	ClientName    string
}

func (c Confirmation) DatePretty() string {
	return domain.PrettyDate(c.Date)
}

// Book validates in and inserts an active appointment. The duplicate-client
// and capacity checks run under the day lock together with the insert.
func (s *Service) Book(ctx context.Context, in BookingInput) (Confirmation, error) {
	in = in.normalized()
	if !in.complete() {
		return Confirmation{}, validationError(msgFieldsRequired)
	}

	day, err := s.cal.ParseBookingDate(in.Date)
	if err != nil {
		return Confirmation{}, validationError(msgInvalidDate)
	}

	var out Confirmation
	err = s.repo.InDayTransaction(ctx, day, func(ctx context.Context, tx store.BookingTx) error {
		mech, err := tx.GetMechanic(ctx, in.MechanicID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return notFoundError(msgMechanicNotFound)
			}
			return err
		}

		if err := s.checkSlot(ctx, tx, in.MechanicID, in.Phone, day, 0); err != nil {
			return err
		}

		appt, err := tx.InsertAppointment(ctx, domain.Appointment{
			MechanicID:      in.MechanicID,
			AppointmentDate: day,
			Status:          domain.StatusActive,
			ClientName:      in.ClientName,
			Address:         in.Address,
			Phone:           in.Phone,
			CarLicense:      in.CarLicense,
			CarEngine:       in.CarEngine,
			CreatedAt:       time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		out = Confirmation{
			AppointmentID: appt.ID,
			MechanicID:    mech.ID,
			MechanicName:  mech.Name,
			Date:          day,
			Phone:         appt.Phone,
			ClientName:    appt.ClientName,
		}
		return nil
	})
	if err != nil {
		return Confirmation{}, mapWriteError(err, msgMechanicNotFound)
	}
	return out, nil
}

// checkSlot enforces one counted booking per phone per day and the per
// mechanic capacity. excludeID keeps an edited appointment from counting
// against itself.
func (s *Service) checkSlot(ctx context.Context, tx store.BookingTx, mechanicID int64, phone string, day time.Time, excludeID int64) error {
	n, err := tx.CountClientBookings(ctx, phone, day, excludeID)
	if err != nil {
		return err
	}
	if n > 0 {
		return conflictError(msgClientBooked)
	}

	n, err = tx.CountMechanicBookings(ctx, mechanicID, day, excludeID)
	if err != nil {
		return err
	}
	if n >= s.capacity {
		return conflictError(msgFullyBooked)
	}
	return nil
}

// mapWriteError turns store sentinels that escape a write into service
// errors. notFoundMsg names what a missing row means for the caller.
func mapWriteError(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, store.ErrClientAlreadyBooked):
		return conflictError(msgClientBooked)
	case errors.Is(err, store.ErrNotFound):
		return notFoundError(notFoundMsg)
	}
	return err
}
