package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"carfixer/backend/internal/domain"
	"carfixer/backend/internal/notify"
)

type dayLister interface {
	ListForDay(ctx context.Context, day time.Time) ([]domain.AppointmentListing, error)
}

// ReminderJob texts every client booked for tomorrow in the shop's timezone.
type ReminderJob struct {
	repo     dayLister
	notifier notify.Notifier
	cal      domain.Calendar
	log      *slog.Logger
}

type ReminderResult struct {
	Day    time.Time
	Sent   int
	Failed int
}

func NewReminderJob(repo dayLister, notifier notify.Notifier, cal domain.Calendar, log *slog.Logger) *ReminderJob {
	if log == nil {
		log = slog.Default()
	}
	return &ReminderJob{
		repo:     repo,
		notifier: notifier,
		cal:      cal,
		log:      log.With(slog.String("component", "jobs.reminders")),
	}
}

func ReminderMessage(a domain.AppointmentListing) string {
	return fmt.Sprintf(
		"Hi %s, this is a reminder of your car service with %s on %s. Vehicle: %s.",
		a.ClientName, a.MechanicName, domain.PrettyDate(a.AppointmentDate), a.CarLicense,
	)
}

// Run sends one reminder per appointment. A failed message is logged and the
// batch continues; only a failure to load the day is returned.
func (j *ReminderJob) Run(ctx context.Context) (ReminderResult, error) {
	day := j.cal.Tomorrow()
	res := ReminderResult{Day: day}

	appts, err := j.repo.ListForDay(ctx, day)
	if err != nil {
		return res, fmt.Errorf("list appointments for %s: %w", domain.FormatDate(day), err)
	}

	for _, a := range appts {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := j.notifier.SendSMS(ctx, a.Phone, ReminderMessage(a)); err != nil {
			res.Failed++
			j.log.Warn("reminder failed",
				slog.Int64("appointment_id", a.ID),
				slog.Any("err", err),
			)
			continue
		}
		res.Sent++
	}

	j.log.Info("reminders sent",
		slog.String("date", domain.FormatDate(day)),
		slog.Int("sent", res.Sent),
		slog.Int("failed", res.Failed),
	)
	return res, nil
}
