package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carfixer/backend/internal/domain"
)

type fakeDayLister struct {
	gotDay time.Time
	rows   []domain.AppointmentListing
	err    error
}

func (f *fakeDayLister) ListForDay(ctx context.Context, day time.Time) ([]domain.AppointmentListing, error) {
	f.gotDay = day
	return f.rows, f.err
}

type sentSMS struct {
	to, body string
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []sentSMS
	failTo map[string]bool
}

func (f *fakeNotifier) SendSMS(ctx context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTo[to] {
		return errors.New("undeliverable")
	}
	f.sent = append(f.sent, sentSMS{to: to, body: body})
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dhakaCalendar(t *testing.T, now time.Time) domain.Calendar {
	t.Helper()
	cal, err := domain.NewCalendar("Asia/Dhaka", true)
	require.NoError(t, err)
	cal.Now = func() time.Time { return now }
	return cal
}

func listing(id int64, phone, client string) domain.AppointmentListing {
	return domain.AppointmentListing{
		Appointment: domain.Appointment{
			ID:              id,
			AppointmentDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			ClientName:      client,
			Phone:           phone,
			CarLicense:      "DHA-1234",
		},
		MechanicName: "Karim Uddin",
	}
}

func TestReminderJob_TargetsTomorrowInShopTimezone(t *testing.T) {
	// 20:00 UTC on June 8 is already June 9 in Dhaka.
	now := time.Date(2025, 6, 8, 20, 0, 0, 0, time.UTC)
	repo := &fakeDayLister{}
	job := NewReminderJob(repo, &fakeNotifier{}, dhakaCalendar(t, now), quietLogger())

	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", domain.FormatDate(repo.gotDay))
	assert.Equal(t, repo.gotDay, res.Day)
}

func TestReminderJob_ContinuesPastFailures(t *testing.T) {
	repo := &fakeDayLister{rows: []domain.AppointmentListing{
		listing(1, "+8801711000001", "Rafi"),
		listing(2, "+8801711000002", "Nadia"),
		listing(3, "+8801711000003", "Tanvir"),
	}}
	notifier := &fakeNotifier{failTo: map[string]bool{"+8801711000002": true}}
	job := NewReminderJob(repo, notifier, dhakaCalendar(t, time.Date(2025, 6, 9, 3, 0, 0, 0, time.UTC)), quietLogger())

	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "+8801711000003", notifier.sent[1].to)
	assert.Equal(t,
		"Hi Rafi, this is a reminder of your car service with Karim Uddin on June 10, 2025. Vehicle: DHA-1234.",
		notifier.sent[0].body,
	)
}

func TestReminderJob_ReturnsLoadError(t *testing.T) {
	boom := errors.New("connection reset")
	job := NewReminderJob(&fakeDayLister{err: boom}, &fakeNotifier{}, dhakaCalendar(t, time.Now()), quietLogger())

	_, err := job.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler(time.UTC, time.Second, quietLogger())
	assert.Error(t, s.Add("not a schedule", "x", func(ctx context.Context) error { return nil }))
	assert.NoError(t, s.Add("0 18 * * *", "x", func(ctx context.Context) error { return nil }))
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(time.UTC, time.Second, quietLogger())
	require.NoError(t, s.Add("@every 1h", "idle", func(ctx context.Context) error { return nil }))
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
