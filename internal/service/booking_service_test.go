package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/citas-api/internal/models"
	appErrors "github.com/noah-isme/citas-api/pkg/errors"
	"github.com/noah-isme/citas-api/pkg/timespan"
)

func newBookingFixture() (*BookingService, *memoryStore, *notifierStub, *MetricsService) {
	store := newMemoryStore()
	notifier := &notifierStub{}
	metrics := NewMetricsService()
	svc := NewBookingService(store, notifier, metrics, validator.New(), zap.NewNop())
	return svc, store, notifier, metrics
}

func book(svc *BookingService, practitioner, client int64, date, start, end string) (*models.Appointment, error) {
	return svc.Book(context.Background(), BookRequest{
		PractitionerID: practitioner,
		ClientID:       client,
		SpanInput:      spanInput(date, start, end),
	})
}

func TestBookingServiceBookConfirms(t *testing.T) {
	svc, store, notifier, metrics := newBookingFixture()
	store.addWindow(1, "2025-01-06", "09:00", "12:00")

	appt, err := book(svc, 1, 42, "2025-01-06", "09:00", "10:00")
	require.NoError(t, err)
	assert.NotZero(t, appt.ID)
	assert.Equal(t, models.AppointmentConfirmed, appt.Status)
	assert.Equal(t, []models.BookingEventType{models.EventAppointmentBooked}, notifier.events)
	assert.Equal(t, int64(42), notifier.last.ClientID)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.bookings.WithLabelValues(OutcomeConfirmed)))
	require.Len(t, store.lockCalls, 1)
	assert.Equal(t, "1|2025-01-06", store.lockCalls[0][0].String())
}

func TestBookingServiceRejectsInvalidSpan(t *testing.T) {
	svc, store, notifier, metrics := newBookingFixture()
	store.addWindow(1, "2025-01-06", "08:00", "12:00")

	_, err := book(svc, 1, 42, "2025-01-06", "10:00", "09:00")
	assert.ErrorIs(t, err, appErrors.ErrInvalidSpan)
	assert.Equal(t, 0, store.count())
	assert.Empty(t, notifier.events)
	assert.Empty(t, store.lockCalls)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.bookings.WithLabelValues(OutcomeInvalidSpan)))
}

func TestBookingServiceRequiresBothEndpoints(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	in := spanInput("2025-01-06", "09:00", "10:00")
	in.End = nil

	_, err := svc.Book(context.Background(), BookRequest{PractitionerID: 1, ClientID: 2, SpanInput: in})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestBookingServiceRejectsWithoutAvailability(t *testing.T) {
	svc, store, _, _ := newBookingFixture()
	store.addWindow(1, "2025-01-06", "09:00", "12:00")

	_, err := book(svc, 1, 42, "2025-01-06", "14:00", "15:00")
	assert.ErrorIs(t, err, appErrors.ErrNoAvailability)

	// partially covered is not contained
	_, err = book(svc, 1, 42, "2025-01-06", "11:30", "12:30")
	assert.ErrorIs(t, err, appErrors.ErrNoAvailability)

	// another practitioner's window does not count
	_, err = book(svc, 2, 42, "2025-01-06", "09:00", "10:00")
	assert.ErrorIs(t, err, appErrors.ErrNoAvailability)
	assert.Equal(t, 0, store.count())
}

func TestBookingServiceRejectsOverlap(t *testing.T) {
	svc, store, _, _ := newBookingFixture()
	store.addWindow(1, "2025-01-06", "08:00", "12:00")

	_, err := book(svc, 1, 10, "2025-01-06", "09:00", "10:00")
	require.NoError(t, err)

	_, err = book(svc, 1, 20, "2025-01-06", "09:30", "10:30")
	assert.ErrorIs(t, err, appErrors.ErrSlotConflict)

	// half-open spans: touching is fine
	_, err = book(svc, 1, 20, "2025-01-06", "10:00", "11:00")
	require.NoError(t, err)
	assert.Equal(t, 2, store.count())
}

func TestBookingServiceNoAvailabilityCheckedBeforeConflict(t *testing.T) {
	svc, store, _, _ := newBookingFixture()
	store.addWindow(1, "2025-01-06", "09:00", "10:00")
	_, err := book(svc, 1, 10, "2025-01-06", "09:00", "10:00")
	require.NoError(t, err)

	_, err = book(svc, 1, 20, "2025-01-06", "09:30", "10:30")
	assert.ErrorIs(t, err, appErrors.ErrNoAvailability)
}

func TestBookingServiceConcurrentBookingsNeverOverlap(t *testing.T) {
	svc, store, _, metrics := newBookingFixture()
	store.addWindow(1, "2025-03-03", "08:00", "18:00")
	store.readDelay = 2 * time.Millisecond

	const callers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	var successes, conflicts int
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(client int64) {
			defer wg.Done()
			start := "09:00"
			if client%2 == 0 {
				start = "09:30"
			}
			end, _ := timespan.MustClock(start).Advance(60)
			_, err := book(svc, 1, client, "2025-03-03", start, end.String())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, appErrors.ErrSlotConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, conflicts)
	assert.Equal(t, 1, store.count())
	assert.Equal(t, float64(callers-1), testutil.ToFloat64(metrics.bookings.WithLabelValues(OutcomeSlotConflict)))
	assert.Zero(t, svc.locks.Len())
}

func TestBookingServiceRescheduleExcludesItself(t *testing.T) {
	svc, store, notifier, _ := newBookingFixture()
	store.addWindow(1, "2025-02-01", "09:00", "13:00")
	appt, err := book(svc, 1, 42, "2025-02-01", "10:00", "11:00")
	require.NoError(t, err)

	updated, err := svc.Reschedule(context.Background(), appt.ID, RescheduleRequest{SpanInput: spanInput("2025-02-01", "10:30", "11:30")})
	require.NoError(t, err)
	assert.Equal(t, appt.ID, updated.ID)
	assert.Equal(t, "10:30", updated.Start.String())
	assert.Equal(t, int64(42), updated.ClientID)
	assert.Equal(t, 1, store.count())
	assert.Equal(t, models.EventAppointmentRescheduled, notifier.events[len(notifier.events)-1])
}

func TestBookingServiceRescheduleConflictsWithOthers(t *testing.T) {
	svc, store, _, _ := newBookingFixture()
	store.addWindow(1, "2025-02-01", "09:00", "13:00")
	first, err := book(svc, 1, 42, "2025-02-01", "10:00", "11:00")
	require.NoError(t, err)
	_, err = book(svc, 1, 43, "2025-02-01", "11:00", "12:00")
	require.NoError(t, err)

	_, err = svc.Reschedule(context.Background(), first.ID, RescheduleRequest{SpanInput: spanInput("2025-02-01", "10:30", "11:30")})
	assert.ErrorIs(t, err, appErrors.ErrSlotConflict)

	stored, err := svc.Get(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, "10:00", stored.Start.String())
}

func TestBookingServiceRescheduleAcrossDatesLocksBothDays(t *testing.T) {
	svc, store, _, _ := newBookingFixture()
	store.addWindow(1, "2025-02-01", "09:00", "13:00")
	store.addWindow(1, "2025-02-03", "09:00", "13:00")
	appt, err := book(svc, 1, 42, "2025-02-01", "10:00", "11:00")
	require.NoError(t, err)

	updated, err := svc.Reschedule(context.Background(), appt.ID, RescheduleRequest{SpanInput: spanInput("2025-02-03", "09:00", "10:00")})
	require.NoError(t, err)
	assert.Equal(t, "2025-02-03", updated.Date.String())

	last := store.lockCalls[len(store.lockCalls)-1]
	require.Len(t, last, 2)
	assert.Equal(t, "1|2025-02-01", last[0].String())
	assert.Equal(t, "1|2025-02-03", last[1].String())
}

func TestBookingServiceRescheduleNeedsAvailability(t *testing.T) {
	svc, store, _, _ := newBookingFixture()
	store.addWindow(1, "2025-02-01", "09:00", "13:00")
	appt, err := book(svc, 1, 42, "2025-02-01", "10:00", "11:00")
	require.NoError(t, err)

	_, err = svc.Reschedule(context.Background(), appt.ID, RescheduleRequest{SpanInput: spanInput("2025-02-02", "10:00", "11:00")})
	assert.ErrorIs(t, err, appErrors.ErrNoAvailability)
}

func TestBookingServiceRescheduleUnknown(t *testing.T) {
	svc, _, _, _ := newBookingFixture()
	_, err := svc.Reschedule(context.Background(), 999, RescheduleRequest{SpanInput: spanInput("2025-02-01", "10:00", "11:00")})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestBookingServiceCancelTwiceFails(t *testing.T) {
	svc, store, notifier, _ := newBookingFixture()
	store.addWindow(1, "2025-01-06", "09:00", "12:00")
	appt, err := book(svc, 1, 42, "2025-01-06", "09:00", "10:00")
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), appt.ID))
	assert.Equal(t, 0, store.count())
	assert.Equal(t, models.EventAppointmentCancelled, notifier.events[len(notifier.events)-1])

	err = svc.Cancel(context.Background(), appt.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	// the slot is free again
	_, err = book(svc, 1, 43, "2025-01-06", "09:00", "10:00")
	assert.NoError(t, err)
}

func TestBookingServiceListings(t *testing.T) {
	svc, store, _, _ := newBookingFixture()
	store.addWindow(1, "2025-01-06", "08:00", "12:00")
	store.addWindow(1, "2025-01-07", "08:00", "12:00")
	_, err := book(svc, 1, 42, "2025-01-07", "08:00", "09:00")
	require.NoError(t, err)
	_, err = book(svc, 1, 43, "2025-01-06", "10:00", "11:00")
	require.NoError(t, err)
	_, err = book(svc, 1, 42, "2025-01-06", "08:00", "09:00")
	require.NoError(t, err)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2025-01-06 08:00", all[0].Date.String()+" "+all[0].Start.String())
	assert.Equal(t, "2025-01-07", all[2].Date.String())

	mine, err := svc.ListForClient(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	day := timespan.MustDate("2025-01-06")
	onDay, err := svc.ListForPractitioner(context.Background(), 1, &day)
	require.NoError(t, err)
	assert.Len(t, onDay, 2)

	_, err = svc.ListForPractitioner(context.Background(), 0, nil)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
