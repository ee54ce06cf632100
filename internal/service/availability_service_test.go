package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/citas-api/internal/models"
	appErrors "github.com/noah-isme/citas-api/pkg/errors"
	"github.com/noah-isme/citas-api/pkg/timespan"
)

func newAvailabilityFixture(cacheRepo CacheRepository) (*AvailabilityService, *windowRepoStub) {
	repo := newWindowRepoStub()
	var cache availabilityCache
	if cacheRepo != nil {
		cache = NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	}
	svc := NewAvailabilityService(repo, cache, validator.New(), zap.NewNop(), AvailabilityConfig{BulkMaxDays: 60})
	return svc, repo
}

func bulkRequest(from, to, start, end string, days timespan.Weekdays) BulkAvailabilityRequest {
	f := timespan.MustDate(from)
	tt := timespan.MustDate(to)
	s := timespan.MustClock(start)
	e := timespan.MustClock(end)
	return BulkAvailabilityRequest{PractitionerID: 7, From: &f, To: &tt, Start: &s, End: &e, Days: days}
}

func TestAvailabilityServiceCreateWindow(t *testing.T) {
	svc, repo := newAvailabilityFixture(nil)

	window, err := svc.CreateWindow(context.Background(), WindowRequest{PractitionerID: 7, SpanInput: spanInput("2025-01-06", "09:00", "12:00")})
	require.NoError(t, err)
	assert.NotZero(t, window.ID)

	// overlapping windows are accepted
	_, err = svc.CreateWindow(context.Background(), WindowRequest{PractitionerID: 7, SpanInput: spanInput("2025-01-06", "10:00", "13:00")})
	require.NoError(t, err)
	assert.Len(t, repo.windows, 2)
}

func TestAvailabilityServiceCreateWindowRejectsInvalidSpan(t *testing.T) {
	svc, repo := newAvailabilityFixture(nil)

	_, err := svc.CreateWindow(context.Background(), WindowRequest{PractitionerID: 7, SpanInput: spanInput("2025-01-06", "12:00", "12:00")})
	assert.ErrorIs(t, err, appErrors.ErrInvalidSpan)

	_, err = svc.CreateWindow(context.Background(), WindowRequest{SpanInput: spanInput("2025-01-06", "09:00", "12:00")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, repo.windows)
}

func TestAvailabilityServiceBulkExpandsWeekdays(t *testing.T) {
	svc, repo := newAvailabilityFixture(nil)

	result, err := svc.CreateBulk(context.Background(), bulkRequest("2025-01-06", "2025-01-12", "09:00", "12:00",
		timespan.WeekdaysOf(time.Monday, time.Wednesday)))
	require.NoError(t, err)
	require.Len(t, result.Created, 2)
	assert.Equal(t, "2025-01-06", result.Created[0].Date.String())
	assert.Equal(t, "2025-01-08", result.Created[1].Date.String())
	for _, w := range result.Created {
		assert.Equal(t, "09:00", w.Start.String())
		assert.Equal(t, "12:00", w.End.String())
	}
	assert.Empty(t, result.Failed)
	assert.Zero(t, repo.rangeCalls)
}

func TestAvailabilityServiceBulkAllDaysMatchesExpansion(t *testing.T) {
	svc, repo := newAvailabilityFixture(nil)
	ranged, err := svc.CreateBulk(context.Background(), bulkRequest("2025-01-06", "2025-01-12", "09:00", "12:00", timespan.AllWeekdays))
	require.NoError(t, err)
	assert.Equal(t, 1, repo.rangeCalls)

	perDay := timespan.ExpandDates(timespan.MustDate("2025-01-06"), timespan.MustDate("2025-01-12"), timespan.AllWeekdays)
	require.Len(t, ranged.Created, len(perDay))
	for i, d := range perDay {
		assert.Equal(t, d, ranged.Created[i].Date)
		assert.Equal(t, timespan.MustClock("09:00"), ranged.Created[i].Start)
	}
}

func TestAvailabilityServiceBulkValidation(t *testing.T) {
	svc, repo := newAvailabilityFixture(nil)
	ctx := context.Background()
	mon := timespan.WeekdaysOf(time.Monday)

	_, err := svc.CreateBulk(ctx, bulkRequest("2025-01-12", "2025-01-06", "12:00", "09:00", 0))
	assert.ErrorIs(t, err, appErrors.ErrInvalidRange)

	_, err = svc.CreateBulk(ctx, bulkRequest("2025-01-06", "2025-01-12", "12:00", "09:00", 0))
	assert.ErrorIs(t, err, appErrors.ErrInvalidSpan)

	_, err = svc.CreateBulk(ctx, bulkRequest("2025-01-06", "2025-01-12", "09:00", "12:00", 0))
	assert.ErrorIs(t, err, appErrors.ErrEmptySelection)

	_, err = svc.CreateBulk(ctx, bulkRequest("2025-01-01", "2025-12-31", "09:00", "12:00", mon))
	assert.ErrorIs(t, err, appErrors.ErrInvalidRange)

	assert.Empty(t, repo.windows)
}

func TestAvailabilityServiceBulkReportsPartialFailure(t *testing.T) {
	svc, repo := newAvailabilityFixture(nil)
	repo.failDates["2025-01-08"] = true

	result, err := svc.CreateBulk(context.Background(), bulkRequest("2025-01-06", "2025-01-12", "09:00", "12:00",
		timespan.WeekdaysOf(time.Monday, time.Wednesday, time.Friday)))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrPartialBulkFailure)

	appErr := appErrors.FromError(err)
	assert.Same(t, result, appErr.Details)
	require.Len(t, result.Created, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "2025-01-08", result.Failed[0].Date.String())
	assert.Len(t, repo.windows, 2)
}

func TestAvailabilityServiceListUsesCache(t *testing.T) {
	cacheRepo := newMemoryCacheRepo()
	svc, repo := newAvailabilityFixture(cacheRepo)
	ctx := context.Background()
	_, err := svc.CreateWindow(ctx, WindowRequest{PractitionerID: 7, SpanInput: spanInput("2025-01-06", "09:00", "12:00")})
	require.NoError(t, err)

	filter := models.AvailabilityFilter{PractitionerID: 7}
	first, err := svc.ListWindows(ctx, filter)
	require.NoError(t, err)
	second, err := svc.ListWindows(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listCalls)

	_, err = svc.CreateWindow(ctx, WindowRequest{PractitionerID: 7, SpanInput: spanInput("2025-01-07", "09:00", "12:00")})
	require.NoError(t, err)
	third, err := svc.ListWindows(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, third, 2)
	assert.Equal(t, 2, repo.listCalls)
}

func TestAvailabilityServiceListDoesNotCacheReadOlderThanWrite(t *testing.T) {
	cacheRepo := newMemoryCacheRepo()
	svc, repo := newAvailabilityFixture(cacheRepo)
	ctx := context.Background()
	_, err := svc.CreateWindow(ctx, WindowRequest{PractitionerID: 7, SpanInput: spanInput("2025-01-06", "09:00", "12:00")})
	require.NoError(t, err)

	// A write commits while the listing is between its database read and its cache store.
	repo.afterList = func() {
		_, err := svc.CreateWindow(ctx, WindowRequest{PractitionerID: 7, SpanInput: spanInput("2025-01-07", "09:00", "12:00")})
		require.NoError(t, err)
	}
	filter := models.AvailabilityFilter{PractitionerID: 7}
	stale, err := svc.ListWindows(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	fresh, err := svc.ListWindows(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
	assert.Equal(t, 2, repo.listCalls)

	again, err := svc.ListWindows(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, fresh, again)
	assert.Equal(t, 2, repo.listCalls)
}

func TestAvailabilityServiceListRejectsBadMonth(t *testing.T) {
	svc, _ := newAvailabilityFixture(nil)
	_, err := svc.ListWindows(context.Background(), models.AvailabilityFilter{Month: 13})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAvailabilityServiceUpdateAndDelete(t *testing.T) {
	svc, _ := newAvailabilityFixture(nil)
	ctx := context.Background()
	window, err := svc.CreateWindow(ctx, WindowRequest{PractitionerID: 7, SpanInput: spanInput("2025-01-06", "09:00", "12:00")})
	require.NoError(t, err)

	updated, err := svc.UpdateWindow(ctx, window.ID, WindowRequest{PractitionerID: 8, SpanInput: spanInput("2025-01-07", "14:00", "16:00")})
	require.NoError(t, err)
	assert.Equal(t, int64(8), updated.PractitionerID)

	got, err := svc.GetWindow(ctx, window.ID)
	require.NoError(t, err)
	assert.Equal(t, "14:00", got.Start.String())

	_, err = svc.UpdateWindow(ctx, window.ID, WindowRequest{PractitionerID: 8, SpanInput: spanInput("2025-01-07", "16:00", "14:00")})
	assert.ErrorIs(t, err, appErrors.ErrInvalidSpan)

	_, err = svc.UpdateWindow(ctx, 999, WindowRequest{PractitionerID: 8, SpanInput: spanInput("2025-01-07", "14:00", "16:00")})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	require.NoError(t, svc.DeleteWindow(ctx, window.ID))
	assert.ErrorIs(t, svc.DeleteWindow(ctx, window.ID), appErrors.ErrNotFound)
	_, err = svc.GetWindow(ctx, window.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
