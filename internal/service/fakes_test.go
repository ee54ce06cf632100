package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/citas-api/internal/models"
	"github.com/noah-isme/citas-api/internal/repository"
	appErrors "github.com/noah-isme/citas-api/pkg/errors"
	"github.com/noah-isme/citas-api/pkg/timespan"
)

// memoryStore is a thread-safe stand-in for repository.Store. It does not
// serialize WithDayLock callers, so tests observe the service's own locking.
type memoryStore struct {
	mu           sync.Mutex
	windows      []models.AvailabilityWindow
	appointments map[int64]models.Appointment
	nextID       int64
	readDelay    time.Duration
	lockCalls    [][]models.DayKey
	snapshots    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{appointments: map[int64]models.Appointment{}}
}

func (m *memoryStore) addWindow(practitionerID int64, date, start, end string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.windows = append(m.windows, models.AvailabilityWindow{
		ID:             m.nextID,
		PractitionerID: practitionerID,
		Date:           timespan.MustDate(date),
		Start:          timespan.MustClock(start),
		End:            timespan.MustClock(end),
	})
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.appointments)
}

func (m *memoryStore) FindAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (m *memoryStore) ListAppointments(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	if m.readDelay > 0 {
		time.Sleep(m.readDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Appointment{}
	for _, a := range m.appointments {
		if filter.PractitionerID > 0 && a.PractitionerID != filter.PractitionerID {
			continue
		}
		if filter.ClientID > 0 && a.ClientID != filter.ClientID {
			continue
		}
		if filter.Date != nil && a.Date != *filter.Date {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Span() == out[j].Span() {
			return out[i].ID < out[j].ID
		}
		return out[i].Span().Less(out[j].Span())
	})
	return out, nil
}

func (m *memoryStore) ListWindows(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AvailabilityWindow{}
	for _, w := range m.windows {
		if filter.PractitionerID > 0 && w.PractitionerID != filter.PractitionerID {
			continue
		}
		if filter.Date != nil && w.Date != *filter.Date {
			continue
		}
		if filter.Month > 0 && int(w.Date.Month) != filter.Month {
			continue
		}
		if filter.Year > 0 && w.Date.Year != filter.Year {
			continue
		}
		out = append(out, w)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Span().Less(out[j].Span()) })
	return out, nil
}

func (m *memoryStore) CreateAppointment(ctx context.Context, appointment *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	appointment.ID = m.nextID
	appointment.Status = models.AppointmentConfirmed
	m.appointments[appointment.ID] = *appointment
	return nil
}

func (m *memoryStore) UpdateAppointment(ctx context.Context, appointment *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[appointment.ID]; !ok {
		return sql.ErrNoRows
	}
	m.appointments[appointment.ID] = *appointment
	return nil
}

func (m *memoryStore) DeleteAppointment(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.appointments, id)
	return nil
}

func (m *memoryStore) WithDayLock(ctx context.Context, keys []models.DayKey, fn func(ctx context.Context, q repository.BookingQueries) error) error {
	m.mu.Lock()
	m.lockCalls = append(m.lockCalls, append([]models.DayKey(nil), keys...))
	m.mu.Unlock()
	return fn(ctx, m)
}

func (m *memoryStore) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, q repository.BookingQueries) error) error {
	m.mu.Lock()
	m.snapshots++
	m.mu.Unlock()
	return fn(ctx, m)
}

// windowRepoStub backs AvailabilityService.
type windowRepoStub struct {
	mu         sync.Mutex
	windows    map[int64]models.AvailabilityWindow
	nextID     int64
	failDates  map[string]bool
	rangeCalls int
	listCalls  int
	// afterList runs once the rows are read, before List returns.
	afterList func()
}

func newWindowRepoStub() *windowRepoStub {
	return &windowRepoStub{windows: map[int64]models.AvailabilityWindow{}, failDates: map[string]bool{}}
}

func (r *windowRepoStub) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityWindow, error) {
	r.mu.Lock()
	r.listCalls++
	out := []models.AvailabilityWindow{}
	for _, w := range r.windows {
		if filter.PractitionerID > 0 && w.PractitionerID != filter.PractitionerID {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Span() == out[j].Span() {
			return out[i].ID < out[j].ID
		}
		return out[i].Span().Less(out[j].Span())
	})
	hook := r.afterList
	r.afterList = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return out, nil
}

func (r *windowRepoStub) GetByID(ctx context.Context, id int64) (*models.AvailabilityWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &w, nil
}

func (r *windowRepoStub) Create(ctx context.Context, window *models.AvailabilityWindow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDates[window.Date.String()] {
		return errors.New("insert failed")
	}
	r.nextID++
	window.ID = r.nextID
	r.windows[window.ID] = *window
	return nil
}

func (r *windowRepoStub) CreateRange(ctx context.Context, practitionerID int64, from, to timespan.Date, start, end timespan.Clock) ([]models.AvailabilityWindow, error) {
	r.mu.Lock()
	r.rangeCalls++
	r.mu.Unlock()
	var out []models.AvailabilityWindow
	for d := from; !to.Before(d); d = d.AddDays(1) {
		w := models.AvailabilityWindow{PractitionerID: practitionerID, Date: d, Start: start, End: end}
		if err := r.Create(ctx, &w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *windowRepoStub) Update(ctx context.Context, window *models.AvailabilityWindow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.windows[window.ID]; !ok {
		return sql.ErrNoRows
	}
	r.windows[window.ID] = *window
	return nil
}

func (r *windowRepoStub) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.windows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.windows, id)
	return nil
}

// memoryCacheRepo implements CacheRepository with JSON-free copies.
type memoryCacheRepo struct {
	mu       sync.Mutex
	entries  map[string][]models.AvailabilityWindow
	counters map[string]int64
	deletes  int
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]models.AvailabilityWindow{}, counters: map[string]int64{}}
}

func (c *memoryCacheRepo) Counter(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[key], nil
}

func (c *memoryCacheRepo) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return c.counters[key], nil
}

func (c *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*[]models.AvailabilityWindow)) = append([]models.AvailabilityWindow(nil), v...)
	return nil
}

func (c *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value.([]models.AvailabilityWindow)
	return nil
}

func (c *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	n := len(c.entries)
	c.entries = map[string][]models.AvailabilityWindow{}
	return n, nil
}

type notifierStub struct {
	mu     sync.Mutex
	events []models.BookingEventType
	last   models.Appointment
}

func (n *notifierStub) Notify(ctx context.Context, eventType models.BookingEventType, appointment models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
	n.last = appointment
}

func spanInput(date, start, end string) SpanInput {
	d := timespan.MustDate(date)
	s := timespan.MustClock(start)
	e := timespan.MustClock(end)
	return SpanInput{Date: &d, Start: &s, End: &e}
}
