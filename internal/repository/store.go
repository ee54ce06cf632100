package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/citas-api/internal/models"
)

// BookingQueries is the read/write surface the booking engine uses, either
// directly or inside a locked transaction.
type BookingQueries interface {
	FindAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	ListAppointments(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
	ListWindows(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityWindow, error)
	CreateAppointment(ctx context.Context, appointment *models.Appointment) error
	UpdateAppointment(ctx context.Context, appointment *models.Appointment) error
	DeleteAppointment(ctx context.Context, id int64) error
}

type bookingQueries struct {
	windows      *AvailabilityRepository
	appointments *AppointmentRepository
}

func newBookingQueries(q sqlx.ExtContext) bookingQueries {
	return bookingQueries{
		windows:      NewAvailabilityRepository(q),
		appointments: NewAppointmentRepository(q),
	}
}

func (b bookingQueries) FindAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	return b.appointments.GetByID(ctx, id)
}

func (b bookingQueries) ListAppointments(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	return b.appointments.List(ctx, filter)
}

func (b bookingQueries) ListWindows(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityWindow, error) {
	return b.windows.List(ctx, filter)
}

func (b bookingQueries) CreateAppointment(ctx context.Context, appointment *models.Appointment) error {
	return b.appointments.Create(ctx, appointment)
}

func (b bookingQueries) UpdateAppointment(ctx context.Context, appointment *models.Appointment) error {
	return b.appointments.UpdateSpan(ctx, appointment)
}

func (b bookingQueries) DeleteAppointment(ctx context.Context, id int64) error {
	return b.appointments.Delete(ctx, id)
}

// Store ties the availability and appointment tables together for the booking
// engine and the calendar reads.
type Store struct {
	bookingQueries
	db *sqlx.DB
}

// NewStore constructs a Store on db.
func NewStore(db *sqlx.DB) *Store {
	return &Store{bookingQueries: newBookingQueries(db), db: db}
}

// WithDayLock runs fn inside a transaction holding a Postgres advisory lock
// for each (practitioner, date) key. Locks are taken in a fixed order and
// released on commit or rollback.
func (s *Store) WithDayLock(ctx context.Context, keys []models.DayKey, fn func(ctx context.Context, q BookingQueries) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, key := range sortedKeys(keys) {
		if _, err = tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}
	}

	if err = fn(ctx, newBookingQueries(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit booking tx: %w", err)
	}
	return nil
}

// ReadSnapshot runs fn inside a read-only repeatable-read transaction so all
// reads observe the same state.
func (s *Store) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, q BookingQueries) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	return fn(ctx, newBookingQueries(tx))
}

func sortedKeys(keys []models.DayKey) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		s := k.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
