package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/citas-api/internal/models"
	"github.com/noah-isme/citas-api/internal/repository"
	appErrors "github.com/noah-isme/citas-api/pkg/errors"
	"github.com/noah-isme/citas-api/pkg/timespan"
)

type calendarStore interface {
	ReadSnapshot(ctx context.Context, fn func(ctx context.Context, q repository.BookingQueries) error) error
}

// CalendarConfig holds slot defaults.
type CalendarConfig struct {
	SlotMinutes int
	StepMinutes int
}

// CalendarService answers what is open and what is booked for a practitioner's day.
type CalendarService struct {
	store  calendarStore
	logger *zap.Logger
	cfg    CalendarConfig
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(store calendarStore, logger *zap.Logger, cfg CalendarConfig) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlotMinutes <= 0 {
		cfg.SlotMinutes = 60
	}
	if cfg.StepMinutes <= 0 {
		cfg.StepMinutes = cfg.SlotMinutes
	}
	return &CalendarService{store: store, logger: logger, cfg: cfg}
}

// Calendar returns windows, appointments and free slots of one day, all read
// from the same snapshot.
func (s *CalendarService) Calendar(ctx context.Context, practitionerID int64, date timespan.Date) (*models.Calendar, error) {
	if err := validateDay(practitionerID, date); err != nil {
		return nil, err
	}
	cal, err := s.snapshot(ctx, practitionerID, date)
	if err != nil {
		return nil, err
	}
	cal.Slots = freeSlots(cal, s.cfg.SlotMinutes, s.cfg.StepMinutes)
	return cal, nil
}

// OpenSlots slices the day's windows into duration-minute slots starting
// every step minutes and drops those overlapping an appointment. Zero values
// fall back to the configured defaults.
func (s *CalendarService) OpenSlots(ctx context.Context, practitionerID int64, date timespan.Date, duration, step int) ([]models.Slot, error) {
	if err := validateDay(practitionerID, date); err != nil {
		return nil, err
	}
	if duration == 0 {
		duration = s.cfg.SlotMinutes
	}
	if step == 0 {
		step = s.cfg.StepMinutes
	}
	if duration < 0 || duration >= 24*60 || step < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "duracion o paso invalidos")
	}
	cal, err := s.snapshot(ctx, practitionerID, date)
	if err != nil {
		return nil, err
	}
	return freeSlots(cal, duration, step), nil
}

func (s *CalendarService) snapshot(ctx context.Context, practitionerID int64, date timespan.Date) (*models.Calendar, error) {
	cal := &models.Calendar{PractitionerID: practitionerID, Date: date}
	err := s.store.ReadSnapshot(ctx, func(ctx context.Context, q repository.BookingQueries) error {
		var err error
		cal.Windows, err = q.ListWindows(ctx, models.AvailabilityFilter{PractitionerID: practitionerID, Date: &date})
		if err != nil {
			return err
		}
		cal.Appointments, err = q.ListAppointments(ctx, models.AppointmentFilter{PractitionerID: practitionerID, Date: &date})
		return err
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read calendar")
	}
	return cal, nil
}

func freeSlots(cal *models.Calendar, duration, step int) []models.Slot {
	windows := make([]timespan.Span, len(cal.Windows))
	for i, w := range cal.Windows {
		windows[i] = w.Span()
	}
	busy := make([]timespan.Span, len(cal.Appointments))
	for i, a := range cal.Appointments {
		busy[i] = a.Span()
	}
	spans := timespan.FreeSlots(windows, duration, step, busy)
	slots := make([]models.Slot, len(spans))
	for i, sp := range spans {
		slots[i] = models.SlotFromSpan(sp)
	}
	return slots
}

func validateDay(practitionerID int64, date timespan.Date) error {
	if practitionerID <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "idPsicologo invalido")
	}
	if date.IsZero() {
		return appErrors.Clone(appErrors.ErrValidation, "fecha requerida")
	}
	return nil
}
