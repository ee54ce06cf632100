package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/citas-api/internal/models"
	"github.com/noah-isme/citas-api/internal/repository"
	appErrors "github.com/noah-isme/citas-api/pkg/errors"
	"github.com/noah-isme/citas-api/pkg/lockset"
	"github.com/noah-isme/citas-api/pkg/timespan"
)

// maxMoveRetries bounds how often a writer re-locks after the appointment it
// targets moved to another day between the unlocked read and the lock.
const maxMoveRetries = 3

type bookingStore interface {
	repository.BookingQueries
	WithDayLock(ctx context.Context, keys []models.DayKey, fn func(ctx context.Context, q repository.BookingQueries) error) error
}

type bookingNotifier interface {
	Notify(ctx context.Context, eventType models.BookingEventType, appointment models.Appointment)
}

// BookRequest asks for a new appointment.
type BookRequest struct {
	PractitionerID int64 `json:"idPsicologo" validate:"required,gt=0"`
	ClientID       int64 `json:"idCliente" validate:"required,gt=0"`
	SpanInput
}

// RescheduleRequest moves an appointment. Practitioner and client stay fixed.
type RescheduleRequest struct {
	SpanInput
}

// BookingService validates and commits appointment changes. Writers touching
// the same practitioner and date are serialized in process by a keyed lock
// and across replicas by the store's advisory lock.
type BookingService struct {
	store     bookingStore
	locks     *lockset.Set
	notifier  bookingNotifier
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingService constructs a BookingService. notifier and metrics may be nil.
func NewBookingService(store bookingStore, notifier bookingNotifier, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BookingService{
		store:     store,
		locks:     lockset.New(),
		notifier:  notifier,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Book creates a confirmed appointment. Checks run in order and stop at the
// first failure: invalid span, no containing window, overlap with another
// appointment of the practitioner that day.
func (s *BookingService) Book(ctx context.Context, req BookRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de la cita invalidos")
	}
	span := req.Span()
	if err := span.Validate(); err != nil {
		return nil, s.fail(appErrors.Clone(appErrors.ErrInvalidSpan, ""))
	}

	var created models.Appointment
	key := models.DayKey{PractitionerID: req.PractitionerID, Date: span.Date}
	err := s.withLocks(ctx, []models.DayKey{key}, func(ctx context.Context, q repository.BookingQueries) error {
		if err := checkSlot(ctx, q, req.PractitionerID, span, 0); err != nil {
			return err
		}
		appointment := &models.Appointment{PractitionerID: req.PractitionerID, ClientID: req.ClientID}
		appointment.SetSpan(span)
		if err := q.CreateAppointment(ctx, appointment); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create appointment")
		}
		created = *appointment
		return nil
	})
	if err != nil {
		s.logRejected("book", req.PractitionerID, span, err)
		return nil, s.fail(err)
	}

	s.metrics.RecordBooking(OutcomeConfirmed)
	s.logger.Info("appointment booked",
		zap.Int64("appointment_id", created.ID),
		zap.Int64("practitioner_id", created.PractitionerID),
		zap.Int64("client_id", created.ClientID),
		zap.String("span", span.String()))
	s.notify(ctx, models.EventAppointmentBooked, created)
	return &created, nil
}

// Reschedule moves an appointment to a new span. The appointment's own
// current span is ignored by the overlap check.
func (s *BookingService) Reschedule(ctx context.Context, id int64, req RescheduleRequest) (*models.Appointment, error) {
	current, err := s.find(ctx, s.store, id)
	if err != nil {
		return nil, s.fail(err)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de la cita invalidos")
	}
	span := req.Span()
	if err := span.Validate(); err != nil {
		return nil, s.fail(appErrors.Clone(appErrors.ErrInvalidSpan, ""))
	}

	var updated models.Appointment
	for attempt := 0; ; attempt++ {
		locked := current.Date
		keys := []models.DayKey{
			{PractitionerID: current.PractitionerID, Date: locked},
			{PractitionerID: current.PractitionerID, Date: span.Date},
		}
		moved := false
		err = s.withLocks(ctx, keys, func(ctx context.Context, q repository.BookingQueries) error {
			latest, err := s.find(ctx, q, id)
			if err != nil {
				return err
			}
			if latest.Date != locked && latest.Date != span.Date {
				current, moved = latest, true
				return nil
			}
			if err := checkSlot(ctx, q, latest.PractitionerID, span, latest.ID); err != nil {
				return err
			}
			latest.SetSpan(span)
			if err := q.UpdateAppointment(ctx, latest); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return appErrors.Clone(appErrors.ErrNotFound, "cita no encontrada")
				}
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update appointment")
			}
			updated = *latest
			return nil
		})
		if err == nil && moved && attempt < maxMoveRetries {
			continue
		}
		if err == nil && moved {
			err = appErrors.Clone(appErrors.ErrSlotConflict, "la cita cambio mientras se reprogramaba, intenta de nuevo")
		}
		break
	}
	if err != nil {
		s.logRejected("reschedule", current.PractitionerID, span, err)
		return nil, s.fail(err)
	}

	s.metrics.RecordBooking(OutcomeRescheduled)
	s.logger.Info("appointment rescheduled", zap.Int64("appointment_id", updated.ID), zap.String("span", span.String()))
	s.notify(ctx, models.EventAppointmentRescheduled, updated)
	return &updated, nil
}

// Cancel deletes an appointment. Cancelling an unknown or already cancelled
// appointment returns ErrNotFound.
func (s *BookingService) Cancel(ctx context.Context, id int64) error {
	current, err := s.find(ctx, s.store, id)
	if err != nil {
		return s.fail(err)
	}

	var cancelled models.Appointment
	for attempt := 0; ; attempt++ {
		locked := models.DayKey{PractitionerID: current.PractitionerID, Date: current.Date}
		moved := false
		err = s.withLocks(ctx, []models.DayKey{locked}, func(ctx context.Context, q repository.BookingQueries) error {
			latest, err := s.find(ctx, q, id)
			if err != nil {
				return err
			}
			if latest.Date != locked.Date || latest.PractitionerID != locked.PractitionerID {
				current, moved = latest, true
				return nil
			}
			if err := q.DeleteAppointment(ctx, id); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return appErrors.Clone(appErrors.ErrNotFound, "cita no encontrada")
				}
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel appointment")
			}
			cancelled = *latest
			return nil
		})
		if err == nil && moved && attempt < maxMoveRetries {
			continue
		}
		if err == nil && moved {
			err = appErrors.Clone(appErrors.ErrSlotConflict, "la cita cambio mientras se cancelaba, intenta de nuevo")
		}
		break
	}
	if err != nil {
		return s.fail(err)
	}

	s.metrics.RecordBooking(OutcomeCancelled)
	s.logger.Info("appointment cancelled", zap.Int64("appointment_id", id))
	s.notify(ctx, models.EventAppointmentCancelled, cancelled)
	return nil
}

// Get returns one appointment.
func (s *BookingService) Get(ctx context.Context, id int64) (*models.Appointment, error) {
	return s.find(ctx, s.store, id)
}

// ListAll returns every appointment ordered by date and start time.
func (s *BookingService) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return s.list(ctx, models.AppointmentFilter{})
}

// ListForClient returns the client's appointments.
func (s *BookingService) ListForClient(ctx context.Context, clientID int64) ([]models.Appointment, error) {
	if clientID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "idCliente invalido")
	}
	return s.list(ctx, models.AppointmentFilter{ClientID: clientID})
}

// ListForPractitioner returns the practitioner's appointments, optionally on one date.
func (s *BookingService) ListForPractitioner(ctx context.Context, practitionerID int64, date *timespan.Date) ([]models.Appointment, error) {
	if practitionerID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "idPsicologo invalido")
	}
	return s.list(ctx, models.AppointmentFilter{PractitionerID: practitionerID, Date: date})
}

func (s *BookingService) list(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	appointments, err := s.store.ListAppointments(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	return appointments, nil
}

func (s *BookingService) find(ctx context.Context, q repository.BookingQueries, id int64) (*models.Appointment, error) {
	appointment, err := q.FindAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cita no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	return appointment, nil
}

func (s *BookingService) withLocks(ctx context.Context, keys []models.DayKey, fn func(ctx context.Context, q repository.BookingQueries) error) error {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	start := time.Now()
	unlock := s.locks.Lock(names...)
	defer unlock()
	s.metrics.ObserveLockWait(time.Since(start))

	if err := ctx.Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "request cancelled")
	}
	return s.store.WithDayLock(ctx, keys, fn)
}

// checkSlot enforces containment in a window and no overlap with other
// appointments. excludeID skips the appointment being moved.
func checkSlot(ctx context.Context, q repository.BookingQueries, practitionerID int64, span timespan.Span, excludeID int64) error {
	date := span.Date
	windows, err := q.ListWindows(ctx, models.AvailabilityFilter{PractitionerID: practitionerID, Date: &date})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	contained := false
	for _, w := range windows {
		if timespan.Contains(w.Span(), span) {
			contained = true
			break
		}
	}
	if !contained {
		return appErrors.Clone(appErrors.ErrNoAvailability, "")
	}

	appointments, err := q.ListAppointments(ctx, models.AppointmentFilter{PractitionerID: practitionerID, Date: &date})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointments")
	}
	for _, a := range appointments {
		if a.ID == excludeID {
			continue
		}
		if timespan.Overlaps(a.Span(), span) {
			return appErrors.Clone(appErrors.ErrSlotConflict, "")
		}
	}
	return nil
}

func (s *BookingService) fail(err error) error {
	appErr := appErrors.FromError(err)
	s.metrics.RecordBooking(outcomeOf(appErr))
	return appErr
}

func (s *BookingService) logRejected(op string, practitionerID int64, span timespan.Span, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= 500 {
		s.logger.Error("booking operation failed", zap.String("op", op), zap.Int64("practitioner_id", practitionerID), zap.Error(err))
		return
	}
	s.logger.Info("booking rejected",
		zap.String("op", op),
		zap.Int64("practitioner_id", practitionerID),
		zap.String("span", span.String()),
		zap.String("code", appErr.Code))
}

func (s *BookingService) notify(ctx context.Context, eventType models.BookingEventType, appointment models.Appointment) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(context.WithoutCancel(ctx), eventType, appointment)
}

func outcomeOf(err *appErrors.Error) string {
	switch {
	case errors.Is(err, appErrors.ErrInvalidSpan):
		return OutcomeInvalidSpan
	case errors.Is(err, appErrors.ErrNoAvailability):
		return OutcomeNoAvailability
	case errors.Is(err, appErrors.ErrSlotConflict):
		return OutcomeSlotConflict
	case errors.Is(err, appErrors.ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}
