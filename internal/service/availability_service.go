package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/citas-api/internal/models"
	"github.com/noah-isme/citas-api/pkg/cache"
	appErrors "github.com/noah-isme/citas-api/pkg/errors"
	"github.com/noah-isme/citas-api/pkg/timespan"
)

const availabilityCachePattern = "citas:availability:*"

// Listings are cached under the current generation. Writers bump it after
// the database write, so a listing read before the write can only be stored
// under a generation nobody reads anymore.
var availabilityGenerationKey = cache.Key("availability-generation")

type availabilityRepository interface {
	List(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityWindow, error)
	GetByID(ctx context.Context, id int64) (*models.AvailabilityWindow, error)
	Create(ctx context.Context, window *models.AvailabilityWindow) error
	CreateRange(ctx context.Context, practitionerID int64, from, to timespan.Date, start, end timespan.Clock) ([]models.AvailabilityWindow, error)
	Update(ctx context.Context, window *models.AvailabilityWindow) error
	Delete(ctx context.Context, id int64) error
}

type availabilityCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
	Generation(ctx context.Context, key string) (int64, bool)
	Bump(ctx context.Context, key string) error
}

// SpanInput carries the date and time fields shared by window and appointment payloads.
type SpanInput struct {
	Date  *timespan.Date  `json:"fecha" validate:"required"`
	Start *timespan.Clock `json:"horaInicio" validate:"required"`
	End   *timespan.Clock `json:"horaFin" validate:"required"`
}

// Span converts the input. Call only after validation.
func (in SpanInput) Span() timespan.Span {
	return timespan.New(*in.Date, *in.Start, *in.End)
}

// WindowRequest creates or replaces an availability window.
type WindowRequest struct {
	PractitionerID int64 `json:"idPsicologo" validate:"required,gt=0"`
	SpanInput
}

// BulkAvailabilityRequest generates one window per matching date in [From, To].
type BulkAvailabilityRequest struct {
	PractitionerID int64           `validate:"required,gt=0"`
	From           *timespan.Date  `validate:"required"`
	To             *timespan.Date  `validate:"required"`
	Start          *timespan.Clock `validate:"required"`
	End            *timespan.Clock `validate:"required"`
	Days           timespan.Weekdays
}

// AvailabilityConfig tunes availability policies.
type AvailabilityConfig struct {
	BulkMaxDays int
	CacheTTL    time.Duration
}

// AvailabilityService manages practitioner availability windows.
type AvailabilityService struct {
	repo      availabilityRepository
	cache     availabilityCache
	validator *validator.Validate
	logger    *zap.Logger
	cfg       AvailabilityConfig
}

// NewAvailabilityService constructs an AvailabilityService. cache may be nil.
func NewAvailabilityService(repo availabilityRepository, cache availabilityCache, validate *validator.Validate, logger *zap.Logger, cfg AvailabilityConfig) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.BulkMaxDays <= 0 {
		cfg.BulkMaxDays = 366
	}
	return &AvailabilityService{repo: repo, cache: cache, validator: validate, logger: logger, cfg: cfg}
}

// CreateWindow stores a single window. Overlapping windows are allowed.
func (s *AvailabilityService) CreateWindow(ctx context.Context, req WindowRequest) (*models.AvailabilityWindow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de disponibilidad invalidos")
	}
	span := req.Span()
	if err := span.Validate(); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidSpan, "")
	}

	window := &models.AvailabilityWindow{PractitionerID: req.PractitionerID}
	window.SetSpan(span)
	if err := s.repo.Create(ctx, window); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability window")
	}
	s.invalidate(ctx)
	return window, nil
}

// CreateBulk expands the date range by weekday and creates one window per
// matching date. Created windows are kept when later dates fail; the caller
// receives both lists together with ErrPartialBulkFailure.
func (s *AvailabilityService) CreateBulk(ctx context.Context, req BulkAvailabilityRequest) (*models.BulkAvailabilityResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de disponibilidad masiva invalidos")
	}
	from, to := *req.From, *req.To
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "")
	}
	if err := timespan.New(from, *req.Start, *req.End).Validate(); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidSpan, "")
	}
	if req.Days.Empty() {
		return nil, appErrors.Clone(appErrors.ErrEmptySelection, "")
	}
	if days := from.DaysUntil(to) + 1; days > s.cfg.BulkMaxDays {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, fmt.Sprintf("el rango no puede superar %d dias", s.cfg.BulkMaxDays))
	}

	defer s.invalidate(ctx)

	if req.Days.All() {
		windows, err := s.repo.CreateRange(ctx, req.PractitionerID, from, to, *req.Start, *req.End)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability range")
		}
		return &models.BulkAvailabilityResult{Created: windows}, nil
	}

	result := &models.BulkAvailabilityResult{Created: []models.AvailabilityWindow{}}
	for _, date := range timespan.ExpandDates(from, to, req.Days) {
		window := &models.AvailabilityWindow{PractitionerID: req.PractitionerID}
		window.SetSpan(timespan.New(date, *req.Start, *req.End))
		if err := s.repo.Create(ctx, window); err != nil {
			if ctx.Err() != nil {
				return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "bulk availability interrupted")
			}
			s.logger.Warn("bulk availability date failed",
				zap.Int64("practitioner_id", req.PractitionerID), zap.String("date", date.String()), zap.Error(err))
			result.Failed = append(result.Failed, models.BulkFailure{Date: date, Error: err.Error()})
			continue
		}
		result.Created = append(result.Created, *window)
	}

	if len(result.Failed) > 0 {
		return result, appErrors.WithDetails(appErrors.Clone(appErrors.ErrPartialBulkFailure, ""), result)
	}
	return result, nil
}

// ListWindows returns windows matching the filter ordered by date and start time.
func (s *AvailabilityService) ListWindows(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityWindow, error) {
	if filter.Month < 0 || filter.Month > 12 || filter.Year < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "filtro de mes o anio invalido")
	}

	var (
		key    string
		cached bool
	)
	if s.cache != nil {
		if gen, ok := s.cache.Generation(ctx, availabilityGenerationKey); ok {
			key, cached = availabilityCacheKey(gen, filter), true
			var windows []models.AvailabilityWindow
			if hit, err := s.cache.Get(ctx, key, &windows); err == nil && hit {
				return windows, nil
			}
		}
	}

	windows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability")
	}
	if cached {
		_ = s.cache.Set(ctx, key, windows, s.cfg.CacheTTL)
	}
	return windows, nil
}

// GetWindow fetches a single window.
func (s *AvailabilityService) GetWindow(ctx context.Context, id int64) (*models.AvailabilityWindow, error) {
	window, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "disponibilidad no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability window")
	}
	return window, nil
}

// UpdateWindow replaces the practitioner and span of an existing window.
// Appointments already booked inside the old span are left untouched.
func (s *AvailabilityService) UpdateWindow(ctx context.Context, id int64, req WindowRequest) (*models.AvailabilityWindow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de disponibilidad invalidos")
	}
	span := req.Span()
	if err := span.Validate(); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidSpan, "")
	}

	window := &models.AvailabilityWindow{ID: id, PractitionerID: req.PractitionerID}
	window.SetSpan(span)
	if err := s.repo.Update(ctx, window); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "disponibilidad no encontrada")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability window")
	}
	s.invalidate(ctx)
	return window, nil
}

// DeleteWindow removes a window.
func (s *AvailabilityService) DeleteWindow(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "disponibilidad no encontrada")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability window")
	}
	s.invalidate(ctx)
	return nil
}

func (s *AvailabilityService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx, availabilityGenerationKey); err != nil {
		s.logger.Warn("availability cache generation bump failed", zap.Error(err))
	}
	if err := s.cache.Invalidate(ctx, availabilityCachePattern); err != nil {
		s.logger.Warn("availability cache invalidation failed", zap.Error(err))
	}
}

func availabilityCacheKey(gen int64, filter models.AvailabilityFilter) string {
	date := "-"
	if filter.Date != nil {
		date = filter.Date.String()
	}
	return cache.Key("availability",
		"g"+strconv.FormatInt(gen, 10),
		strconv.FormatInt(filter.PractitionerID, 10),
		date,
		strconv.Itoa(filter.Month),
		strconv.Itoa(filter.Year))
}
