package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/citas-api/internal/models"
	"github.com/noah-isme/citas-api/internal/service"
	appErrors "github.com/noah-isme/citas-api/pkg/errors"
	"github.com/noah-isme/citas-api/pkg/response"
	"github.com/noah-isme/citas-api/pkg/timespan"
)

type availabilityService interface {
	CreateWindow(ctx context.Context, req service.WindowRequest) (*models.AvailabilityWindow, error)
	CreateBulk(ctx context.Context, req service.BulkAvailabilityRequest) (*models.BulkAvailabilityResult, error)
	ListWindows(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityWindow, error)
	GetWindow(ctx context.Context, id int64) (*models.AvailabilityWindow, error)
	UpdateWindow(ctx context.Context, id int64, req service.WindowRequest) (*models.AvailabilityWindow, error)
	DeleteWindow(ctx context.Context, id int64) error
}

// AvailabilityHandler exposes availability window endpoints.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// Create godoc
// @Summary Open an availability window
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body service.WindowRequest true "Window payload"
// @Success 200 {object} models.AvailabilityWindow
// @Failure 400 {string} string
// @Failure 403 {string} string
// @Router /dates/disponibilidad [post]
func (h *AvailabilityHandler) Create(c *gin.Context) {
	var req service.WindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	practitionerID, err := actingFor(c, req.PractitionerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.PractitionerID = practitionerID

	window, err := h.service.CreateWindow(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, window)
}

// CreateBulk godoc
// @Summary Generate windows for every matching weekday in a date range
// @Tags Availability
// @Produce plain
// @Param idPsicologo query int true "Practitioner ID"
// @Param fechaInicio query string true "First date (YYYY-MM-DD)"
// @Param fechaFin query string true "Last date (YYYY-MM-DD)"
// @Param horaInicio query string true "Start time (HH:MM)"
// @Param horaFin query string true "End time (HH:MM)"
// @Param dias query string false "Weekdays, e.g. lunes,miercoles or 1,3. Defaults to every day"
// @Success 200 {string} string
// @Success 207 {object} models.BulkAvailabilityResult
// @Failure 400 {string} string
// @Router /dates/disponibilidades/masivas [post]
func (h *AvailabilityHandler) CreateBulk(c *gin.Context) {
	req, err := bulkRequestFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	practitionerID, err := actingFor(c, req.PractitionerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.PractitionerID = practitionerID

	result, err := h.service.CreateBulk(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, http.StatusOK, fmt.Sprintf("Se crearon %d disponibilidades", len(result.Created)))
}

// List godoc
// @Summary List availability windows
// @Description Served at /disponibilidades, /disponibilidades/filtrar and /disponibilidades/todas.
// @Tags Availability
// @Produce json
// @Param idPsicologo query int false "Practitioner ID"
// @Param fecha query string false "Date (YYYY-MM-DD)"
// @Param mes query int false "Month (1-12)"
// @Param anio query int false "Year"
// @Success 200 {array} models.AvailabilityWindow
// @Router /dates/disponibilidades [get]
func (h *AvailabilityHandler) List(c *gin.Context) {
	filter, err := availabilityFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	windows, err := h.service.ListWindows(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, windows)
}

// Update godoc
// @Summary Replace an availability window
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path int true "Window ID"
// @Param payload body service.WindowRequest true "Window payload"
// @Success 200 {object} models.AvailabilityWindow
// @Router /dates/disponibilidades/{id} [put]
func (h *AvailabilityHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.WindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	if err := h.authorizeOwner(c, id); err != nil {
		response.Error(c, err)
		return
	}
	practitionerID, err := actingFor(c, req.PractitionerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.PractitionerID = practitionerID

	window, err := h.service.UpdateWindow(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, window)
}

// Delete godoc
// @Summary Delete an availability window
// @Tags Availability
// @Param id path int true "Window ID"
// @Success 204
// @Router /dates/disponibilidades/{id} [delete]
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.authorizeOwner(c, id); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.DeleteWindow(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AvailabilityHandler) authorizeOwner(c *gin.Context, id int64) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.IsAdmin() {
		return nil
	}
	window, err := h.service.GetWindow(c.Request.Context(), id)
	if err != nil {
		return err
	}
	if window.PractitionerID != claims.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "solo puedes gestionar tu propia disponibilidad")
	}
	return nil
}

func bulkRequestFromQuery(c *gin.Context) (service.BulkAvailabilityRequest, error) {
	var (
		req service.BulkAvailabilityRequest
		err error
	)
	if req.PractitionerID, err = queryInt64(c, "idPsicologo"); err != nil {
		return req, err
	}
	if req.From, err = queryDate(c, "fechaInicio"); err != nil {
		return req, err
	}
	if req.To, err = queryDate(c, "fechaFin"); err != nil {
		return req, err
	}
	if req.Start, err = queryClock(c, "horaInicio"); err != nil {
		return req, err
	}
	if req.End, err = queryClock(c, "horaFin"); err != nil {
		return req, err
	}

	req.Days = timespan.AllWeekdays
	if raw, ok := c.GetQuery("dias"); ok {
		days, parseErr := timespan.ParseWeekdays(raw)
		if parseErr != nil {
			return req, appErrors.Wrap(parseErr, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dias contiene un dia invalido")
		}
		req.Days = days
	}
	return req, nil
}

func availabilityFilterFromQuery(c *gin.Context) (models.AvailabilityFilter, error) {
	var (
		filter models.AvailabilityFilter
		err    error
	)
	if filter.PractitionerID, err = queryInt64(c, "idPsicologo"); err != nil {
		return filter, err
	}
	if filter.Date, err = queryDate(c, "fecha"); err != nil {
		return filter, err
	}
	if filter.Month, err = queryInt(c, "mes"); err != nil {
		return filter, err
	}
	if filter.Year, err = queryInt(c, "anio"); err != nil {
		return filter, err
	}
	return filter, nil
}
