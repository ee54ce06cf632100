package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/citas-api/internal/models"
	"github.com/noah-isme/citas-api/internal/service"
	appErrors "github.com/noah-isme/citas-api/pkg/errors"
	"github.com/noah-isme/citas-api/pkg/response"
	"github.com/noah-isme/citas-api/pkg/timespan"
)

type bookingService interface {
	Book(ctx context.Context, req service.BookRequest) (*models.Appointment, error)
	Reschedule(ctx context.Context, id int64, req service.RescheduleRequest) (*models.Appointment, error)
	Cancel(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Appointment, error)
	ListAll(ctx context.Context) ([]models.Appointment, error)
	ListForClient(ctx context.Context, clientID int64) ([]models.Appointment, error)
	ListForPractitioner(ctx context.Context, practitionerID int64, date *timespan.Date) ([]models.Appointment, error)
}

type agendaExporter interface {
	Agenda(ctx context.Context, practitionerID int64, date timespan.Date, format string) (*service.ExportResult, error)
}

// AppointmentHandler exposes booking endpoints under /dates.
type AppointmentHandler struct {
	bookings        bookingService
	exporter        agendaExporter
	defaultDuration int
}

// NewAppointmentHandler constructs the handler. defaultMinutes is used when a
// booking omits horaFin.
func NewAppointmentHandler(bookings bookingService, exporter agendaExporter, defaultMinutes int) *AppointmentHandler {
	if defaultMinutes <= 0 {
		defaultMinutes = 60
	}
	return &AppointmentHandler{bookings: bookings, exporter: exporter, defaultDuration: defaultMinutes}
}

// Book godoc
// @Summary Book an appointment
// @Description horaFin defaults to horaInicio plus the configured appointment length.
// @Tags Appointments
// @Accept json
// @Produce json
// @Param payload body service.BookRequest true "Appointment payload"
// @Success 200 {object} models.Appointment
// @Failure 400 {string} string
// @Failure 409 {string} string
// @Router /dates/agendar [post]
func (h *AppointmentHandler) Book(c *gin.Context) {
	var req service.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	switch claims.Role {
	case models.RoleStudent:
		if req.ClientID == 0 {
			req.ClientID = claims.UserID
		}
		if req.ClientID != claims.UserID {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "solo puedes agendar citas para ti"))
			return
		}
	case models.RolePractitioner:
		if req.PractitionerID == 0 {
			req.PractitionerID = claims.UserID
		}
	}
	if req.Start != nil && req.End == nil {
		end, err := req.Start.Advance(h.defaultDuration)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrInvalidSpan, "la cita no puede terminar despues de medianoche"))
			return
		}
		req.End = &end
	}

	appt, err := h.bookings.Book(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, appt)
}

// Reschedule godoc
// @Summary Move an appointment to a new date or time
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path int true "Appointment ID"
// @Param payload body service.RescheduleRequest true "New span"
// @Success 200 {object} models.Appointment
// @Failure 404 {string} string
// @Failure 409 {string} string
// @Router /dates/modificar/{id} [put]
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	if err := h.authorizeParticipant(c, id); err != nil {
		response.Error(c, err)
		return
	}
	appt, err := h.bookings.Reschedule(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, appt)
}

// Cancel godoc
// @Summary Cancel an appointment
// @Tags Appointments
// @Produce plain
// @Param id path int true "Appointment ID"
// @Success 200 {string} string
// @Failure 404 {string} string
// @Router /dates/cancelar/{id} [delete]
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.authorizeParticipant(c, id); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.bookings.Cancel(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Text(c, http.StatusOK, "Cita cancelada correctamente")
}

// Get godoc
// @Summary Get appointment by ID
// @Tags Appointments
// @Produce json
// @Param id path int true "Appointment ID"
// @Success 200 {object} models.Appointment
// @Router /dates/citas/{id} [get]
func (h *AppointmentHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	appt, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, appt)
}

// ListAll godoc
// @Summary List every appointment
// @Tags Appointments
// @Produce json
// @Success 200 {array} models.Appointment
// @Router /dates/todas [get]
func (h *AppointmentHandler) ListAll(c *gin.Context) {
	items, err := h.bookings.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// ListForClient godoc
// @Summary List a client's appointments
// @Tags Appointments
// @Produce json
// @Param id path int true "Client ID"
// @Success 200 {array} models.Appointment
// @Router /dates/cliente/{id} [get]
func (h *AppointmentHandler) ListForClient(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.bookings.ListForClient(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// ListForPractitioner godoc
// @Summary List a practitioner's appointments
// @Tags Appointments
// @Produce json
// @Param idPsicologo query int true "Practitioner ID"
// @Param fecha query string false "Date (YYYY-MM-DD)"
// @Success 200 {array} models.Appointment
// @Router /dates/citas [get]
func (h *AppointmentHandler) ListForPractitioner(c *gin.Context) {
	practitionerID, err := queryInt64(c, "idPsicologo")
	if err != nil {
		response.Error(c, err)
		return
	}
	date, err := queryDate(c, "fecha")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.bookings.ListForPractitioner(c.Request.Context(), practitionerID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Export godoc
// @Summary Download a practitioner's daily agenda
// @Tags Appointments
// @Produce text/csv
// @Produce application/pdf
// @Param idPsicologo query int true "Practitioner ID"
// @Param fecha query string true "Date (YYYY-MM-DD)"
// @Param formato query string false "csv or pdf"
// @Success 200 {file} file
// @Router /dates/citas/exportar [get]
func (h *AppointmentHandler) Export(c *gin.Context) {
	practitionerID, err := queryInt64(c, "idPsicologo")
	if err != nil {
		response.Error(c, err)
		return
	}
	claims := claimsFromContext(c)
	if claims != nil && claims.Role == models.RolePractitioner {
		if practitionerID == 0 {
			practitionerID = claims.UserID
		}
		if practitionerID != claims.UserID {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "solo puedes exportar tu propia agenda"))
			return
		}
	}
	if practitionerID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "idPsicologo es requerido"))
		return
	}
	date, err := queryDate(c, "fecha")
	if err != nil {
		response.Error(c, err)
		return
	}
	if date == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "fecha es requerida"))
		return
	}
	result, err := h.exporter.Agenda(c.Request.Context(), practitionerID, *date, c.Query("formato"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Binary(c, result.ContentType, result.Filename, result.Data)
}

// authorizeParticipant lets administrators through and otherwise requires the
// caller to be the appointment's client or practitioner.
func (h *AppointmentHandler) authorizeParticipant(c *gin.Context, id int64) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.IsAdmin() {
		return nil
	}
	appt, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		return err
	}
	if appt.ClientID != claims.UserID && appt.PractitionerID != claims.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "no participas en esta cita")
	}
	return nil
}
