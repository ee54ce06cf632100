package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/citas-api/internal/models"
	appErrors "github.com/noah-isme/citas-api/pkg/errors"
	"github.com/noah-isme/citas-api/pkg/response"
	"github.com/noah-isme/citas-api/pkg/timespan"
)

type calendarService interface {
	Calendar(ctx context.Context, practitionerID int64, date timespan.Date) (*models.Calendar, error)
	OpenSlots(ctx context.Context, practitionerID int64, date timespan.Date, duration, step int) ([]models.Slot, error)
}

// CalendarHandler serves consistent day views for a practitioner.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(service calendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// Calendar godoc
// @Summary Windows, appointments and free slots for one day
// @Tags Calendar
// @Produce json
// @Param idPsicologo query int true "Practitioner ID"
// @Param fecha query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} models.Calendar
// @Router /dates/calendario [get]
func (h *CalendarHandler) Calendar(c *gin.Context) {
	practitionerID, date, err := practitionerDay(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	cal, err := h.service.Calendar(c.Request.Context(), practitionerID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cal)
}

// Slots godoc
// @Summary Bookable slots for one day
// @Tags Calendar
// @Produce json
// @Param idPsicologo query int true "Practitioner ID"
// @Param fecha query string true "Date (YYYY-MM-DD)"
// @Param duracion query int false "Slot length in minutes"
// @Param paso query int false "Minutes between slot starts"
// @Success 200 {array} models.Slot
// @Router /dates/disponibilidades/slots [get]
func (h *CalendarHandler) Slots(c *gin.Context) {
	practitionerID, date, err := practitionerDay(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	duration, err := queryInt(c, "duracion")
	if err != nil {
		response.Error(c, err)
		return
	}
	step, err := queryInt(c, "paso")
	if err != nil {
		response.Error(c, err)
		return
	}
	slots, err := h.service.OpenSlots(c.Request.Context(), practitionerID, date, duration, step)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, slots)
}

func practitionerDay(c *gin.Context) (int64, timespan.Date, error) {
	practitionerID, err := queryInt64(c, "idPsicologo")
	if err != nil {
		return 0, timespan.Date{}, err
	}
	if practitionerID == 0 {
		return 0, timespan.Date{}, appErrors.Clone(appErrors.ErrValidation, "idPsicologo es requerido")
	}
	date, err := queryDate(c, "fecha")
	if err != nil {
		return 0, timespan.Date{}, err
	}
	if date == nil {
		return 0, timespan.Date{}, appErrors.Clone(appErrors.ErrValidation, "fecha es requerida")
	}
	return practitionerID, *date, nil
}
