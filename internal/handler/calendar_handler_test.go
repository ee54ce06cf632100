package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/citas-api/internal/models"
	"github.com/noah-isme/citas-api/pkg/timespan"
)

type calendarServiceMock struct {
	duration, step int
}

func (m *calendarServiceMock) Calendar(ctx context.Context, practitionerID int64, date timespan.Date) (*models.Calendar, error) {
	return &models.Calendar{PractitionerID: practitionerID, Date: date}, nil
}

func (m *calendarServiceMock) OpenSlots(ctx context.Context, practitionerID int64, date timespan.Date, duration, step int) ([]models.Slot, error) {
	m.duration, m.step = duration, step
	return []models.Slot{{Date: date, Start: timespan.MustClock("09:00"), End: timespan.MustClock("09:30")}}, nil
}

func TestCalendarHandlerRequiresPractitionerAndDate(t *testing.T) {
	handler := NewCalendarHandler(&calendarServiceMock{})

	c, w := newTestContext(http.MethodGet, "/dates/calendario?fecha=2025-01-06", nil, studentClaims)
	handler.Calendar(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(http.MethodGet, "/dates/calendario?idPsicologo=3", nil, studentClaims)
	handler.Calendar(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(http.MethodGet, "/dates/calendario?idPsicologo=3&fecha=2025-01-06", nil, studentClaims)
	handler.Calendar(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fecha":"2025-01-06"`)
}

func TestCalendarHandlerSlotsPassesDurationAndStep(t *testing.T) {
	svc := &calendarServiceMock{}
	handler := NewCalendarHandler(svc)
	c, w := newTestContext(http.MethodGet, "/dates/disponibilidades/slots?idPsicologo=3&fecha=2025-01-06&duracion=30&paso=15", nil, studentClaims)

	handler.Slots(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 30, svc.duration)
	assert.Equal(t, 15, svc.step)
	assert.Contains(t, w.Body.String(), `"horaFin":"09:30"`)
}
