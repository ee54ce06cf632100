package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/citas-api/internal/models"
	appErrors "github.com/noah-isme/citas-api/pkg/errors"
	"github.com/noah-isme/citas-api/pkg/timespan"
)

type agendaSourceStub struct {
	items []models.Appointment
	date  *timespan.Date
}

func (s *agendaSourceStub) ListForPractitioner(ctx context.Context, practitionerID int64, date *timespan.Date) ([]models.Appointment, error) {
	s.date = date
	return s.items, nil
}

func TestExportServiceAgendaCSV(t *testing.T) {
	source := &agendaSourceStub{items: []models.Appointment{sampleAppointment}}
	svc := NewExportService(source, nil)

	result, err := svc.Agenda(context.Background(), 3, timespan.MustDate("2025-01-06"), "")
	require.NoError(t, err)
	assert.Equal(t, "agenda-3-2025-01-06.csv", result.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)
	assert.Equal(t, "id,idCliente,fecha,horaInicio,horaFin\n9,42,2025-01-06,09:00,10:00\n", string(result.Data))
	require.NotNil(t, source.date)
	assert.Equal(t, "2025-01-06", source.date.String())
}

func TestExportServiceAgendaPDF(t *testing.T) {
	svc := NewExportService(&agendaSourceStub{}, nil)

	result, err := svc.Agenda(context.Background(), 3, timespan.MustDate("2025-01-06"), "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Data, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&agendaSourceStub{}, nil)
	_, err := svc.Agenda(context.Background(), 3, timespan.MustDate("2025-01-06"), "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
