package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/citas-api/internal/models"
	appErrors "github.com/noah-isme/citas-api/pkg/errors"
	"github.com/noah-isme/citas-api/pkg/export"
	"github.com/noah-isme/citas-api/pkg/timespan"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type agendaSource interface {
	ListForPractitioner(ctx context.Context, practitionerID int64, date *timespan.Date) ([]models.Appointment, error)
}

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportResult is a rendered agenda ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders a practitioner's daily agenda.
type ExportService struct {
	source    agendaSource
	renderers map[string]tableRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with CSV and PDF renderers.
func NewExportService(source agendaSource, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		source: source,
		renderers: map[string]tableRenderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
	}
}

// Agenda renders the appointments of practitionerID on date. format defaults to csv.
func (s *ExportService) Agenda(ctx context.Context, practitionerID int64, date timespan.Date, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("formato no soportado: %s", format))
	}
	if date.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fecha requerida")
	}

	appointments, err := s.source.ListForPractitioner(ctx, practitionerID, &date)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title:   fmt.Sprintf("Agenda psicologo %d - %s", practitionerID, date),
		Headers: []string{"id", "idCliente", "fecha", "horaInicio", "horaFin"},
		Rows:    make([][]string, 0, len(appointments)),
	}
	for _, a := range appointments {
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(a.ID, 10),
			strconv.FormatInt(a.ClientID, 10),
			a.Date.String(),
			a.Start.String(),
			a.End.String(),
		})
	}

	data, err := renderer.Render(table)
	if err != nil {
		s.logger.Error("agenda export failed", zap.Int64("practitioner_id", practitionerID), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render agenda")
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("agenda-%d-%s.%s", practitionerID, date, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}
