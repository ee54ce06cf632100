package models

import (
	"time"

	"github.com/noah-isme/citas-api/pkg/timespan"
)

// AvailabilityWindow is a block of time a practitioner opened for booking.
type AvailabilityWindow struct {
	ID             int64          `db:"id" json:"id"`
	PractitionerID int64          `db:"practitioner_id" json:"idPsicologo"`
	Date           timespan.Date  `db:"date" json:"fecha"`
	Start          timespan.Clock `db:"start_time" json:"horaInicio"`
	End            timespan.Clock `db:"end_time" json:"horaFin"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// Span returns the window's time range.
func (w AvailabilityWindow) Span() timespan.Span {
	return timespan.New(w.Date, w.Start, w.End)
}

// SetSpan replaces the window's time range.
func (w *AvailabilityWindow) SetSpan(s timespan.Span) {
	w.Date, w.Start, w.End = s.Date, s.Start, s.End
}

// AvailabilityFilter narrows availability listings. Zero values are ignored
// and set fields are combined with AND.
type AvailabilityFilter struct {
	PractitionerID int64
	Date           *timespan.Date
	Month          int
	Year           int
}

// BulkFailure reports one date that could not be created during bulk generation.
type BulkFailure struct {
	Date  timespan.Date `json:"fecha"`
	Error string        `json:"error"`
}

// BulkAvailabilityResult summarises a bulk generation run.
type BulkAvailabilityResult struct {
	Created []AvailabilityWindow `json:"created"`
	Failed  []BulkFailure        `json:"failed,omitempty"`
}
