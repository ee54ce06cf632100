package models

import (
	"strconv"
	"time"

	"github.com/noah-isme/citas-api/pkg/timespan"
)

// AppointmentStatus is only reported on the wire; cancelled appointments are deleted.
type AppointmentStatus string

const (
	AppointmentConfirmed AppointmentStatus = "Confirmada"
)

// Appointment is a committed booking between a practitioner and a client.
type Appointment struct {
	ID             int64             `db:"id" json:"id"`
	PractitionerID int64             `db:"practitioner_id" json:"idPsicologo"`
	ClientID       int64             `db:"client_id" json:"idCliente"`
	Date           timespan.Date     `db:"date" json:"fecha"`
	Start          timespan.Clock    `db:"start_time" json:"horaInicio"`
	End            timespan.Clock    `db:"end_time" json:"horaFin"`
	Status         AppointmentStatus `db:"-" json:"estado"`
	CreatedAt      time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updatedAt"`
}

// Span returns the appointment's time range.
func (a Appointment) Span() timespan.Span {
	return timespan.New(a.Date, a.Start, a.End)
}

// SetSpan replaces the appointment's time range.
func (a *Appointment) SetSpan(s timespan.Span) {
	a.Date, a.Start, a.End = s.Date, s.Start, s.End
}

// AppointmentFilter narrows appointment listings.
type AppointmentFilter struct {
	PractitionerID int64
	ClientID       int64
	Date           *timespan.Date
}

// DayKey identifies the (practitioner, date) scope booking writes serialize on.
type DayKey struct {
	PractitionerID int64
	Date           timespan.Date
}

func (k DayKey) String() string {
	return strconv.FormatInt(k.PractitionerID, 10) + "|" + k.Date.String()
}

// Calendar is a consistent snapshot of one practitioner's day.
type Calendar struct {
	PractitionerID int64                `json:"idPsicologo"`
	Date           timespan.Date        `json:"fecha"`
	Windows        []AvailabilityWindow `json:"disponibilidades"`
	Appointments   []Appointment        `json:"citas"`
	Slots          []Slot               `json:"slots"`
}

// Slot is a free bookable span derived from availability minus appointments.
type Slot struct {
	Date  timespan.Date  `json:"fecha"`
	Start timespan.Clock `json:"horaInicio"`
	End   timespan.Clock `json:"horaFin"`
}

// SlotFromSpan converts a span to its wire form.
func SlotFromSpan(s timespan.Span) Slot {
	return Slot{Date: s.Date, Start: s.Start, End: s.End}
}
