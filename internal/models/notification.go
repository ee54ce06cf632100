package models

import "time"

// BookingEventType names a booking lifecycle event.
type BookingEventType string

const (
	EventAppointmentBooked      BookingEventType = "appointment.booked"
	EventAppointmentRescheduled BookingEventType = "appointment.rescheduled"
	EventAppointmentCancelled   BookingEventType = "appointment.cancelled"
)

// BookingEvent is handed to the notification service after a booking change commits.
type BookingEvent struct {
	ID             string           `json:"id"`
	Type           BookingEventType `json:"type"`
	AppointmentID  int64            `json:"idCita"`
	PractitionerID int64            `json:"idPsicologo"`
	ClientID       int64            `json:"idCliente"`
	Date           string           `json:"fecha"`
	Start          string           `json:"horaInicio"`
	End            string           `json:"horaFin"`
	OccurredAt     time.Time        `json:"occurredAt"`
}
