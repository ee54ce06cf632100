package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/citas-api/internal/models"
)

const appointmentColumns = "id, practitioner_id, client_id, date, start_time, end_time, created_at, updated_at"

// AppointmentRepository persists confirmed appointments.
type AppointmentRepository struct {
	q sqlx.ExtContext
}

// NewAppointmentRepository constructs an appointment repository.
func NewAppointmentRepository(db sqlx.ExtContext) *AppointmentRepository {
	return &AppointmentRepository{q: db}
}

// List returns appointments matching the filter ordered by date, start time and id.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.PractitionerID > 0 {
		where = append(where, fmt.Sprintf("practitioner_id = $%d", len(args)+1))
		args = append(args, filter.PractitionerID)
	}
	if filter.ClientID > 0 {
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)+1))
		args = append(args, filter.ClientID)
	}
	if filter.Date != nil {
		where = append(where, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, *filter.Date)
	}

	query := fmt.Sprintf("SELECT %s FROM appointments WHERE %s ORDER BY date ASC, start_time ASC, id ASC",
		appointmentColumns, strings.Join(where, " AND "))
	appointments := []models.Appointment{}
	if err := sqlx.SelectContext(ctx, r.q, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	for i := range appointments {
		appointments[i].Status = models.AppointmentConfirmed
	}
	return appointments, nil
}

// GetByID fetches an appointment. It returns sql.ErrNoRows when missing.
func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*models.Appointment, error) {
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE id = $1", appointmentColumns)
	var appointment models.Appointment
	if err := sqlx.GetContext(ctx, r.q, &appointment, query, id); err != nil {
		return nil, err
	}
	appointment.Status = models.AppointmentConfirmed
	return &appointment, nil
}

// Create inserts an appointment and fills in its id and timestamps.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	now := time.Now().UTC()
	const query = `INSERT INTO appointments (practitioner_id, client_id, date, start_time, end_time, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id, created_at, updated_at`
	row := r.q.QueryRowxContext(ctx, query, appointment.PractitionerID, appointment.ClientID,
		appointment.Date, appointment.Start, appointment.End, now)
	if err := row.Scan(&appointment.ID, &appointment.CreatedAt, &appointment.UpdatedAt); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	appointment.Status = models.AppointmentConfirmed
	return nil
}

// UpdateSpan moves an appointment to a new date and time range.
func (r *AppointmentRepository) UpdateSpan(ctx context.Context, appointment *models.Appointment) error {
	appointment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE appointments SET date = $1, start_time = $2, end_time = $3, updated_at = $4 WHERE id = $5`
	res, err := r.q.ExecContext(ctx, query, appointment.Date, appointment.Start, appointment.End, appointment.UpdatedAt, appointment.ID)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	appointment.Status = models.AppointmentConfirmed
	return nil
}

// Delete removes an appointment. It returns sql.ErrNoRows when nothing was deleted.
func (r *AppointmentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, "DELETE FROM appointments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if err := requireAffected(res); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}
