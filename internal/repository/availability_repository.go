package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/citas-api/internal/models"
	"github.com/noah-isme/citas-api/pkg/timespan"
)

const availabilityColumns = "id, practitioner_id, date, start_time, end_time, created_at, updated_at"

// AvailabilityRepository persists availability windows.
type AvailabilityRepository struct {
	q sqlx.ExtContext
}

// NewAvailabilityRepository constructs an availability repository.
func NewAvailabilityRepository(db sqlx.ExtContext) *AvailabilityRepository {
	return &AvailabilityRepository{q: db}
}

// List returns windows matching the filter ordered by date, start time and id.
func (r *AvailabilityRepository) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.AvailabilityWindow, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.PractitionerID > 0 {
		where = append(where, fmt.Sprintf("practitioner_id = $%d", len(args)+1))
		args = append(args, filter.PractitionerID)
	}
	if filter.Date != nil {
		where = append(where, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, *filter.Date)
	}
	if filter.Month > 0 {
		where = append(where, fmt.Sprintf("EXTRACT(MONTH FROM date) = $%d", len(args)+1))
		args = append(args, filter.Month)
	}
	if filter.Year > 0 {
		where = append(where, fmt.Sprintf("EXTRACT(YEAR FROM date) = $%d", len(args)+1))
		args = append(args, filter.Year)
	}

	query := fmt.Sprintf("SELECT %s FROM availability_windows WHERE %s ORDER BY date ASC, start_time ASC, id ASC",
		availabilityColumns, strings.Join(where, " AND "))
	windows := []models.AvailabilityWindow{}
	if err := sqlx.SelectContext(ctx, r.q, &windows, query, args...); err != nil {
		return nil, fmt.Errorf("list availability windows: %w", err)
	}
	return windows, nil
}

// GetByID fetches a window. It returns sql.ErrNoRows when missing.
func (r *AvailabilityRepository) GetByID(ctx context.Context, id int64) (*models.AvailabilityWindow, error) {
	query := fmt.Sprintf("SELECT %s FROM availability_windows WHERE id = $1", availabilityColumns)
	var window models.AvailabilityWindow
	if err := sqlx.GetContext(ctx, r.q, &window, query, id); err != nil {
		return nil, err
	}
	return &window, nil
}

// Create inserts a window and fills in its id and timestamps.
func (r *AvailabilityRepository) Create(ctx context.Context, window *models.AvailabilityWindow) error {
	now := time.Now().UTC()
	const query = `INSERT INTO availability_windows (practitioner_id, date, start_time, end_time, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5) RETURNING id, created_at, updated_at`
	row := r.q.QueryRowxContext(ctx, query, window.PractitionerID, window.Date, window.Start, window.End, now)
	if err := row.Scan(&window.ID, &window.CreatedAt, &window.UpdatedAt); err != nil {
		return fmt.Errorf("create availability window: %w", err)
	}
	return nil
}

// CreateRange inserts one window per calendar day in [from, to] with a single
// statement. The result is ordered by date.
func (r *AvailabilityRepository) CreateRange(ctx context.Context, practitionerID int64, from, to timespan.Date, start, end timespan.Clock) ([]models.AvailabilityWindow, error) {
	now := time.Now().UTC()
	query := fmt.Sprintf(`INSERT INTO availability_windows (practitioner_id, date, start_time, end_time, created_at, updated_at)
SELECT $1, d::date, $4, $5, $6, $6 FROM generate_series($2::date, $3::date, INTERVAL '1 day') AS d
RETURNING %s`, availabilityColumns)
	windows := []models.AvailabilityWindow{}
	if err := sqlx.SelectContext(ctx, r.q, &windows, query, practitionerID, from, to, start, end, now); err != nil {
		return nil, fmt.Errorf("create availability range: %w", err)
	}
	sort.SliceStable(windows, func(i, j int) bool { return windows[i].Span().Less(windows[j].Span()) })
	return windows, nil
}

// Update replaces the practitioner and span of a window.
func (r *AvailabilityRepository) Update(ctx context.Context, window *models.AvailabilityWindow) error {
	window.UpdatedAt = time.Now().UTC()
	const query = `UPDATE availability_windows SET practitioner_id = $1, date = $2, start_time = $3, end_time = $4, updated_at = $5
WHERE id = $6 RETURNING created_at`
	row := r.q.QueryRowxContext(ctx, query, window.PractitionerID, window.Date, window.Start, window.End, window.UpdatedAt, window.ID)
	if err := row.Scan(&window.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("update availability window: %w", err)
	}
	return nil
}

// Delete removes a window. It returns sql.ErrNoRows when nothing was deleted.
func (r *AvailabilityRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, "DELETE FROM availability_windows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete availability window: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
