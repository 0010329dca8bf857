package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/ismart-schedule-api/internal/models"
	appErrors "github.com/noah-isme/ismart-schedule-api/pkg/errors"
)

// insertBatchSize keeps bulk inserts well below the postgres parameter limit.
const insertBatchSize = 1000

const uniqueViolation = pq.ErrorCode("23505")

// TimetableRepository stores per-date slot assignments.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository builds repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ReplaceRange clears every entry dated within [start, end] and inserts
// entries. Pass a transaction to make the swap atomic.
func (r *TimetableRepository) ReplaceRange(ctx context.Context, exec sqlx.ExtContext, start, end time.Time, entries []models.TimetableEntry) error {
	target := r.exec(exec)
	if _, err := r.DeleteRange(ctx, target, start, end); err != nil {
		return err
	}

	const query = `INSERT INTO timetable_entries (entry_date, slot, activity_id) VALUES (:entry_date, :slot, :activity_id)`
	for from := 0; from < len(entries); from += insertBatchSize {
		to := from + insertBatchSize
		if to > len(entries) {
			to = len(entries)
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, entries[from:to]); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "timetable range was written concurrently")
			}
			return fmt.Errorf("insert timetable entries: %w", err)
		}
	}
	return nil
}

// DeleteRange removes entries dated within [start, end].
func (r *TimetableRepository) DeleteRange(ctx context.Context, exec sqlx.ExtContext, start, end time.Time) (int64, error) {
	const query = `DELETE FROM timetable_entries WHERE entry_date BETWEEN $1 AND $2`
	res, err := r.exec(exec).ExecContext(ctx, query, start, end)
	if err != nil {
		return 0, fmt.Errorf("delete timetable range: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete timetable range: %w", err)
	}
	return affected, nil
}

const entryViewSelect = `SELECT e.entry_date, e.slot, e.activity_id, a.name AS activity_name, a.type AS activity_type
FROM timetable_entries e
JOIN activities a ON a.id = e.activity_id`

// ListByDate returns one date's entries ordered by slot.
func (r *TimetableRepository) ListByDate(ctx context.Context, date time.Time) ([]models.TimetableEntryView, error) {
	query := entryViewSelect + ` WHERE e.entry_date = $1 ORDER BY e.slot ASC`
	var entries []models.TimetableEntryView
	if err := r.db.SelectContext(ctx, &entries, query, date); err != nil {
		return nil, fmt.Errorf("list timetable for %s: %w", date.Format(time.DateOnly), err)
	}
	return entries, nil
}

// ListRange returns entries within [start, end] ordered by date then slot.
func (r *TimetableRepository) ListRange(ctx context.Context, start, end time.Time) ([]models.TimetableEntryView, error) {
	query := entryViewSelect + ` WHERE e.entry_date BETWEEN $1 AND $2 ORDER BY e.entry_date ASC, e.slot ASC`
	var entries []models.TimetableEntryView
	if err := r.db.SelectContext(ctx, &entries, query, start, end); err != nil {
		return nil, fmt.Errorf("list timetable range: %w", err)
	}
	return entries, nil
}

// ListDates returns every date holding at least one entry, ascending.
func (r *TimetableRepository) ListDates(ctx context.Context) ([]time.Time, error) {
	const query = `SELECT DISTINCT entry_date FROM timetable_entries ORDER BY entry_date ASC`
	var dates []time.Time
	if err := r.db.SelectContext(ctx, &dates, query); err != nil {
		return nil, fmt.Errorf("list timetable dates: %w", err)
	}
	return dates, nil
}
