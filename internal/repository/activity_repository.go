package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ismart-schedule-api/internal/models"
)

const activityColumns = "id, name, duration_slots, type, event_date, start_slot, target_day, preferred_time, created_at"

// ActivityRepository stores activity definitions.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository builds repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts an activity and fills its ID and CreatedAt.
func (r *ActivityRepository) Create(ctx context.Context, exec sqlx.ExtContext, activity *models.Activity) error {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	if activity.PreferredTime == "" {
		activity.PreferredTime = "any"
	}

	const query = `
INSERT INTO activities (name, duration_slots, type, event_date, start_slot, target_day, preferred_time, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`

	row := r.exec(exec).QueryRowxContext(ctx, query,
		activity.Name,
		activity.DurationSlots,
		activity.Type,
		activity.EventDate,
		activity.StartSlot,
		activity.TargetDay,
		activity.PreferredTime,
		activity.CreatedAt,
	)
	if err := row.Scan(&activity.ID); err != nil {
		return fmt.Errorf("insert activity %q: %w", activity.Name, err)
	}
	return nil
}

// List returns activities ordered by id with the total count before paging.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM activities"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}

	page, size := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf("SELECT %s FROM activities%s ORDER BY id ASC LIMIT $%d OFFSET $%d",
		activityColumns, where, len(args)-1, len(args))

	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}
	return activities, total, nil
}
