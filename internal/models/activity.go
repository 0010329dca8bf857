package models

import "time"

// ActivityType mirrors the planner's activity kinds as stored in the type column.
type ActivityType string

const (
	ActivityTypeFixed ActivityType = "FixedActivity"
	ActivityTypeEvent ActivityType = "Event"
	ActivityTypeTask  ActivityType = "Task"
)

// Activity is a persisted activity row. Event rows carry a date and start
// slot; task rows may carry a target weekday (0 = Monday) and a preference.
type Activity struct {
	ID            int64        `db:"id" json:"id"`
	Name          string       `db:"name" json:"name"`
	DurationSlots int          `db:"duration_slots" json:"durationSlots"`
	Type          ActivityType `db:"type" json:"type"`
	EventDate     *time.Time   `db:"event_date" json:"eventDate,omitempty"`
	StartSlot     *int         `db:"start_slot" json:"startSlot,omitempty"`
	TargetDay     *int         `db:"target_day" json:"targetDay,omitempty"`
	PreferredTime string       `db:"preferred_time" json:"preferredTime"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
}

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	Type     ActivityType
	Page     int
	PageSize int
}
