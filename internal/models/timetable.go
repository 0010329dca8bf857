package models

import "time"

// TimetableEntry stores one occupied slot of one calendar date.
type TimetableEntry struct {
	ID         int64     `db:"id" json:"id"`
	EntryDate  time.Time `db:"entry_date" json:"entryDate"`
	Slot       int       `db:"slot" json:"slot"`
	ActivityID int64     `db:"activity_id" json:"activityId"`
}

// TimetableEntryView joins an entry with its activity for read paths.
type TimetableEntryView struct {
	EntryDate    time.Time    `db:"entry_date" json:"entryDate"`
	Slot         int          `db:"slot" json:"slot"`
	ActivityID   int64        `db:"activity_id" json:"activityId"`
	ActivityName string       `db:"activity_name" json:"activityName"`
	ActivityType ActivityType `db:"activity_type" json:"activityType"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
