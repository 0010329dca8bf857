package dto

// TaskInput describes a flexible task. Days lists the weekdays the task recurs
// on; one task is scheduled per listed day, and an empty list lets the
// scheduler pick any day.
type TaskInput struct {
	Name          string   `json:"name" validate:"required,max=120"`
	DurationHours float64  `json:"durationHours" validate:"gt=0,lte=168"`
	Days          []string `json:"days" validate:"omitempty,max=7,dive,weekday"`
	PreferredTime string   `json:"preferredTime" validate:"omitempty,oneof=any morning evening"`
}

// EventInput pins an activity to a date and clock time.
type EventInput struct {
	Name          string  `json:"name" validate:"required,max=120"`
	Date          string  `json:"date" validate:"required,datetime=2006-01-02"`
	Start         string  `json:"start" validate:"required,datetime=15:04"`
	DurationHours float64 `json:"durationHours" validate:"gt=0,lte=24"`
}

// GeneratePlanRequest asks for a schedule over [StartDate, EndDate]. Omitted
// work and sleep fields fall back to server defaults.
type GeneratePlanRequest struct {
	StartDate  string       `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate    string       `json:"endDate" validate:"required,datetime=2006-01-02"`
	Workdays   []string     `json:"workdays" validate:"omitempty,max=7,dive,weekday"`
	WorkStart  string       `json:"workStart" validate:"omitempty,datetime=15:04"`
	WorkHours  *float64     `json:"workHours" validate:"omitempty,gte=0,lte=24"`
	SleepHours *float64     `json:"sleepHours" validate:"omitempty,gte=0,lte=16"`
	WorkName   string       `json:"workName" validate:"omitempty,max=120"`
	Tasks      []TaskInput  `json:"tasks" validate:"omitempty,dive"`
	Events     []EventInput `json:"events" validate:"omitempty,dive"`
	Persist    bool         `json:"persist"`
}

// BlockView is a run of consecutive slots holding one activity.
type BlockView struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Activity string `json:"activity"`
	Type     string `json:"type,omitempty"`
	Free     bool   `json:"free"`
}

// DaySchedule groups one date's blocks.
type DaySchedule struct {
	Date    string      `json:"date"`
	Weekday string      `json:"weekday"`
	Blocks  []BlockView `json:"blocks"`
}

// UnscheduledTask reports a task that found no room.
type UnscheduledTask struct {
	Name          string `json:"name"`
	DurationSlots int    `json:"durationSlots"`
	TargetDay     string `json:"targetDay,omitempty"`
}

// SkippedEvent reports an event whose span could not fit inside its day.
type SkippedEvent struct {
	Name  string `json:"name"`
	Date  string `json:"date"`
	Start string `json:"start"`
}

// PlacementView records where a task landed and which strategy found room.
type PlacementView struct {
	Task  string `json:"task"`
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
	Tier  string `json:"tier"`
}

// Persistence modes reported by GeneratePlanResponse.
const (
	PersistModeNone  = "none"
	PersistModeSync  = "sync"
	PersistModeAsync = "async"
)

// GeneratePlanResponse returns the generated schedule.
type GeneratePlanResponse struct {
	RunID         string            `json:"runId"`
	StartDate     string            `json:"startDate"`
	EndDate       string            `json:"endDate"`
	SlotMinutes   int               `json:"slotMinutes"`
	PersistMode   string            `json:"persistMode"`
	Days          []DaySchedule     `json:"days"`
	Placements    []PlacementView   `json:"placements"`
	Unscheduled   []UnscheduledTask `json:"unscheduled"`
	SkippedEvents []SkippedEvent    `json:"skippedEvents"`
}

// DateRangeQuery selects stored timetable dates.
type DateRangeQuery struct {
	Start string `form:"start" json:"start" validate:"required,datetime=2006-01-02"`
	End   string `form:"end" json:"end" validate:"required,datetime=2006-01-02"`
}

// ExportQuery selects a stored range and an output format.
type ExportQuery struct {
	Start  string `form:"start" json:"start" validate:"required,datetime=2006-01-02"`
	End    string `form:"end" json:"end" validate:"required,datetime=2006-01-02"`
	Format string `form:"format" json:"format" validate:"omitempty,oneof=csv pdf"`
}

// ExportLinkResponse points at a stored export.
type ExportLinkResponse struct {
	ExportID  string `json:"exportId"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}

// DeleteRangeResponse reports how many entries a range delete removed.
type DeleteRangeResponse struct {
	Deleted int64 `json:"deleted"`
}
