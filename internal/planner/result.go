package planner

import "time"

// Tier identifies which placement strategy found room for a task.
type Tier int

const (
	TierEligibleDay Tier = iota + 1
	TierLookAhead
	TierSafeDay
)

func (t Tier) String() string {
	switch t {
	case TierEligibleDay:
		return "eligible_day"
	case TierLookAhead:
		return "look_ahead"
	case TierSafeDay:
		return "safe_day"
	default:
		return "unknown"
	}
}

// Placement records where a task landed.
type Placement struct {
	Task      *Task
	Day       int
	StartSlot int
	Tier      Tier
}

// ScheduleResult pairs a populated timetable with the tasks that found no room.
// It is built once per run and exposes copies of its lists.
type ScheduleResult struct {
	timetable     *Timetable
	startDate     time.Time
	endDate       time.Time
	unscheduled   []*Task
	skippedEvents []*Event
	placements    []Placement
}

// Timetable returns the populated grid.
func (r *ScheduleResult) Timetable() *Timetable { return r.timetable }

// StartDate is the date of grid row 0.
func (r *ScheduleResult) StartDate() time.Time { return r.startDate }

// EndDate is the date of the last grid row.
func (r *ScheduleResult) EndDate() time.Time { return r.endDate }

// DateOf returns the calendar date of grid row day.
func (r *ScheduleResult) DateOf(day int) time.Time { return r.startDate.AddDate(0, 0, day) }

// UnscheduledTasks lists tasks that exhausted every placement tier, in input order.
func (r *ScheduleResult) UnscheduledTasks() []*Task {
	out := make([]*Task, len(r.unscheduled))
	copy(out, r.unscheduled)
	return out
}

// SkippedEvents lists in-range events whose span could not fit inside their day.
func (r *ScheduleResult) SkippedEvents() []*Event {
	out := make([]*Event, len(r.skippedEvents))
	copy(out, r.skippedEvents)
	return out
}

// Placements lists successful task placements in input order.
func (r *ScheduleResult) Placements() []Placement {
	out := make([]Placement, len(r.placements))
	copy(out, r.placements)
	return out
}
