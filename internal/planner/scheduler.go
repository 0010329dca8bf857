package planner

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidRequest reports a malformed generation request.
var ErrInvalidRequest = errors.New("invalid schedule request")

// Names of the activities synthesised by the scheduler.
const (
	SleepActivityName = "Sleep"
	WorkActivityName  = "Work"
)

// Request carries every input of one scheduling run. The scheduler only reads
// the slices it is given.
type Request struct {
	Workdays           []Weekday
	WorkStartSlot      int
	WorkDurationSlots  int
	SleepDurationSlots int
	Tasks              []*Task
	Events             []*Event
	StartDate          time.Time
	EndDate            time.Time
	// WorkName overrides WorkActivityName when set.
	WorkName string
}

// Scheduler populates timetables. It holds no per-run state and is safe for
// concurrent use.
type Scheduler struct {
	logger *zap.Logger
}

// NewScheduler builds a scheduler; a nil logger disables logging.
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger}
}

// Generate runs the four placement phases (events, sleep, work, tasks) over
// [StartDate, EndDate]. Tasks that find no room are returned in the result,
// never as an error.
func (s *Scheduler) Generate(req Request) (*ScheduleResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	start := civilDate(req.StartDate)
	end := civilDate(req.EndDate)
	days := DaysInRange(start, end)

	run := &schedulerRun{
		req:       req,
		start:     start,
		days:      days,
		table:     NewTimetable(days),
		workdays:  make(map[Weekday]bool, len(req.Workdays)),
		logger:    s.logger,
		weekdayOf: make([]Weekday, days),
	}
	for _, w := range req.Workdays {
		run.workdays[w] = true
	}
	for d := 0; d < days; d++ {
		run.weekdayOf[d] = WeekdayOf(start.AddDate(0, 0, d))
	}

	run.placeEvents()
	run.placeSleep()
	run.placeWork()
	run.placeTasks()

	s.logger.Info("schedule generated",
		zap.Time("start", start),
		zap.Int("days", days),
		zap.Int("tasks", len(req.Tasks)),
		zap.Int("placed", len(run.placements)),
		zap.Int("unscheduled", len(run.unscheduled)),
		zap.Int("skipped_events", len(run.skippedEvents)),
	)

	return &ScheduleResult{
		timetable:     run.table,
		startDate:     start,
		endDate:       end,
		unscheduled:   run.unscheduled,
		skippedEvents: run.skippedEvents,
		placements:    run.placements,
	}, nil
}

func validateRequest(req Request) error {
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidRequest)
	}
	if civilDate(req.EndDate).Before(civilDate(req.StartDate)) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidRequest,
			req.EndDate.Format(time.DateOnly), req.StartDate.Format(time.DateOnly))
	}
	if req.WorkDurationSlots < 0 || req.SleepDurationSlots < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidRequest)
	}
	if req.WorkStartSlot < 0 || req.WorkStartSlot >= SlotsPerDay {
		return fmt.Errorf("%w: work start slot %d outside 0..%d", ErrInvalidRequest, req.WorkStartSlot, SlotsPerDay-1)
	}
	for _, w := range req.Workdays {
		if !w.Valid() {
			return fmt.Errorf("%w: workday %d outside 0..6", ErrInvalidRequest, int(w))
		}
	}
	for i, task := range req.Tasks {
		if task == nil || task.DurationSlots() < 1 {
			return fmt.Errorf("%w: task %d needs a duration of at least one slot", ErrInvalidRequest, i)
		}
		if day, ok := task.TargetDay(); ok && !day.Valid() {
			return fmt.Errorf("%w: task %q target day %d outside 0..6", ErrInvalidRequest, task.Name(), int(day))
		}
	}
	for i, event := range req.Events {
		if event == nil || event.DurationSlots() < 1 {
			return fmt.Errorf("%w: event %d needs a duration of at least one slot", ErrInvalidRequest, i)
		}
	}
	return nil
}

type schedulerRun struct {
	req       Request
	start     time.Time
	days      int
	table     *Timetable
	workdays  map[Weekday]bool
	weekdayOf []Weekday
	logger    *zap.Logger

	unscheduled   []*Task
	skippedEvents []*Event
	placements    []Placement
}

// placeEvents force-writes in-range events in input order; later events win overlaps.
func (r *schedulerRun) placeEvents() {
	placed := 0
	for _, event := range r.req.Events {
		day := DayIndex(r.start, event.Date())
		if day < 0 || day >= r.days {
			continue
		}
		if err := r.table.PlaceAt(event, day, event.StartSlot(), true); err != nil {
			r.logger.Warn("event does not fit inside its day",
				zap.String("event", event.Name()),
				zap.Time("date", event.Date()),
				zap.Int("start_slot", event.StartSlot()),
				zap.Error(err))
			r.skippedEvents = append(r.skippedEvents, event)
			continue
		}
		placed++
	}
	r.logger.Debug("events placed", zap.Int("placed", placed), zap.Int("skipped", len(r.skippedEvents)))
}

// placeSleep fills the night window backwards from midnight and the morning
// window forwards from 00:00, one slot at a time around any events.
func (r *schedulerRun) placeSleep() {
	quota := r.req.SleepDurationSlots
	if quota <= 0 {
		return
	}
	id := r.table.Register(NewFixed(SleepActivityName, quota))
	window := SleepWindowMinutes / SlotMinutes
	half := quota / 2
	rest := quota - half

	for day := 0; day < r.days; day++ {
		needed := half
		for slot := SlotsPerDay - 1; slot >= SlotsPerDay-window && needed > 0; slot-- {
			if r.table.fill(day, slot, id) {
				needed--
			}
		}
		shortfall := needed

		needed = rest
		for slot := 0; slot < window && needed > 0; slot++ {
			if r.table.fill(day, slot, id) {
				needed--
			}
		}
		shortfall += needed
		if shortfall > 0 {
			r.logger.Debug("sleep quota partially placed", zap.Int("day", day), zap.Int("missing_slots", shortfall))
		}
	}
}

// placeWork writes the work block on each workday where the whole span is free.
func (r *schedulerRun) placeWork() {
	duration := r.req.WorkDurationSlots
	if duration <= 0 || len(r.workdays) == 0 {
		return
	}
	name := r.req.WorkName
	if name == "" {
		name = WorkActivityName
	}
	work := NewFixed(name, duration)
	for day := 0; day < r.days; day++ {
		if !r.workdays[r.weekdayOf[day]] {
			continue
		}
		if !r.table.SpanFree(day, r.req.WorkStartSlot, duration) {
			r.logger.Debug("work block skipped", zap.Int("day", day), zap.String("weekday", r.weekdayOf[day].String()))
			continue
		}
		if err := r.table.PlaceAt(work, day, r.req.WorkStartSlot, false); err != nil {
			r.logger.Error("work placement rejected after free check", zap.Int("day", day), zap.Error(err))
		}
	}
}

func (r *schedulerRun) placeTasks() {
	for _, task := range r.req.Tasks {
		placement, ok := r.placeTask(task)
		if !ok {
			r.logger.Debug("task unscheduled", zap.String("task", task.Name()), zap.Int("duration_slots", task.DurationSlots()))
			r.unscheduled = append(r.unscheduled, task)
			continue
		}
		r.placements = append(r.placements, placement)
	}
}

// placeTask tries each tier in order and writes the task at the first fit.
func (r *schedulerRun) placeTask(task *Task) (Placement, bool) {
	length := task.DurationSlots()

	// Eligible days, preferred window first, then the whole day.
	target, hasTarget := task.TargetDay()
	for day := 0; day < r.days; day++ {
		if hasTarget && r.weekdayOf[day] != target {
			continue
		}
		if from, to, narrowed := task.PreferredTime().window(); narrowed {
			if start, ok := r.table.FirstFit(day, from, to, length); ok {
				return r.commit(task, day, start, TierEligibleDay), true
			}
		}
		if start, ok := r.table.FirstFit(day, 0, SlotsPerDay, length); ok {
			return r.commit(task, day, start, TierEligibleDay), true
		}
	}

	// Look ahead over the leading days, ignoring filters.
	for day := 0; day < min(LookAheadDays, r.days); day++ {
		if start, ok := r.table.FirstFit(day, 0, SlotsPerDay, length); ok {
			return r.commit(task, day, start, TierLookAhead), true
		}
	}

	// Non-workdays without events.
	for day := 0; day < r.days; day++ {
		if r.workdays[r.weekdayOf[day]] || r.table.HasKind(day, KindEvent) {
			continue
		}
		if start, ok := r.table.FirstFit(day, 0, SlotsPerDay, length); ok {
			return r.commit(task, day, start, TierSafeDay), true
		}
	}
	return Placement{}, false
}

func (r *schedulerRun) commit(task *Task, day, start int, tier Tier) Placement {
	id := r.table.Register(task)
	for s := start; s < start+task.DurationSlots(); s++ {
		r.table.fill(day, s, id)
	}
	r.logger.Debug("task placed",
		zap.String("task", task.Name()),
		zap.Int("day", day),
		zap.String("start", SlotToClock(start)),
		zap.String("tier", tier.String()))
	return Placement{Task: task, Day: day, StartSlot: start, Tier: tier}
}
