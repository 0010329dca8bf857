package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/ismart-schedule-api/internal/dto"
	"github.com/noah-isme/ismart-schedule-api/internal/models"
	"github.com/noah-isme/ismart-schedule-api/internal/planner"
	appErrors "github.com/noah-isme/ismart-schedule-api/pkg/errors"
	"github.com/noah-isme/ismart-schedule-api/pkg/jobs"
)

// PersistJobType tags queued plan writes.
const PersistJobType = "plan.persist"

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type activityWriter interface {
	Create(ctx context.Context, exec sqlx.ExtContext, activity *models.Activity) error
}

type timetableWriter interface {
	ReplaceRange(ctx context.Context, exec sqlx.ExtContext, start, end time.Time, entries []models.TimetableEntry) error
}

type persistQueue interface {
	Enqueue(job jobs.Job) error
}

// PlannerOptions bounds requests and supplies defaults for omitted fields.
type PlannerOptions struct {
	MaxRangeDays      int
	MaxTasks          int
	PersistAsync      bool
	DefaultWorkStart  string
	DefaultWorkHours  float64
	DefaultSleepHours float64
}

// PlannerService turns plan requests into engine runs and stores the result.
type PlannerService struct {
	scheduler  *planner.Scheduler
	activities activityWriter
	timetable  timetableWriter
	tx         txProvider
	cache      *CacheService
	metrics    *MetricsService
	queue      persistQueue
	opts       PlannerOptions
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewPlannerService constructs the service. Persistence is disabled when tx is nil.
func NewPlannerService(
	scheduler *planner.Scheduler,
	activities activityWriter,
	timetable timetableWriter,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	opts PlannerOptions,
	validate *validator.Validate,
	logger *zap.Logger,
) *PlannerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if scheduler == nil {
		scheduler = planner.NewScheduler(logger)
	}
	if opts.MaxRangeDays <= 0 {
		opts.MaxRangeDays = 31
	}
	if opts.MaxTasks <= 0 {
		opts.MaxTasks = 200
	}
	if opts.DefaultWorkStart == "" {
		opts.DefaultWorkStart = "09:00"
	}
	return &PlannerService{
		scheduler:  scheduler,
		activities: activities,
		timetable:  timetable,
		tx:         tx,
		cache:      cache,
		metrics:    metrics,
		opts:       opts,
		validator:  withPlannerValidations(validate),
		logger:     logger,
		now:        time.Now,
	}
}

// UseQueue routes persistence through q when async persistence is enabled.
func (s *PlannerService) UseQueue(q persistQueue) {
	s.queue = q
}

// planSnapshot is the unit of work handed to the persistence path.
type planSnapshot struct {
	RunID  string
	Result *planner.ScheduleResult
}

// Generate runs the scheduler for req and optionally stores the timetable.
func (s *PlannerService) Generate(ctx context.Context, req dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error) {
	started := s.now()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan request")
	}

	engineReq, err := s.buildRequest(req)
	if err != nil {
		return nil, err
	}

	result, err := s.scheduler.Generate(engineReq)
	if err != nil {
		if errors.Is(err, planner.ErrInvalidRequest) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate schedule")
	}

	runID := uuid.NewString()
	mode := dto.PersistModeNone
	if req.Persist {
		mode, err = s.persist(ctx, planSnapshot{RunID: runID, Result: result})
		if err != nil {
			return nil, err
		}
	}

	resp := buildPlanResponse(runID, mode, result)
	s.metrics.RecordPlan(planOutcome(result, mode, s.now().Sub(started)))
	s.logger.Info("plan generated",
		zap.String("run_id", runID),
		zap.String("persist_mode", mode),
		zap.Int("placed", len(resp.Placements)),
		zap.Int("unscheduled", len(resp.Unscheduled)),
	)
	return resp, nil
}

func (s *PlannerService) buildRequest(req dto.GeneratePlanRequest) (planner.Request, error) {
	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return planner.Request{}, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		return planner.Request{}, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return planner.Request{}, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")
	}
	if days := planner.DaysInRange(start, end); days > s.opts.MaxRangeDays {
		return planner.Request{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("range of %d days exceeds the limit of %d", days, s.opts.MaxRangeDays))
	}

	workStartRaw := req.WorkStart
	if workStartRaw == "" {
		workStartRaw = s.opts.DefaultWorkStart
	}
	workStart, err := planner.ParseClock(workStartRaw)
	if err != nil {
		return planner.Request{}, appErrors.Clone(appErrors.ErrValidation, "workStart must be HH:MM")
	}
	workHours := s.opts.DefaultWorkHours
	if req.WorkHours != nil {
		workHours = *req.WorkHours
	}
	sleepHours := s.opts.DefaultSleepHours
	if req.SleepHours != nil {
		sleepHours = *req.SleepHours
	}

	tasks := expandTasks(req.Tasks)
	if len(tasks) > s.opts.MaxTasks {
		return planner.Request{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%d tasks exceed the limit of %d", len(tasks), s.opts.MaxTasks))
	}

	events := make([]*planner.Event, 0, len(req.Events))
	for _, in := range req.Events {
		date, err := time.Parse(time.DateOnly, in.Date)
		if err != nil {
			return planner.Request{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("event %q date must be YYYY-MM-DD", in.Name))
		}
		slot, err := planner.ParseClock(in.Start)
		if err != nil {
			return planner.Request{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("event %q start must be HH:MM", in.Name))
		}
		events = append(events, planner.NewEvent(in.Name, planner.SlotsForHours(in.DurationHours), date, slot))
	}

	return planner.Request{
		Workdays:           parseWorkdays(req.Workdays),
		WorkStartSlot:      workStart,
		WorkDurationSlots:  planner.SlotsForHours(workHours),
		SleepDurationSlots: planner.SlotsForHours(sleepHours),
		Tasks:              tasks,
		Events:             events,
		StartDate:          start,
		EndDate:            end,
		WorkName:           req.WorkName,
	}, nil
}

// parseWorkdays defaults to Monday through Friday when names is nil. An
// explicit empty list means no workdays.
func parseWorkdays(names []string) []planner.Weekday {
	if names == nil {
		return []planner.Weekday{planner.Monday, planner.Tuesday, planner.Wednesday, planner.Thursday, planner.Friday}
	}
	seen := make(map[planner.Weekday]bool, len(names))
	days := make([]planner.Weekday, 0, len(names))
	for _, name := range names {
		day, ok := planner.ParseWeekday(name)
		if !ok || seen[day] {
			continue
		}
		seen[day] = true
		days = append(days, day)
	}
	return days
}

// expandTasks builds one engine task per selected weekday. A task without days
// becomes a single unconstrained task.
func expandTasks(inputs []dto.TaskInput) []*planner.Task {
	var tasks []*planner.Task
	for _, in := range inputs {
		slots := planner.SlotsForHours(in.DurationHours)
		pref := planner.Preferring(planner.ParsePreferredTime(in.PreferredTime))
		if len(in.Days) == 0 {
			tasks = append(tasks, planner.NewTask(in.Name, slots, pref))
			continue
		}
		seen := make(map[planner.Weekday]bool, len(in.Days))
		for _, name := range in.Days {
			day, ok := planner.ParseWeekday(name)
			if !ok || seen[day] {
				continue
			}
			seen[day] = true
			tasks = append(tasks, planner.NewTask(in.Name, slots, planner.OnWeekday(day), pref))
		}
	}
	return tasks
}

func (s *PlannerService) persist(ctx context.Context, snap planSnapshot) (string, error) {
	if s.tx == nil || s.activities == nil || s.timetable == nil {
		return dto.PersistModeNone, appErrors.Clone(appErrors.ErrPreconditionFailed, "persistence is not configured")
	}
	if s.opts.PersistAsync && s.queue != nil {
		err := s.queue.Enqueue(jobs.Job{ID: snap.RunID, Type: PersistJobType, Payload: snap})
		if err == nil {
			return dto.PersistModeAsync, nil
		}
		s.logger.Warn("persist queue unavailable, writing synchronously", zap.String("run_id", snap.RunID), zap.Error(err))
	}
	if err := s.store(ctx, snap); err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return dto.PersistModeNone, appErrors.FromError(err)
		}
		return dto.PersistModeNone, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save timetable")
	}
	return dto.PersistModeSync, nil
}

// PersistJob is the queue handler for async plan writes.
func (s *PlannerService) PersistJob(ctx context.Context, job jobs.Job) error {
	snap, ok := job.Payload.(planSnapshot)
	if !ok {
		return fmt.Errorf("persist job %s: unexpected payload %T", job.ID, job.Payload)
	}
	return s.store(ctx, snap)
}

// store writes every activity on the grid and replaces the range's entries in
// one transaction, then drops cached day views.
func (s *PlannerService) store(ctx context.Context, snap planSnapshot) (err error) {
	result := snap.Result
	table := result.Timetable()

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin plan tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	dbIDs := make(map[planner.ActivityID]int64)
	var entries []models.TimetableEntry
	for day, row := range table.Cells() {
		date := result.DateOf(day)
		for slot, id := range row {
			if id == planner.NoActivity {
				continue
			}
			dbID, ok := dbIDs[id]
			if !ok {
				record := activityRecord(table.Activity(id))
				if err = s.activities.Create(ctx, tx, &record); err != nil {
					return err
				}
				dbID = record.ID
				dbIDs[id] = dbID
			}
			entries = append(entries, models.TimetableEntry{EntryDate: date, Slot: slot, ActivityID: dbID})
		}
	}

	if err = s.timetable.ReplaceRange(ctx, tx, result.StartDate(), result.EndDate(), entries); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit plan tx: %w", err)
	}

	if cacheErr := s.cache.InvalidateDayViews(ctx); cacheErr != nil {
		s.logger.Warn("day view invalidation failed", zap.String("run_id", snap.RunID), zap.Error(cacheErr))
	}
	s.logger.Info("timetable saved",
		zap.String("run_id", snap.RunID),
		zap.Int("activities", len(dbIDs)),
		zap.Int("entries", len(entries)),
	)
	return nil
}

func activityRecord(a planner.Activity) models.Activity {
	record := models.Activity{
		Name:          a.Name(),
		DurationSlots: a.DurationSlots(),
		Type:          models.ActivityType(a.Kind()),
		PreferredTime: string(planner.PreferAny),
	}
	switch v := a.(type) {
	case *planner.Event:
		date := v.Date()
		start := v.StartSlot()
		record.EventDate = &date
		record.StartSlot = &start
	case *planner.Task:
		if day, ok := v.TargetDay(); ok {
			target := int(day)
			record.TargetDay = &target
		}
		record.PreferredTime = string(v.PreferredTime())
	}
	return record
}

func buildPlanResponse(runID, mode string, result *planner.ScheduleResult) *dto.GeneratePlanResponse {
	table := result.Timetable()
	resp := &dto.GeneratePlanResponse{
		RunID:         runID,
		StartDate:     result.StartDate().Format(time.DateOnly),
		EndDate:       result.EndDate().Format(time.DateOnly),
		SlotMinutes:   planner.SlotMinutes,
		PersistMode:   mode,
		Days:          make([]dto.DaySchedule, 0, table.Days()),
		Placements:    []dto.PlacementView{},
		Unscheduled:   []dto.UnscheduledTask{},
		SkippedEvents: []dto.SkippedEvent{},
	}
	for day := 0; day < table.Days(); day++ {
		resp.Days = append(resp.Days, daySchedule(result.DateOf(day), table.Blocks(day)))
	}
	for _, p := range result.Placements() {
		resp.Placements = append(resp.Placements, dto.PlacementView{
			Task:  p.Task.Name(),
			Date:  result.DateOf(p.Day).Format(time.DateOnly),
			Start: planner.SlotToClock(p.StartSlot),
			End:   planner.SlotToClock(p.StartSlot + p.Task.DurationSlots()),
			Tier:  p.Tier.String(),
		})
	}
	for _, task := range result.UnscheduledTasks() {
		item := dto.UnscheduledTask{Name: task.Name(), DurationSlots: task.DurationSlots()}
		if day, ok := task.TargetDay(); ok {
			item.TargetDay = day.String()
		}
		resp.Unscheduled = append(resp.Unscheduled, item)
	}
	for _, event := range result.SkippedEvents() {
		resp.SkippedEvents = append(resp.SkippedEvents, dto.SkippedEvent{
			Name:  event.Name(),
			Date:  event.Date().Format(time.DateOnly),
			Start: planner.SlotToClock(event.StartSlot()),
		})
	}
	return resp
}

func daySchedule(date time.Time, blocks []planner.Block) dto.DaySchedule {
	views := make([]dto.BlockView, 0, len(blocks))
	for _, b := range blocks {
		views = append(views, dto.BlockView{
			Start:    b.Start(),
			End:      b.End(),
			Activity: b.Name,
			Type:     string(b.Kind),
			Free:     b.Free(),
		})
	}
	return dto.DaySchedule{
		Date:    date.Format(time.DateOnly),
		Weekday: planner.WeekdayOf(date).String(),
		Blocks:  views,
	}
}

func planOutcome(result *planner.ScheduleResult, mode string, elapsed time.Duration) PlanOutcome {
	byTier := make(map[string]int)
	for _, p := range result.Placements() {
		byTier[p.Tier.String()]++
	}
	return PlanOutcome{
		Duration:      elapsed,
		PersistMode:   mode,
		PlacedByTier:  byTier,
		Unscheduled:   len(result.UnscheduledTasks()),
		SkippedEvents: len(result.SkippedEvents()),
	}
}
