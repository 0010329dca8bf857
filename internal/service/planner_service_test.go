package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ismart-schedule-api/internal/dto"
	"github.com/noah-isme/ismart-schedule-api/internal/models"
	appErrors "github.com/noah-isme/ismart-schedule-api/pkg/errors"
	"github.com/noah-isme/ismart-schedule-api/pkg/jobs"
)

type activityWriterStub struct {
	created []models.Activity
	err     error
}

func (s *activityWriterStub) Create(_ context.Context, exec sqlx.ExtContext, a *models.Activity) error {
	if s.err != nil {
		return s.err
	}
	if exec == nil {
		return errors.New("expected transaction")
	}
	a.ID = int64(100 + len(s.created))
	s.created = append(s.created, *a)
	return nil
}

type timetableWriterStub struct {
	start, end time.Time
	entries    []models.TimetableEntry
	err        error
}

func (s *timetableWriterStub) ReplaceRange(_ context.Context, _ sqlx.ExtContext, start, end time.Time, entries []models.TimetableEntry) error {
	if s.err != nil {
		return s.err
	}
	s.start, s.end, s.entries = start, end, entries
	return nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type plannerFixture struct {
	svc        *PlannerService
	mock       sqlmock.Sqlmock
	activities *activityWriterStub
	timetable  *timetableWriterStub
	cache      *memoryCache
	metrics    *MetricsService
}

func newPlannerFixture(t *testing.T, opts PlannerOptions) *plannerFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	if opts.DefaultWorkHours == 0 {
		opts.DefaultWorkHours = 8
	}
	if opts.DefaultSleepHours == 0 {
		opts.DefaultSleepHours = 8
	}

	f := &plannerFixture{
		mock:       mock,
		activities: &activityWriterStub{},
		timetable:  &timetableWriterStub{},
		cache:      newMemoryCache(),
		metrics:    NewMetricsService(),
	}
	cache := NewCacheService(f.cache, f.metrics, time.Minute, nil, true)
	f.svc = NewPlannerService(nil, f.activities, f.timetable, sqlx.NewDb(db, "sqlmock"), cache, f.metrics, opts, nil, nil)
	return f
}

func weekRequest() dto.GeneratePlanRequest {
	return dto.GeneratePlanRequest{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-07",
		Tasks:     []dto.TaskInput{{Name: "Gym", DurationHours: 1, PreferredTime: "evening"}},
	}
}

func TestPlannerServiceGenerateWithoutPersist(t *testing.T) {
	f := newPlannerFixture(t, PlannerOptions{})

	resp, err := f.svc.Generate(context.Background(), weekRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, dto.PersistModeNone, resp.PersistMode)
	assert.Equal(t, 30, resp.SlotMinutes)
	require.Len(t, resp.Days, 7)
	assert.Equal(t, "MONDAY", resp.Days[0].Weekday)
	assert.Equal(t, "SUNDAY", resp.Days[6].Weekday)

	require.Len(t, resp.Placements, 1)
	assert.Equal(t, dto.PlacementView{Task: "Gym", Date: "2024-01-01", Start: "17:00", End: "18:00", Tier: "eligible_day"}, resp.Placements[0])
	assert.Empty(t, resp.Unscheduled)

	monday := resp.Days[0].Blocks
	require.NotEmpty(t, monday)
	assert.Equal(t, dto.BlockView{Start: "00:00", End: "04:00", Activity: "Sleep", Type: "FixedActivity"}, monday[0])
	assert.Equal(t, dto.BlockView{Start: "20:00", End: "24:00", Activity: "Sleep", Type: "FixedActivity"}, monday[len(monday)-1])

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.plansTotal.WithLabelValues(dto.PersistModeNone)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.tasksPlaced.WithLabelValues("eligible_day")))
	assert.Empty(t, f.activities.created)
}

func TestPlannerServiceExpandsRecurringTasks(t *testing.T) {
	f := newPlannerFixture(t, PlannerOptions{})
	req := weekRequest()
	req.Tasks = []dto.TaskInput{{Name: "Piano", DurationHours: 0.5, Days: []string{"mon", "wednesday", "MON"}}}

	resp, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Placements, 2)
	assert.Equal(t, "2024-01-01", resp.Placements[0].Date)
	assert.Equal(t, "2024-01-03", resp.Placements[1].Date)
}

func TestPlannerServiceReportsUnscheduledAndSkipped(t *testing.T) {
	f := newPlannerFixture(t, PlannerOptions{})
	req := weekRequest()
	req.Tasks = []dto.TaskInput{{Name: "Marathon", DurationHours: 30, Days: []string{"sat"}}}
	req.Events = []dto.EventInput{{Name: "Late show", Date: "2024-01-02", Start: "23:00", DurationHours: 2}}

	resp, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []dto.UnscheduledTask{{Name: "Marathon", DurationSlots: 60, TargetDay: "SATURDAY"}}, resp.Unscheduled)
	assert.Equal(t, []dto.SkippedEvent{{Name: "Late show", Date: "2024-01-02", Start: "23:00"}}, resp.SkippedEvents)
}

func TestPlannerServicePersistSync(t *testing.T) {
	f := newPlannerFixture(t, PlannerOptions{})
	f.cache.items[DayViewKey(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))] = []byte(`[]`)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	req := weekRequest()
	req.Persist = true
	resp, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, dto.PersistModeSync, resp.PersistMode)

	names := make([]string, 0, len(f.activities.created))
	for _, a := range f.activities.created {
		names = append(names, a.Name)
	}
	assert.ElementsMatch(t, []string{"Sleep", "Work", "Gym"}, names)

	// 16 sleep slots a day, 16 work slots on five days, two gym slots.
	assert.Len(t, f.timetable.entries, 7*16+5*16+2)
	assert.Equal(t, "2024-01-01", f.timetable.start.Format(time.DateOnly))
	assert.Equal(t, "2024-01-07", f.timetable.end.Format(time.DateOnly))
	assert.Empty(t, f.cache.items)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlannerServicePersistRollsBack(t *testing.T) {
	f := newPlannerFixture(t, PlannerOptions{})
	f.timetable.err = errors.New("constraint violation")
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	req := weekRequest()
	req.Persist = true
	_, err := f.svc.Generate(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlannerServicePersistConflict(t *testing.T) {
	f := newPlannerFixture(t, PlannerOptions{})
	f.timetable.err = appErrors.Wrap(errors.New("duplicate key"), appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "timetable range was written concurrently")
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	req := weekRequest()
	req.Persist = true
	_, err := f.svc.Generate(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlannerServicePersistAsync(t *testing.T) {
	f := newPlannerFixture(t, PlannerOptions{PersistAsync: true})
	queue := &queueStub{}
	f.svc.UseQueue(queue)

	req := weekRequest()
	req.Persist = true
	resp, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, dto.PersistModeAsync, resp.PersistMode)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, resp.RunID, queue.jobs[0].ID)
	assert.Equal(t, PersistJobType, queue.jobs[0].Type)
	assert.Empty(t, f.activities.created)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	require.NoError(t, f.svc.PersistJob(context.Background(), queue.jobs[0]))
	assert.Len(t, f.activities.created, 3)
	require.NoError(t, f.mock.ExpectationsWereMet())

	assert.Error(t, f.svc.PersistJob(context.Background(), jobs.Job{ID: "x", Payload: "nope"}))
}

func TestPlannerServiceFallsBackWhenQueueFull(t *testing.T) {
	f := newPlannerFixture(t, PlannerOptions{PersistAsync: true})
	f.svc.UseQueue(&queueStub{err: jobs.ErrQueueFull})
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	req := weekRequest()
	req.Persist = true
	resp, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, dto.PersistModeSync, resp.PersistMode)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlannerServicePersistRequiresStorage(t *testing.T) {
	svc := NewPlannerService(nil, nil, nil, nil, nil, nil, PlannerOptions{DefaultWorkHours: 8}, nil, nil)
	req := weekRequest()
	req.Persist = true
	_, err := svc.Generate(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrPreconditionFailed)
}

func TestPlannerServiceValidation(t *testing.T) {
	f := newPlannerFixture(t, PlannerOptions{MaxRangeDays: 7, MaxTasks: 2})

	cases := map[string]func(*dto.GeneratePlanRequest){
		"end before start": func(r *dto.GeneratePlanRequest) { r.EndDate = "2023-12-31" },
		"range too long":   func(r *dto.GeneratePlanRequest) { r.EndDate = "2024-01-08" },
		"bad date":         func(r *dto.GeneratePlanRequest) { r.StartDate = "01/01/2024" },
		"bad workday":      func(r *dto.GeneratePlanRequest) { r.Workdays = []string{"mo"} },
		"too many tasks": func(r *dto.GeneratePlanRequest) {
			r.Tasks = []dto.TaskInput{{Name: "x", DurationHours: 1, Days: []string{"mon", "tue", "wed"}}}
		},
		"negative sleep": func(r *dto.GeneratePlanRequest) {
			v := -1.0
			r.SleepHours = &v
		},
	}
	for name, mutate := range cases {
		req := weekRequest()
		mutate(&req)
		_, err := f.svc.Generate(context.Background(), req)
		assert.ErrorIs(t, err, appErrors.ErrValidation, name)
	}
}

func TestParseWorkdays(t *testing.T) {
	assert.Len(t, parseWorkdays(nil), 5)
	assert.Empty(t, parseWorkdays([]string{}))
	assert.Len(t, parseWorkdays([]string{"sat", "SATURDAY", "sun"}), 2)
}
