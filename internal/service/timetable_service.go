package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/ismart-schedule-api/internal/dto"
	"github.com/noah-isme/ismart-schedule-api/internal/models"
	"github.com/noah-isme/ismart-schedule-api/internal/planner"
	appErrors "github.com/noah-isme/ismart-schedule-api/pkg/errors"
)

type timetableStore interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.TimetableEntryView, error)
	ListDates(ctx context.Context) ([]time.Time, error)
	DeleteRange(ctx context.Context, exec sqlx.ExtContext, start, end time.Time) (int64, error)
}

// TimetableService serves stored timetables.
type TimetableService struct {
	repo      timetableStore
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs the service.
func NewTimetableService(repo timetableStore, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		validator: withPlannerValidations(validate),
		logger:    logger,
	}
}

// DayView returns one stored date grouped into blocks and whether it came
// from the cache.
func (s *TimetableService) DayView(ctx context.Context, rawDate string) (*dto.DaySchedule, bool, error) {
	date, err := time.Parse(time.DateOnly, rawDate)
	if err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	key := DayViewKey(date)
	var cached dto.DaySchedule
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	start := time.Now()
	entries, err := s.repo.ListByDate(ctx, date)
	s.metrics.ObserveDBQuery("timetable_by_date", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if len(entries) == 0 {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "no timetable stored for "+rawDate)
	}

	view := daySchedule(date, groupEntries(entries))
	s.cache.Set(ctx, key, view, 0)
	return &view, false, nil
}

// Dates lists every date with stored entries.
func (s *TimetableService) Dates(ctx context.Context) ([]string, error) {
	start := time.Now()
	dates, err := s.repo.ListDates(ctx)
	s.metrics.ObserveDBQuery("timetable_dates", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable dates")
	}
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(time.DateOnly))
	}
	return out, nil
}

// DeleteRange removes stored entries dated within the query range.
func (s *TimetableService) DeleteRange(ctx context.Context, query dto.DateRangeQuery) (*dto.DeleteRangeResponse, error) {
	start, end, err := s.parseRange(query.Start, query.End)
	if err != nil {
		return nil, err
	}
	deleted, err := s.repo.DeleteRange(ctx, nil, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable range")
	}
	if cacheErr := s.cache.InvalidateDayViews(ctx); cacheErr != nil {
		s.logger.Warn("day view invalidation failed", zap.Error(cacheErr))
	}
	s.logger.Info("timetable range deleted",
		zap.String("start", query.Start),
		zap.String("end", query.End),
		zap.Int64("entries", deleted),
	)
	return &dto.DeleteRangeResponse{Deleted: deleted}, nil
}

func (s *TimetableService) parseRange(rawStart, rawEnd string) (time.Time, time.Time, error) {
	if err := s.validator.Struct(dto.DateRangeQuery{Start: rawStart, End: rawEnd}); err != nil {
		return time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "start and end must be YYYY-MM-DD")
	}
	return parseDateRange(rawStart, rawEnd)
}

func parseDateRange(rawStart, rawEnd string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "start must be YYYY-MM-DD")
	}
	end, err := time.Parse(time.DateOnly, rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "end must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "end must not be before start")
	}
	return start, end, nil
}

// groupEntries rebuilds one date's slot labels from stored rows and merges
// them the same way the scheduler output is merged.
func groupEntries(entries []models.TimetableEntryView) []planner.Block {
	labels := make([]planner.SlotLabel, planner.SlotsPerDay)
	for _, e := range entries {
		if e.Slot < 0 || e.Slot >= planner.SlotsPerDay {
			continue
		}
		labels[e.Slot] = planner.SlotLabel{Name: e.ActivityName, Kind: planner.Kind(e.ActivityType)}
	}
	return planner.GroupSlots(labels)
}
