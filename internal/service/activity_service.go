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

type activityStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, activity *models.Activity) error
	List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error)
}

// ActivityService manages stored activity definitions.
type ActivityService struct {
	repo      activityStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityService constructs the service.
func NewActivityService(repo activityStore, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, validator: withPlannerValidations(validate), logger: logger}
}

// Create validates and stores an activity.
func (s *ActivityService) Create(ctx context.Context, req dto.CreateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	activity := &models.Activity{
		Name:          req.Name,
		Type:          models.ActivityType(req.Type),
		DurationSlots: planner.SlotsForHours(req.DurationHours),
		PreferredTime: string(planner.PreferAny),
	}
	switch activity.Type {
	case models.ActivityTypeEvent:
		date, err := time.Parse(time.DateOnly, req.EventDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "eventDate must be YYYY-MM-DD")
		}
		start, err := planner.ParseClock(req.Start)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "start must be HH:MM")
		}
		activity.EventDate = &date
		activity.StartSlot = &start
	case models.ActivityTypeTask:
		if req.TargetDay != "" {
			day, _ := planner.ParseWeekday(req.TargetDay)
			target := int(day)
			activity.TargetDay = &target
		}
		activity.PreferredTime = string(planner.ParsePreferredTime(req.PreferredTime))
	}

	if err := s.repo.Create(ctx, nil, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store activity")
	}
	s.logger.Info("activity stored", zap.Int64("id", activity.ID), zap.String("type", string(activity.Type)))
	return activity, nil
}

// List returns a page of stored activities.
func (s *ActivityService) List(ctx context.Context, query dto.ActivityQuery) ([]models.Activity, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity query")
	}
	filter := models.ActivityFilter{Type: models.ActivityType(query.Type), Page: query.Page, PageSize: query.PageSize}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	if items == nil {
		items = []models.Activity{}
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}
