package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ismart-schedule-api/internal/dto"
	"github.com/noah-isme/ismart-schedule-api/internal/service"
	appErrors "github.com/noah-isme/ismart-schedule-api/pkg/errors"
	"github.com/noah-isme/ismart-schedule-api/pkg/response"
)

type planGenerator interface {
	Generate(ctx context.Context, req dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error)
}

// PlannerHandler exposes schedule generation.
type PlannerHandler struct {
	service planGenerator
}

// NewPlannerHandler constructs the handler.
func NewPlannerHandler(svc *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{service: svc}
}

// Generate godoc
// @Summary Generate a timetable for a date range
// @Description Places events, sleep, work and flexible tasks into 30 minute slots. Tasks that find no room are listed under unscheduled. With persist=true the result replaces the stored timetable for the range; queued writes answer 202.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.GeneratePlanRequest true "Plan request"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /plans/generate [post]
func (h *PlannerHandler) Generate(c *gin.Context) {
	var req dto.GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid plan payload"))
		return
	}
	plan, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if plan.PersistMode == dto.PersistModeAsync {
		response.Accepted(c, plan)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}
