package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ismart-schedule-api/internal/dto"
	appErrors "github.com/noah-isme/ismart-schedule-api/pkg/errors"
)

type planGeneratorMock struct {
	captured dto.GeneratePlanRequest
	resp     *dto.GeneratePlanResponse
	err      error
}

func (m *planGeneratorMock) Generate(_ context.Context, req dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error) {
	m.captured = req
	return m.resp, m.err
}

func postJSON(handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, "/plans/generate", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	handler(c)
	return w
}

func TestPlannerHandlerGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &planGeneratorMock{resp: &dto.GeneratePlanResponse{RunID: "run-1", PersistMode: dto.PersistModeNone}}
	h := &PlannerHandler{service: mockSvc}

	w := postJSON(h.Generate, `{"startDate":"2024-01-01","endDate":"2024-01-07","tasks":[{"name":"Gym","durationHours":1,"preferredTime":"evening"}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-01-07", mockSvc.captured.EndDate)
	require.Len(t, mockSvc.captured.Tasks, 1)
	assert.Equal(t, "evening", mockSvc.captured.Tasks[0].PreferredTime)

	var body struct {
		Data dto.GeneratePlanResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.Data.RunID)
}

func TestPlannerHandlerGenerateAsyncAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &PlannerHandler{service: &planGeneratorMock{resp: &dto.GeneratePlanResponse{PersistMode: dto.PersistModeAsync}}}

	w := postJSON(h.Generate, `{"startDate":"2024-01-01","endDate":"2024-01-01","persist":true}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestPlannerHandlerGenerateErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &PlannerHandler{service: &planGeneratorMock{}}
	w := postJSON(h.Generate, `{"startDate":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h = &PlannerHandler{service: &planGeneratorMock{err: appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")}}
	w = postJSON(h.Generate, `{"startDate":"2024-01-02","endDate":"2024-01-01"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}
