package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ismart-schedule-api/internal/dto"
	"github.com/noah-isme/ismart-schedule-api/internal/service"
	appErrors "github.com/noah-isme/ismart-schedule-api/pkg/errors"
)

type timetableReaderMock struct {
	deleteQuery dto.DateRangeQuery
}

func (m *timetableReaderMock) DayView(_ context.Context, date string) (*dto.DaySchedule, bool, error) {
	if date != "2024-01-01" {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "no timetable stored for "+date)
	}
	return &dto.DaySchedule{Date: date, Weekday: "MONDAY", Blocks: []dto.BlockView{{Start: "00:00", End: "24:00", Activity: "Free time", Free: true}}}, true, nil
}

func (m *timetableReaderMock) Dates(context.Context) ([]string, error) {
	return []string{"2024-01-01"}, nil
}

func (m *timetableReaderMock) DeleteRange(_ context.Context, query dto.DateRangeQuery) (*dto.DeleteRangeResponse, error) {
	m.deleteQuery = query
	return &dto.DeleteRangeResponse{Deleted: 48}, nil
}

type exporterMock struct {
	query dto.ExportQuery
	path  string
}

func (m *exporterMock) Render(_ context.Context, query dto.ExportQuery) (*service.ExportFile, error) {
	m.query = query
	return &service.ExportFile{Filename: "timetable.csv", ContentType: "text/csv", Data: []byte("Date\n")}, nil
}

func (m *exporterMock) Store(_ context.Context, query dto.ExportQuery) (*dto.ExportLinkResponse, error) {
	m.query = query
	return &dto.ExportLinkResponse{ExportID: "e1", URL: "/api/v1/exports/tok"}, nil
}

func (m *exporterMock) Open(token string) (*os.File, string, error) {
	if token != "tok" {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	f, err := os.Open(m.path)
	return f, "timetable.pdf", err
}

func newTimetableRouter(t *testing.T) (*gin.Engine, *timetableReaderMock, *exporterMock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "timetable.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.3"), 0o644))

	reader := &timetableReaderMock{}
	exporter := &exporterMock{path: path}
	h := &TimetableHandler{timetable: reader, exports: exporter}

	router := gin.New()
	router.GET("/timetable/dates", h.Dates)
	router.GET("/timetable/export", h.Export)
	router.POST("/timetable/exports", h.CreateExportLink)
	router.GET("/timetable/:date", h.Day)
	router.DELETE("/timetable", h.DeleteRange)
	router.GET("/exports/:token", h.Download)
	return router, reader, exporter
}

func serve(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTimetableHandlerDayAndDates(t *testing.T) {
	router, _, _ := newTimetableRouter(t)

	w := serve(router, http.MethodGet, "/timetable/2024-01-01")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"weekday":"MONDAY"`)
	assert.Contains(t, w.Body.String(), `"cache_hit":true`)

	w = serve(router, http.MethodGet, "/timetable/2024-05-05")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(router, http.MethodGet, "/timetable/dates")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":["2024-01-01"]}`, w.Body.String())
}

func TestTimetableHandlerDeleteRange(t *testing.T) {
	router, reader, _ := newTimetableRouter(t)

	w := serve(router, http.MethodDelete, "/timetable?start=2024-01-01&end=2024-01-07")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.DateRangeQuery{Start: "2024-01-01", End: "2024-01-07"}, reader.deleteQuery)
	assert.JSONEq(t, `{"data":{"deleted":48}}`, w.Body.String())
}

func TestTimetableHandlerExport(t *testing.T) {
	router, _, exporter := newTimetableRouter(t)

	w := serve(router, http.MethodGet, "/timetable/export?start=2024-01-01&end=2024-01-07&format=csv")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exporter.query.Format)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="timetable.csv"`, w.Header().Get("Content-Disposition"))

	w = serve(router, http.MethodPost, "/timetable/exports?start=2024-01-01&end=2024-01-07&format=pdf")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "/api/v1/exports/tok")
}

func TestTimetableHandlerDownload(t *testing.T) {
	router, _, _ := newTimetableRouter(t)

	w := serve(router, http.MethodGet, "/exports/tok")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.3", w.Body.String())

	w = serve(router, http.MethodGet, "/exports/forged")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
