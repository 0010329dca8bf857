package handler

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ismart-schedule-api/internal/dto"
	"github.com/noah-isme/ismart-schedule-api/internal/middleware"
	"github.com/noah-isme/ismart-schedule-api/internal/service"
	appErrors "github.com/noah-isme/ismart-schedule-api/pkg/errors"
	"github.com/noah-isme/ismart-schedule-api/pkg/response"
)

type timetableReader interface {
	DayView(ctx context.Context, date string) (*dto.DaySchedule, bool, error)
	Dates(ctx context.Context) ([]string, error)
	DeleteRange(ctx context.Context, query dto.DateRangeQuery) (*dto.DeleteRangeResponse, error)
}

type timetableExporter interface {
	Render(ctx context.Context, query dto.ExportQuery) (*service.ExportFile, error)
	Store(ctx context.Context, query dto.ExportQuery) (*dto.ExportLinkResponse, error)
	Open(token string) (*os.File, string, error)
}

// TimetableHandler serves stored timetables and their exports.
type TimetableHandler struct {
	timetable timetableReader
	exports   timetableExporter
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(timetable *service.TimetableService, exports *service.ExportService) *TimetableHandler {
	return &TimetableHandler{timetable: timetable, exports: exports}
}

// Dates godoc
// @Summary List dates with a stored timetable
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/dates [get]
func (h *TimetableHandler) Dates(c *gin.Context) {
	dates, err := h.timetable.Dates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dates, nil)
}

// Day godoc
// @Summary Get one stored day grouped into blocks
// @Tags Timetable
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/{date} [get]
func (h *TimetableHandler) Day(c *gin.Context) {
	view, cacheHit, err := h.timetable.DayView(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// DeleteRange godoc
// @Summary Delete stored entries within a date range
// @Tags Timetable
// @Produce json
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /timetable [delete]
func (h *TimetableHandler) DeleteRange(c *gin.Context) {
	var query dto.DateRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid range"))
		return
	}
	result, err := h.timetable.DeleteRange(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Download a stored range as CSV or PDF
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} binary
// @Router /timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.exports.Render(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// CreateExportLink godoc
// @Summary Store an export and return a signed download link
// @Tags Timetable
// @Produce json
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 201 {object} response.Envelope
// @Router /timetable/exports [post]
func (h *TimetableHandler) CreateExportLink(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	link, err := h.exports.Store(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Download godoc
// @Summary Download a stored export via signed token
// @Tags Timetable
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *TimetableHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	f, name, err := h.exports.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer f.Close() //nolint:errcheck

	size := int64(-1)
	if info, statErr := f.Stat(); statErr == nil {
		size = info.Size()
	}
	response.AttachmentFromReader(c, name, contentTypeFor(name), size, f)
}

func contentTypeFor(name string) string {
	switch {
	case strings.HasSuffix(name, ".csv"):
		return "text/csv"
	case strings.HasSuffix(name, ".pdf"):
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
