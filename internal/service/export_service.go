package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/ismart-schedule-api/internal/dto"
	"github.com/noah-isme/ismart-schedule-api/internal/models"
	"github.com/noah-isme/ismart-schedule-api/internal/planner"
	appErrors "github.com/noah-isme/ismart-schedule-api/pkg/errors"
	"github.com/noah-isme/ismart-schedule-api/pkg/export"
	"github.com/noah-isme/ismart-schedule-api/pkg/storage"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var exportHeaders = []string{"Date", "Weekday", "Start", "End", "Activity", "Type"}

type timetableRangeReader interface {
	ListRange(ctx context.Context, start, end time.Time) ([]models.TimetableEntryView, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportOptions tunes export behaviour.
type ExportOptions struct {
	Title     string
	APIPrefix string
	// ResultTTL is how long stored files survive cleanup.
	ResultTTL time.Duration
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders stored timetables as CSV or PDF and optionally keeps
// the rendered file behind a signed download link.
type ExportService struct {
	repo    timetableRangeReader
	storage fileStorage
	signer  *storage.SignedURLSigner
	csv     csvRenderer
	pdf     pdfRenderer
	metrics *MetricsService
	logger  *zap.Logger
	opts    ExportOptions
}

// NewExportService constructs an ExportService. Storage and signer may be nil,
// which disables stored links.
func NewExportService(repo timetableRangeReader, files fileStorage, signer *storage.SignedURLSigner, opts ExportOptions, metrics *MetricsService, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Title == "" {
		opts.Title = "Timetable"
	}
	if opts.ResultTTL <= 0 {
		opts.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		repo:    repo,
		storage: files,
		signer:  signer,
		csv:     csv,
		pdf:     pdf,
		metrics: metrics,
		logger:  logger,
		opts:    opts,
	}
}

// Render builds the export for the query range.
func (s *ExportService) Render(ctx context.Context, query dto.ExportQuery) (*ExportFile, error) {
	start, end, err := parseDateRange(query.Start, query.End)
	if err != nil {
		return nil, err
	}
	format := strings.ToLower(query.Format)
	if format == "" {
		format = ExportFormatCSV
	}

	entries, err := s.repo.ListRange(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable range")
	}
	if len(entries) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable stored in range")
	}
	dataset := buildExportDataset(entries)

	file := &ExportFile{Filename: fmt.Sprintf("timetable_%s_%s.%s", query.Start, query.End, format)}
	switch format {
	case ExportFormatCSV:
		file.ContentType = "text/csv"
		file.Data, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		file.ContentType = "application/pdf"
		file.Data, err = s.pdf.Render(dataset, fmt.Sprintf("%s %s to %s", s.opts.Title, query.Start, query.End))
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.metrics.RecordExport(format)
	return file, nil
}

// Store renders the export, saves it and returns a signed download link.
func (s *ExportService) Store(ctx context.Context, query dto.ExportQuery) (*dto.ExportLinkResponse, error) {
	if s.storage == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "export storage is not configured")
	}
	file, err := s.Render(ctx, query)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	relPath, err := s.storage.Save(path.Join(id, file.Filename), file.Data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}

	prefix := strings.TrimRight(s.opts.APIPrefix, "/")
	s.logger.Info("export stored", zap.String("export_id", id), zap.String("path", relPath))
	return &dto.ExportLinkResponse{
		ExportID:  id,
		URL:       fmt.Sprintf("%s/exports/%s", prefix, token),
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// Open resolves a download token to the stored file and its download name.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	if s.storage == nil || s.signer == nil {
		return nil, "", appErrors.Clone(appErrors.ErrPreconditionFailed, "export storage is not configured")
	}
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "download link expired")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download link")
	}
	f, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export no longer available")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	return f, path.Base(relPath), nil
}

// Cleanup removes stored exports older than the configured TTL.
func (s *ExportService) Cleanup() ([]string, error) {
	if s.storage == nil {
		return nil, nil
	}
	return s.storage.CleanupOlderThan(s.opts.ResultTTL)
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *ExportService) RunCleanup(ctx context.Context, interval time.Duration) {
	if s.storage == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Cleanup()
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
			}
		}
	}
}

// buildExportDataset emits one row per occupied block, dates ascending.
// Entries must be ordered by date then slot.
func buildExportDataset(entries []models.TimetableEntryView) export.Dataset {
	data := export.Dataset{Headers: exportHeaders}
	for from := 0; from < len(entries); {
		date := entries[from].EntryDate
		to := from
		for to < len(entries) && entries[to].EntryDate.Equal(date) {
			to++
		}
		for _, b := range groupEntries(entries[from:to]) {
			if b.Free() {
				continue
			}
			data.Rows = append(data.Rows, []string{
				date.Format(time.DateOnly),
				planner.WeekdayOf(date).String(),
				b.Start(),
				b.End(),
				b.Name,
				string(b.Kind),
			})
		}
		from = to
	}
	return data
}
