package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"enrollrank/internal/analytics"
	"enrollrank/internal/config"
	"enrollrank/internal/enrollment"
	"enrollrank/internal/exporter"
	"enrollrank/pkg/contracts/domain"
)

// RankingRequest selects the periods to merge and filters the ranked view.
type RankingRequest struct {
	Periods []string `json:"periods" validate:"dive,period"`
	// MinTotal is clamped to the largest total before filtering.
	MinTotal int64 `json:"min_total" validate:"gte=0"`
	// CourseTypes nil admits every course type.
	CourseTypes []string `json:"course_types,omitempty"`
	// TopK is the number of evolution series; zero uses the default.
	TopK int `json:"top_k" validate:"gte=0,lte=20"`
}

// RankingResult is a computed ranking with its filtered view.
type RankingResult struct {
	// Periods echoes the request; Loaded lists those merged, in order.
	Periods []string               `json:"periods"`
	Loaded  []string               `json:"loaded"`
	Skipped []domain.PeriodFailure `json:"warnings,omitempty"`
	Columns []string               `json:"columns"`
	// CourseTypes lists every course type of the unfiltered table.
	CourseTypes []string        `json:"course_types"`
	MaxTotal    float64         `json:"max_total"`
	View        *analytics.View `json:"view"`
}

// Export is a ranked view rendered in a download format.
type Export struct {
	Format   exporter.Format
	FileName string
	Data     []byte
}

// RankingService runs the enrollment pipeline over uploaded workbooks.
type RankingService struct {
	pipeline *enrollment.Pipeline
	cfg      config.DashboardConfig
	logger   *slog.Logger
}

// NewRankingService creates a ranking service.
func NewRankingService(pipeline *enrollment.Pipeline, cfg config.DashboardConfig, logger *slog.Logger) *RankingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RankingService{
		pipeline: pipeline,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "ranking_service")),
	}
}

// DefaultRequest returns the request the dashboard starts from.
func (s *RankingService) DefaultRequest() RankingRequest {
	return RankingRequest{
		Periods:  append([]string(nil), s.cfg.DefaultPeriods...),
		MinTotal: s.cfg.MinTotal,
		TopK:     s.cfg.EvolutionRows,
	}
}

// Rank reads the workbook from upload, merges the requested periods and
// builds the filtered view.
func (s *RankingService) Rank(ctx context.Context, upload io.Reader, req RankingRequest) (*RankingResult, error) {
	if len(req.Periods) == 0 {
		s.logger.WarnContext(ctx, "no periods selected")
		return nil, enrollment.ErrNoPeriodsSelected
	}

	wb, err := enrollment.OpenWorkbook(upload, s.cfg.UnzipSizeLimit)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to open workbook", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := wb.Close(); err != nil {
			s.logger.WarnContext(ctx, "failed to close workbook", slog.String("error", err.Error()))
		}
	}()

	return s.RankWorkbook(ctx, wb, req)
}

// RankWorkbook is Rank over an already opened workbook.
func (s *RankingService) RankWorkbook(ctx context.Context, wb enrollment.Workbook, req RankingRequest) (*RankingResult, error) {
	result, err := s.pipeline.Run(ctx, wb, req.Periods)
	if err != nil {
		return nil, err
	}

	filter := domain.Filter{MinTotal: req.MinTotal, CourseTypes: req.CourseTypes}
	view := analytics.Build(result.Table, filter, s.options(req))

	return &RankingResult{
		Periods:     req.Periods,
		Loaded:      result.Loaded,
		Skipped:     result.Skipped,
		Columns:     result.Table.Columns,
		CourseTypes: result.Table.CourseTypes(),
		MaxTotal:    result.Table.MaxTotal(),
		View:        view,
	}, nil
}

// Export ranks the workbook and renders the filtered rows in format.
func (s *RankingService) Export(ctx context.Context, upload io.Reader, req RankingRequest, format exporter.Format) (*Export, error) {
	result, err := s.Rank(ctx, upload, req)
	if err != nil {
		return nil, err
	}

	w, err := exporter.New(format, s.logger)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := w.Write(&buf, result.Columns, result.View.Rows); err != nil {
		return nil, fmt.Errorf("%w: export %s: %v", enrollment.ErrProcessing, format, err)
	}

	s.logger.InfoContext(ctx, "ranking exported",
		slog.String("format", string(format)),
		slog.Int("rows", len(result.View.Rows)),
		slog.Int("bytes", buf.Len()))

	return &Export{Format: format, FileName: format.FileName(), Data: buf.Bytes()}, nil
}

func (s *RankingService) options(req RankingRequest) analytics.Options {
	opts := analytics.Options{
		TopN:            s.cfg.TopN,
		EvolutionRows:   s.cfg.EvolutionRows,
		DistributionTop: s.cfg.DistributionTop,
	}
	if req.TopK > 0 {
		opts.EvolutionRows = min(req.TopK, s.cfg.EvolutionMaxRows)
	}
	return opts
}
