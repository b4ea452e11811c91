package enrollment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"enrollrank/internal/infrastructure"
	"enrollrank/pkg/contracts/domain"
)

const tracerName = "enrollrank/enrollment"

// Result is the outcome of a successful run.
type Result struct {
	Table   *domain.RankedTable    `json:"table"`
	Loaded  []string               `json:"loaded"`
	Skipped []domain.PeriodFailure `json:"skipped,omitempty"`
}

// Pipeline drives the loader over each requested period and merges the
// periods that loaded. It holds no per-run state and is safe for
// concurrent use.
type Pipeline struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTracer sets the tracer used for run and load spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

// WithMetrics sets the instruments updated by each run.
func WithMetrics(m *infrastructure.PipelineMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline creates a pipeline. A nil logger falls back to slog.Default.
func NewPipeline(logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		logger: logger.With(slog.String("component", "enrollment_pipeline")),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run loads every requested period from wb and merges those that succeed.
// Missing sheets and schema mismatches are recorded in Result.Skipped;
// if nothing loads, a *NoValidPeriodsError is returned.
func (p *Pipeline) Run(ctx context.Context, wb Workbook, periods []string) (result *Result, err error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "enrollment.pipeline",
		trace.WithAttributes(attribute.StringSlice("enrollment.periods.requested", periods)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		p.metrics.RecordRun(ctx, time.Since(start), err)
	}()

	periods = dedupe(periods)
	if len(periods) == 0 {
		p.logger.WarnContext(ctx, "no periods selected")
		return nil, ErrNoPeriodsSelected
	}

	var (
		tables   []*domain.PeriodTable
		loaded   []string
		failures []domain.PeriodFailure
	)
	for _, period := range periods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := p.load(ctx, wb, period)
		if err != nil {
			failure, ok := failureFromError(period, err)
			if !ok {
				return nil, processingError(err)
			}
			p.logger.WarnContext(ctx, "skipping period",
				slog.String("period", period),
				slog.String("kind", string(failure.Kind)),
				slog.String("error", err.Error()))
			failures = append(failures, failure)
			continue
		}
		tables = append(tables, table)
		loaded = append(loaded, period)
	}

	if len(tables) == 0 {
		p.logger.ErrorContext(ctx, "no valid periods loaded",
			slog.Int("requested", len(periods)))
		return nil, &NoValidPeriodsError{Failures: failures}
	}

	table, err := Merge(tables)
	if err != nil {
		return nil, processingError(err)
	}

	span.SetAttributes(
		attribute.StringSlice("enrollment.periods.loaded", loaded),
		attribute.Int("enrollment.rows", table.Len()),
	)
	p.logger.InfoContext(ctx, "ranking computed",
		slog.Any("loaded", loaded),
		slog.Int("skipped", len(failures)),
		slog.Int("rows", table.Len()),
		slog.Duration("duration", time.Since(start)))

	return &Result{Table: table, Loaded: loaded, Skipped: failures}, nil
}

func (p *Pipeline) load(ctx context.Context, wb Workbook, period string) (*domain.PeriodTable, error) {
	ctx, span := p.tracer.Start(ctx, "enrollment.load_period",
		trace.WithAttributes(attribute.String("enrollment.period", period)))
	defer span.End()

	table, err := LoadPeriod(wb, period)
	p.metrics.RecordPeriodLoad(ctx, period, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("enrollment.rows", len(table.Rows)))
	p.logger.DebugContext(ctx, "period loaded",
		slog.String("period", period),
		slog.String("column", table.Column),
		slog.Int("rows", len(table.Rows)))
	return table, nil
}

// processingError tags unexpected failures with ErrProcessing once.
func processingError(err error) error {
	if errors.Is(err, ErrProcessing) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrProcessing, err)
}

func dedupe(periods []string) []string {
	seen := make(map[string]struct{}, len(periods))
	out := make([]string, 0, len(periods))
	for _, p := range periods {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
