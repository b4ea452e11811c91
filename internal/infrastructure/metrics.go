package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics are the request instruments updated by the HTTP middleware.
type HTTPMetrics struct {
	RequestsTotal   metric.Int64Counter
	RequestDuration metric.Float64Histogram
	ActiveRequests  metric.Int64UpDownCounter
}

// CreateHTTPMetrics registers the HTTP instruments on meter.
func CreateHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		RequestsTotal:   requestsTotal,
		RequestDuration: requestDuration,
		ActiveRequests:  activeRequests,
	}, nil
}

// PipelineMetrics are the ranking pipeline instruments. All methods accept
// a nil receiver.
type PipelineMetrics struct {
	runsTotal      metric.Int64Counter
	runDuration    metric.Float64Histogram
	periodsLoaded  metric.Int64Counter
	periodsSkipped metric.Int64Counter
	periods        map[string]struct{}
}

// OtherPeriod labels period loads outside the configured period set.
const OtherPeriod = "other"

// CreatePipelineMetrics registers the pipeline instruments on meter. Only
// the given periods are recorded under their own label; any other period
// is recorded as OtherPeriod.
func CreatePipelineMetrics(meter metric.Meter, periods []string) (*PipelineMetrics, error) {
	runsTotal, err := meter.Int64Counter(
		"enrollment_pipeline_runs_total",
		metric.WithDescription("Total number of ranking pipeline runs"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"enrollment_pipeline_duration_seconds",
		metric.WithDescription("Ranking pipeline duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	periodsLoaded, err := meter.Int64Counter(
		"enrollment_periods_loaded_total",
		metric.WithDescription("Total number of period sheets loaded"),
	)
	if err != nil {
		return nil, err
	}

	periodsSkipped, err := meter.Int64Counter(
		"enrollment_periods_skipped_total",
		metric.WithDescription("Total number of period sheets skipped"),
	)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(periods))
	for _, period := range periods {
		known[period] = struct{}{}
	}

	return &PipelineMetrics{
		runsTotal:      runsTotal,
		runDuration:    runDuration,
		periodsLoaded:  periodsLoaded,
		periodsSkipped: periodsSkipped,
		periods:        known,
	}, nil
}

// RecordRun counts one pipeline run and its duration.
func (m *PipelineMetrics) RecordRun(ctx context.Context, d time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", statusOf(err)))
	m.runsTotal.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordPeriodLoad counts one period load attempt.
func (m *PipelineMetrics) RecordPeriodLoad(ctx context.Context, period string, err error) {
	if m == nil {
		return
	}
	if _, ok := m.periods[period]; !ok {
		period = OtherPeriod
	}
	if err == nil {
		m.periodsLoaded.Add(ctx, 1, metric.WithAttributes(attribute.String("period", period)))
		return
	}
	m.periodsSkipped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("period", period),
		attribute.String("error.type", fmt.Sprintf("%T", err)),
	))
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "failure"
	}
}
