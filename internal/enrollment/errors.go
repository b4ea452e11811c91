package enrollment

import (
	"errors"
	"fmt"
	"strings"

	"enrollrank/pkg/contracts/domain"
)

// Sentinel errors for the pipeline. Typed errors below wrap them so callers
// can use errors.Is for classification and errors.As for detail.
var (
	ErrPeriodNotFound    = errors.New("period not found")
	ErrSchemaMismatch    = errors.New("schema mismatch")
	ErrNoValidPeriods    = errors.New("no valid periods")
	ErrNoPeriodsSelected = errors.New("no periods selected")
	ErrProcessing        = errors.New("processing failed")
)

// ErrUnreadableWorkbook marks an upload that is not a valid .xlsx file.
var ErrUnreadableWorkbook = errors.New("unreadable workbook")

// PeriodNotFoundError reports a requested period with no matching sheet.
type PeriodNotFoundError struct {
	Period string
	Sheets []string
}

func (e *PeriodNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q not found in workbook", e.Period)
}

func (e *PeriodNotFoundError) Unwrap() error { return ErrPeriodNotFound }

// SchemaMismatchError reports required columns missing from a period sheet.
type SchemaMismatchError struct {
	Period  string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("sheet %q is missing required columns: %s", e.Period, strings.Join(e.Missing, ", "))
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }

// NoValidPeriodsError is returned when every requested period was skipped.
type NoValidPeriodsError struct {
	Failures []domain.PeriodFailure
}

func (e *NoValidPeriodsError) Error() string {
	if len(e.Failures) == 0 {
		return "no valid sheets found"
	}
	periods := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		periods[i] = f.Period
	}
	return fmt.Sprintf("no valid sheets found (skipped: %s)", strings.Join(periods, ", "))
}

func (e *NoValidPeriodsError) Unwrap() error { return ErrNoValidPeriods }

// failureFromError converts a recoverable load error into a PeriodFailure.
// It reports false for errors that must abort the run.
func failureFromError(period string, err error) (domain.PeriodFailure, bool) {
	switch {
	case errors.Is(err, ErrPeriodNotFound):
		return domain.PeriodFailure{Period: period, Kind: domain.FailurePeriodNotFound, Message: err.Error()}, true
	case errors.Is(err, ErrSchemaMismatch):
		return domain.PeriodFailure{Period: period, Kind: domain.FailureSchemaMismatch, Message: err.Error()}, true
	default:
		return domain.PeriodFailure{}, false
	}
}
