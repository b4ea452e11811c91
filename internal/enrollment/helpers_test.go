package enrollment

import (
	"errors"
	"fmt"

	"enrollrank/pkg/contracts/domain"
)

// memWorkbook is an in-memory Workbook keyed by sheet name.
type memWorkbook struct {
	order  []string
	sheets map[string][][]string
	err    error
}

func newMemWorkbook() *memWorkbook {
	return &memWorkbook{sheets: make(map[string][][]string)}
}

func (w *memWorkbook) add(name string, rows ...[]string) *memWorkbook {
	if _, ok := w.sheets[name]; !ok {
		w.order = append(w.order, name)
	}
	w.sheets[name] = rows
	return w
}

func (w *memWorkbook) SheetList() []string { return w.order }

func (w *memWorkbook) Rows(sheet string) ([][]string, error) {
	if w.err != nil {
		return nil, w.err
	}
	rows, ok := w.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: no sheet %q", ErrProcessing, sheet)
	}
	return rows, nil
}

var errBrokenSheet = errors.New("broken sheet")

func header() []string {
	return append([]string{}, domain.RequiredColumns...)
}

func row(inst, unit, ctype, course, offer, mode, value string) []string {
	return []string{inst, unit, ctype, course, offer, mode, value}
}

func key(inst, unit, ctype, course, offer, mode string) domain.CompositeKey {
	return domain.CompositeKey{
		Institution:      inst,
		Unit:             unit,
		CourseType:       ctype,
		CourseName:       course,
		OfferingType:     offer,
		TeachingModality: mode,
	}
}

func periodTable(period string, rows ...domain.PeriodRow) *domain.PeriodTable {
	return &domain.PeriodTable{Period: period, Column: domain.MeasureColumn(period), Rows: rows}
}

func prow(k domain.CompositeKey, raw string) domain.PeriodRow {
	return domain.PeriodRow{Key: k, Raw: raw, Present: raw != ""}
}

var (
	keyA = key("A", "B", "C", "D", "E", "F")
	keyG = key("G", "H", "I", "J", "K", "L")
	keyM = key("M", "N", "O", "P", "Q", "R")
)
