package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"enrollrank/pkg/contracts/domain"
)

// Sheet names of the exported workbook.
const (
	SheetRanking = "Ranking"
	SheetChart   = "Top"
)

// DefaultChartRows is the number of leading rows charted in the export.
const DefaultChartRows = 20

// XLSXWriter exports a ranked view as an Excel workbook: the rows on one
// sheet and a bar chart of the leading totals on another.
type XLSXWriter struct {
	logger    *slog.Logger
	chartRows int
}

// NewXLSXWriter creates a workbook writer charting up to chartRows rows.
func NewXLSXWriter(logger *slog.Logger, chartRows int) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger, chartRows: chartRows}
}

// Write builds the workbook and writes it to w.
func (x *XLSXWriter) Write(w io.Writer, columns []string, rows []domain.RankedRow) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			x.logger.Warn("failed to close workbook", slog.String("error", err.Error()))
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetRanking); err != nil {
		return fmt.Errorf("failed to name ranking sheet: %w", err)
	}
	if err := writeRankingSheet(f, columns, rows); err != nil {
		return err
	}

	charted := min(x.chartRows, len(rows))
	if charted > 0 {
		if err := addTopChart(f, len(columns), charted); err != nil {
			return err
		}
	}

	x.logger.Info("Writing XLSX export",
		slog.Int("record_count", len(rows)),
		slog.Int("charted_rows", charted))

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRankingSheet(f *excelize.File, columns []string, rows []domain.RankedRow) error {
	sw, err := f.NewStreamWriter(SheetRanking)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := Header(columns)
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := sw.SetRow("A1", cells); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, rowCells(row, len(columns))); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return sw.Flush()
}

// rowCells keeps numbers numeric so the sheet can be summed and charted.
func rowCells(row domain.RankedRow, n int) []interface{} {
	fields := row.Key.Fields()
	cells := make([]interface{}, 0, n+len(fields)+3)
	cells = append(cells, row.Rank)
	for _, f := range fields {
		cells = append(cells, f)
	}
	for i := 0; i < n; i++ {
		cells = append(cells, row.Measure(i))
	}
	return append(cells, row.Total, row.Label)
}

// addTopChart charts the Total column against the label column for the
// first charted data rows of the ranking sheet.
func addTopChart(f *excelize.File, measureColumns, charted int) error {
	if _, err := f.NewSheet(SheetChart); err != nil {
		return fmt.Errorf("failed to create chart sheet: %w", err)
	}

	// Rank, six key columns and the measures precede Total.
	totalCol, err := excelize.ColumnNumberToName(measureColumns + 8)
	if err != nil {
		return err
	}
	labelCol, err := excelize.ColumnNumberToName(measureColumns + 9)
	if err != nil {
		return err
	}
	last := charted + 1

	chart := &excelize.Chart{
		Type: excelize.Bar,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$%s$1", SheetRanking, totalCol),
			Categories: fmt.Sprintf("%s!$%s$2:$%s$%d", SheetRanking, labelCol, labelCol, last),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", SheetRanking, totalCol, totalCol, last),
		}},
		Title:     []excelize.RichTextRun{{Text: fmt.Sprintf("Top %d por Total de Matrículas", charted)}},
		Legend:    excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{Width: 960, Height: 600},
	}
	if err := f.AddChart(SheetChart, "A1", chart); err != nil {
		return fmt.Errorf("failed to add chart: %w", err)
	}
	return nil
}
