package exporter

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"enrollrank/pkg/contracts/domain"
)

// Format identifies a download format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
	FormatTable Format = "table"
)

// ParseFormat resolves a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}

// FileName returns the download name for a ranking in this format.
func (f Format) FileName() string {
	if f == FormatTable {
		return "ranking.txt"
	}
	return "ranking." + string(f)
}

// New returns the writer for format.
func New(format Format, logger *slog.Logger) (RankingWriter, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(logger, true), nil
	case FormatXLSX:
		return NewXLSXWriter(logger, DefaultChartRows), nil
	case FormatTable:
		return NewTableWriter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// Header returns the export header for a ranked table with the given
// measure columns.
func Header(columns []string) []string {
	header := make([]string, 0, len(columns)+len(domain.KeyColumns)+3)
	header = append(header, ColumnRank)
	header = append(header, domain.KeyColumns...)
	header = append(header, columns...)
	return append(header, ColumnTotal, ColumnLabel)
}

// Export column headers outside the key and measure columns.
const (
	ColumnRank  = "Ranking"
	ColumnTotal = "Total"
	ColumnLabel = "Identificação"
)

// formatMeasure renders a measure with the fewest digits that round-trip,
// so whole counts print without decimals.
func formatMeasure(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// record flattens a row in Header order, with n measure columns.
func record(row domain.RankedRow, n int) []string {
	fields := row.Key.Fields()
	rec := make([]string, 0, n+len(fields)+3)
	rec = append(rec, strconv.Itoa(row.Rank))
	rec = append(rec, fields[:]...)
	for i := 0; i < n; i++ {
		rec = append(rec, formatMeasure(row.Measure(i)))
	}
	return append(rec, formatMeasure(row.Total), row.Label)
}
