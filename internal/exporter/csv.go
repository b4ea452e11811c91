package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"enrollrank/pkg/contracts/domain"
)

// RankingWriter writes ranked rows with their measure columns to w.
type RankingWriter interface {
	Write(w io.Writer, columns []string, rows []domain.RankedRow) error
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger    *slog.Logger
	bomPrefix bool
}

// NewCSVWriter creates a CSV writer. bomPrefix adds a UTF-8 BOM for Excel.
func NewCSVWriter(logger *slog.Logger, bomPrefix bool) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger, bomPrefix: bomPrefix}
}

// Write writes the header and one record per row.
func (c *CSVWriter) Write(w io.Writer, columns []string, rows []domain.RankedRow) error {
	c.logger.Info("Writing CSV export",
		slog.Int("record_count", len(rows)),
		slog.Int("measure_columns", len(columns)))

	stream, err := NewStreamWriter(w, Header(columns), c.bomPrefix)
	if err != nil {
		return err
	}
	for i, row := range rows {
		if err := stream.WriteRecord(csvRecord(row, len(columns))); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return stream.Close()
}

// formulaTriggers start a cell that spreadsheet tools evaluate as a formula.
const formulaTriggers = "=+-@\t\r"

// csvRecord is record with the text cells taken from the upload quoted
// against formula evaluation. Measures stay numeric.
func csvRecord(row domain.RankedRow, n int) []string {
	rec := record(row, n)
	for i := 1; i <= len(domain.KeyColumns); i++ {
		rec[i] = escapeFormula(rec[i])
	}
	rec[len(rec)-1] = escapeFormula(rec[len(rec)-1])
	return rec
}

func escapeFormula(s string) string {
	if s != "" && strings.IndexByte(formulaTriggers, s[0]) >= 0 {
		return "'" + s
	}
	return s
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	writer *csv.Writer
}

// NewStreamWriter writes the optional BOM and headers to w.
func NewStreamWriter(w io.Writer, headers []string, bomPrefix bool) (*StreamWriter, error) {
	if bomPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes the stream. The underlying writer is left open.
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	return s.writer.Error()
}
