package exporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"enrollrank/internal/analytics"
	"enrollrank/pkg/contracts/domain"
)

// TableWriter renders an aligned plain-text table with grouped thousands.
type TableWriter struct{}

// NewTableWriter creates a TableWriter.
func NewTableWriter() *TableWriter {
	return &TableWriter{}
}

// Write prints rank, label, measures and total, one row per line.
func (TableWriter) Write(w io.Writer, columns []string, rows []domain.RankedRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)

	header := append([]string{ColumnRank, ColumnLabel}, columns...)
	header = append(header, ColumnTotal)
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")+"\t"); err != nil {
		return err
	}

	for _, row := range rows {
		cells := make([]string, 0, len(columns)+3)
		cells = append(cells, strconv.Itoa(row.Rank), row.Label)
		for i := range columns {
			cells = append(cells, analytics.FormatThousands(row.Measure(i)))
		}
		cells = append(cells, analytics.FormatThousands(row.Total))
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t"); err != nil {
			return err
		}
	}
	return tw.Flush()
}
