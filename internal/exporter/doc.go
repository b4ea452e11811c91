// Package exporter writes a ranked enrollment view in download formats.
//
// CSVWriter emits UTF-8 CSV with an optional BOM so spreadsheet tools detect
// the encoding. XLSXWriter builds a workbook with the ranked sheet and a
// native bar chart of the leading rows. TableWriter renders an aligned
// plain-text table for terminals.
//
// Example usage:
//
//	w, err := exporter.New(exporter.FormatCSV, logger)
//	if err != nil {
//		return err
//	}
//	err = w.Write(out, table.Columns, view.Rows)
package exporter
