package enrollment

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook is a read-only multi-sheet tabular source.
type Workbook interface {
	SheetList() []string
	Rows(sheet string) ([][]string, error)
}

// ExcelWorkbook reads sheets from an .xlsx file with excelize.
type ExcelWorkbook struct {
	file *excelize.File
}

// OpenWorkbook parses an .xlsx document from r. unzipLimit caps the
// decompressed size excelize will accept; zero keeps the library default.
func OpenWorkbook(r io.Reader, unzipLimit int64) (*ExcelWorkbook, error) {
	opts := excelize.Options{}
	if unzipLimit > 0 {
		opts.UnzipSizeLimit = unzipLimit
	}
	f, err := excelize.OpenReader(r, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	return &ExcelWorkbook{file: f}, nil
}

// OpenWorkbookFile opens an .xlsx file from disk.
func OpenWorkbookFile(path string) (*ExcelWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	return &ExcelWorkbook{file: f}, nil
}

// SheetList returns sheet names in workbook order.
func (w *ExcelWorkbook) SheetList() []string {
	return w.file.GetSheetList()
}

// Rows returns every row of sheet with raw (unformatted) cell values, so
// numeric cells keep their stored value rather than a display format.
func (w *ExcelWorkbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %v", ErrProcessing, sheet, err)
	}
	return rows, nil
}

// Close releases the temporary files excelize may hold.
func (w *ExcelWorkbook) Close() error {
	return w.file.Close()
}

// findSheet resolves a period identifier to a sheet name. An exact match wins;
// otherwise a sheet whose trimmed name equals the trimmed period is accepted.
func findSheet(wb Workbook, period string) (string, bool) {
	sheets := wb.SheetList()
	for _, name := range sheets {
		if name == period {
			return name, true
		}
	}
	want := strings.TrimSpace(period)
	for _, name := range sheets {
		if strings.TrimSpace(name) == want {
			return name, true
		}
	}
	return "", false
}
