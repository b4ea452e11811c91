package enrollment

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"enrollrank/pkg/contracts/domain"
)

// headerScanRows bounds how far down a sheet the header row is searched for.
const headerScanRows = 10

// LoadPeriod reads the sheet for period and projects the composite key
// columns plus the enrollment column, renamed to the period's measure column.
func LoadPeriod(wb Workbook, period string) (*domain.PeriodTable, error) {
	sheet, ok := findSheet(wb, period)
	if !ok {
		return nil, &PeriodNotFoundError{Period: period, Sheets: wb.SheetList()}
	}

	rows, err := wb.Rows(sheet)
	if err != nil {
		return nil, err
	}

	headerIdx, columns, missing := locateHeader(rows)
	if len(missing) > 0 {
		return nil, &SchemaMismatchError{Period: period, Missing: missing}
	}

	table := &domain.PeriodTable{
		Period: period,
		Column: domain.MeasureColumn(period),
		Rows:   make([]domain.PeriodRow, 0, len(rows)-headerIdx-1),
	}
	for _, row := range rows[headerIdx+1:] {
		key := domain.CompositeKey{
			Institution:      cell(row, columns[domain.ColumnInstitution]),
			Unit:             cell(row, columns[domain.ColumnUnit]),
			CourseType:       cell(row, columns[domain.ColumnCourseType]),
			CourseName:       cell(row, columns[domain.ColumnCourseName]),
			OfferingType:     cell(row, columns[domain.ColumnOfferingType]),
			TeachingModality: cell(row, columns[domain.ColumnTeachingModality]),
		}
		raw := cell(row, columns[domain.ColumnEnrollments])
		if key.IsZero() && strings.TrimSpace(raw) == "" {
			continue
		}
		table.Rows = append(table.Rows, domain.PeriodRow{
			Key:     key,
			Raw:     raw,
			Present: strings.TrimSpace(raw) != "",
		})
	}
	return table, nil
}

// locateHeader finds the first row within headerScanRows that carries every
// required column. When none does, missing lists the required columns absent
// from the first non-empty row, so the error names what the sheet lacks.
func locateHeader(rows [][]string) (int, map[string]int, []string) {
	var firstMissing []string
	seenNonEmpty := false
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		columns := headerIndex(rows[i])
		if len(columns) == 0 {
			continue
		}
		var missing []string
		for _, name := range domain.RequiredColumns {
			if _, ok := columns[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) == 0 {
			return i, columns, nil
		}
		if !seenNonEmpty {
			seenNonEmpty = true
			firstMissing = missing
		}
	}
	if !seenNonEmpty {
		firstMissing = append([]string{}, domain.RequiredColumns...)
	}
	return -1, nil, firstMissing
}

// headerIndex maps normalized header text to its column. The first
// occurrence of a duplicated header wins.
func headerIndex(row []string) map[string]int {
	columns := make(map[string]int)
	for j, h := range row {
		name := normalizeHeader(h)
		if name == "" {
			continue
		}
		if _, dup := columns[name]; !dup {
			columns[name] = j
		}
	}
	return columns
}

// normalizeHeader trims and composes a header so that decomposed accents
// (e.g. "c" + combining cedilla) match the canonical column names.
func normalizeHeader(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
