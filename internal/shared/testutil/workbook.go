package testutil

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a test workbook. Rows are written from A1.
type Sheet struct {
	Name string
	Rows [][]any
}

// EnrollmentHeader is the canonical header row of an enrollment sheet.
func EnrollmentHeader() []any {
	return []any{"Instituição", "Unidade", "Tipo de Curso", "Nome do Curso", "Tipo de Oferta", "Modalidade de Ensino", "Matrículas"}
}

// EnrollmentRow builds a data row under EnrollmentHeader.
func EnrollmentRow(institution, unit, courseType, course, offering, modality string, enrollments any) []any {
	return []any{institution, unit, courseType, course, offering, modality, enrollments}
}

// NewWorkbook builds an in-memory workbook with the given sheets, in order.
func NewWorkbook(t *testing.T, sheets ...Sheet) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("create sheet %q: %v", sheet.Name, err)
		}
		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
				t.Fatalf("write row %d of %q: %v", r+1, sheet.Name, err)
			}
		}
	}
	return f
}

// WorkbookBytes returns the .xlsx encoding of the given sheets.
func WorkbookBytes(t *testing.T, sheets ...Sheet) []byte {
	t.Helper()

	var buf bytes.Buffer
	if _, err := NewWorkbook(t, sheets...).WriteTo(&buf); err != nil {
		t.Fatalf("encode workbook: %v", err)
	}
	return buf.Bytes()
}

// WriteWorkbook saves the given sheets to an .xlsx file under t.TempDir.
func WriteWorkbook(t *testing.T, sheets ...Sheet) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "enrollments.xlsx")
	if err := NewWorkbook(t, sheets...).SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

// ScenarioSheets is a small two-period workbook: "2023" with two courses,
// "2022" with one of them, and "2018" lacking most required columns.
func ScenarioSheets() []Sheet {
	return []Sheet{
		{Name: "2023", Rows: [][]any{
			EnrollmentHeader(),
			EnrollmentRow("Universidade A", "Campus Centro", "Bacharelado", "Direito", "Regular", "Presencial", 150),
			EnrollmentRow("Instituto B", "Campus Norte", "Tecnológico", "Redes", "Regular", "EaD", 50),
		}},
		{Name: "2022", Rows: [][]any{
			EnrollmentHeader(),
			EnrollmentRow("Universidade A", "Campus Centro", "Bacharelado", "Direito", "Regular", "Presencial", 100),
		}},
		{Name: "2018", Rows: [][]any{
			{"Instituição", "Matrículas"},
			{"Universidade A", 10},
		}},
	}
}
