package enrollment

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollrank/internal/shared/testutil"
)

func TestExcelWorkbook_LoadsNumericCellsRaw(t *testing.T) {
	data := testutil.WorkbookBytes(t,
		testutil.Sheet{Name: "2023", Rows: [][]any{
			testutil.EnrollmentHeader(),
			testutil.EnrollmentRow("UF A", "Campus 1", "Bacharelado", "Direito", "Presencial", "Presencial", 1200),
			testutil.EnrollmentRow("UF B", "Campus 2", "Licenciatura", "Letras", "EAD", "EAD", 12.5),
			testutil.EnrollmentRow("UF C", "Campus 3", "Tecnológico", "Redes", "EAD", "EAD", "sem dado"),
		}},
		testutil.Sheet{Name: "2022", Rows: [][]any{testutil.EnrollmentHeader()}},
	)

	wb, err := OpenWorkbook(bytes.NewReader(data), 0)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"2023", "2022"}, wb.SheetList())

	table, err := LoadPeriod(wb, "2023")
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "1200", table.Rows[0].Raw)
	assert.Equal(t, "12.5", table.Rows[1].Raw)
	assert.Equal(t, "sem dado", table.Rows[2].Raw)
	assert.Equal(t, "Tecnológico", table.Rows[2].Key.CourseType)
}

func TestOpenWorkbookFile(t *testing.T) {
	path := testutil.WriteWorkbook(t, testutil.Sheet{Name: "2021", Rows: [][]any{
		testutil.EnrollmentHeader(),
		testutil.EnrollmentRow("A", "B", "C", "D", "E", "F", 3),
	}})

	wb, err := OpenWorkbookFile(path)
	require.NoError(t, err)
	defer wb.Close()

	table, err := LoadPeriod(wb, "2021")
	require.NoError(t, err)
	assert.Equal(t, keyA, table.Rows[0].Key)
}

func TestOpenWorkbook_Unreadable(t *testing.T) {
	_, err := OpenWorkbook(bytes.NewReader([]byte("not a spreadsheet")), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreadableWorkbook))

	_, err = OpenWorkbookFile("/nonexistent/enrollments.xlsx")
	assert.True(t, errors.Is(err, ErrUnreadableWorkbook))
}
