package domain

// Source column headers as they appear in the enrollment workbook.
const (
	ColumnInstitution      = "Instituição"
	ColumnUnit             = "Unidade"
	ColumnCourseType       = "Tipo de Curso"
	ColumnCourseName       = "Nome do Curso"
	ColumnOfferingType     = "Tipo de Oferta"
	ColumnTeachingModality = "Modalidade de Ensino"
	ColumnEnrollments      = "Matrículas"
)

// MeasurePrefix prefixes every period-qualified measure column.
const MeasurePrefix = "Measure_"

// KeyColumns lists the composite key headers in key order.
var KeyColumns = []string{
	ColumnInstitution,
	ColumnUnit,
	ColumnCourseType,
	ColumnCourseName,
	ColumnOfferingType,
	ColumnTeachingModality,
}

// RequiredColumns is the full projection a period sheet must provide.
var RequiredColumns = append(append([]string{}, KeyColumns...), ColumnEnrollments)

// MeasureColumn returns the measure column name for a period.
func MeasureColumn(period string) string {
	return MeasurePrefix + period
}

// CompositeKey identifies one course offering.
type CompositeKey struct {
	Institution      string `json:"institution"`
	Unit             string `json:"unit"`
	CourseType       string `json:"course_type"`
	CourseName       string `json:"course_name"`
	OfferingType     string `json:"offering_type"`
	TeachingModality string `json:"teaching_modality"`
}

// Fields returns the key values in KeyColumns order.
func (k CompositeKey) Fields() [6]string {
	return [6]string{k.Institution, k.Unit, k.CourseType, k.CourseName, k.OfferingType, k.TeachingModality}
}

// Less orders keys lexicographically field by field.
func (k CompositeKey) Less(other CompositeKey) bool {
	a, b := k.Fields(), other.Fields()
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// IsZero reports whether every key field is empty.
func (k CompositeKey) IsZero() bool {
	return k == CompositeKey{}
}

// PeriodRow is one source row of a period sheet. Raw holds the measure cell
// exactly as read; Present is false when the cell was absent.
type PeriodRow struct {
	Key     CompositeKey `json:"key"`
	Raw     string       `json:"raw"`
	Present bool         `json:"present"`
}

// PeriodTable is the projection of one period sheet.
type PeriodTable struct {
	Period string      `json:"period"`
	Column string      `json:"column"`
	Rows   []PeriodRow `json:"rows"`
}

// RankedRow is one row of the merged table.
type RankedRow struct {
	Rank     int          `json:"rank"`
	Key      CompositeKey `json:"key"`
	Measures []float64    `json:"measures"`
	Total    float64      `json:"total"`
	Label    string       `json:"label"`
}

// Measure returns the measure for the period at index i, or 0 when out of range.
func (r RankedRow) Measure(i int) float64 {
	if i < 0 || i >= len(r.Measures) {
		return 0
	}
	return r.Measures[i]
}

// RankedTable is the merged, totalled and ranked result. Measures in each row
// are aligned with Periods. The table is never modified after construction.
type RankedTable struct {
	Periods []string    `json:"periods"`
	Columns []string    `json:"columns"`
	Rows    []RankedRow `json:"rows"`
}

// Len returns the number of rows.
func (t *RankedTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// MaxTotal returns the largest Total, or 0 for an empty table.
func (t *RankedTable) MaxTotal() float64 {
	if t.Len() == 0 {
		return 0
	}
	// Rows are ordered by Total descending.
	return t.Rows[0].Total
}

// CourseTypes returns distinct course types in first-seen order.
func (t *RankedTable) CourseTypes() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, row := range t.Rows {
		if _, ok := seen[row.Key.CourseType]; ok {
			continue
		}
		seen[row.Key.CourseType] = struct{}{}
		out = append(out, row.Key.CourseType)
	}
	return out
}

// PeriodIndex returns the position of period in Periods, or -1.
func (t *RankedTable) PeriodIndex(period string) int {
	for i, p := range t.Periods {
		if p == period {
			return i
		}
	}
	return -1
}

// Filter selects rows of a RankedTable for display.
type Filter struct {
	MinTotal    int64    `json:"min_total" validate:"gte=0"`
	CourseTypes []string `json:"course_types,omitempty"`
}

// Apply returns the rows passing the filter, in rank order. A nil CourseTypes
// slice admits every course type; an empty non-nil slice admits none.
func (f Filter) Apply(t *RankedTable) []RankedRow {
	if t == nil {
		return nil
	}
	var allowed map[string]struct{}
	if f.CourseTypes != nil {
		allowed = make(map[string]struct{}, len(f.CourseTypes))
		for _, ct := range f.CourseTypes {
			allowed[ct] = struct{}{}
		}
	}
	out := make([]RankedRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		if row.Total < float64(f.MinTotal) {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[row.Key.CourseType]; !ok {
				continue
			}
		}
		out = append(out, row)
	}
	return out
}

// FailureKind classifies why a requested period was skipped.
type FailureKind string

const (
	FailurePeriodNotFound FailureKind = "period_not_found"
	FailureSchemaMismatch FailureKind = "schema_mismatch"
)

// PeriodFailure records a skipped period and the reason shown to the user.
type PeriodFailure struct {
	Period  string      `json:"period"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}
