package enrollment

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"enrollrank/pkg/contracts/domain"
)

// Label truncation widths, in characters.
const (
	labelInstitutionWidth = 15
	labelCourseWidth      = 20
)

// decimalPattern is the plain decimal notation a measure may use. Go literal
// forms such as hex floats and digit separators are not numbers here.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

type measureCell struct {
	raw     string
	present bool
}

type joinedRow struct {
	key   domain.CompositeKey
	cells []measureCell
}

// accumulator is the intermediate outer-joined table. Each step of the fold
// returns a new accumulator; none is modified after it is built.
type accumulator struct {
	periods []string
	rows    []joinedRow
}

// Merge outer-joins the period tables on the composite key, coerces the
// measures, totals and ranks them. Tables are folded left to right, starting
// from the first.
func Merge(tables []*domain.PeriodTable) (*domain.RankedTable, error) {
	if len(tables) == 0 {
		return nil, &NoValidPeriodsError{}
	}
	seen := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		if _, dup := seen[t.Period]; dup {
			return nil, fmt.Errorf("%w: period %q supplied twice", ErrProcessing, t.Period)
		}
		seen[t.Period] = struct{}{}
	}

	acc := fromPeriod(tables[0])
	for _, t := range tables[1:] {
		acc = outerJoin(acc, t)
	}
	return rank(acc), nil
}

func fromPeriod(t *domain.PeriodTable) accumulator {
	rows := make([]joinedRow, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = joinedRow{key: r.Key, cells: []measureCell{{raw: r.Raw, present: r.Present}}}
	}
	return accumulator{periods: []string{t.Period}, rows: rows}
}

// outerJoin is one fold step. Every left row is paired with every right row
// sharing its key; unmatched rows from either side keep a missing cell for
// the other side. The result is ordered by key, stable within equal keys.
func outerJoin(left accumulator, right *domain.PeriodTable) accumulator {
	width := len(left.periods)

	index := make(map[domain.CompositeKey][]int, len(right.Rows))
	for j, r := range right.Rows {
		index[r.Key] = append(index[r.Key], j)
	}
	matched := make([]bool, len(right.Rows))

	out := make([]joinedRow, 0, len(left.rows)+len(right.Rows))
	for _, l := range left.rows {
		idxs, ok := index[l.key]
		if !ok {
			out = append(out, joinedRow{key: l.key, cells: extend(l.cells, measureCell{})})
			continue
		}
		for _, j := range idxs {
			matched[j] = true
			r := right.Rows[j]
			out = append(out, joinedRow{key: l.key, cells: extend(l.cells, measureCell{raw: r.Raw, present: r.Present})})
		}
	}
	for j, r := range right.Rows {
		if matched[j] {
			continue
		}
		cells := make([]measureCell, width+1)
		cells[width] = measureCell{raw: r.Raw, present: r.Present}
		out = append(out, joinedRow{key: r.Key, cells: cells})
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].key.Less(out[b].key)
	})

	periods := make([]string, width+1)
	copy(periods, left.periods)
	periods[width] = right.Period
	return accumulator{periods: periods, rows: out}
}

func extend(cells []measureCell, c measureCell) []measureCell {
	out := make([]measureCell, len(cells)+1)
	copy(out, cells)
	out[len(cells)] = c
	return out
}

// rank coerces measures, computes totals and orders rows by total,
// descending. Equal totals keep accumulator order.
func rank(acc accumulator) *domain.RankedTable {
	columns := make([]string, len(acc.periods))
	for i, p := range acc.periods {
		columns[i] = domain.MeasureColumn(p)
	}

	rows := make([]domain.RankedRow, len(acc.rows))
	for i, jr := range acc.rows {
		measures := make([]float64, len(jr.cells))
		var total float64
		for k, c := range jr.cells {
			measures[k] = coerce(c)
			total += measures[k]
		}
		rows[i] = domain.RankedRow{
			Key:      jr.key,
			Measures: measures,
			Total:    total,
			Label:    Label(jr.key),
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Total > rows[b].Total
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return &domain.RankedTable{Periods: acc.periods, Columns: columns, Rows: rows}
}

// coerce parses a measure cell. Missing, unparsable and non-finite values
// count as zero enrollment.
func coerce(c measureCell) float64 {
	if !c.present {
		return 0
	}
	raw := strings.TrimSpace(c.raw)
	if !decimalPattern.MatchString(raw) {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Label builds the short display identifier for a key.
func Label(k domain.CompositeKey) string {
	return truncate(k.Institution, labelInstitutionWidth) + " - " + truncate(k.CourseName, labelCourseWidth)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
