package analytics

import (
	"math"
	"sort"
	"strconv"

	"enrollrank/pkg/contracts/domain"
)

// Options sizes the derived chart series.
type Options struct {
	TopN            int `json:"top_n" validate:"gte=1"`
	EvolutionRows   int `json:"evolution_rows" validate:"gte=1,lte=20"`
	DistributionTop int `json:"distribution_top" validate:"gte=1"`
}

// DefaultOptions mirrors the dashboard defaults.
func DefaultOptions() Options {
	return Options{TopN: 20, EvolutionRows: 5, DistributionTop: 10}
}

// Summary holds the headline metrics of a filtered view.
type Summary struct {
	Count    int     `json:"count"`
	TopLabel string  `json:"top_label,omitempty"`
	TopTotal float64 `json:"top_total,omitempty"`
	HasTop   bool    `json:"has_top"`
}

// Bar is one entry of the top-N ranking chart.
type Bar struct {
	Rank  int     `json:"rank"`
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

// Point is one period value of an evolution series.
type Point struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// Series is the per-period evolution of one ranked row.
type Series struct {
	Label  string  `json:"label"`
	Points []Point `json:"points"`
}

// Evolution is a multi-line chart over the loaded periods.
type Evolution struct {
	Periods []string `json:"periods"`
	Series  []Series `json:"series"`
}

// Slice is one institution's portion of the distribution chart.
type Slice struct {
	Institution string  `json:"institution"`
	Total       float64 `json:"total"`
	Share       float64 `json:"share"`
}

// Charts groups every chart series of a view.
type Charts struct {
	Top          []Bar     `json:"top"`
	Evolution    Evolution `json:"evolution"`
	Distribution []Slice   `json:"distribution"`
}

// View is a filtered ranked table with its derived summary and charts.
type View struct {
	Filter  domain.Filter      `json:"filter"`
	Rows    []domain.RankedRow `json:"rows"`
	Summary Summary            `json:"summary"`
	Charts  Charts             `json:"charts"`
}

// Build applies filter to table and derives the summary and chart series.
// The filter's MinTotal is clamped to the table's largest total first.
func Build(table *domain.RankedTable, filter domain.Filter, opts Options) *View {
	filter.MinTotal = ClampMinTotal(table, filter.MinTotal)
	rows := filter.Apply(table)

	return &View{
		Filter:  filter,
		Rows:    rows,
		Summary: Summarize(rows),
		Charts: Charts{
			Top:          TopBars(rows, opts.TopN),
			Evolution:    BuildEvolution(table, rows, opts.EvolutionRows),
			Distribution: Distribution(rows, opts.DistributionTop),
		},
	}
}

// ClampMinTotal bounds a minimum-total threshold to [0, floor(max total)].
func ClampMinTotal(table *domain.RankedTable, minTotal int64) int64 {
	if minTotal < 0 {
		return 0
	}
	if table == nil || table.Len() == 0 {
		return minTotal
	}
	if limit := int64(math.Floor(table.MaxTotal())); minTotal > limit {
		return max(limit, 0)
	}
	return minTotal
}

// Summarize reports the row count and the top row of a view.
func Summarize(rows []domain.RankedRow) Summary {
	s := Summary{Count: len(rows)}
	if len(rows) > 0 {
		s.HasTop = true
		s.TopLabel = rows[0].Label
		s.TopTotal = rows[0].Total
	}
	return s
}

// TopBars returns the first n rows as chart bars.
func TopBars(rows []domain.RankedRow, n int) []Bar {
	n = min(max(n, 0), len(rows))
	bars := make([]Bar, n)
	for i, r := range rows[:n] {
		bars[i] = Bar{Rank: r.Rank, Label: r.Label, Total: r.Total}
	}
	return bars
}

// BuildEvolution charts the measures of the first k rows over the table's
// periods, with periods in chronological order.
func BuildEvolution(table *domain.RankedTable, rows []domain.RankedRow, k int) Evolution {
	if table == nil {
		return Evolution{}
	}
	periods := SortPeriods(table.Periods)
	k = min(max(k, 0), len(rows))

	series := make([]Series, k)
	for i, r := range rows[:k] {
		points := make([]Point, len(periods))
		for j, p := range periods {
			points[j] = Point{Period: p, Value: r.Measure(table.PeriodIndex(p))}
		}
		series[i] = Series{Label: r.Label, Points: points}
	}
	return Evolution{Periods: periods, Series: series}
}

// SortPeriods orders period identifiers numerically ascending; identifiers
// that are not integers follow in lexical order.
func SortPeriods(periods []string) []string {
	out := append([]string(nil), periods...)
	sort.SliceStable(out, func(a, b int) bool {
		na, errA := strconv.ParseInt(out[a], 10, 64)
		nb, errB := strconv.ParseInt(out[b], 10, 64)
		switch {
		case errA == nil && errB == nil:
			return na < nb
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return out[a] < out[b]
		}
	})
	return out
}

// Distribution sums totals per institution and returns the n largest.
// Shares are percentages of the returned slices' combined total, rounded to
// one decimal. Equal sums keep first-seen order.
func Distribution(rows []domain.RankedRow, n int) []Slice {
	index := make(map[string]int)
	var slices []Slice
	for _, r := range rows {
		i, ok := index[r.Key.Institution]
		if !ok {
			i = len(slices)
			index[r.Key.Institution] = i
			slices = append(slices, Slice{Institution: r.Key.Institution})
		}
		slices[i].Total += r.Total
	}

	sort.SliceStable(slices, func(a, b int) bool {
		return slices[a].Total > slices[b].Total
	})
	slices = slices[:min(max(n, 0), len(slices))]

	var sum float64
	for _, s := range slices {
		sum += s.Total
	}
	if sum > 0 {
		for i := range slices {
			slices[i].Share = math.Round(slices[i].Total/sum*1000) / 10
		}
	}
	return slices
}
