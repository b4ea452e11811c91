package enrollment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollrank/pkg/contracts/domain"
)

func TestMerge_TwoPeriodScenario(t *testing.T) {
	table, err := Merge([]*domain.PeriodTable{
		periodTable("2022", prow(keyA, "10")),
		periodTable("2023", prow(keyA, "15"), prow(keyG, "5")),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"2022", "2023"}, table.Periods)
	assert.Equal(t, []string{"Measure_2022", "Measure_2023"}, table.Columns)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, keyA, table.Rows[0].Key)
	assert.Equal(t, []float64{10, 15}, table.Rows[0].Measures)
	assert.Equal(t, 25.0, table.Rows[0].Total)
	assert.Equal(t, 1, table.Rows[0].Rank)

	assert.Equal(t, keyG, table.Rows[1].Key)
	assert.Equal(t, []float64{0, 5}, table.Rows[1].Measures)
	assert.Equal(t, 5.0, table.Rows[1].Total)
	assert.Equal(t, 2, table.Rows[1].Rank)
}

func TestMerge_KeyOverlap(t *testing.T) {
	tests := []struct {
		name     string
		tables   []*domain.PeriodTable
		wantRows int
	}{
		{
			name: "disjoint keys keep every row",
			tables: []*domain.PeriodTable{
				periodTable("2023", prow(keyA, "1")),
				periodTable("2022", prow(keyG, "2"), prow(keyM, "3")),
			},
			wantRows: 3,
		},
		{
			name: "identical keys collapse to one row each",
			tables: []*domain.PeriodTable{
				periodTable("2023", prow(keyA, "1"), prow(keyG, "2")),
				periodTable("2022", prow(keyG, "3"), prow(keyA, "4")),
				periodTable("2021", prow(keyA, "5"), prow(keyG, "6")),
			},
			wantRows: 2,
		},
		{
			name: "partial overlap",
			tables: []*domain.PeriodTable{
				periodTable("2023", prow(keyA, "1"), prow(keyG, "2")),
				periodTable("2022", prow(keyG, "3"), prow(keyM, "4")),
			},
			wantRows: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Merge(tt.tables)
			require.NoError(t, err)
			assert.Len(t, table.Rows, tt.wantRows)
			for _, r := range table.Rows {
				assert.Len(t, r.Measures, len(tt.tables))
			}
		})
	}
}

func TestMerge_IdenticalKeysCarryEveryMeasure(t *testing.T) {
	table, err := Merge([]*domain.PeriodTable{
		periodTable("2023", prow(keyA, "1"), prow(keyG, "2")),
		periodTable("2022", prow(keyG, "3"), prow(keyA, "4")),
	})
	require.NoError(t, err)

	byKey := make(map[domain.CompositeKey]domain.RankedRow)
	for _, r := range table.Rows {
		byKey[r.Key] = r
	}
	assert.Equal(t, []float64{1, 4}, byKey[keyA].Measures)
	assert.Equal(t, []float64{2, 3}, byKey[keyG].Measures)
}

func TestMerge_ThreePeriodFold(t *testing.T) {
	table, err := Merge([]*domain.PeriodTable{
		periodTable("2023", prow(keyA, "1"), prow(keyM, "2")),
		periodTable("2022", prow(keyG, "3")),
		periodTable("2021", prow(keyA, "4"), prow(keyG, "5")),
	})
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	assert.Equal(t, keyG, table.Rows[0].Key)
	assert.Equal(t, []float64{0, 3, 5}, table.Rows[0].Measures)
	assert.Equal(t, keyA, table.Rows[1].Key)
	assert.Equal(t, []float64{1, 0, 4}, table.Rows[1].Measures)
	assert.Equal(t, keyM, table.Rows[2].Key)
	assert.Equal(t, []float64{2, 0, 0}, table.Rows[2].Measures)
}

func TestMerge_Coercion(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"42", 42},
		{" 12 ", 12},
		{"3.5", 3.5},
		{"1e3", 1000},
		{"-4", -4},
		{"abc", 0},
		{"1.234", 1.234},
		{"NaN", 0},
		{"Inf", 0},
		{"-Infinity", 0},
		{"", 0},
		{"  ", 0},
		{"0x1p3", 0},
		{"0X10", 0},
		{"1_000", 0},
		{"+7", 7},
		{".5", 0.5},
		{"5.", 5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.raw), func(t *testing.T) {
			table, err := Merge([]*domain.PeriodTable{periodTable("2023", prow(keyA, tt.raw))})
			require.NoError(t, err)
			assert.Equal(t, tt.want, table.Rows[0].Total)
			assert.Equal(t, tt.want, table.Rows[0].Measures[0])
		})
	}
}

func TestMerge_TotalIsExactSum(t *testing.T) {
	table, err := Merge([]*domain.PeriodTable{
		periodTable("2023", prow(keyA, "10")),
		periodTable("2022", prow(keyA, "n/d")),
		periodTable("2021", prow(keyG, "7")),
		periodTable("2020", prow(keyA, "5")),
	})
	require.NoError(t, err)

	for _, r := range table.Rows {
		var sum float64
		for _, m := range r.Measures {
			sum += m
		}
		assert.Equal(t, sum, r.Total)
	}
	assert.Equal(t, 15.0, table.Rows[0].Total)
}

func TestMerge_TiesKeepInputOrder(t *testing.T) {
	t.Run("single period keeps sheet order", func(t *testing.T) {
		table, err := Merge([]*domain.PeriodTable{
			periodTable("2023", prow(keyM, "5"), prow(keyA, "5"), prow(keyG, "9")),
		})
		require.NoError(t, err)

		assert.Equal(t, keyG, table.Rows[0].Key)
		assert.Equal(t, keyM, table.Rows[1].Key)
		assert.Equal(t, keyA, table.Rows[2].Key)
		assert.Equal(t, []int{1, 2, 3}, []int{table.Rows[0].Rank, table.Rows[1].Rank, table.Rows[2].Rank})
	})

	t.Run("joined periods tie in key order", func(t *testing.T) {
		table, err := Merge([]*domain.PeriodTable{
			periodTable("2023", prow(keyM, "5"), prow(keyA, "5")),
			periodTable("2022", prow(keyG, "5")),
		})
		require.NoError(t, err)

		assert.Equal(t, keyA, table.Rows[0].Key)
		assert.Equal(t, keyG, table.Rows[1].Key)
		assert.Equal(t, keyM, table.Rows[2].Key)
	})
}

func TestMerge_DuplicateKeysJoinPairwise(t *testing.T) {
	table, err := Merge([]*domain.PeriodTable{
		periodTable("2023", prow(keyA, "1"), prow(keyA, "2")),
		periodTable("2022", prow(keyA, "10"), prow(keyA, "20")),
	})
	require.NoError(t, err)
	require.Len(t, table.Rows, 4)

	got := make([]float64, len(table.Rows))
	for i, r := range table.Rows {
		got[i] = r.Total
	}
	assert.Equal(t, []float64{22, 21, 12, 11}, got)
}

func TestMerge_RankIsPermutation(t *testing.T) {
	var rows2023, rows2022 []domain.PeriodRow
	for i := 0; i < 50; i++ {
		k := key(fmt.Sprintf("Inst %02d", i%17), "U", "T", fmt.Sprintf("Curso %d", i), "O", "M")
		rows2023 = append(rows2023, prow(k, fmt.Sprint((i*37)%11)))
		if i%3 == 0 {
			rows2022 = append(rows2022, prow(k, fmt.Sprint(i%5)))
		}
	}

	table, err := Merge([]*domain.PeriodTable{periodTable("2023", rows2023...), periodTable("2022", rows2022...)})
	require.NoError(t, err)
	require.Len(t, table.Rows, 50)

	seen := make(map[int]bool)
	for i, r := range table.Rows {
		assert.Equal(t, i+1, r.Rank)
		seen[r.Rank] = true
		if i > 0 {
			assert.LessOrEqual(t, r.Total, table.Rows[i-1].Total)
		}
	}
	assert.Len(t, seen, 50)
}

func TestMerge_Idempotent(t *testing.T) {
	build := func() []*domain.PeriodTable {
		return []*domain.PeriodTable{
			periodTable("2023", prow(keyA, "15"), prow(keyG, "5"), prow(keyM, "x")),
			periodTable("2022", prow(keyA, "10"), prow(keyM, "7")),
		}
	}
	input := build()

	first, err := Merge(input)
	require.NoError(t, err)
	second, err := Merge(input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, build(), input, "inputs are not modified")
}

func TestMerge_Errors(t *testing.T) {
	_, err := Merge(nil)
	assert.True(t, errors.Is(err, ErrNoValidPeriods))

	_, err = Merge([]*domain.PeriodTable{
		periodTable("2023", prow(keyA, "1")),
		periodTable("2023", prow(keyG, "1")),
	})
	assert.True(t, errors.Is(err, ErrProcessing))
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name        string
		institution string
		course      string
		want        string
	}{
		{"short values kept", "UFX", "Direito", "UFX - Direito"},
		{"both truncated", "Universidade Federal de São Paulo", "Engenharia de Computação e Sistemas", "Universidade Fe - Engenharia de Comput"},
		{"truncation counts characters not bytes", "Fundação Educacional X", "Administração", "Fundação Educac - Administração"},
		{"empty values", "", "", " - "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := key(tt.institution, "", "", tt.course, "", "")
			assert.Equal(t, tt.want, Label(k))
		})
	}
}

func TestMerge_SetsLabels(t *testing.T) {
	k := key("Universidade Estadual", "U", "T", "Medicina Veterinária", "O", "M")
	table, err := Merge([]*domain.PeriodTable{periodTable("2023", prow(k, "1"))})
	require.NoError(t, err)
	assert.Equal(t, "Universidade Es - Medicina Veterinária", table.Rows[0].Label)
}
