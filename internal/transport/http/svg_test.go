package http

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollrank/internal/analytics"
)

func TestNewBarChart(t *testing.T) {
	chart := newBarChart([]analytics.Bar{
		{Rank: 1, Label: "A - X", Total: 1000},
		{Rank: 2, Label: "B - Y", Total: 500},
		{Rank: 3, Label: "C - Z", Total: 0},
	})

	area := float64(barChartWidth - barLabelWidth - barValueWidth)
	require.Len(t, chart.Bars, 3)
	assert.Equal(t, 3*barRowHeight+2*barChartMargin, chart.Height)
	assert.Equal(t, area, chart.Bars[0].Width)
	assert.Equal(t, area/2, chart.Bars[1].Width)
	assert.Zero(t, chart.Bars[2].Width)
	assert.Equal(t, "1.000", chart.Bars[0].Value)
	assert.Less(t, chart.Bars[0].Y, chart.Bars[1].Y)
}

func TestNewLineChart(t *testing.T) {
	chart := newLineChart(analytics.Evolution{
		Periods: []string{"2021", "2022", "2023"},
		Series: []analytics.Series{
			{Label: "A", Points: []analytics.Point{{Period: "2021", Value: 0}, {Period: "2022", Value: 50}, {Period: "2023", Value: 100}}},
			{Label: "B", Points: []analytics.Point{{Period: "2021", Value: 100}, {Period: "2022", Value: 100}, {Period: "2023", Value: 100}}},
		},
	})

	require.Len(t, chart.XTicks, 3)
	assert.Equal(t, float64(linePlotLeft), chart.XTicks[0].Pos)
	assert.Equal(t, float64(linePlotRight), chart.XTicks[2].Pos)
	assert.Len(t, chart.YTicks, lineYTicks+1)

	require.Len(t, chart.Series, 2)
	a := chart.Series[0]
	assert.Equal(t, palette[0], a.Color)
	assert.Equal(t, palette[1], chart.Series[1].Color)
	assert.Equal(t, float64(linePlotBottom), a.Markers[0].Y)
	assert.Equal(t, float64(linePlotTop), a.Markers[2].Y)
	assert.Equal(t, float64((linePlotTop+linePlotBottom)/2), a.Markers[1].Y)
	assert.Equal(t, "70,350 375,185 680,20", a.Points)
}

func TestNewLineChart_SinglePeriod(t *testing.T) {
	chart := newLineChart(analytics.Evolution{
		Periods: []string{"2023"},
		Series:  []analytics.Series{{Label: "A", Points: []analytics.Point{{Period: "2023", Value: 0}}}},
	})

	center := float64(linePlotLeft + (linePlotRight-linePlotLeft)/2)
	assert.Equal(t, center, chart.XTicks[0].Pos)
	assert.Equal(t, float64(linePlotBottom), chart.Series[0].Markers[0].Y)
}

func TestNewPieChart(t *testing.T) {
	t.Run("halves", func(t *testing.T) {
		chart := newPieChart([]analytics.Slice{
			{Institution: "A", Total: 50, Share: 50},
			{Institution: "B", Total: 50, Share: 50},
		})

		require.Len(t, chart.Slices, 2)
		assert.Empty(t, chart.FullColor)
		// The first slice starts at twelve o'clock and turns counterclockwise
		// to six o'clock.
		assert.Equal(t, "M180,180 L180,20 A160,160 0 0,0 180,340 Z", chart.Slices[0].Path)
		assert.True(t, strings.HasPrefix(chart.Slices[1].Path, "M180,180 L180,340"))
		assert.Equal(t, "50.0%", chart.Slices[0].Share)
	})

	t.Run("large slice", func(t *testing.T) {
		chart := newPieChart([]analytics.Slice{
			{Institution: "A", Total: 75, Share: 75},
			{Institution: "B", Total: 25, Share: 25},
		})
		assert.Contains(t, chart.Slices[0].Path, " 0 1,0 ")
		assert.Contains(t, chart.Slices[1].Path, " 0 0,0 ")
	})

	t.Run("single slice", func(t *testing.T) {
		chart := newPieChart([]analytics.Slice{{Institution: "A", Total: 10, Share: 100}})
		assert.Equal(t, palette[0], chart.FullColor)
	})
}
