package http

import (
	"math"
	"strconv"

	"enrollrank/internal/analytics"
)

// palette is the categorical color cycle used by every chart.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

func color(i int) string { return palette[i%len(palette)] }

// round1 keeps SVG coordinates short.
func round1(v float64) float64 { return math.Round(v*10) / 10 }

// Bar chart layout, in pixels.
const (
	barChartWidth  = 960
	barLabelWidth  = 280
	barValueWidth  = 90
	barRowHeight   = 26
	barThickness   = 18
	barChartMargin = 10
)

type svgBar struct {
	Y      float64
	Width  float64
	TextY  float64
	ValueX float64
	Label  string
	Value  string
}

type barChart struct {
	Width  int
	Height int
	LabelX int
	BarX   int
	Bars   []svgBar
}

// newBarChart lays out horizontal bars, largest total first, scaled to the
// largest total.
func newBarChart(bars []analytics.Bar) barChart {
	chart := barChart{
		Width:  barChartWidth,
		Height: len(bars)*barRowHeight + 2*barChartMargin,
		LabelX: barLabelWidth - 8,
		BarX:   barLabelWidth,
	}
	area := float64(barChartWidth - barLabelWidth - barValueWidth)

	var maxTotal float64
	for _, b := range bars {
		maxTotal = math.Max(maxTotal, b.Total)
	}

	chart.Bars = make([]svgBar, len(bars))
	for i, b := range bars {
		var width float64
		if maxTotal > 0 && b.Total > 0 {
			width = b.Total / maxTotal * area
		}
		y := float64(barChartMargin + i*barRowHeight)
		chart.Bars[i] = svgBar{
			Y:      y,
			Width:  round1(width),
			TextY:  round1(y + barThickness/2 + 4),
			ValueX: round1(float64(barLabelWidth) + width + 6),
			Label:  b.Label,
			Value:  analytics.FormatThousands(b.Total),
		}
	}
	return chart
}

// Line chart layout, in pixels.
const (
	lineChartWidth  = 960
	lineChartHeight = 400
	linePlotLeft    = 70
	linePlotRight   = 680
	linePlotTop     = 20
	linePlotBottom  = 350
	lineYTicks      = 5
)

type svgPoint struct {
	X, Y float64
}

type svgTick struct {
	Pos   float64
	Label string
}

type svgSeries struct {
	Label   string
	Color   string
	Points  string
	Markers []svgPoint
	LegendY float64
}

type lineChart struct {
	Width, Height int
	Left, Right   int
	Top, Bottom   int
	LegendX       int
	XTicks        []svgTick
	YTicks        []svgTick
	Series        []svgSeries
}

// newLineChart plots one polyline per series over the evolution periods,
// with the y axis running from zero to the largest value.
func newLineChart(evo analytics.Evolution) lineChart {
	chart := lineChart{
		Width: lineChartWidth, Height: lineChartHeight,
		Left: linePlotLeft, Right: linePlotRight,
		Top: linePlotTop, Bottom: linePlotBottom,
		LegendX: linePlotRight + 20,
	}

	var maxValue float64
	for _, s := range evo.Series {
		for _, p := range s.Points {
			maxValue = math.Max(maxValue, p.Value)
		}
	}
	if maxValue <= 0 {
		maxValue = 1
	}

	xs := make([]float64, len(evo.Periods))
	span := float64(linePlotRight - linePlotLeft)
	for i, p := range evo.Periods {
		x := float64(linePlotLeft) + span/2
		if len(evo.Periods) > 1 {
			x = float64(linePlotLeft) + float64(i)*span/float64(len(evo.Periods)-1)
		}
		xs[i] = round1(x)
		chart.XTicks = append(chart.XTicks, svgTick{Pos: xs[i], Label: p})
	}

	height := float64(linePlotBottom - linePlotTop)
	y := func(v float64) float64 {
		return round1(float64(linePlotBottom) - v/maxValue*height)
	}
	for i := 0; i <= lineYTicks; i++ {
		v := maxValue * float64(i) / lineYTicks
		chart.YTicks = append(chart.YTicks, svgTick{Pos: y(v), Label: analytics.FormatThousands(v)})
	}

	for i, s := range evo.Series {
		series := svgSeries{
			Label:   s.Label,
			Color:   color(i),
			LegendY: float64(linePlotTop + 10 + i*18),
		}
		for j, p := range s.Points {
			pt := svgPoint{X: xs[j], Y: y(p.Value)}
			series.Markers = append(series.Markers, pt)
			if j > 0 {
				series.Points += " "
			}
			series.Points += formatPoint(pt)
		}
		chart.Series = append(chart.Series, series)
	}
	return chart
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPoint(p svgPoint) string {
	return formatCoord(p.X) + "," + formatCoord(p.Y)
}

// Pie chart layout, in pixels.
const (
	pieChartWidth  = 760
	pieChartHeight = 360
	pieCenterX     = 180
	pieCenterY     = 180
	pieRadius      = 160
)

type svgSlice struct {
	Path    string
	Color   string
	Label   string
	Share   string
	Total   string
	LegendY float64
}

type pieChart struct {
	Width, Height int
	CX, CY, R     int
	LegendX       int
	Slices        []svgSlice
	// FullColor is set when one slice covers the whole pie, which an arc
	// path cannot draw.
	FullColor string
}

// newPieChart draws the slices counterclockwise from twelve o'clock, each
// spanning its fraction of the slices' combined total.
func newPieChart(slices []analytics.Slice) pieChart {
	chart := pieChart{
		Width: pieChartWidth, Height: pieChartHeight,
		CX: pieCenterX, CY: pieCenterY, R: pieRadius,
		LegendX: pieCenterX + pieRadius + 40,
	}

	var sum float64
	for _, s := range slices {
		sum += s.Total
	}

	angle := math.Pi / 2
	for i, s := range slices {
		slice := svgSlice{
			Color:   color(i),
			Label:   s.Institution,
			Share:   analytics.FormatShare(s.Share),
			Total:   analytics.FormatThousands(s.Total),
			LegendY: float64(30 + i*24),
		}
		if sum > 0 && s.Total > 0 {
			frac := s.Total / sum
			if frac >= 0.9999 {
				chart.FullColor = slice.Color
			}
			end := angle + frac*2*math.Pi
			slice.Path = arcPath(angle, end, frac > 0.5)
			angle = end
		}
		chart.Slices = append(chart.Slices, slice)
	}
	return chart
}

// arcPath is a wedge from the center between two angles, measured
// counterclockwise from three o'clock.
func arcPath(from, to float64, large bool) string {
	cx, cy, r := float64(pieCenterX), float64(pieCenterY), float64(pieRadius)
	start := svgPoint{X: round1(cx + r*math.Cos(from)), Y: round1(cy - r*math.Sin(from))}
	end := svgPoint{X: round1(cx + r*math.Cos(to)), Y: round1(cy - r*math.Sin(to))}

	largeFlag := "0"
	if large {
		largeFlag = "1"
	}
	return "M" + formatPoint(svgPoint{X: cx, Y: cy}) +
		" L" + formatPoint(start) +
		" A" + formatCoord(r) + "," + formatCoord(r) + " 0 " + largeFlag + ",0 " + formatPoint(end) +
		" Z"
}
