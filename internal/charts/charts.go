// Package charts renders dashboard panels as PNG images.
package charts

import (
	"bytes"
	"io"
	"math"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNothingToDraw is returned when a chart has no data points.
var ErrNothingToDraw = errors.New("charts: nothing to draw")

const (
	width  = 1024
	height = 512
)

// Item is one labelled value: a bar or a pie slice.
type Item struct {
	Label string
	Value float64
}

func render(r interface {
	Render(chart.RendererProvider, io.Writer) error
}) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrap(err, "render chart")
	}
	return buf.Bytes(), nil
}

// Bar draws one bar per item, in the given order.
func Bar(title, yName string, items []Item) ([]byte, error) {
	if len(items) == 0 {
		return nil, ErrNothingToDraw
	}
	lo, hi := 0.0, 0.0
	bars := make([]chart.Value, len(items))
	for i, it := range items {
		bars[i] = chart.Value{Label: it.Label, Value: it.Value}
		lo = math.Min(lo, it.Value)
		hi = math.Max(hi, it.Value)
	}
	if lo == hi {
		hi = lo + 1
	}

	barWidth := (width - 100) / (2 * len(items))
	if barWidth > 50 {
		barWidth = 50
	}
	if barWidth < 2 {
		barWidth = 2
	}

	bc := chart.BarChart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		XAxis:      chart.Style{FontSize: 8},
		YAxis: chart.YAxis{
			Name:  yName,
			Range: &chart.ContinuousRange{Min: lo, Max: hi * 1.05},
		},
		Bars: bars,
	}
	return render(bc)
}

// Pie draws one slice per item with a positive value.
func Pie(title string, items []Item) ([]byte, error) {
	var values []chart.Value
	for _, it := range items {
		if it.Value > 0 {
			values = append(values, chart.Value{Label: it.Label, Value: it.Value})
		}
	}
	if len(values) == 0 {
		return nil, ErrNothingToDraw
	}
	pc := chart.PieChart{
		Title:  title,
		Width:  height,
		Height: height,
		Values: values,
	}
	return render(pc)
}

// Line connects the points in x order, with a dot on each.
func Line(title, xName, yName string, xs, ys []float64) ([]byte, error) {
	style := chart.Style{
		StrokeColor: chart.ColorBlue,
		StrokeWidth: 2,
		DotColor:    chart.ColorBlue,
		DotWidth:    4,
	}
	return continuous(title, xName, yName, xs, ys, style)
}

// Scatter plots unconnected points.
func Scatter(title, xName, yName string, xs, ys []float64) ([]byte, error) {
	style := chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    3,
		DotColor:    drawing.ColorFromHex("1f77b4"),
	}
	return continuous(title, xName, yName, xs, ys, style)
}

func continuous(title, xName, yName string, xs, ys []float64, style chart.Style) ([]byte, error) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return nil, ErrNothingToDraw
	}
	ch := chart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: xName, Range: span(xs)},
		YAxis:      chart.YAxis{Name: yName, Range: span(ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: yName, XValues: xs, YValues: ys, Style: style},
		},
	}
	return render(ch)
}

// span is the value range with a margin; a single value gets a unit margin.
func span(vs []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
