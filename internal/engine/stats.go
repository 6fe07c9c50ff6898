package engine

import (
	"fmt"
	"math"
)

// Summary is the shape of a Table: row and column counts and missing cells
// per column.
type Summary struct {
	Rows    int
	Columns int
	Missing []ColumnMissing
}

type ColumnMissing struct {
	Column string
	Count  int
}

func Summarize(t *Table) Summary {
	s := Summary{
		Rows:    t.Len(),
		Columns: len(t.names),
		Missing: make([]ColumnMissing, len(t.names)),
	}
	for col, name := range t.names {
		s.Missing[col].Column = name
		for row := 0; row < t.Len(); row++ {
			if _, ok := t.Value(row, col); !ok {
				s.Missing[col].Count++
			}
		}
	}
	return s
}

// MaxBins caps the bin count of a histogram.
const MaxBins = 500

// Bin is one equal-width histogram interval [Lower, Upper).
// The last bin also holds Upper.
type Bin struct {
	Lower, Upper float64
	Count        int
}

// Histogram counts the values of a numeric column in bins equal-width
// intervals spanning the values present in t.
func Histogram(t *Table, column string, bins int) ([]Bin, error) {
	if bins <= 0 || bins > MaxBins {
		return nil, &InvalidAggregationError{Column: column, Reason: fmt.Sprintf("bin count must be between 1 and %d, got %d", MaxBins, bins)}
	}
	values, err := numericValues(t, column)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return []Bin{}, nil
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(values)}}, nil
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out, nil
}

func numericValues(t *Table, column string) ([]float64, error) {
	desc, ok := t.registry.Lookup(column)
	if !ok {
		return nil, &InvalidAggregationError{Column: column, Reason: "unknown column"}
	}
	if desc.Kind != Numeric {
		return nil, &InvalidAggregationError{Column: column, Reason: "column is " + desc.Kind.String() + ", not numeric"}
	}
	col, _ := t.ColumnIndex(column)
	values := make([]float64, 0, t.Len())
	for row := 0; row < t.Len(); row++ {
		if raw, ok := t.Value(row, col); ok {
			if v, ok := parseNumber(raw); ok {
				values = append(values, v)
			}
		}
	}
	return values, nil
}

// Point is one row plotted on two numeric columns.
type Point struct {
	X, Y  float64
	Label string
}

// Points pairs the x and y columns of every row where both are present.
// label names an optional column carried along as the point label.
func Points(t *Table, x, y, label string) ([]Point, error) {
	cols := make([]int, 0, 2)
	for _, name := range []string{x, y} {
		desc, ok := t.registry.Lookup(name)
		if !ok {
			return nil, &InvalidAggregationError{Column: name, Reason: "unknown column"}
		}
		if desc.Kind != Numeric {
			return nil, &InvalidAggregationError{Column: name, Reason: "column is " + desc.Kind.String() + ", not numeric"}
		}
		col, _ := t.ColumnIndex(name)
		cols = append(cols, col)
	}
	lcol := -1
	if label != "" {
		i, ok := t.ColumnIndex(label)
		if !ok {
			return nil, &InvalidAggregationError{Column: label, Reason: "unknown label column"}
		}
		lcol = i
	}

	out := make([]Point, 0, t.Len())
	for row := 0; row < t.Len(); row++ {
		xs, okx := t.Value(row, cols[0])
		ys, oky := t.Value(row, cols[1])
		if !okx || !oky {
			continue
		}
		xv, okx := parseNumber(xs)
		yv, oky := parseNumber(ys)
		if !okx || !oky {
			continue
		}
		p := Point{X: xv, Y: yv}
		if lcol >= 0 {
			p.Label, _ = t.Value(row, lcol)
		}
		out = append(out, p)
	}
	return out, nil
}
