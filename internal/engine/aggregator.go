package engine

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// AggOp is the per-group computation of an aggregation.
type AggOp int

const (
	Count AggOp = iota
	Mean
	Sum
)

func (op AggOp) String() string {
	switch op {
	case Count:
		return "count"
	case Mean:
		return "mean"
	case Sum:
		return "sum"
	}
	return fmt.Sprintf("AggOp(%d)", int(op))
}

// ParseAggOp accepts "count", "mean" (or "avg") and "sum".
func ParseAggOp(s string) (AggOp, error) {
	switch s {
	case "count":
		return Count, nil
	case "mean", "avg":
		return Mean, nil
	case "sum":
		return Sum, nil
	}
	return Count, errors.Errorf("unknown aggregation %q", s)
}

// AggregationSpec groups rows by GroupBy and computes Op over Value.
// Value is ignored by Count.
type AggregationSpec struct {
	GroupBy string
	Value   string
	Op      AggOp
}

// Bucket is one group of an aggregation result.
type Bucket struct {
	Key   string
	Value float64
	// Rows counts the rows that contributed to Value.
	Rows int
}

type aggStats struct {
	sum      float64
	n        int
	min, max float64
}

func (s *aggStats) add(v float64) {
	if s.n == 0 {
		s.min, s.max = v, v
	} else {
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
	}
	s.sum += v
	s.n++
}

// Aggregate groups the rows of t by the raw GroupBy value, in order of first
// appearance. Rows with a missing GroupBy value form the group "". Mean and
// Sum skip unparseable values and drop groups left with none.
func Aggregate(t *Table, spec AggregationSpec) ([]Bucket, error) {
	// 1. Validate against the registry
	gdesc, ok := t.registry.Lookup(spec.GroupBy)
	if !ok {
		return nil, &InvalidAggregationError{Column: spec.GroupBy, Reason: "unknown group-by column"}
	}
	gcol, _ := t.ColumnIndex(gdesc.Name)

	vcol := -1
	switch spec.Op {
	case Count:
		if spec.Value != "" {
			if _, ok := t.registry.Lookup(spec.Value); !ok {
				return nil, &InvalidAggregationError{Column: spec.Value, Reason: "unknown value column"}
			}
		}
	case Mean, Sum:
		vdesc, ok := t.registry.Lookup(spec.Value)
		if !ok {
			return nil, &InvalidAggregationError{Column: spec.Value, Reason: "unknown value column"}
		}
		if vdesc.Kind != Numeric {
			return nil, &InvalidAggregationError{
				Column: spec.Value,
				Reason: fmt.Sprintf("%s needs a numeric column, column is %s", spec.Op, vdesc.Kind),
			}
		}
		vcol, _ = t.ColumnIndex(vdesc.Name)
	default:
		return nil, &InvalidAggregationError{Column: spec.Value, Reason: fmt.Sprintf("unsupported operation %s", spec.Op)}
	}

	// 2. Single pass, groups in first-appearance order
	var order []string
	pos := make(map[string]int)
	var stats []aggStats
	for i := 0; i < t.Len(); i++ {
		key, _ := t.Value(i, gcol)
		g, ok := pos[key]
		if !ok {
			g = len(order)
			pos[key] = g
			order = append(order, key)
			stats = append(stats, aggStats{})
		}
		if vcol < 0 {
			stats[g].n++
			continue
		}
		if raw, ok := t.Value(i, vcol); ok {
			if v, ok := parseNumber(raw); ok {
				stats[g].add(v)
			}
		}
	}

	// 3. Build result
	out := make([]Bucket, 0, len(order))
	for g, key := range order {
		s := stats[g]
		switch spec.Op {
		case Count:
			out = append(out, Bucket{Key: key, Value: float64(s.n), Rows: s.n})
		case Mean:
			if s.n == 0 {
				continue
			}
			// Clamp away rounding drift so a mean never leaves its group's range.
			mean := math.Min(math.Max(s.sum/float64(s.n), s.min), s.max)
			out = append(out, Bucket{Key: key, Value: mean, Rows: s.n})
		case Sum:
			if s.n == 0 {
				continue
			}
			out = append(out, Bucket{Key: key, Value: s.sum, Rows: s.n})
		}
	}
	return out, nil
}
