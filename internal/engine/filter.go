package engine

import (
	"fmt"
	"math"
	"time"
)

// FilterSpec selects rows by a predicate on a single column.
// The variants are RangeFilter, ExactFilter, ExcludeFilter and DateFilter.
type FilterSpec interface {
	Target() string
	check(desc ColumnDescriptor) error
	keep(value string) bool
}

// RangeFilter keeps rows with Min <= value <= Max. Numeric columns only.
type RangeFilter struct {
	Column   string
	Min, Max float64
}

func (f RangeFilter) Target() string { return f.Column }

func (f RangeFilter) check(desc ColumnDescriptor) error {
	if desc.Kind != Numeric {
		return kindMismatch(f.Column, Numeric, desc.Kind)
	}
	if math.IsNaN(f.Min) || math.IsNaN(f.Max) {
		return &InvalidFilterError{Column: f.Column, Reason: "range bound is NaN"}
	}
	if f.Min > f.Max {
		return &InvalidFilterError{Column: f.Column, Reason: fmt.Sprintf("min %g is greater than max %g", f.Min, f.Max)}
	}
	return nil
}

func (f RangeFilter) keep(value string) bool {
	v, ok := parseNumber(value)
	return ok && f.Min <= v && v <= f.Max
}

// covers reports whether the range spans every value present in col of t.
// A filtered table is measured on its own rows, not the dataset's domain.
func (f RangeFilter) covers(t *Table, col int) bool {
	for i := 0; i < t.Len(); i++ {
		if raw, ok := t.Value(i, col); ok {
			if v, ok := parseNumber(raw); ok && (v < f.Min || v > f.Max) {
				return false
			}
		}
	}
	return true
}

// ExactFilter keeps rows whose value equals Value. Categorical columns only.
type ExactFilter struct {
	Column string
	Value  string
}

func (f ExactFilter) Target() string { return f.Column }

func (f ExactFilter) check(desc ColumnDescriptor) error {
	if desc.Kind != Categorical {
		return kindMismatch(f.Column, Categorical, desc.Kind)
	}
	return nil
}

func (f ExactFilter) keep(value string) bool { return value == f.Value }

// ExcludeFilter keeps rows whose value differs from Value, missing cells
// included, so it is the complement of the ExactFilter on the same value.
// Categorical columns only.
type ExcludeFilter struct {
	Column string
	Value  string
}

func (f ExcludeFilter) Target() string { return f.Column }

func (f ExcludeFilter) check(desc ColumnDescriptor) error {
	if desc.Kind != Categorical {
		return kindMismatch(f.Column, Categorical, desc.Kind)
	}
	return nil
}

func (f ExcludeFilter) keep(value string) bool { return value != f.Value }

// DateFilter keeps rows falling on the same calendar day as Date. Date columns only.
type DateFilter struct {
	Column string
	Date   time.Time
}

func (f DateFilter) Target() string { return f.Column }

func (f DateFilter) check(desc ColumnDescriptor) error {
	if desc.Kind != Date {
		return kindMismatch(f.Column, Date, desc.Kind)
	}
	if f.Date.IsZero() {
		return &InvalidFilterError{Column: f.Column, Reason: "no date given"}
	}
	return nil
}

func (f DateFilter) keep(value string) bool {
	d, ok := parseDate(value)
	return ok && d.Equal(day(f.Date))
}

func kindMismatch(column string, want, got ColumnKind) error {
	return &InvalidFilterError{
		Column: column,
		Reason: fmt.Sprintf("filter needs a %s column, column is %s", want, got),
	}
}

// Filter returns the rows of t matching spec, in their original order.
// Missing cells match only an ExcludeFilter, except that a RangeFilter
// covering every value of the column in t returns t itself.
func Filter(t *Table, spec FilterSpec) (*Table, error) {
	if spec == nil {
		return nil, &InvalidFilterError{Reason: "no filter given"}
	}
	column := spec.Target()
	desc, ok := t.registry.Lookup(column)
	if !ok {
		return nil, &InvalidFilterError{Column: column, Reason: "unknown column"}
	}
	if err := spec.check(desc); err != nil {
		return nil, err
	}
	col, _ := t.ColumnIndex(column)
	if r, ok := spec.(RangeFilter); ok && r.covers(t, col) {
		return t, nil
	}

	_, keepMissing := spec.(ExcludeFilter)
	rows := make([]int32, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		v, ok := t.Value(i, col)
		if (ok && spec.keep(v)) || (!ok && keepMissing) {
			rows = append(rows, t.rows[i])
		}
	}
	return t.derive(rows), nil
}

// FilterAll applies specs left to right, so every spec must hold for a row
// to survive. The first invalid spec aborts.
func FilterAll(t *Table, specs ...FilterSpec) (*Table, error) {
	out := t
	for _, spec := range specs {
		var err error
		if out, err = Filter(out, spec); err != nil {
			return nil, err
		}
	}
	return out, nil
}
