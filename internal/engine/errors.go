package engine

import "fmt"

// LoadError reports a dataset that could not be read into a Table.
type LoadError struct {
	Path string
	Line int // 0 when the failure is not tied to a record
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// UnsupportedColumnError marks a column with no values to infer a kind from.
// Describe recovers from it by degrading the column to an empty Categorical.
type UnsupportedColumnError struct {
	Column string
}

func (e *UnsupportedColumnError) Error() string {
	return fmt.Sprintf("column %q has no values; treated as categorical", e.Column)
}

// InvalidFilterError means a FilterSpec does not fit the table it was applied to.
type InvalidFilterError struct {
	Column string
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter on %q: %s", e.Column, e.Reason)
}

// InvalidAggregationError means an AggregationSpec does not fit the table.
type InvalidAggregationError struct {
	Column string
	Reason string
}

func (e *InvalidAggregationError) Error() string {
	return fmt.Sprintf("invalid aggregation on %q: %s", e.Column, e.Reason)
}
