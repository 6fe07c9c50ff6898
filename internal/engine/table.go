package engine

import (
	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
)

// Table holds the dataset column by column: one Arrow string array per
// column, missing cells stored as nulls. A Table never changes after it is
// built. Filtering produces a new Table that shares the column buffers and
// only narrows the row selection.
type Table struct {
	record  arrow.Record
	names   []string
	columns []*array.String
	index   map[string]int

	// Selected row ids into record, in original order.
	rows []int32

	registry    *Registry
	fingerprint uint64
}

func newTable(rec arrow.Record, fingerprint uint64) *Table {
	n := int(rec.NumRows())
	t := &Table{
		record:      rec,
		names:       make([]string, rec.NumCols()),
		columns:     make([]*array.String, rec.NumCols()),
		index:       make(map[string]int, rec.NumCols()),
		rows:        make([]int32, n),
		fingerprint: fingerprint,
	}
	for i, f := range rec.Schema().Fields() {
		t.names[i] = f.Name
		t.columns[i] = rec.Column(i).(*array.String)
		t.index[f.Name] = i
	}
	for i := range t.rows {
		t.rows[i] = int32(i)
	}
	return t
}

// derive returns a Table over the same columns restricted to rows.
func (t *Table) derive(rows []int32) *Table {
	sub := *t
	sub.rows = rows
	return &sub
}

// Len is the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns the column names in header order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// ColumnIndex resolves a column name to its position.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Value returns the raw cell at (row, col); ok is false for a missing cell.
func (t *Table) Value(row, col int) (string, bool) {
	arr := t.columns[col]
	id := int(t.rows[row])
	if arr.IsNull(id) {
		return "", false
	}
	return arr.Value(id), true
}

// Cell is Value addressed by column name.
func (t *Table) Cell(row int, column string) (string, bool) {
	col, ok := t.index[column]
	if !ok {
		return "", false
	}
	return t.Value(row, col)
}

// Row returns one row as raw strings; missing cells come back as "".
func (t *Table) Row(row int) []string {
	out := make([]string, len(t.columns))
	for col := range t.columns {
		out[col], _ = t.Value(row, col)
	}
	return out
}

// Registry is the column registry of the dataset this Table came from.
func (t *Table) Registry() *Registry { return t.registry }

// Fingerprint is the xxh3 hash of the raw input the dataset was read from.
func (t *Table) Fingerprint() uint64 { return t.fingerprint }
