package engine

import (
	"math"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ColumnKind is the inferred kind of a column.
type ColumnKind int

const (
	Categorical ColumnKind = iota
	Numeric
	Date
)

func (k ColumnKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Date:
		return "date"
	default:
		return "categorical"
	}
}

func (k ColumnKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseColumnKind is the inverse of ColumnKind.String.
func ParseColumnKind(s string) (ColumnKind, error) {
	switch s {
	case "numeric":
		return Numeric, nil
	case "categorical":
		return Categorical, nil
	case "date":
		return Date, nil
	}
	return Categorical, errors.Errorf("unknown column kind %q", s)
}

// ColumnDescriptor is the kind and value domain of one column.
type ColumnDescriptor struct {
	Name string
	Kind ColumnKind

	// Numeric domain.
	Min, Max float64

	// Categorical domain, distinct raw values in first-appearance order.
	Values []string

	// Date domain, distinct days in first-appearance order.
	Dates []time.Time

	Missing int
}

// Registry is the immutable set of column descriptors of a Table.
type Registry struct {
	columns []ColumnDescriptor
	index   map[string]int

	// Degraded lists the columns that had nothing to infer a kind from.
	Degraded []*UnsupportedColumnError
}

// dateColumnName matches "date", "sale_date", "Model Date", "date_added", ...
var dateColumnName = regexp.MustCompile(`(?i)^(date|.+[_ ]date|date[_ ].+)$`)

// Describe infers a descriptor for every column of t: numeric if every value
// parses as a number, date if the name follows a date convention and every
// value parses as a day, categorical otherwise.
func Describe(t *Table) *Registry {
	reg := &Registry{
		columns: make([]ColumnDescriptor, len(t.names)),
		index:   make(map[string]int, len(t.names)),
	}
	for col, name := range t.names {
		desc, err := describeColumn(t, col, name)
		if err != nil {
			var unsupported *UnsupportedColumnError
			if errors.As(err, &unsupported) {
				reg.Degraded = append(reg.Degraded, unsupported)
			}
			logrus.WithField("column", name).WithError(err).Warn("column degraded")
		}
		reg.columns[col] = desc
		reg.index[name] = col
	}
	return reg
}

func describeColumn(t *Table, col int, name string) (ColumnDescriptor, error) {
	desc := ColumnDescriptor{Name: name, Kind: Categorical}

	values := make([]string, 0, t.Len())
	for row := 0; row < t.Len(); row++ {
		v, ok := t.Value(row, col)
		if !ok {
			desc.Missing++
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		desc.Values = []string{}
		return desc, &UnsupportedColumnError{Column: name}
	}

	if lo, hi, ok := numericDomain(values); ok {
		desc.Kind = Numeric
		desc.Min, desc.Max = lo, hi
		return desc, nil
	}

	if dateColumnName.MatchString(name) {
		if dates, ok := dateDomain(values); ok {
			desc.Kind = Date
			desc.Dates = dates
			return desc, nil
		}
	}

	desc.Values = distinct(values)
	return desc, nil
}

func numericDomain(values []string) (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		f, ok := parseNumber(v)
		if !ok {
			return 0, 0, false
		}
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}
	return lo, hi, true
}

func dateDomain(values []string) ([]time.Time, bool) {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, v := range values {
		d, ok := parseDate(v)
		if !ok {
			return nil, false
		}
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	return dates, true
}

func distinct(values []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Columns returns all descriptors in header order.
func (r *Registry) Columns() []ColumnDescriptor {
	out := make([]ColumnDescriptor, len(r.columns))
	copy(out, r.columns)
	return out
}

// Lookup finds the descriptor of a column.
func (r *Registry) Lookup(name string) (ColumnDescriptor, bool) {
	i, ok := r.index[name]
	if !ok {
		return ColumnDescriptor{}, false
	}
	return r.columns[i], true
}

// ByKind returns the names of the columns of one kind, in header order.
func (r *Registry) ByKind(kind ColumnKind) []string {
	var names []string
	for _, c := range r.columns {
		if c.Kind == kind {
			names = append(names, c.Name)
		}
	}
	return names
}
