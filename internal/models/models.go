package models

type DatasetInfo struct {
	Rows        int            `json:"rows"`
	Columns     int            `json:"columns"`
	Missing     []MissingCount `json:"missing_values"`
	Fingerprint string         `json:"fingerprint"`
	Degraded    []string       `json:"degraded_columns,omitempty"`
}

type MissingCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

type ColumnInfo struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Values  []string `json:"values,omitempty"`
	Dates   []string `json:"dates,omitempty"`
	Missing int      `json:"missing"`
}

// TablePage is one page of a (possibly filtered) table. Missing cells are null.
type TablePage struct {
	Columns []string    `json:"columns"`
	Rows    [][]*string `json:"rows"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
}

type AggregateItem struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Rows  int     `json:"rows"`
}

// CylinderPanel backs the cylinders radio: the choices and the rows of the
// selected one.
type CylinderPanel struct {
	Options  []float64 `json:"options"`
	Selected float64   `json:"selected"`
	Table    TablePage `json:"table"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}
