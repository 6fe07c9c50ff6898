package engine

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
)

// --- 1. CELL PARSERS ---

// missingTokens are cell values stored as nulls. "?" is how the auto-mpg
// file marks unknown horsepower.
var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"?":    {},
}

func isMissing(s string) bool {
	_, ok := missingTokens[s]
	return ok
}

// parseNumber parses a finite float; "Inf" and friends are not numbers here.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

// parseDate parses a cell as a calendar day (UTC midnight).
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return day(d), true
		}
	}
	return time.Time{}, false
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// --- 2. MAIN LOADER ---

// Load reads the CSV file at path into a Table and describes its columns.
// Any failure is a *LoadError; no partial Table is ever returned.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: errors.Wrap(err, "open dataset")}
	}
	defer f.Close()
	return read(path, f)
}

// Read is Load for data that is not on disk.
func Read(r io.Reader) (*Table, error) {
	return read("<reader>", r)
}

func read(path string, r io.Reader) (*Table, error) {
	start := time.Now()

	// A. Header
	hash := xxh3.New()
	reader := csv.NewReader(io.TeeReader(r, hash))
	reader.FieldsPerRecord = 0 // the header fixes the width of every row
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &LoadError{Path: path, Err: errors.New("empty dataset: no header row")}
	}
	if err != nil {
		return nil, csvLoadError(path, err)
	}
	names, err := headerNames(header)
	if err != nil {
		return nil, &LoadError{Path: path, Line: 1, Err: err}
	}

	// B. One string builder per column
	mem := memory.NewGoAllocator()
	builders := make([]*array.StringBuilder, len(names))
	for i := range builders {
		builders[i] = array.NewStringBuilder(mem)
		defer builders[i].Release()
	}

	// C. Rows
	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvLoadError(path, err)
		}
		for i, v := range record {
			v = strings.TrimSpace(v)
			if isMissing(v) {
				builders[i].AppendNull()
			} else {
				builders[i].Append(v)
			}
		}
		rows++
	}

	// D. Assemble the record
	fields := make([]arrow.Field, len(names))
	arrays := make([]arrow.Array, len(names))
	for i, name := range names {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
		arrays[i] = builders[i].NewArray()
	}
	rec := array.NewRecord(arrow.NewSchema(fields, nil), arrays, int64(rows))
	for _, a := range arrays {
		a.Release()
	}

	t := newTable(rec, hash.Sum64())
	t.registry = Describe(t)

	logrus.WithFields(logrus.Fields{
		"path":    path,
		"rows":    rows,
		"columns": len(names),
		"elapsed": time.Since(start),
	}).Info("dataset loaded")
	return t, nil
}

func headerNames(header []string) ([]string, error) {
	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			return nil, errors.Errorf("column %d has an empty name", i+1)
		}
		if seen[name] {
			return nil, errors.Errorf("duplicate column name %q", name)
		}
		seen[name] = true
		names[i] = name
	}
	return names, nil
}

func csvLoadError(path string, err error) *LoadError {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &LoadError{Path: path, Line: pe.Line, Err: pe.Err}
	}
	return &LoadError{Path: path, Err: errors.Wrap(err, "read dataset")}
}
