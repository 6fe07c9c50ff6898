package engine

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestAggregateMean(t *testing.T) {
	table := mustRead(t, originCSV)
	got, err := Aggregate(table, AggregationSpec{GroupBy: "origin", Value: "mpg", Op: Mean})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	want := []Bucket{
		{Key: "america", Value: 15, Rows: 2},
		{Key: "europe", Value: 30, Rows: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestAggregateCountSumsToRows(t *testing.T) {
	table := mustRead(t, mpgCSV)
	for _, group := range table.Columns() {
		buckets, err := Aggregate(table, AggregationSpec{GroupBy: group, Op: Count})
		if err != nil {
			t.Fatalf("%s: %v", group, err)
		}
		total := 0
		for _, b := range buckets {
			total += b.Rows
			if b.Value != float64(b.Rows) {
				t.Errorf("%s/%s: count value %g != rows %d", group, b.Key, b.Value, b.Rows)
			}
		}
		if total != table.Len() {
			t.Errorf("%s: counts sum to %d, want %d", group, total, table.Len())
		}
	}
}

func TestAggregateCountOrder(t *testing.T) {
	table := mustRead(t, mpgCSV)
	buckets, err := Aggregate(table, AggregationSpec{GroupBy: "origin", Op: Count})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	want := []Bucket{
		{Key: "america", Value: 3, Rows: 3},
		{Key: "japan", Value: 2, Rows: 2},
		{Key: "europe", Value: 1, Rows: 1},
	}
	if !reflect.DeepEqual(buckets, want) {
		t.Errorf("Expected first-appearance order %v, got %v", want, buckets)
	}
}

func TestAggregateMeanWithinDomain(t *testing.T) {
	table := mustRead(t, mpgCSV+"35,4,97,0.1,2130,0.1,72,japan,x,2023-01-04\n36,4,97,0.1,2130,0.1,72,japan,y,2023-01-04\n37,4,97,0.1,2130,0.1,72,japan,z,2023-01-04\n")
	for _, value := range table.Registry().ByKind(Numeric) {
		desc, _ := table.Registry().Lookup(value)
		buckets, err := Aggregate(table, AggregationSpec{GroupBy: "model year", Value: value, Op: Mean})
		if err != nil {
			t.Fatalf("%s: %v", value, err)
		}
		for _, b := range buckets {
			if b.Value < desc.Min || b.Value > desc.Max {
				t.Errorf("%s/%s: mean %g outside [%g,%g]", value, b.Key, b.Value, desc.Min, desc.Max)
			}
		}
	}
}

func TestAggregateMeanSkipsMissing(t *testing.T) {
	table := mustRead(t, mpgCSV)
	buckets, err := Aggregate(table, AggregationSpec{GroupBy: "model year", Value: "horsepower", Op: Mean})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	// 71 has one missing horsepower, leaving only 88.
	if len(buckets) != 2 || buckets[1].Key != "71" || buckets[1].Value != 88 || buckets[1].Rows != 1 {
		t.Errorf("Unexpected buckets %v", buckets)
	}
}

func TestAggregateSum(t *testing.T) {
	table := mustRead(t, originCSV)
	got, err := Aggregate(table, AggregationSpec{GroupBy: "origin", Value: "mpg", Op: Sum})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if got[0].Value != 30 || got[1].Value != 30 {
		t.Errorf("Unexpected sums %v", got)
	}
}

func TestAggregateMissingGroupKey(t *testing.T) {
	table := mustRead(t, "origin,mpg\namerica,20\n,30\namerica,10\n")
	got, err := Aggregate(table, AggregationSpec{GroupBy: "origin", Op: Count})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	want := []Bucket{{Key: "america", Value: 2, Rows: 2}, {Key: "", Value: 1, Rows: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestAggregateEmptyTable(t *testing.T) {
	table := mustRead(t, originCSV)
	empty, err := Filter(table, ExactFilter{Column: "origin", Value: "mars"})
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	for _, op := range []AggOp{Count, Mean, Sum} {
		got, err := Aggregate(empty, AggregationSpec{GroupBy: "origin", Value: "mpg", Op: op})
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", op, err)
		}
		if len(got) != 0 {
			t.Errorf("%s: expected no buckets, got %v", op, got)
		}
	}
}

func TestAggregateInvalid(t *testing.T) {
	table := mustRead(t, mpgCSV)
	cases := map[string]AggregationSpec{
		"mean of categorical": {GroupBy: "model year", Value: "origin", Op: Mean},
		"sum of date":         {GroupBy: "origin", Value: "date", Op: Sum},
		"unknown group":       {GroupBy: "colour", Op: Count},
		"unknown value":       {GroupBy: "origin", Value: "colour", Op: Mean},
		"unknown count value": {GroupBy: "origin", Value: "colour", Op: Count},
		"unknown op":          {GroupBy: "origin", Value: "mpg", Op: AggOp(9)},
	}
	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Aggregate(table, spec)
			var ae *InvalidAggregationError
			if !errors.As(err, &ae) {
				t.Fatalf("Expected *InvalidAggregationError, got %v", err)
			}
		})
	}
}

func TestParseAggOp(t *testing.T) {
	for in, want := range map[string]AggOp{"count": Count, "mean": Mean, "avg": Mean, "sum": Sum} {
		got, err := ParseAggOp(in)
		if err != nil || got != want {
			t.Errorf("ParseAggOp(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseAggOp("median"); err == nil {
		t.Error("Expected an error for median")
	}
}
