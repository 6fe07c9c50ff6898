package engine

import (
	"reflect"
	"testing"
	"time"
)

func TestDescribeNumeric(t *testing.T) {
	reg := mustRead(t, "n\n1\n2\n3\n").Registry()
	desc, ok := reg.Lookup("n")
	if !ok {
		t.Fatal("column n not registered")
	}
	if desc.Kind != Numeric {
		t.Fatalf("Expected numeric, got %s", desc.Kind)
	}
	if desc.Min != 1 || desc.Max != 3 {
		t.Errorf("Expected domain (1,3), got (%g,%g)", desc.Min, desc.Max)
	}
}

func TestDescribeCategorical(t *testing.T) {
	reg := mustRead(t, "origin\namerica\neurope\namerica\n").Registry()
	desc, _ := reg.Lookup("origin")
	if desc.Kind != Categorical {
		t.Fatalf("Expected categorical, got %s", desc.Kind)
	}
	if want := []string{"america", "europe"}; !reflect.DeepEqual(desc.Values, want) {
		t.Errorf("Expected domain %v, got %v", want, desc.Values)
	}
}

func TestDescribeDate(t *testing.T) {
	reg := mustRead(t, mpgCSV).Registry()
	desc, _ := reg.Lookup("date")
	if desc.Kind != Date {
		t.Fatalf("Expected date, got %s", desc.Kind)
	}
	want := []time.Time{
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	if !reflect.DeepEqual(desc.Dates, want) {
		t.Errorf("Expected dates %v, got %v", want, desc.Dates)
	}
}

func TestDescribeDateNeedsDateName(t *testing.T) {
	reg := mustRead(t, "released\n2023-01-01\n2023-01-02\n").Registry()
	desc, _ := reg.Lookup("released")
	if desc.Kind != Categorical {
		t.Errorf("Date values under a non-date name should stay categorical, got %s", desc.Kind)
	}

	reg = mustRead(t, "sale_date\n2023-01-01\nsoon\n").Registry()
	desc, _ = reg.Lookup("sale_date")
	if desc.Kind != Categorical {
		t.Errorf("Unparseable dates should fall back to categorical, got %s", desc.Kind)
	}
}

func TestDescribeMissingValues(t *testing.T) {
	reg := mustRead(t, mpgCSV).Registry()
	desc, _ := reg.Lookup("horsepower")
	if desc.Kind != Numeric {
		t.Fatalf("Missing cells must not block numeric inference, got %s", desc.Kind)
	}
	if desc.Missing != 1 || desc.Min != 46 || desc.Max != 165 {
		t.Errorf("Unexpected horsepower descriptor %+v", desc)
	}
}

func TestDescribeEmptyColumnDegrades(t *testing.T) {
	reg := mustRead(t, "a,b\n1,\n2,\n").Registry()
	desc, ok := reg.Lookup("b")
	if !ok {
		t.Fatal("empty column should still be registered")
	}
	if desc.Kind != Categorical || len(desc.Values) != 0 || desc.Missing != 2 {
		t.Errorf("Expected empty categorical, got %+v", desc)
	}
	if len(reg.Degraded) != 1 || reg.Degraded[0].Column != "b" {
		t.Errorf("Expected b to be reported degraded, got %v", reg.Degraded)
	}
}

func TestRegistryByKind(t *testing.T) {
	reg := mustRead(t, mpgCSV).Registry()
	want := []string{"mpg", "cylinders", "displacement", "horsepower", "weight", "acceleration", "model year"}
	if got := reg.ByKind(Numeric); !reflect.DeepEqual(got, want) {
		t.Errorf("Numeric columns: got %v, want %v", got, want)
	}
	if got := reg.ByKind(Categorical); !reflect.DeepEqual(got, []string{"origin", "car name"}) {
		t.Errorf("Categorical columns: got %v", got)
	}
	if len(reg.Columns()) != 10 {
		t.Errorf("Expected 10 descriptors, got %d", len(reg.Columns()))
	}
}

func TestColumnKindRoundTrip(t *testing.T) {
	for _, k := range []ColumnKind{Numeric, Categorical, Date} {
		got, err := ParseColumnKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseColumnKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseColumnKind("blob"); err == nil {
		t.Error("Expected an error for an unknown kind")
	}
}
