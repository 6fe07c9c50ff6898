package engine

import (
	"reflect"
	"strings"
	"testing"
)

// Slice of the auto-mpg dataset with a synthetic date column.
var mpgCSV = `mpg,cylinders,displacement,horsepower,weight,acceleration,model year,origin,car name,date
18,8,307,130,3504,12,70,america,chevrolet chevelle malibu,2023-01-01
15,8,350,165,3693,11.5,70,america,buick skylark 320,2023-01-02
24,4,113,95,2372,15,70,japan,toyota corona mark ii,2023-01-01
26,4,97,46,1835,20.5,70,europe,volkswagen 1131 deluxe sedan,2023-01-03
25,4,98,?,2046,19,71,america,ford pinto,2023-01-02
27,4,97,88,2130,14.5,71,japan,datsun pl510,2023-01-03
`

// The three-row table used by the origin/mpg scenarios.
var originCSV = `origin,mpg
america,20
europe,30
america,10
`

func mustRead(t *testing.T, data string) *Table {
	t.Helper()
	table, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	return table
}

func rowsOf(t *Table) [][]string {
	out := make([][]string, t.Len())
	for i := range out {
		out[i] = t.Row(i)
	}
	return out
}

func assertSameRows(t *testing.T, got, want *Table) {
	t.Helper()
	if !reflect.DeepEqual(rowsOf(got), rowsOf(want)) {
		t.Errorf("rows differ:\n got %v\nwant %v", rowsOf(got), rowsOf(want))
	}
}

func column(t *Table, name string) []string {
	out := make([]string, t.Len())
	for i := range out {
		out[i], _ = t.Cell(i, name)
	}
	return out
}

func stringsReader(s string) *strings.Reader { return strings.NewReader(s) }
