package charts

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func assertPNG(t *testing.T, name string, data []byte, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: render failed: %v", name, err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Errorf("%s: output is not a PNG", name)
	}
}

func TestRenderers(t *testing.T) {
	items := []Item{{Label: "america", Value: 249}, {Label: "japan", Value: 79}, {Label: "europe", Value: 70}}

	data, err := Bar("Origin-wise Distribution", "Count", items)
	assertPNG(t, "bar", data, err)

	data, err = Pie("Pie Chart for origin", items)
	assertPNG(t, "pie", data, err)

	xs := []float64{70, 71, 72, 73}
	ys := []float64{17.7, 21.3, 18.7, 17.1}
	data, err = Line("model year vs Average mpg", "model year", "Average mpg", xs, ys)
	assertPNG(t, "line", data, err)

	data, err = Scatter("weight vs mpg", "weight", "mpg", []float64{3504, 3693, 2372}, []float64{18, 15, 24})
	assertPNG(t, "scatter", data, err)
}

func TestSinglePointStillRenders(t *testing.T) {
	data, err := Line("one year", "model year", "mpg", []float64{70}, []float64{18})
	assertPNG(t, "line", data, err)

	data, err = Bar("one bar", "Count", []Item{{Label: "america", Value: 0}})
	assertPNG(t, "bar", data, err)
}

func TestNothingToDraw(t *testing.T) {
	if _, err := Bar("empty", "Count", nil); !errors.Is(err, ErrNothingToDraw) {
		t.Errorf("Bar: expected ErrNothingToDraw, got %v", err)
	}
	if _, err := Pie("empty", []Item{{Label: "none", Value: 0}}); !errors.Is(err, ErrNothingToDraw) {
		t.Errorf("Pie: expected ErrNothingToDraw, got %v", err)
	}
	if _, err := Scatter("empty", "x", "y", nil, nil); !errors.Is(err, ErrNothingToDraw) {
		t.Errorf("Scatter: expected ErrNothingToDraw, got %v", err)
	}
}
