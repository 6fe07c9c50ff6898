package api

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"dashboard/internal/charts"
	"dashboard/internal/engine"

	"github.com/labstack/echo/v4"
)

func png(c echo.Context, data []byte, err error) error {
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

// valueCounts counts rows per value of column, most frequent first.
func valueCounts(t *engine.Table, column string) ([]charts.Item, error) {
	buckets, err := engine.Aggregate(t, engine.AggregationSpec{GroupBy: column, Op: engine.Count})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Value > buckets[j].Value })
	return itemsOf(buckets), nil
}

func itemsOf(buckets []engine.Bucket) []charts.Item {
	items := make([]charts.Item, len(buckets))
	for i, b := range buckets {
		items[i] = charts.Item{Label: b.Key, Value: b.Value}
	}
	return items
}

// firstNumeric is the default column of the numeric selectors.
func firstNumeric(t *engine.Table) string {
	if names := t.Registry().ByKind(engine.Numeric); len(names) > 0 {
		return names[0]
	}
	return ""
}

// origin-wise distribution
func (h *Handler) GetOriginChart(c echo.Context) error {
	t, err := h.table()
	if err != nil {
		return err
	}
	items, err := valueCounts(t, h.cfg.Columns.Origin)
	if err != nil {
		return err
	}
	data, err := charts.Bar("Origin-wise Distribution", "Count", items)
	return png(c, data, err)
}

// bar graph of y summed per x
func (h *Handler) GetBarChart(c echo.Context) error {
	t, err := h.table()
	if err != nil {
		return err
	}
	x, err := required(c, "x")
	if err != nil {
		return err
	}
	y, err := required(c, "y")
	if err != nil {
		return err
	}
	buckets, err := engine.Aggregate(t, engine.AggregationSpec{GroupBy: x, Value: y, Op: engine.Sum})
	if err != nil {
		return err
	}
	data, err := charts.Bar(fmt.Sprintf("%s vs %s Bar Graph", x, y), y, itemsOf(buckets))
	return png(c, data, err)
}

func (h *Handler) GetScatterChart(c echo.Context) error {
	t, err := h.table()
	if err != nil {
		return err
	}
	x, err := required(c, "x")
	if err != nil {
		return err
	}
	y, err := required(c, "y")
	if err != nil {
		return err
	}
	points, err := engine.Points(t, x, y, "")
	if err != nil {
		return err
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	data, err := charts.Scatter(fmt.Sprintf("%s vs %s Scatter Plot", x, y), x, y, xs, ys)
	return png(c, data, err)
}

// line plot of the mean of y per model year, years ascending
func (h *Handler) GetLineChart(c echo.Context) error {
	t, err := h.table()
	if err != nil {
		return err
	}
	y := c.QueryParam("y")
	if y == "" {
		y = firstNumeric(t)
	}
	year := h.cfg.Columns.Year
	buckets, err := engine.Aggregate(t, engine.AggregationSpec{GroupBy: year, Value: y, Op: engine.Mean})
	if err != nil {
		return err
	}

	type point struct{ x, y float64 }
	points := make([]point, 0, len(buckets))
	for _, b := range buckets {
		if x, err := strconv.ParseFloat(b.Key, 64); err == nil {
			points = append(points, point{x, b.Value})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].x < points[j].x })
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.x, p.y
	}
	data, err := charts.Line(fmt.Sprintf("%s vs Average %s", year, y), year, "Average "+y, xs, ys)
	return png(c, data, err)
}

func (h *Handler) GetHistogram(c echo.Context) error {
	t, err := h.table()
	if err != nil {
		return err
	}
	column := c.QueryParam("column")
	if column == "" {
		column = firstNumeric(t)
	}
	bins := h.cfg.HistogramBins
	if c.QueryParam("bins") != "" {
		if bins, err = strconv.Atoi(c.QueryParam("bins")); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, `query parameter "bins" must be an integer`)
		}
	}

	hist, err := engine.Histogram(t, column, bins)
	if err != nil {
		return err
	}
	items := make([]charts.Item, len(hist))
	for i, b := range hist {
		items[i] = charts.Item{Label: fmt.Sprintf("%.4g-%.4g", b.Lower, b.Upper), Value: float64(b.Count)}
	}
	data, err := charts.Bar("Histogram of "+column, "Frequency", items)
	return png(c, data, err)
}

// pie of value counts, limited to the configured pie columns
func (h *Handler) GetPieChart(c echo.Context) error {
	t, err := h.table()
	if err != nil {
		return err
	}
	column := c.QueryParam("column")
	if column == "" {
		column = h.cfg.PieColumns[0]
	}
	allowed := false
	for _, p := range h.cfg.PieColumns {
		allowed = allowed || p == column
	}
	if !allowed {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("column %q is not available for pie charts", column))
	}

	items, err := valueCounts(t, column)
	if err != nil {
		return err
	}
	data, err := charts.Pie("Pie Chart for "+column, items)
	return png(c, data, err)
}
