package api

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"dashboard/internal/config"
	"dashboard/internal/engine"
	"dashboard/internal/models"

	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

var errLoading = echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is still loading")

// Handler serves the dashboard panels from one immutable Table. The Table is
// nil until the loader publishes it with SetData.
type Handler struct {
	cfg  config.Config
	data atomic.Pointer[engine.Table]
}

func NewHandler(cfg config.Config, table *engine.Table) *Handler {
	h := &Handler{cfg: cfg}
	if table != nil {
		h.data.Store(table)
	}
	return h
}

func (h *Handler) SetData(table *engine.Table) {
	h.data.Store(table)
}

func (h *Handler) table() (*engine.Table, error) {
	t := h.data.Load()
	if t == nil {
		return nil, errLoading
	}
	return t, nil
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api", h.etag)
	api.GET("/info", h.GetInfo)
	api.GET("/columns", h.GetColumns)
	api.GET("/rows", h.GetRows)
	api.GET("/filter", h.GetFiltered)
	api.GET("/aggregate", h.GetAggregate)
	api.GET("/points", h.GetPoints)
	api.GET("/year", h.GetByYear)
	api.GET("/date", h.GetByDate)
	api.GET("/cylinders", h.GetByCylinders)
	api.GET("/origin", h.GetByOrigin)

	charts := api.Group("/charts")
	charts.GET("/origin.png", h.GetOriginChart)
	charts.GET("/bar.png", h.GetBarChart)
	charts.GET("/scatter.png", h.GetScatterChart)
	charts.GET("/line.png", h.GetLineChart)
	charts.GET("/histogram.png", h.GetHistogram)
	charts.GET("/pie.png", h.GetPieChart)
}

// --- HELPERS ---

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// page renders the requested window of t; missing cells become null.
func page(c echo.Context, t *engine.Table) models.TablePage {
	total := t.Len()
	limit, offset := getPaginationParams(c, total)
	p := models.TablePage{
		Columns: t.Columns(),
		Rows:    make([][]*string, 0),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}
	if offset >= total {
		return p
	}

	end := offset + limit
	if end > total {
		end = total
	}
	for row := offset; row < end; row++ {
		cells := make([]*string, len(p.Columns))
		for col := range cells {
			if v, ok := t.Value(row, col); ok {
				cells[col] = &v
			}
		}
		p.Rows = append(p.Rows, cells)
	}
	return p
}

func required(c echo.Context, name string) (string, error) {
	v := c.QueryParam(name)
	if v == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("query parameter %q is required", name))
	}
	return v, nil
}

func floatParam(c echo.Context, name string) (float64, error) {
	v, err := strconv.ParseFloat(c.QueryParam(name), 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("query parameter %q must be a number", name))
	}
	return v, nil
}

func dateParam(c echo.Context, name string) (time.Time, error) {
	d, err := time.Parse(dateLayout, c.QueryParam(name))
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("query parameter %q must be a YYYY-MM-DD date", name))
	}
	return d, nil
}

func toItems(buckets []engine.Bucket) []models.AggregateItem {
	items := make([]models.AggregateItem, len(buckets))
	for i, b := range buckets {
		items[i] = models.AggregateItem{Key: b.Key, Value: b.Value, Rows: b.Rows}
	}
	return items
}

// --- HANDLERS ---

// dataset information panel
func (h *Handler) GetInfo(c echo.Context) error {
	t, err := h.table()
	if err != nil {
		return err
	}
	s := engine.Summarize(t)
	info := models.DatasetInfo{
		Rows:        s.Rows,
		Columns:     s.Columns,
		Missing:     make([]models.MissingCount, len(s.Missing)),
		Fingerprint: fmt.Sprintf("%016x", t.Fingerprint()),
	}
	for i, m := range s.Missing {
		info.Missing[i] = models.MissingCount{Column: m.Column, Count: m.Count}
	}
	for _, d := range t.Registry().Degraded {
		info.Degraded = append(info.Degraded, d.Column)
	}
	return c.JSON(http.StatusOK, info)
}

// column registry, optionally narrowed to one kind
func (h *Handler) GetColumns(c echo.Context) error {
	t, err := h.table()
	if err != nil {
		return err
	}
	descs := t.Registry().Columns()
	if k := c.QueryParam("kind"); k != "" {
		kind, err := engine.ParseColumnKind(k)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		kept := descs[:0]
		for _, d := range descs {
			if d.Kind == kind {
				kept = append(kept, d)
			}
		}
		descs = kept
	}

	out := make([]models.ColumnInfo, len(descs))
	for i, d := range descs {
		info := models.ColumnInfo{Name: d.Name, Kind: d.Kind.String(), Values: d.Values, Missing: d.Missing}
		switch d.Kind {
		case engine.Numeric:
			lo, hi := d.Min, d.Max
			info.Min, info.Max = &lo, &hi
		case engine.Date:
			for _, day := range d.Dates {
				info.Dates = append(info.Dates, day.Format(dateLayout))
			}
		}
		out[i] = info
	}
	return c.JSON(http.StatusOK, out)
}

// data table panel
func (h *Handler) GetRows(c echo.Context) error {
	t, err := h.table()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page(c, t))
}

// GetFiltered applies one filter chosen by the query: min/max for a range,
// value for an exact match, exclude for everything but a value, date for a day.
func (h *Handler) GetFiltered(c echo.Context) error {
	t, err := h.table()
	if err != nil {
		return err
	}
	column, err := required(c, "column")
	if err != nil {
		return err
	}

	var spec engine.FilterSpec
	q := c.QueryParams()
	switch {
	case q.Has("min") || q.Has("max"):
		// Unset bounds default to the column's domain, like the original sliders.
		r := engine.RangeFilter{Column: column}
		if desc, ok := t.Registry().Lookup(column); ok {
			r.Min, r.Max = desc.Min, desc.Max
		}
		if q.Has("min") {
			if r.Min, err = floatParam(c, "min"); err != nil {
				return err
			}
		}
		if q.Has("max") {
			if r.Max, err = floatParam(c, "max"); err != nil {
				return err
			}
		}
		spec = r
	case q.Has("value"):
		spec = engine.ExactFilter{Column: column, Value: q.Get("value")}
	case q.Has("exclude"):
		spec = engine.ExcludeFilter{Column: column, Value: q.Get("exclude")}
	case q.Has("date"):
		d, err := dateParam(c, "date")
		if err != nil {
			return err
		}
		spec = engine.DateFilter{Column: column, Date: d}
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "one of min, max, value, exclude or date is required")
	}

	out, err := engine.Filter(t, spec)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page(c, out))
}

func (h *Handler) GetAggregate(c echo.Context) error {
	t, err := h.table()
	if err != nil {
		return err
	}
	group, err := required(c, "group")
	if err != nil {
		return err
	}
	opName := c.QueryParam("op")
	if opName == "" {
		opName = "count"
	}
	op, err := engine.ParseAggOp(opName)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	buckets, err := engine.Aggregate(t, engine.AggregationSpec{GroupBy: group, Value: c.QueryParam("value"), Op: op})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toItems(buckets))
}

// scatter plot data with the configured name column as hover label
func (h *Handler) GetPoints(c echo.Context) error {
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
	label := h.cfg.Columns.Name
	if _, ok := t.ColumnIndex(label); !ok {
		label = ""
	}

	points, err := engine.Points(t, x, y, label)
	if err != nil {
		return err
	}
	out := make([]models.Point, len(points))
	for i, p := range points {
		out[i] = models.Point{X: p.X, Y: p.Y, Label: p.Label}
	}
	return c.JSON(http.StatusOK, out)
}

// filter by year panel; defaults to the earliest year
func (h *Handler) GetByYear(c echo.Context) error {
	t, err := h.table()
	if err != nil {
		return err
	}
	column := h.cfg.Columns.Year
	year, _ := t.Registry().Lookup(column)
	selected := year.Min
	if c.QueryParam("year") != "" {
		if selected, err = floatParam(c, "year"); err != nil {
			return err
		}
	}

	out, err := engine.Filter(t, engine.RangeFilter{Column: column, Min: selected, Max: selected})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page(c, out))
}

// specific date panel; defaults to today like a date picker, and the
// answer for "today" changes at midnight
func (h *Handler) GetByDate(c echo.Context) error {
	t, err := h.table()
	if err != nil {
		return err
	}
	selected := time.Now()
	if c.QueryParam("date") == "" {
		untagged(c)
	} else if selected, err = dateParam(c, "date"); err != nil {
		return err
	}

	out, err := engine.Filter(t, engine.DateFilter{Column: h.cfg.Columns.Date, Date: selected})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page(c, out))
}

// cylinders radio panel: sorted choices and the rows of the selected one
func (h *Handler) GetByCylinders(c echo.Context) error {
	t, err := h.table()
	if err != nil {
		return err
	}
	column := h.cfg.Columns.Cylinders
	counts, err := engine.Aggregate(t, engine.AggregationSpec{GroupBy: column, Op: engine.Count})
	if err != nil {
		return err
	}
	options := make([]float64, 0, len(counts))
	for _, b := range counts {
		if v, err := strconv.ParseFloat(b.Key, 64); err == nil {
			options = append(options, v)
		}
	}
	sort.Float64s(options)

	panel := models.CylinderPanel{Options: options}
	switch {
	case c.QueryParam("value") != "":
		if panel.Selected, err = floatParam(c, "value"); err != nil {
			return err
		}
	case len(options) > 0:
		panel.Selected = options[0]
	}

	out, err := engine.Filter(t, engine.RangeFilter{Column: column, Min: panel.Selected, Max: panel.Selected})
	if err != nil {
		return err
	}
	panel.Table = page(c, out)
	return c.JSON(http.StatusOK, panel)
}

// origin checkbox panel: ticked keeps the configured origin, unticked the rest
func (h *Handler) GetByOrigin(c echo.Context) error {
	t, err := h.table()
	if err != nil {
		return err
	}
	selected := false
	if v := c.QueryParam("selected"); v != "" {
		if selected, err = strconv.ParseBool(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, `query parameter "selected" must be a boolean`)
		}
	}

	var spec engine.FilterSpec = engine.ExcludeFilter{Column: h.cfg.Columns.Origin, Value: h.cfg.OriginValue}
	if selected {
		spec = engine.ExactFilter{Column: h.cfg.Columns.Origin, Value: h.cfg.OriginValue}
	}
	out, err := engine.Filter(t, spec)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page(c, out))
}
