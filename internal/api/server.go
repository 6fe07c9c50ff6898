package api

import (
	"fmt"
	"net/http"

	"dashboard/internal/charts"
	"dashboard/internal/config"
	"dashboard/internal/engine"
	"dashboard/internal/models"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
	"golang.org/x/time/rate"
)

// NewServer builds the echo instance serving the dashboard.
func NewServer(cfg config.Config, h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = jsonSerializer{}
	e.HTTPErrorHandler = h.HandleError
	e.Logger.SetLevel(echoLevel(cfg.LogLevel))

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))

	h.RegisterRoutes(e)
	return e
}

func echoLevel(level string) log.Lvl {
	switch level {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}

// HandleError turns handler errors into JSON error bodies. Engine
// validation errors are the caller's fault and come back as 400 with the
// engine's message.
func (h *Handler) HandleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, msg := http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	var (
		fe *engine.InvalidFilterError
		ae *engine.InvalidAggregationError
		he *echo.HTTPError
	)
	switch {
	case errors.As(err, &fe), errors.As(err, &ae):
		code, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, charts.ErrNothingToDraw):
		code, msg = http.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &he):
		code, msg = he.Code, fmt.Sprint(he.Message)
	}
	if code >= http.StatusInternalServerError {
		logrus.WithError(err).WithField("uri", c.Request().RequestURI).Error("request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, models.ErrorResponse{Error: msg})
	}
	if err != nil {
		logrus.WithError(err).Warn("could not write error response")
	}
}

// untaggedKey marks a response that depends on more than the dataset and URI.
const untaggedKey = "untagged"

// untagged keeps the etag middleware from tagging the current response.
func untagged(c echo.Context) { c.Set(untaggedKey, true) }

// etag tags successful responses with a hash of the dataset fingerprint and
// request URI, and answers a matching If-None-Match with 304. Responses marked
// with untagged never get a tag, so no client can revalidate them.
func (h *Handler) etag(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		t := h.data.Load()
		if t == nil {
			return next(c)
		}
		tag := fmt.Sprintf(`"%016x"`, xxh3.HashString(fmt.Sprintf("%016x %s", t.Fingerprint(), c.Request().RequestURI)))
		if c.Request().Header.Get("If-None-Match") == tag {
			return c.NoContent(http.StatusNotModified)
		}
		res := c.Response()
		res.Before(func() {
			if res.Status < http.StatusMultipleChoices && c.Get(untaggedKey) == nil {
				res.Header().Set("ETag", tag)
			}
		})
		return next(c)
	}
}

// jsonSerializer plugs goccy/go-json into echo.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}
