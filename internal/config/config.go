package config

import (
	"os"

	"dashboard/internal/engine"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// DefaultPath is where the server looks for its configuration.
const DefaultPath = "dashboard.yaml"

// Columns names the dataset columns the dashboard panels are built on.
type Columns struct {
	Origin    string `yaml:"origin"`
	Year      string `yaml:"year"`
	Cylinders string `yaml:"cylinders"`
	Name      string `yaml:"name"`
	Date      string `yaml:"date"`
}

type Config struct {
	Addr     string `yaml:"addr"`
	DataPath string `yaml:"data_path"`
	LogLevel string `yaml:"log_level"`

	// RateLimit is the allowed requests per second per client.
	RateLimit float64 `yaml:"rate_limit"`

	Columns Columns `yaml:"columns"`

	// OriginValue is the origin ticked by the origin checkbox panel.
	OriginValue   string   `yaml:"origin_value"`
	PieColumns    []string `yaml:"pie_columns"`
	HistogramBins int      `yaml:"histogram_bins"`
}

// Default matches the auto-mpg dataset.
func Default() Config {
	return Config{
		Addr:      ":8080",
		DataPath:  "mpg.csv",
		LogLevel:  "info",
		RateLimit: 20,
		Columns: Columns{
			Origin:    "origin",
			Year:      "model year",
			Cylinders: "cylinders",
			Name:      "car name",
			Date:      "date",
		},
		OriginValue:   "america",
		PieColumns:    []string{"model year", "origin", "cylinders"},
		HistogramBins: 20,
	}
}

// Load reads a YAML config over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.UnmarshalStrict(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("config: addr is empty")
	case c.DataPath == "":
		return errors.New("config: data_path is empty")
	case c.RateLimit <= 0:
		return errors.Errorf("config: rate_limit must be positive, got %g", c.RateLimit)
	case c.HistogramBins <= 0 || c.HistogramBins > engine.MaxBins:
		return errors.Errorf("config: histogram_bins must be between 1 and %d, got %d", engine.MaxBins, c.HistogramBins)
	case len(c.PieColumns) == 0:
		return errors.New("config: pie_columns is empty")
	}
	return nil
}
