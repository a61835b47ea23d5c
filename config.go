package pdfoutline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/brunobiangulo/pdfoutline/cache"
	"github.com/brunobiangulo/pdfoutline/outline"
	"github.com/brunobiangulo/pdfoutline/parser"
)

// Config holds all configuration for extraction and batch runs.
type Config struct {
	// MaxWorkers caps the number of documents processed at once. The batch
	// runner never uses more workers than CPUs or documents.
	MaxWorkers int `json:"max_workers" yaml:"max_workers"`

	// BatchSizeMultiplier sizes the result buffer (MaxWorkers x multiplier).
	BatchSizeMultiplier int `json:"batch_size_multiplier" yaml:"batch_size_multiplier"`

	// HeadingFontRatio is the minimum size relative to body text for a span
	// to count as a heading.
	HeadingFontRatio float64 `json:"heading_font_ratio" yaml:"heading_font_ratio"`

	// CacheSize is the number of documents kept in the span cache.
	CacheSize int `json:"cache_size" yaml:"cache_size"`

	// Backend selects the parser backend from the registry. Defaults to "pdf".
	Backend string `json:"backend" yaml:"backend"`

	// StorePath enables the SQLite outline store when non-empty.
	StorePath string `json:"store_path,omitempty" yaml:"store_path,omitempty"`

	// ReportPath writes an XLSX run report after each batch when non-empty.
	ReportPath string `json:"report_path,omitempty" yaml:"report_path,omitempty"`

	// Force ignores stored outlines and re-extracts every document.
	Force bool `json:"force,omitempty" yaml:"force,omitempty"`
}

// DefaultConfig returns a Config with the stock extraction settings.
func DefaultConfig() Config {
	return Config{
		MaxWorkers:          6,
		BatchSizeMultiplier: 2,
		HeadingFontRatio:    outline.DefaultRatio,
		CacheSize:           cache.DefaultCapacity,
		Backend:             parser.BackendPDF,
	}
}

// LoadConfig reads a JSON config file over the defaults. An empty path or a
// missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from PDFOUTLINE_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PDFOUTLINE_MAX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PDFOUTLINE_MAX_WORKERS=%q", ErrInvalidConfig, v)
		}
		c.MaxWorkers = n
	}
	if v := os.Getenv("PDFOUTLINE_HEADING_FONT_RATIO"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: PDFOUTLINE_HEADING_FONT_RATIO=%q", ErrInvalidConfig, v)
		}
		c.HeadingFontRatio = r
	}
	if v := os.Getenv("PDFOUTLINE_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PDFOUTLINE_CACHE_SIZE=%q", ErrInvalidConfig, v)
		}
		c.CacheSize = n
	}
	if v := os.Getenv("PDFOUTLINE_STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv("PDFOUTLINE_BACKEND"); v != "" {
		c.Backend = v
	}
	return c.Validate()
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.MaxWorkers < 1:
		return fmt.Errorf("%w: max_workers must be at least 1, got %d", ErrInvalidConfig, c.MaxWorkers)
	case c.BatchSizeMultiplier < 1:
		return fmt.Errorf("%w: batch_size_multiplier must be at least 1, got %d", ErrInvalidConfig, c.BatchSizeMultiplier)
	case c.HeadingFontRatio <= 0:
		return fmt.Errorf("%w: heading_font_ratio must be positive, got %g", ErrInvalidConfig, c.HeadingFontRatio)
	case c.CacheSize < 1:
		return fmt.Errorf("%w: cache_size must be at least 1, got %d", ErrInvalidConfig, c.CacheSize)
	case c.Backend == "":
		return fmt.Errorf("%w: backend is required", ErrInvalidConfig)
	}
	return nil
}

// params identifies the settings a stored outline was produced with.
func (c Config) params() string {
	return fmt.Sprintf("backend=%s;ratio=%g", c.Backend, c.HeadingFontRatio)
}
