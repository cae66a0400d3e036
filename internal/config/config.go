package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/treykane/cli-pdf/internal/logging"
)

const (
	configDirName  = ".cli-pdf"
	configFileName = "config.json"
)

// Defaults applied to fields left unset in the config file.
const (
	DefaultScale            = 1.0
	DefaultScaleStep        = 0.25
	DefaultOverscan         = 2
	DefaultPageSpacing      = 10.0
	DefaultResizeDebounceMS = 300
	DefaultCellWidth        = 8.0
	DefaultCellHeight       = 16.0
	DefaultRasterCacheSize  = 32
	DefaultWatchIntervalMS  = 2000
)

var log = logging.New("config")

var ErrNotConfigured = errors.New("cli-pdf is not configured")

// Config stores user-defined viewer settings.
//
// Layout values are expressed in document points: CellWidth and CellHeight
// describe how many points one terminal cell covers at scale 1.
type Config struct {
	Scale            float64 `json:"scale"`
	ScaleStep        float64 `json:"scale_step,omitempty"`
	Overscan         int     `json:"overscan,omitempty"`
	PageSpacing      float64 `json:"page_spacing,omitempty"`
	ResizeDebounceMS int     `json:"resize_debounce_ms,omitempty"`
	CellWidth        float64 `json:"cell_width,omitempty"`
	CellHeight       float64 `json:"cell_height,omitempty"`
	RasterCacheSize  int     `json:"raster_cache_size,omitempty"`
	LastDocument     string  `json:"last_document,omitempty"`

	// WatchIntervalMS is how often the open document is checked for changes
	// on disk. Negative disables reloading.
	WatchIntervalMS int `json:"watch_interval_ms,omitempty"`

	// Keybindings maps action names to a replacement key, e.g.
	// {"page.next": "ctrl+n"}. Unknown actions are ignored with a warning.
	Keybindings map[string]string `json:"keybindings,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Scale:            DefaultScale,
		ScaleStep:        DefaultScaleStep,
		Overscan:         DefaultOverscan,
		PageSpacing:      DefaultPageSpacing,
		ResizeDebounceMS: DefaultResizeDebounceMS,
		CellWidth:        DefaultCellWidth,
		CellHeight:       DefaultCellHeight,
		RasterCacheSize:  DefaultRasterCacheSize,
		WatchIntervalMS:  DefaultWatchIntervalMS,
	}
}

// ResizeDebounce returns the resize quiet period as a duration.
func (c Config) ResizeDebounce() time.Duration {
	return time.Duration(c.ResizeDebounceMS) * time.Millisecond
}

// WatchInterval returns the document poll interval, or 0 when disabled.
func (c Config) WatchInterval() time.Duration {
	if c.WatchIntervalMS <= 0 {
		return 0
	}
	return time.Duration(c.WatchIntervalMS) * time.Millisecond
}

// Dir returns the directory holding the config and state files.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName), nil
}

// ConfigPath returns the configuration file path.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Exists reports whether the config file exists.
func Exists() (bool, error) {
	path, err := ConfigPath()
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Load reads and validates the saved configuration. Unset fields are filled
// with defaults.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, ErrNotConfigured
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	log.Debug("loaded config", "path", path, "scale", cfg.Scale)
	return cfg, nil
}

// Save writes configuration to disk.
func Save(cfg Config) error {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.LastDocument != "" {
		doc, err := NormalizeDocumentPath(cfg.LastDocument)
		if err != nil {
			return fmt.Errorf("invalid last_document: %w", err)
		}
		cfg.LastDocument = doc
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	log.Info("saved config", "path", path)
	return nil
}

// Validate rejects values the viewer cannot lay out with.
func (c Config) Validate() error {
	if !positiveFinite(c.Scale) {
		return fmt.Errorf("invalid scale %v: must be a positive number", c.Scale)
	}
	if !positiveFinite(c.ScaleStep) {
		return fmt.Errorf("invalid scale_step %v: must be a positive number", c.ScaleStep)
	}
	if c.Overscan < 0 {
		return fmt.Errorf("invalid overscan %d: must not be negative", c.Overscan)
	}
	if c.PageSpacing < 0 || math.IsNaN(c.PageSpacing) || math.IsInf(c.PageSpacing, 0) {
		return fmt.Errorf("invalid page_spacing %v: must not be negative", c.PageSpacing)
	}
	if c.ResizeDebounceMS < 0 {
		return fmt.Errorf("invalid resize_debounce_ms %d: must not be negative", c.ResizeDebounceMS)
	}
	if !positiveFinite(c.CellWidth) || !positiveFinite(c.CellHeight) {
		return fmt.Errorf("invalid cell size %vx%v: must be positive", c.CellWidth, c.CellHeight)
	}
	if c.RasterCacheSize < 0 {
		return fmt.Errorf("invalid raster_cache_size %d: must not be negative", c.RasterCacheSize)
	}
	return nil
}

// withDefaults fills zero-valued fields. Zero means unset for every field,
// so the file cannot switch overscan or page spacing off entirely.
func (c Config) withDefaults() Config {
	d := Default()
	if c.Scale == 0 {
		c.Scale = d.Scale
	}
	if c.ScaleStep == 0 {
		c.ScaleStep = d.ScaleStep
	}
	if c.Overscan == 0 {
		c.Overscan = d.Overscan
	}
	if c.PageSpacing == 0 {
		c.PageSpacing = d.PageSpacing
	}
	if c.ResizeDebounceMS == 0 {
		c.ResizeDebounceMS = d.ResizeDebounceMS
	}
	if c.CellWidth == 0 {
		c.CellWidth = d.CellWidth
	}
	if c.CellHeight == 0 {
		c.CellHeight = d.CellHeight
	}
	if c.RasterCacheSize == 0 {
		c.RasterCacheSize = d.RasterCacheSize
	}
	if c.WatchIntervalMS == 0 {
		c.WatchIntervalMS = d.WatchIntervalMS
	}
	return c
}

// NormalizeDocumentPath expands and normalizes a document path.
func NormalizeDocumentPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is required")
	}

	expanded, err := expandHome(trimmed)
	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}

	return filepath.Clean(abs), nil
}

func expandHome(path string) (string, error) {
	if path == "~" {
		return os.UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
	}
	return path, nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
