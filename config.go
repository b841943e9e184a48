package muon

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Translator and bridge defaults. The click-vs-drag thresholds are
// deliberately configuration, not constants: different input devices and
// applications want different disambiguation windows.
const (
	defaultClickMaxDuration = 400 * time.Millisecond
	defaultDragMinDistance  = 4.0 // pixels
	defaultStartupTimeout   = 5 * time.Second
)

// Config holds the tunable parameters of the event pipeline.
type Config struct {
	// ClickMaxDuration is the longest press-to-release interval still
	// reported as a click. Longer holds are reinterpreted as drags.
	// Non-positive disables the time check.
	ClickMaxDuration time.Duration

	// DragMinDistance is the movement in pixels from the press point beyond
	// which a held pointer becomes a drag.
	DragMinDistance float64

	// StartupTimeout bounds how long StartApp waits for a nested worker to
	// acknowledge readiness.
	StartupTimeout time.Duration
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		ClickMaxDuration: defaultClickMaxDuration,
		DragMinDistance:  defaultDragMinDistance,
		StartupTimeout:   defaultStartupTimeout,
	}
}

// fileConfig is the YAML shape. Durations are strings in time.ParseDuration
// form ("250ms", "1.5s"); pointers distinguish absent from zero.
type fileConfig struct {
	ClickMaxDuration string   `yaml:"click_max_duration"`
	DragMinDistance  *float64 `yaml:"drag_min_distance"`
	StartupTimeout   string   `yaml:"startup_timeout"`
}

// LoadConfig reads a YAML config file over the defaults. Fields absent from
// the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if fc.ClickMaxDuration != "" {
		d, err := time.ParseDuration(fc.ClickMaxDuration)
		if err != nil {
			return cfg, fmt.Errorf("parse click_max_duration: %w", err)
		}
		cfg.ClickMaxDuration = d
	}
	if fc.DragMinDistance != nil {
		cfg.DragMinDistance = *fc.DragMinDistance
	}
	if fc.StartupTimeout != "" {
		d, err := time.ParseDuration(fc.StartupTimeout)
		if err != nil {
			return cfg, fmt.Errorf("parse startup_timeout: %w", err)
		}
		cfg.StartupTimeout = d
	}
	return cfg, nil
}

// RunConfig configures the Run convenience loop.
type RunConfig struct {
	Title  string
	Width  int
	Height int

	// FrameRate is the frame push cadence in nested mode. Zero means 30.
	FrameRate int
}

func (c RunConfig) frameInterval() time.Duration {
	fps := c.FrameRate
	if fps <= 0 {
		fps = 30
	}
	return time.Second / time.Duration(fps)
}
