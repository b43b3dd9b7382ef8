// Package config loads and saves graphedit settings as TOML.
//
// The file lives at $XDG_CONFIG_HOME/graphedit/config.toml (falling back to
// ~/.config/graphedit). A missing file yields [Default]; keys absent from
// the file keep their default values.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/graphedit/pkg/editor"
	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/interact"
	"github.com/matzehuels/graphedit/pkg/routing"
)

// FileName is the config file name inside [Dir].
const FileName = "config.toml"

// Config holds graphedit configuration.
type Config struct {
	Editor   EditorConfig   `toml:"editor"`
	Polyline PolylineConfig `toml:"polyline"`
	HitTest  HitTestConfig  `toml:"hittest"`
	History  HistoryConfig  `toml:"history"`
	Graphviz GraphvizConfig `toml:"graphviz"`
}

// EditorConfig tunes dragging and routing.
type EditorConfig struct {
	RoutingMode     string  `toml:"routing_mode"` // straight, spline, rectilinear, incremental
	NodeSeparation  float64 `toml:"node_separation"`
	FanoutFactor    float64 `toml:"fanout_factor"`
	ClusterMargin   float64 `toml:"cluster_margin"`
	SceneMargin     float64 `toml:"scene_margin"`
	DragThreshold   float64 `toml:"drag_threshold"`
	CornerTolerance float64 `toml:"corner_tolerance"`
	LineWidth       float64 `toml:"line_width"`
}

// PolylineConfig tunes corner editing and curve construction.
type PolylineConfig struct {
	CornerRadius         float64 `toml:"corner_radius"`
	InsertBandLow        float64 `toml:"insert_band_low"`
	InsertBandHigh       float64 `toml:"insert_band_high"`
	PortSnapRadiusFactor float64 `toml:"port_snap_radius_factor"`
	ArrowheadLength      float64 `toml:"arrowhead_length"`
	MinCurveSize         float64 `toml:"min_curve_size"`
}

// HitTestConfig tunes picking.
type HitTestConfig struct {
	Slack      float64 `toml:"slack"`
	LeafStroke float64 `toml:"leaf_stroke"`
}

// HistoryConfig bounds the undo log.
type HistoryConfig struct {
	MaxActions int `toml:"max_actions"` // 0 = unbounded
}

// GraphvizConfig selects the layout backend.
type GraphvizConfig struct {
	Engine         string `toml:"engine"`
	RelayoutEngine string `toml:"relayout_engine"`
	Cache          bool   `toml:"cache"`
	CacheTTL       string `toml:"cache_ttl"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			RoutingMode:     "straight",
			NodeSeparation:  10,
			FanoutFactor:    6,
			ClusterMargin:   10,
			SceneMargin:     10,
			DragThreshold:   2,
			CornerTolerance: 3,
			LineWidth:       1,
		},
		Polyline: PolylineConfig{
			CornerRadius:         3,
			InsertBandLow:        0.1,
			InsertBandHigh:       0.9,
			PortSnapRadiusFactor: 2,
			ArrowheadLength:      10,
			MinCurveSize:         5,
		},
		HitTest:  HitTestConfig{Slack: 3, LeafStroke: 1},
		History:  HistoryConfig{MaxActions: 500},
		Graphviz: GraphvizConfig{Engine: "neato", RelayoutEngine: "dot", Cache: true, CacheTTL: "24h"},
	}
}

// Dir returns the graphedit config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "graphedit")
}

// Path returns the default config file path.
func Path() string { return filepath.Join(Dir(), FileName) }

// Load reads the config at path over the defaults. A missing file is not an
// error. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := routing.ParseMode(c.Editor.RoutingMode); err != nil {
		return err
	}
	p := c.Polyline
	if p.InsertBandLow < 0 || p.InsertBandLow >= p.InsertBandHigh || p.InsertBandHigh > 1 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"insert band [%g, %g] must satisfy 0 <= low < high <= 1", p.InsertBandLow, p.InsertBandHigh)
	}
	for name, v := range map[string]float64{
		"polyline.corner_radius":           p.CornerRadius,
		"polyline.port_snap_radius_factor": p.PortSnapRadiusFactor,
		"editor.node_separation":           c.Editor.NodeSeparation,
		"editor.fanout_factor":             c.Editor.FanoutFactor,
	} {
		if v <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be positive, got %g", name, v)
		}
	}
	if c.History.MaxActions < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "history.max_actions must not be negative")
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	return nil
}

// CacheTTL parses graphviz.cache_ttl.
func (c *Config) CacheTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Graphviz.CacheTTL)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "graphviz.cache_ttl")
	}
	return d, nil
}

// =============================================================================
// Conversions
// =============================================================================

// EditorSettings returns the orchestrator tuning. The config must be valid.
func (c *Config) EditorSettings() editor.Settings {
	mode, _ := routing.ParseMode(c.Editor.RoutingMode)
	return editor.Settings{
		Mode:            mode,
		NodeSeparation:  c.Editor.NodeSeparation,
		FanoutFactor:    c.Editor.FanoutFactor,
		CornerTolerance: c.Editor.CornerTolerance,
		InsertBandLow:   c.Polyline.InsertBandLow,
		InsertBandHigh:  c.Polyline.InsertBandHigh,
		LineWidth:       c.Editor.LineWidth,
		Routing:         c.RoutingOptions(),
	}
}

// RoutingOptions returns the curve construction options.
func (c *Config) RoutingOptions() routing.Options {
	opts := routing.DefaultOptions()
	opts.ArrowheadLength = c.Polyline.ArrowheadLength
	opts.MinCurveSize = c.Polyline.MinCurveSize
	return opts
}

// InteractConfig returns the pointer state machine tuning.
func (c *Config) InteractConfig() interact.Config {
	return interact.Config{
		DragThreshold: c.Editor.DragThreshold,
		CornerRadius:  c.Polyline.CornerRadius,
		SnapFactor:    c.Polyline.PortSnapRadiusFactor,
		StrokeWidth:   c.Editor.LineWidth,
	}
}

// PickSlack is the hit-test radius around the pointer.
func (c *Config) PickSlack() float64 {
	return c.HitTest.Slack + c.HitTest.LeafStroke/2
}
