package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/routing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Editor.NodeSeparation != 10 || cfg.History.MaxActions != 500 {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	data := "[editor]\nrouting_mode = \"spline\"\n\n[history]\nmax_actions = 20\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.EditorSettings().Mode; got != routing.ModeSpline {
		t.Errorf("Mode = %v, want spline", got)
	}
	if cfg.History.MaxActions != 20 {
		t.Errorf("MaxActions = %d, want 20", cfg.History.MaxActions)
	}
	if cfg.Polyline.CornerRadius != 3 {
		t.Errorf("CornerRadius = %g, want default 3", cfg.Polyline.CornerRadius)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", FileName)
	cfg := Default()
	cfg.Graphviz.Engine = "fdp"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Graphviz.Engine != "fdp" {
		t.Errorf("Engine = %q, want fdp", got.Graphviz.Engine)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Editor.RoutingMode = "curvy" }},
		{"inverted band", func(c *Config) { c.Polyline.InsertBandLow, c.Polyline.InsertBandHigh = 0.9, 0.1 }},
		{"band above one", func(c *Config) { c.Polyline.InsertBandHigh = 1.5 }},
		{"zero radius", func(c *Config) { c.Polyline.CornerRadius = 0 }},
		{"negative history", func(c *Config) { c.History.MaxActions = -1 }},
		{"bad ttl", func(c *Config) { c.Graphviz.CacheTTL = "soon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want %s", err, errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := Default()
	if got := cfg.EditorSettings().FanoutSeparation(); got != 60 {
		t.Errorf("FanoutSeparation() = %g, want 60", got)
	}
	if got := cfg.InteractConfig().SnapTolerance(); got != 6.5 {
		t.Errorf("SnapTolerance() = %g, want 6.5", got)
	}
	if got, _ := cfg.CacheTTL(); got != 24*time.Hour {
		t.Errorf("CacheTTL() = %v, want 24h", got)
	}
}

func TestDirHonoursXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := Dir(); got != filepath.Join("/tmp/xdg", "graphedit") {
		t.Errorf("Dir() = %q", got)
	}
}
