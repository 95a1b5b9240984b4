package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Arena.Width != 768 || config.Arena.Height != 512 {
		t.Errorf("Expected 768x512 arena, got %dx%d", config.Arena.Width, config.Arena.Height)
	}
	if config.Arena.BorderMargin != 20 {
		t.Errorf("Expected BorderMargin 20, got %f", config.Arena.BorderMargin)
	}
	if len(config.Arena.Circles) != 1 {
		t.Errorf("Expected one circle obstacle, got %d", len(config.Arena.Circles))
	}
	if config.Agents.HalfWidth != 12.5 || config.Agents.HalfHeight != 20 {
		t.Errorf("Expected 25x40 body, got half extents %f x %f", config.Agents.HalfWidth, config.Agents.HalfHeight)
	}
	if config.Belief.Prior != 0.5 {
		t.Errorf("Expected Prior 0.5, got %f", config.Belief.Prior)
	}
	if config.Belief.Increment != 0.02 || config.Belief.Decrement != 0.02 {
		t.Errorf("Expected 0.02 updates, got %f/%f", config.Belief.Increment, config.Belief.Decrement)
	}
	if config.Recovery.RetreatDistance != 45 {
		t.Errorf("Expected RetreatDistance 45, got %f", config.Recovery.RetreatDistance)
	}
	if config.Recovery.TurnMinDeg != 135 || config.Recovery.TurnMaxDeg != 225 {
		t.Errorf("Expected turn range 135-225, got %f-%f", config.Recovery.TurnMinDeg, config.Recovery.TurnMaxDeg)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("DefaultConfig should validate, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			original := DefaultConfig()
			original.Agents.Count = 25
			original.Run.TickInterval = Duration{250 * time.Millisecond}
			original.Arena.Rects = []RectConfig{{X: 10, Y: 20, Width: 30, Height: 40}}
			original.Checkpoint.Path = "belief.db"

			path := filepath.Join(t.TempDir(), "sim"+ext)
			if err := SaveConfig(original, path); err != nil {
				t.Fatalf("SaveConfig failed: %v", err)
			}

			loaded, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}

			if diff := cmp.Diff(original, loaded); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "partial.toml")
	tomlData := "[agents]\ncount = 1000\n\n[run]\ntick_interval = \"20ms\"\n"
	if err := os.WriteFile(tomlPath, []byte(tomlData), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(tomlPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Agents.Count != 1000 {
		t.Errorf("Expected Count 1000, got %d", config.Agents.Count)
	}
	if config.Run.TickInterval.Duration != 20*time.Millisecond {
		t.Errorf("Expected TickInterval 20ms, got %v", config.Run.TickInterval)
	}
	if config.Agents.Speed != 5 {
		t.Errorf("Expected default Speed 5, got %f", config.Agents.Speed)
	}

	jsonPath := filepath.Join(dir, "partial.json")
	if err := os.WriteFile(jsonPath, []byte(`{"belief": {"prior": 0.25}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	config, err = LoadConfig(jsonPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Belief.Prior != 0.25 || config.Belief.Increment != 0.02 {
		t.Errorf("Unexpected belief config %+v", config.Belief)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("Expected error for malformed JSON")
	}

	yaml := filepath.Join(dir, "sim.yaml")
	if err := os.WriteFile(yaml, []byte("a: 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(yaml); err == nil {
		t.Error("Expected error for unsupported extension")
	}

	badDuration := filepath.Join(dir, "dur.toml")
	if err := os.WriteFile(badDuration, []byte("[run]\ntick_interval = \"soon\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(badDuration); err == nil {
		t.Error("Expected error for malformed duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(c *SimConfig)
		errorField string
	}{
		{"valid", func(c *SimConfig) {}, ""},
		{"zero_width", func(c *SimConfig) { c.Arena.Width = 0 }, "Arena.Width"},
		{"huge_height", func(c *SimConfig) { c.Arena.Height = 20000 }, "Arena.Height"},
		{"margin_swallows_arena", func(c *SimConfig) { c.Arena.BorderMargin = 300 }, "Arena.BorderMargin"},
		{"negative_radius", func(c *SimConfig) { c.Arena.Circles[0].Radius = -1 }, "Arena.Circles[0].Radius"},
		{"flat_rect", func(c *SimConfig) { c.Arena.Rects = []RectConfig{{Width: 0, Height: 5}} }, "Arena.Rects[0]"},
		{"negative_count", func(c *SimConfig) { c.Agents.Count = -1 }, "Agents.Count"},
		{"zero_half_width", func(c *SimConfig) { c.Agents.HalfWidth = 0 }, "Agents.HalfWidth"},
		{"zero_half_height", func(c *SimConfig) { c.Agents.HalfHeight = 0 }, "Agents.HalfHeight"},
		{"prior_above_one", func(c *SimConfig) { c.Belief.Prior = 1.5 }, "Belief.Prior"},
		{"negative_increment", func(c *SimConfig) { c.Belief.Increment = -0.1 }, "Belief.Increment"},
		{"inverted_turn_range", func(c *SimConfig) { c.Recovery.TurnMinDeg = 300 }, "Recovery.TurnMinDeg"},
		{"negative_ticks", func(c *SimConfig) { c.Run.Ticks = -5 }, "Run.Ticks"},
		{"unknown_layout", func(c *SimConfig) { c.Run.Layout = "labyrinth" }, "Run.Layout"},
		{"checkpoint_every_zero", func(c *SimConfig) {
			c.Checkpoint.Path = "x.db"
			c.Checkpoint.Every = 0
		}, "Checkpoint.Every"},
		{"breaker_interval_short", func(c *SimConfig) {
			c.Checkpoint.Path = "x.db"
			c.Checkpoint.BreakerInterval = Duration{500 * time.Millisecond}
		}, "Checkpoint.BreakerInterval"},
		{"checkpoint_disabled_ignores_breaker", func(c *SimConfig) {
			c.Checkpoint.BreakerMaxRequests = 0
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()

			if tt.errorField == "" {
				if err != nil {
					t.Errorf("Expected no validation error, but got: %v", err)
				}
				return
			}

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected ValidationError, got %T: %v", err, err)
			}
			if validationErr.Field != tt.errorField {
				t.Errorf("Expected error for field '%s', got '%s'", tt.errorField, validationErr.Field)
			}
		})
	}
}
