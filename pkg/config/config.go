// pkg/config/config.go
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// SimConfig contains configuration for a bump-mapping simulation
type SimConfig struct {
	Arena      ArenaConfig      `json:"arena" toml:"arena"`
	Agents     AgentConfig      `json:"agents" toml:"agents"`
	Belief     BeliefConfig     `json:"belief" toml:"belief"`
	Recovery   RecoveryConfig   `json:"recovery" toml:"recovery"`
	Run        RunConfig        `json:"run" toml:"run"`
	Checkpoint CheckpointConfig `json:"checkpoint" toml:"checkpoint"`
}

// ArenaConfig describes the ground-truth obstacle layout
type ArenaConfig struct {
	Width        int            `json:"width" toml:"width"`
	Height       int            `json:"height" toml:"height"`
	BorderMargin float64        `json:"borderMargin" toml:"border_margin"`
	Circles      []CircleConfig `json:"circles,omitempty" toml:"circles,omitempty"`
	Rects        []RectConfig   `json:"rects,omitempty" toml:"rects,omitempty"`
}

// CircleConfig is a filled circular obstacle
type CircleConfig struct {
	X      float64 `json:"x" toml:"x"`
	Y      float64 `json:"y" toml:"y"`
	Radius float64 `json:"radius" toml:"radius"`
}

// RectConfig is a filled axis-aligned obstacle
type RectConfig struct {
	X      float64 `json:"x" toml:"x"`
	Y      float64 `json:"y" toml:"y"`
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// AgentConfig contains the population and body parameters
type AgentConfig struct {
	Count      int     `json:"count" toml:"count"`
	SpawnX     float64 `json:"spawnX" toml:"spawn_x"`
	SpawnY     float64 `json:"spawnY" toml:"spawn_y"`
	Jitter     float64 `json:"jitter" toml:"jitter"`
	Speed      float64 `json:"speed" toml:"speed"`
	HalfWidth  float64 `json:"halfWidth" toml:"half_width"`
	HalfHeight float64 `json:"halfHeight" toml:"half_height"`
}

// BeliefConfig contains the belief prior and update amounts
type BeliefConfig struct {
	Prior     float64 `json:"prior" toml:"prior"`
	Increment float64 `json:"increment" toml:"increment"`
	Decrement float64 `json:"decrement" toml:"decrement"`
}

// RecoveryConfig contains the collision recovery maneuver parameters.
// Turn bounds are in degrees.
type RecoveryConfig struct {
	RetreatDistance float64 `json:"retreatDistance" toml:"retreat_distance"`
	TurnMinDeg      float64 `json:"turnMinDeg" toml:"turn_min_deg"`
	TurnMaxDeg      float64 `json:"turnMaxDeg" toml:"turn_max_deg"`
}

// RunConfig contains tick loop settings. Ticks of 0 runs until cancelled;
// Seed of 0 draws a random seed.
type RunConfig struct {
	Ticks        int      `json:"ticks" toml:"ticks"`
	TickInterval Duration `json:"tickInterval" toml:"tick_interval"`
	Seed         uint64   `json:"seed" toml:"seed"`
	Layout       string   `json:"layout,omitempty" toml:"layout,omitempty"`
}

// CheckpointConfig contains belief persistence settings. An empty Path
// disables checkpointing.
type CheckpointConfig struct {
	Path                       string   `json:"path,omitempty" toml:"path,omitempty"`
	Every                      int      `json:"every" toml:"every"`
	BreakerMaxRequests         uint32   `json:"breakerMaxRequests" toml:"breaker_max_requests"`
	BreakerInterval            Duration `json:"breakerInterval" toml:"breaker_interval"`
	BreakerTimeout             Duration `json:"breakerTimeout" toml:"breaker_timeout"`
	BreakerMaxConsecutiveFails uint32   `json:"breakerMaxConsecutiveFails" toml:"breaker_max_consecutive_fails"`
}

// Duration is a time.Duration that reads and writes as a string such as
// "250ms" in both JSON and TOML.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// LoadConfig loads a configuration from a JSON or TOML file, chosen by
// extension. Fields missing from the file keep their default values.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".json", "":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	return config, nil
}

// SaveConfig saves a configuration to a file in the format named by its
// extension
func SaveConfig(config *SimConfig, path string) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(config); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = buf.Bytes()
	default:
		var err error
		data, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the default 768x512 walled arena with a single
// round obstacle in the middle.
func DefaultConfig() *SimConfig {
	return &SimConfig{
		Arena: ArenaConfig{
			Width:        768,
			Height:       512,
			BorderMargin: 20,
			Circles: []CircleConfig{
				{X: 384, Y: 256, Radius: 60},
			},
		},
		Agents: AgentConfig{
			Count:      1,
			SpawnX:     100,
			SpawnY:     100,
			Jitter:     0,
			Speed:      5,
			HalfWidth:  12.5,
			HalfHeight: 20,
		},
		Belief: BeliefConfig{
			Prior:     0.5,
			Increment: 0.02,
			Decrement: 0.02,
		},
		Recovery: RecoveryConfig{
			RetreatDistance: 45,
			TurnMinDeg:      135,
			TurnMaxDeg:      225,
		},
		Run: RunConfig{
			Ticks:        1000,
			TickInterval: Duration{0},
		},
		Checkpoint: CheckpointConfig{
			Every:                      100,
			BreakerMaxRequests:         3,
			BreakerInterval:            Duration{60 * time.Second},
			BreakerTimeout:             Duration{30 * time.Second},
			BreakerMaxConsecutiveFails: 5,
		},
	}
}
