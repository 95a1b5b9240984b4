package config

import (
	"os"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvironmentOverrides
const EnvPrefix = "BUMPMAP_"

// ApplyEnvironmentOverrides overwrites configuration values from BUMPMAP_*
// environment variables and validates the result. Unparseable values are
// ignored and the configured value is kept.
func ApplyEnvironmentOverrides(c *SimConfig) error {
	c.Arena.Width = getEnvAsIntOrDefault(EnvPrefix+"ARENA_WIDTH", c.Arena.Width)
	c.Arena.Height = getEnvAsIntOrDefault(EnvPrefix+"ARENA_HEIGHT", c.Arena.Height)
	c.Arena.BorderMargin = getEnvAsFloatOrDefault(EnvPrefix+"BORDER_MARGIN", c.Arena.BorderMargin)

	c.Agents.Count = getEnvAsIntOrDefault(EnvPrefix+"AGENTS", c.Agents.Count)
	c.Agents.Speed = getEnvAsFloatOrDefault(EnvPrefix+"SPEED", c.Agents.Speed)
	c.Agents.Jitter = getEnvAsFloatOrDefault(EnvPrefix+"SPAWN_JITTER", c.Agents.Jitter)

	c.Belief.Prior = getEnvAsFloatOrDefault(EnvPrefix+"BELIEF_PRIOR", c.Belief.Prior)
	c.Belief.Increment = getEnvAsFloatOrDefault(EnvPrefix+"BELIEF_INCREMENT", c.Belief.Increment)
	c.Belief.Decrement = getEnvAsFloatOrDefault(EnvPrefix+"BELIEF_DECREMENT", c.Belief.Decrement)

	c.Recovery.RetreatDistance = getEnvAsFloatOrDefault(EnvPrefix+"RETREAT_DISTANCE", c.Recovery.RetreatDistance)

	c.Run.Ticks = getEnvAsIntOrDefault(EnvPrefix+"TICKS", c.Run.Ticks)
	c.Run.TickInterval.Duration = getEnvAsDurationOrDefault(EnvPrefix+"TICK_INTERVAL", c.Run.TickInterval.Duration)
	c.Run.Seed = getEnvAsUintOrDefault(EnvPrefix+"SEED", c.Run.Seed)
	c.Run.Layout = getEnvOrDefault(EnvPrefix+"LAYOUT", c.Run.Layout)

	c.Checkpoint.Path = getEnvOrDefault(EnvPrefix+"CHECKPOINT_PATH", c.Checkpoint.Path)
	c.Checkpoint.Every = getEnvAsIntOrDefault(EnvPrefix+"CHECKPOINT_EVERY", c.Checkpoint.Every)

	return c.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsUintOrDefault(key string, defaultValue uint64) uint64 {
	if value, err := strconv.ParseUint(os.Getenv(key), 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
