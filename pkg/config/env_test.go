package config

import (
	"errors"
	"testing"
	"time"
)

func TestApplyEnvironmentOverrides(t *testing.T) {
	t.Setenv("BUMPMAP_ARENA_WIDTH", "1024")
	t.Setenv("BUMPMAP_AGENTS", "1000")
	t.Setenv("BUMPMAP_SPEED", "2.5")
	t.Setenv("BUMPMAP_BELIEF_INCREMENT", "0.05")
	t.Setenv("BUMPMAP_TICK_INTERVAL", "16ms")
	t.Setenv("BUMPMAP_SEED", "42")
	t.Setenv("BUMPMAP_LAYOUT", "pillars")
	t.Setenv("BUMPMAP_TICKS", "not-a-number")

	config := DefaultConfig()
	if err := ApplyEnvironmentOverrides(config); err != nil {
		t.Fatalf("ApplyEnvironmentOverrides failed: %v", err)
	}

	if config.Arena.Width != 1024 {
		t.Errorf("Expected Width 1024, got %d", config.Arena.Width)
	}
	if config.Agents.Count != 1000 {
		t.Errorf("Expected Count 1000, got %d", config.Agents.Count)
	}
	if config.Agents.Speed != 2.5 {
		t.Errorf("Expected Speed 2.5, got %f", config.Agents.Speed)
	}
	if config.Belief.Increment != 0.05 {
		t.Errorf("Expected Increment 0.05, got %f", config.Belief.Increment)
	}
	if config.Run.TickInterval.Duration != 16*time.Millisecond {
		t.Errorf("Expected TickInterval 16ms, got %v", config.Run.TickInterval)
	}
	if config.Run.Seed != 42 {
		t.Errorf("Expected Seed 42, got %d", config.Run.Seed)
	}
	if config.Run.Layout != "pillars" {
		t.Errorf("Expected Layout pillars, got %q", config.Run.Layout)
	}
	if config.Run.Ticks != 1000 {
		t.Errorf("Unparseable BUMPMAP_TICKS should keep 1000, got %d", config.Run.Ticks)
	}
}

func TestApplyEnvironmentOverridesValidates(t *testing.T) {
	t.Setenv("BUMPMAP_BELIEF_PRIOR", "2")

	err := ApplyEnvironmentOverrides(DefaultConfig())
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "Belief.Prior" {
		t.Errorf("Expected Belief.Prior validation error, got %v", err)
	}
}

func TestGetEnvHelperFunctions(t *testing.T) {
	t.Setenv("TEST_STRING", "test_value")
	if result := getEnvOrDefault("TEST_STRING", "default"); result != "test_value" {
		t.Errorf("getEnvOrDefault: expected 'test_value', got '%s'", result)
	}
	if result := getEnvOrDefault("BUMPMAP_NONEXISTENT", "default"); result != "default" {
		t.Errorf("getEnvOrDefault: expected 'default', got '%s'", result)
	}

	t.Setenv("TEST_INT", "invalid")
	if result := getEnvAsIntOrDefault("TEST_INT", 10); result != 10 {
		t.Errorf("getEnvAsIntOrDefault with invalid value: expected 10, got %d", result)
	}

	t.Setenv("TEST_UINT", "-3")
	if result := getEnvAsUintOrDefault("TEST_UINT", 7); result != 7 {
		t.Errorf("getEnvAsUintOrDefault with negative value: expected 7, got %d", result)
	}

	t.Setenv("TEST_FLOAT", "3.14")
	if result := getEnvAsFloatOrDefault("TEST_FLOAT", 1.0); result != 3.14 {
		t.Errorf("getEnvAsFloatOrDefault: expected 3.14, got %f", result)
	}

	t.Setenv("TEST_DURATION", "invalid")
	if result := getEnvAsDurationOrDefault("TEST_DURATION", time.Second); result != time.Second {
		t.Errorf("getEnvAsDurationOrDefault with invalid value: expected 1s, got %v", result)
	}
}
