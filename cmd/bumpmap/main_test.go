package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-bumpmap/pkg/config"
	"github.com/opd-ai/go-bumpmap/pkg/engine"
	"github.com/opd-ai/go-bumpmap/pkg/field"
	"github.com/opd-ai/go-bumpmap/pkg/logging"
	"github.com/opd-ai/go-bumpmap/pkg/storage"
)

func saveSnapshot(t *testing.T, store *storage.Store, runID string, tick uint64, width, height int) {
	t.Helper()
	belief, err := field.NewBelief(width, height, 0.7)
	require.NoError(t, err)
	snap, err := storage.NewBeliefSnapshot(runID, tick, belief)
	require.NoError(t, err)
	_, err = store.InsertSnapshot(context.Background(), snap)
	require.NoError(t, err)
}

func TestResumeRun(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(filepath.Join(t.TempDir(), "belief.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.DefaultConfig()
	saveSnapshot(t, store, "fits", 40, cfg.Arena.Width, cfg.Arena.Height)
	saveSnapshot(t, store, "transposed", 40, cfg.Arena.Height, cfg.Arena.Width)

	sim, err := engine.NewSimulation(cfg)
	require.NoError(t, err)
	require.NoError(t, resumeRun(ctx, logging.Discard(), sim, store, "fits"))
	assert.Equal(t, uint64(40), sim.CurrentTick())
	assert.InDelta(t, 0.7, sim.Belief.At(3, 3), 1e-12)

	sim, err = engine.NewSimulation(cfg)
	require.NoError(t, err)
	err = resumeRun(ctx, logging.Discard(), sim, store, "transposed")
	assert.ErrorIs(t, err, engine.ErrGridSize)
	assert.Equal(t, uint64(0), sim.CurrentTick())
}
