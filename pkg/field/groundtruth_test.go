package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-bumpmap/pkg/physics"
)

func arena(t *testing.T) *GroundTruth {
	t.Helper()
	gt, err := NewGroundTruth(768, 512,
		physics.RectBorder{Outer: physics.Rect{Width: 768, Height: 512}, Margin: 20},
		physics.Circle{Center: physics.Vector2D{X: 500, Y: 300}, Radius: 40},
	)
	require.NoError(t, err)
	return gt
}

func TestNewGroundTruth_Stamps(t *testing.T) {
	t.Parallel()
	gt := arena(t)

	assert.Equal(t, 1.0, gt.At(0, 0))
	assert.Equal(t, 1.0, gt.At(19, 300))
	assert.Equal(t, 0.0, gt.At(20, 300))
	assert.Equal(t, 1.0, gt.At(511, 767))
	assert.Equal(t, 1.0, gt.At(300, 500))
	assert.Equal(t, 0.0, gt.At(100, 100))

	border := 768*512 - 728*472
	assert.Greater(t, gt.ObstacleCells(), border)
}

func TestNewGroundTruth_InvalidDimensions(t *testing.T) {
	t.Parallel()

	_, err := NewGroundTruth(0, 512)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestGroundTruth_OverlapScore(t *testing.T) {
	t.Parallel()
	gt := arena(t)

	tests := []struct {
		name     string
		region   physics.Polygon
		expected float64
	}{
		{"open_interior", square(100, 100, 140, 160), 0},
		{"corner_block", square(0, 0, 10, 10), 100},
		{"straddles_left_wall", square(10, 100, 30, 110), 100},
		{"outside_arena_clipped", square(-10, -10, 10, 10), 100},
		{"entirely_outside", square(-100, -100, -50, -50), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, gt.OverlapScore(tt.region))
		})
	}
}

func TestGroundTruth_SnapshotIsCopy(t *testing.T) {
	t.Parallel()
	gt := arena(t)

	snap := gt.Snapshot()
	assert.Equal(t, gt.At(0, 0), snap.At(0, 0))
	assert.Equal(t, float64(gt.ObstacleCells()), snap.Sum())
}
