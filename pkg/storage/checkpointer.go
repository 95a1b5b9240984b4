package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-bumpmap/pkg/config"
	"github.com/opd-ai/go-bumpmap/pkg/field"
	"github.com/opd-ai/go-bumpmap/pkg/logging"
)

// SnapshotStore is the subset of Store the Checkpointer writes to.
type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, snap *BeliefSnapshot) (int64, error)
}

// Checkpointer saves belief snapshots through a circuit breaker so a failing
// database stops costing the tick loop a write attempt every checkpoint.
type Checkpointer struct {
	store   SnapshotStore
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger
	params  string
}

// NewCheckpointer wraps store with a breaker configured from cfg. params is
// recorded with every snapshot and may be nil.
func NewCheckpointer(store SnapshotStore, cfg config.CheckpointConfig, params any, logger *logging.Logger) (*Checkpointer, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	paramsJSON := "{}"
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encode checkpoint params: %w", err)
		}
		paramsJSON = string(data)
	}

	settings := gobreaker.Settings{
		Name:        "bumpmap-checkpoint",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval.Duration,
		Timeout:     cfg.BreakerTimeout.Duration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxConsecutiveFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Checkpointer{
		store:   store,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
		params:  paramsJSON,
	}, nil
}

// Checkpoint encodes a belief copy and inserts it. When the breaker is open the
// call fails immediately with gobreaker.ErrOpenState.
func (c *Checkpointer) Checkpoint(ctx context.Context, runID string, tick uint64, belief *field.Field) (int64, error) {
	snap, err := NewBeliefSnapshot(runID, tick, belief)
	if err != nil {
		return 0, err
	}
	snap.ParamsJSON = c.params

	id, err := c.breaker.Execute(func() (interface{}, error) {
		return c.store.InsertSnapshot(ctx, snap)
	})
	if err != nil {
		c.logger.Warn(ctx, "checkpoint rejected",
			"tick", tick,
			"state", c.breaker.State().String(),
			"error", err.Error(),
		)
		return 0, fmt.Errorf("circuit breaker: %w", err)
	}
	return id.(int64), nil
}

// State returns the current state of the circuit breaker.
func (c *Checkpointer) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the breaker's request counters.
func (c *Checkpointer) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}
