package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/opd-ai/go-bumpmap/pkg/field"
)

// ReasonPeriodic is recorded for snapshots taken by the tick loop.
const ReasonPeriodic = "periodic"

// BeliefSnapshot matches a row of the belief_snapshots table.
type BeliefSnapshot struct {
	SnapshotID     *int64 // set by the database after insert
	RunID          string
	Tick           uint64
	TakenUnixNanos int64
	Width          int
	Height         int
	MeanBelief     float64
	ParamsJSON     string
	GridBlob       []byte // gob+gzip of the row-major cell values
	Reason         string
}

// BeliefGrid is a belief grid that can be flattened row-major. Both
// *field.Belief and its *field.Field copies satisfy it.
type BeliefGrid interface {
	field.Grid
	Values() []float64
}

// NewBeliefSnapshot captures belief into a snapshot ready for insertion.
func NewBeliefSnapshot(runID string, tick uint64, belief BeliefGrid) (*BeliefSnapshot, error) {
	values := belief.Values()
	blob, err := serializeGrid(values)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize belief grid: %w", err)
	}
	return &BeliefSnapshot{
		RunID:          runID,
		Tick:           tick,
		TakenUnixNanos: time.Now().UnixNano(),
		Width:          belief.Width(),
		Height:         belief.Height(),
		MeanBelief:     mean(values),
		ParamsJSON:     "{}",
		GridBlob:       blob,
		Reason:         ReasonPeriodic,
	}, nil
}

// Values decodes the grid blob and checks it against the recorded size.
func (s *BeliefSnapshot) Values() ([]float64, error) {
	values, err := deserializeGrid(s.GridBlob)
	if err != nil {
		return nil, err
	}
	if len(values) != s.Width*s.Height {
		return nil, fmt.Errorf("grid blob holds %d cells, expected %dx%d", len(values), s.Width, s.Height)
	}
	return values, nil
}

// serializeGrid compresses the cells using gob encoding and gzip compression.
func serializeGrid(cells []float64) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(cells); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserializeGrid decompresses and decodes cells from a gob+gzip blob.
func deserializeGrid(blob []byte) ([]float64, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("empty grid blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	var cells []float64
	if err := gob.NewDecoder(gz).Decode(&cells); err != nil {
		return nil, fmt.Errorf("failed to decode grid cells: %w", err)
	}
	return cells, nil
}

const snapshotColumns = `snapshot_id, run_id, tick, taken_unix_nanos, width, height,
	mean_belief, params_json, grid_blob, snapshot_reason`

// InsertSnapshot stores snap and sets its SnapshotID.
func (s *Store) InsertSnapshot(ctx context.Context, snap *BeliefSnapshot) (int64, error) {
	reason := snap.Reason
	if reason == "" {
		reason = ReasonPeriodic
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO belief_snapshots
			(run_id, tick, taken_unix_nanos, width, height, mean_belief, params_json, grid_blob, snapshot_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.RunID, int64(snap.Tick), snap.TakenUnixNanos, snap.Width, snap.Height,
		snap.MeanBelief, snap.ParamsJSON, snap.GridBlob, reason,
	)
	if err != nil {
		return 0, fmt.Errorf("insert belief snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert belief snapshot: %w", err)
	}
	snap.SnapshotID = &id
	snap.Reason = reason
	return id, nil
}

// GetSnapshot returns the snapshot with the given ID.
func (s *Store) GetSnapshot(ctx context.Context, id int64) (*BeliefSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+snapshotColumns+` FROM belief_snapshots WHERE snapshot_id = ?`, id)
	return scanSnapshot(row)
}

// LatestSnapshot returns the most recent snapshot of runID, by tick.
func (s *Store) LatestSnapshot(ctx context.Context, runID string) (*BeliefSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+` FROM belief_snapshots
		WHERE run_id = ?
		ORDER BY tick DESC, snapshot_id DESC
		LIMIT 1`, runID)
	return scanSnapshot(row)
}

// ListSnapshots returns every snapshot of runID in tick order. Grid blobs
// are omitted; load one with GetSnapshot.
func (s *Store) ListSnapshots(ctx context.Context, runID string) ([]*BeliefSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT snapshot_id, run_id, tick, taken_unix_nanos, width, height,
			mean_belief, params_json, snapshot_reason
		FROM belief_snapshots
		WHERE run_id = ?
		ORDER BY tick, snapshot_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list belief snapshots: %w", err)
	}
	defer rows.Close()

	var out []*BeliefSnapshot
	for rows.Next() {
		var (
			snap BeliefSnapshot
			id   int64
			tick int64
		)
		if err := rows.Scan(&id, &snap.RunID, &tick, &snap.TakenUnixNanos, &snap.Width, &snap.Height,
			&snap.MeanBelief, &snap.ParamsJSON, &snap.Reason); err != nil {
			return nil, fmt.Errorf("scan belief snapshot: %w", err)
		}
		snap.SnapshotID = &id
		snap.Tick = uint64(tick)
		out = append(out, &snap)
	}
	return out, rows.Err()
}

// ListRuns returns the distinct run IDs that have snapshots, most recent
// first.
func (s *Store) ListRuns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id FROM belief_snapshots
		GROUP BY run_id
		ORDER BY MAX(taken_unix_nanos) DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		runs = append(runs, id)
	}
	return runs, rows.Err()
}

// DeleteRun removes every snapshot of runID and returns how many were
// deleted.
func (s *Store) DeleteRun(ctx context.Context, runID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM belief_snapshots WHERE run_id = ?`, runID)
	if err != nil {
		return 0, fmt.Errorf("delete run %s: %w", runID, err)
	}
	return res.RowsAffected()
}

func scanSnapshot(row *sql.Row) (*BeliefSnapshot, error) {
	var (
		snap BeliefSnapshot
		id   int64
		tick int64
	)
	err := row.Scan(&id, &snap.RunID, &tick, &snap.TakenUnixNanos, &snap.Width, &snap.Height,
		&snap.MeanBelief, &snap.ParamsJSON, &snap.GridBlob, &snap.Reason)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan belief snapshot: %w", err)
	}
	snap.SnapshotID = &id
	snap.Tick = uint64(tick)
	return &snap, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values) / float64(len(values))
}
