package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run ID is not in the journal.
var ErrRunNotFound = errors.New("run not found")

// ErrAddressNotFound is returned when no publish matches an address.
var ErrAddressNotFound = errors.New("address not found")

// Run is one journaled deployment run.
type Run struct {
	ID        string `json:"id"`
	Seq       int64  `json:"seq"`
	Network   string `json:"network"`
	Profile   string `json:"profile"`
	Sender    string `json:"sender,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	StartedAt int64  `json:"started_at"`
}

// Publish is one journaled artifact publication.
type Publish struct {
	RunID    string `json:"run_id"`
	Seq      int64  `json:"seq"`
	Artifact string `json:"artifact"`
	Address  string `json:"address"`
	TxHash   string `json:"tx_hash"`
}

// Initiation is one journaled initiate call.
type Initiation struct {
	RunID      string `json:"run_id"`
	Seq        int64  `json:"seq"`
	Params     string `json:"params"`
	ParamsHash string `json:"params_hash"`
	TxHash     string `json:"tx_hash"`
}

// RunRecord is a run with everything it published and called.
type RunRecord struct {
	Run
	Publishes  []Publish   `json:"publishes"`
	Initiation *Initiation `json:"initiation,omitempty"`
}

// ListRuns returns runs in seq order. A limit of zero or less returns all runs.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, seq, network, profile, sender, status, error, started_at
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Seq, &r.Network, &r.Profile, &r.Sender, &r.Status, &r.Error, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a run with its publishes and initiation.
func (j *Journal) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	var rec RunRecord
	err := j.db.QueryRowContext(ctx, `
		SELECT id, seq, network, profile, sender, status, error, started_at
		FROM runs WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Seq, &rec.Network, &rec.Profile, &rec.Sender, &rec.Status, &rec.Error, &rec.StartedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, seq, artifact, address, tx_hash
		FROM publishes WHERE run_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get run %s publishes: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Publish
		if err := rows.Scan(&p.RunID, &p.Seq, &p.Artifact, &p.Address, &p.TxHash); err != nil {
			return nil, fmt.Errorf("get run %s publishes: %w", id, err)
		}
		rec.Publishes = append(rec.Publishes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run %s publishes: %w", id, err)
	}

	var in Initiation
	err = j.db.QueryRowContext(ctx, `
		SELECT run_id, seq, params, params_hash, tx_hash
		FROM initiations WHERE run_id = ?
	`, id).Scan(&in.RunID, &in.Seq, &in.Params, &in.ParamsHash, &in.TxHash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("get run %s initiation: %w", id, err)
	default:
		rec.Initiation = &in
	}

	return &rec, nil
}

// FindPublish returns the publish that created address.
func (j *Journal) FindPublish(ctx context.Context, address string) (*Publish, error) {
	var p Publish
	err := j.db.QueryRowContext(ctx, `
		SELECT run_id, seq, artifact, address, tx_hash
		FROM publishes WHERE address = ? COLLATE NOCASE
		ORDER BY seq ASC LIMIT 1
	`, address).Scan(&p.RunID, &p.Seq, &p.Artifact, &p.Address, &p.TxHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find %s: %w", address, ErrAddressNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", address, err)
	}
	return &p, nil
}
