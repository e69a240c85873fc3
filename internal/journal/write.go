package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/roach88/mktdeploy/internal/canon"
	"github.com/roach88/mktdeploy/internal/deploy"
)

// Run status values.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

var _ deploy.Observer = (*Journal)(nil)

// RunStarted inserts a run in the running state.
func (j *Journal) RunStarted(ctx context.Context, run deploy.RunInfo) error {
	profileJSON, err := json.Marshal(run.Profile)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	err = j.insertWithSeq(ctx, `
		INSERT INTO runs (id, seq, network, profile, profile_json, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.RunID,
		run.Network,
		run.Profile.Name,
		string(profileJSON),
		StatusRunning,
		run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// Published records a confirmed publish.
func (j *Journal) Published(ctx context.Context, runID string, h deploy.Handle) error {
	err := j.insertWithSeq(ctx, `
		INSERT INTO publishes (run_id, seq, artifact, address, tx_hash)
		VALUES (?, ?, ?, ?, ?)
	`,
		runID,
		h.Artifact,
		h.Address.Hex(),
		h.TxHash.Hex(),
	)
	if err != nil {
		return fmt.Errorf("write publish: %w", err)
	}
	return nil
}

// Initiated records a confirmed initiate call. Params are stored as
// canonical JSON alongside their fingerprint.
func (j *Journal) Initiated(ctx context.Context, runID string, params deploy.InitParams, tx common.Hash) error {
	fields := params.Fields()
	paramsJSON, err := canon.Marshal(fields)
	if err != nil {
		return fmt.Errorf("write initiation: %w", err)
	}
	hash, err := canon.Fingerprint(canon.DomainParams, fields)
	if err != nil {
		return fmt.Errorf("write initiation: %w", err)
	}

	err = j.insertWithSeq(ctx, `
		INSERT INTO initiations (run_id, seq, params, params_hash, tx_hash)
		VALUES (?, ?, ?, ?, ?)
	`,
		runID,
		string(paramsJSON),
		hash,
		tx.Hex(),
	)
	if err != nil {
		return fmt.Errorf("write initiation: %w", err)
	}
	return nil
}

// RunFinished sets the final status of a run.
func (j *Journal) RunFinished(ctx context.Context, runID string, sender common.Address, runErr error) error {
	status, msg := StatusSucceeded, ""
	if runErr != nil {
		status, msg = StatusFailed, runErr.Error()
	}

	senderHex := ""
	if sender != (common.Address{}) {
		senderHex = sender.Hex()
	}

	res, err := j.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, error = ?, sender = ? WHERE id = ?
	`, status, msg, senderHex, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}
