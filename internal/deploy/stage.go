package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
)

// State is the value threaded through the stages of a run. Stages return a
// new State; they never mutate the one they receive.
type State struct {
	RunID    string
	Network  string
	Sender   common.Address
	Registry *Handle
	Market   *Handle
	Init     *InitParams
	InitTx   *common.Hash

	// Logger carries the run's attributes. Nil falls back to the
	// sequencer's logger.
	Logger *slog.Logger
}

// Stage is one step of a run.
type Stage struct {
	Name string
	Run  func(ctx context.Context, in State) (State, error)
}

// Runner executes stages strictly in order.
type Runner struct {
	Stages []Stage
	Logger *slog.Logger
}

// Run feeds initial through every stage. The first error stops the run and
// is returned together with the last successful state.
func (r *Runner) Run(ctx context.Context, initial State) (State, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	state := initial
	for i, stage := range r.Stages {
		if err := ctx.Err(); err != nil {
			return state, fmt.Errorf("stage %s: %w", stage.Name, err)
		}

		logger.Debug("stage starting", "run_id", state.RunID, "stage", stage.Name, "index", i)
		next, err := stage.Run(ctx, state)
		if err != nil {
			logger.Debug("stage failed", "run_id", state.RunID, "stage", stage.Name, "error", err)
			return state, err
		}
		state = next
		logger.Debug("stage done", "run_id", state.RunID, "stage", stage.Name)
	}
	return state, nil
}
