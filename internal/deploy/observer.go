package deploy

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// RunInfo describes a run as it starts.
type RunInfo struct {
	RunID     string
	Network   string
	Profile   Profile
	StartedAt int64 // unix milliseconds
}

// Observer is notified of run progress, typically to journal it.
// Observer errors are logged and never abort a run: by the time an
// observer sees a publish, the contract already exists on chain.
type Observer interface {
	RunStarted(ctx context.Context, run RunInfo) error
	Published(ctx context.Context, runID string, h Handle) error
	Initiated(ctx context.Context, runID string, params InitParams, tx common.Hash) error
	RunFinished(ctx context.Context, runID string, sender common.Address, runErr error) error
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) RunStarted(context.Context, RunInfo) error { return nil }
func (NopObserver) Published(context.Context, string, Handle) error { return nil }
func (NopObserver) Initiated(context.Context, string, InitParams, common.Hash) error { return nil }
func (NopObserver) RunFinished(context.Context, string, common.Address, error) error { return nil }
