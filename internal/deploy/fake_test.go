package deploy

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// fakeContext records every publish and call in the order received.
type fakeContext struct {
	mu          sync.Mutex
	accounts    []common.Address
	accountsErr error
	failPublish map[string]error
	callErr     error

	events []string
	calls  [][]byte
	next   byte
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		accounts:    []common.Address{common.HexToAddress("0xa11ce"), common.HexToAddress("0xb0b")},
		failPublish: map[string]error{},
		next:        1,
	}
}

func (f *fakeContext) Accounts(ctx context.Context) ([]common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "accounts")
	return f.accounts, f.accountsErr
}

func (f *fakeContext) Publish(ctx context.Context, from common.Address, artifact string) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "publish:"+artifact)
	if err := f.failPublish[artifact]; err != nil {
		return Handle{}, err
	}
	addr := common.BytesToAddress([]byte{0xc0, f.next})
	f.next++
	return Handle{Artifact: artifact, Address: addr, TxHash: common.BytesToHash([]byte{f.next})}, nil
}

func (f *fakeContext) Call(ctx context.Context, from, contract common.Address, data []byte) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "call:"+contract.Hex())
	if f.callErr != nil {
		return common.Hash{}, f.callErr
	}
	f.calls = append(f.calls, data)
	return common.HexToHash("0xfeed"), nil
}

// recordingObserver captures observer notifications.
type recordingObserver struct {
	events []string
	err    error
	runErr error
}

func (o *recordingObserver) RunStarted(_ context.Context, run RunInfo) error {
	o.events = append(o.events, "started:"+run.RunID)
	return o.err
}

func (o *recordingObserver) Published(_ context.Context, _ string, h Handle) error {
	o.events = append(o.events, "published:"+h.Artifact)
	return o.err
}

func (o *recordingObserver) Initiated(_ context.Context, _ string, _ InitParams, _ common.Hash) error {
	o.events = append(o.events, "initiated")
	return o.err
}

func (o *recordingObserver) RunFinished(_ context.Context, runID string, _ common.Address, runErr error) error {
	o.events = append(o.events, "finished:"+runID)
	o.runErr = runErr
	return o.err
}
