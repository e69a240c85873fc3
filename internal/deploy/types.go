package deploy

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/roach88/mktdeploy/internal/calldata"
)

// Artifact names resolved by the deployment context.
const (
	ArtifactRegistry = "MarketRegistry"
	ArtifactMarket   = "Market"
)

// Context is the deployment collaborator: account enumeration, artifact
// publication and contract calls. Publish and Call return only after the
// transaction is confirmed.
type Context interface {
	Accounts(ctx context.Context) ([]common.Address, error)
	Publish(ctx context.Context, from common.Address, artifact string) (Handle, error)
	Call(ctx context.Context, from, contract common.Address, data []byte) (common.Hash, error)
}

// Handle identifies a published artifact.
type Handle struct {
	Artifact string         `json:"artifact"`
	Address  common.Address `json:"address"`
	TxHash   common.Hash    `json:"tx_hash"`
}

// InitParams are the arguments of Market.initiate for one run.
// Bound2 is nil when the profile uses the legacy four-argument form.
type InitParams struct {
	Unit      Unit           `json:"unit"`
	StartTime int64          `json:"start_time"`
	Duration  int64          `json:"duration"`
	Bound1    int64          `json:"bound1"`
	Bound2    *int64         `json:"bound2,omitempty"`
	Registry  common.Address `json:"registry"`
}

// Calldata encodes the params as an initiate call.
func (p InitParams) Calldata() ([]byte, error) {
	return calldata.Encode(calldata.Initiate{
		StartTime: p.StartTime,
		Duration:  p.Duration,
		Bound1:    p.Bound1,
		Bound2:    p.Bound2,
		Registry:  p.Registry,
	})
}

// Fields returns the params as a plain map for fingerprinting and journaling.
func (p InitParams) Fields() map[string]any {
	m := map[string]any{
		"unit":       string(p.Unit),
		"start_time": p.StartTime,
		"duration":   p.Duration,
		"bound1":     p.Bound1,
		"registry":   p.Registry.Hex(),
	}
	if p.Bound2 != nil {
		m["bound2"] = *p.Bound2
	}
	return m
}

// Result summarizes a successful run.
type Result struct {
	RunID    string         `json:"run_id"`
	Network  string         `json:"network"`
	Profile  string         `json:"profile"`
	Sender   common.Address `json:"sender"`
	Registry Handle         `json:"registry"`
	Market   Handle         `json:"market"`
	Init     *InitParams    `json:"init,omitempty"`
	InitTx   *common.Hash   `json:"init_tx,omitempty"`

	// Fingerprint identifies the outcome independent of the run ID: two runs
	// that publish and initialize identically share it.
	Fingerprint string `json:"fingerprint"`
}

// Fields returns the outcome of the run as a plain map. The run ID is left
// out so that identical deployments compare equal.
func (r Result) Fields() map[string]any {
	m := map[string]any{
		"network":  r.Network,
		"profile":  r.Profile,
		"sender":   r.Sender.Hex(),
		"registry": r.Registry.fields(),
		"market":   r.Market.fields(),
	}
	if r.Init != nil {
		m["init"] = r.Init.Fields()
	}
	if r.InitTx != nil {
		m["init_tx"] = r.InitTx.Hex()
	}
	return m
}

func (h Handle) fields() map[string]any {
	return map[string]any{
		"artifact": h.Artifact,
		"address":  h.Address.Hex(),
		"tx_hash":  h.TxHash.Hex(),
	}
}
