package deploy_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mktdeploy/internal/calldata"
	"github.com/roach88/mktdeploy/internal/chain"
	"github.com/roach88/mktdeploy/internal/deploy"
	"github.com/roach88/mktdeploy/internal/testutil"
)

func runOnNetwork(t *testing.T, n *chain.Network, profile string, out io.Writer) (*deploy.Result, error) {
	t.Helper()
	p, err := deploy.LookupProfile(profile)
	require.NoError(t, err)

	s, err := deploy.New(n, p,
		deploy.WithClock(testutil.NewFixedClockMillis(1_700_000_000_123)),
		deploy.WithRunIDs(testutil.NewFixedRunIDs("e2e-run")),
		deploy.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		deploy.WithOutput(out),
	)
	require.NoError(t, err)
	return s.Run(context.Background(), n.Name())
}

func TestEndToEnd_V3(t *testing.T) {
	n := chain.NewNetwork("devnet")
	var out bytes.Buffer

	res, err := runOnNetwork(t, n, "v3", &out)
	require.NoError(t, err)

	assert.NotEqual(t, common.Address{}, res.Registry.Address)
	assert.NotEqual(t, common.Address{}, res.Market.Address)
	assert.NotEqual(t, res.Registry.Address, res.Market.Address)

	deps := n.Deployments()
	require.Len(t, deps, 2)
	assert.Equal(t, deploy.ArtifactRegistry, deps[0].Artifact)
	assert.Equal(t, deploy.ArtifactMarket, deps[1].Artifact)

	calls := n.Calls()
	require.Len(t, calls, 1, "initiate is invoked exactly once")
	assert.Equal(t, res.Market.Address, calls[0].Contract)

	got, err := calldata.Decode(calls[0].Data)
	require.NoError(t, err)
	bound2 := int64(2000)
	assert.Equal(t, calldata.Initiate{
		StartTime: 1_700_000_000_123,
		Duration:  3_600_000,
		Bound1:    1700,
		Bound2:    &bound2,
		Registry:  res.Registry.Address,
	}, got)

	testutil.AssertGolden(t, "v3_devnet", out.Bytes())
	testutil.AssertCanonicalGolden(t, "v3_devnet_result", res.Fields())
	assert.Equal(t, "9d9b91588b7883214e692e28963c9a5e452056f61883c4b562e8fd572d1ee640", res.Fingerprint)
}

func TestEndToEnd_MarketPublishFails(t *testing.T) {
	boom := errors.New("insufficient funds for gas")
	n := chain.NewNetwork("devnet", chain.FailPublish(deploy.ArtifactMarket, boom))

	res, err := runOnNetwork(t, n, "v3", io.Discard)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
	assert.True(t, deploy.IsPublishError(err))

	assert.Len(t, n.Deployments(), 1, "registry stays published")
	assert.Empty(t, n.Calls(), "no initialization attempted")
}

func TestEndToEnd_Deterministic(t *testing.T) {
	a, err := runOnNetwork(t, chain.NewNetwork("devnet"), "v3", io.Discard)
	require.NoError(t, err)
	b, err := runOnNetwork(t, chain.NewNetwork("devnet"), "v3", io.Discard)
	require.NoError(t, err)

	assert.Equal(t, a.Registry, b.Registry)
	assert.Equal(t, a.Market, b.Market)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)

	c, err := runOnNetwork(t, chain.NewNetwork("devnet"), "v1", io.Discard)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint, "different init params change the fingerprint")
}
