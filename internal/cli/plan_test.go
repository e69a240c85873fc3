package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mktdeploy/internal/calldata"
	"github.com/roach88/mktdeploy/internal/testutil"
)

func executePlan(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}

	opts := &PlanOptions{
		RootOptions: &RootOptions{Format: format},
		Clock:       testutil.NewFixedClockMillis(fixedMillis),
	}
	cmd := newPlanCommand(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetContext(context.Background())

	err := cmd.Execute()
	return stdout.String(), err
}

func TestPlan_TextPredictsDeployAddresses(t *testing.T) {
	stdout, err := executePlan(t, "text", "--target", devnetTarget(t))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Sender:   "+devnetSender)
	assert.Contains(t, stdout, "MarketRegistry will be deployed at: "+devnetRegistry)
	assert.Contains(t, stdout, "Market will be deployed at: "+devnetMarket)
	assert.Contains(t, stdout, "Market will be initiated with start time 1700000000123")
	assert.Contains(t, stdout, "v3 unit=milliseconds duration=3600000 bound1=1700 bound2=2000 initialize=true")
}

func TestPlan_JSONCalldataMatchesEncoder(t *testing.T) {
	stdout, err := executePlan(t, "json", "--target", devnetTarget(t))
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   Plan   `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.Data.Init)

	bound2 := int64(2000)
	want, err := calldata.Encode(calldata.Initiate{
		StartTime: fixedMillis,
		Duration:  3_600_000,
		Bound1:    1700,
		Bound2:    &bound2,
		Registry:  common.HexToAddress(devnetRegistry),
	})
	require.NoError(t, err)
	assert.Equal(t, hexutil.Encode(want), resp.Data.Calldata)
}

func TestPlan_LegacyProfileUsesFourArgumentForm(t *testing.T) {
	stdout, err := executePlan(t, "json", "--target", devnetTarget(t), "--profile", "v1")
	require.NoError(t, err)

	var resp struct {
		Data Plan `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Data.Init)
	assert.Nil(t, resp.Data.Init.Bound2)

	data, err := hexutil.Decode(resp.Data.Calldata)
	require.NoError(t, err)
	assert.Equal(t, calldata.Selector(calldata.SignatureLegacy), data[:calldata.SelectorSize])
}

func TestPlan_NoInitialize(t *testing.T) {
	stdout, err := executePlan(t, "text", "--target", devnetTarget(t), "--profile", "v2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Market will not be initiated")
	assert.NotContains(t, stdout, "Calldata:")
}

func TestPlan_ExplicitAccounts(t *testing.T) {
	path := writeTargetFile(t, "target.yaml", `network: devnet
accounts:
  - "0x00000000000000000000000000000000000000aa"
  - "0x00000000000000000000000000000000000000bb"
`)
	stdout, err := executePlan(t, "text", "--target", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sender:   "+common.HexToAddress("0xaa").Hex())
}
