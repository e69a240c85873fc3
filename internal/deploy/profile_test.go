package deploy

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnit_StartTimeSecondsRoundsUp(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)
	assert.Equal(t, int64(1_700_000_001), UnitSeconds.StartTime(now))
}

func TestUnit_StartTimeSecondsExact(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	assert.Equal(t, int64(1_700_000_000), UnitSeconds.StartTime(now))
}

func TestUnit_StartTimeMillisecondsRaw(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)
	assert.Equal(t, int64(1_700_000_000_123), UnitMilliseconds.StartTime(now))
}

func TestUnit_StartTimeIgnoresSubMillisecond(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000).Add(500 * time.Microsecond)
	assert.Equal(t, int64(1_700_000_000), UnitSeconds.StartTime(now))
	assert.Equal(t, int64(1_700_000_000_000), UnitMilliseconds.StartTime(now))
}

func TestConvert_NoPrecisionLoss(t *testing.T) {
	ms, err := Convert(3600, UnitSeconds, UnitMilliseconds)
	require.NoError(t, err)
	assert.Equal(t, int64(3_600_000), ms)

	sec, err := Convert(3_600_000, UnitMilliseconds, UnitSeconds)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), sec)
}

func TestConvert_RejectsTruncation(t *testing.T) {
	_, err := Convert(3_600_001, UnitMilliseconds, UnitSeconds)
	require.ErrorIs(t, err, ErrInvalidProfile)
}

func TestUnit_FromDuration(t *testing.T) {
	v, err := UnitMilliseconds.FromDuration(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3_600_000), v)

	v, err = UnitSeconds.FromDuration(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), v)

	assert.Equal(t, time.Hour, UnitSeconds.ToDuration(3600))
	assert.Equal(t, time.Hour, UnitMilliseconds.ToDuration(3_600_000))
}

func TestParseUnit(t *testing.T) {
	for in, want := range map[string]Unit{
		"seconds": UnitSeconds, "s": UnitSeconds,
		"milliseconds": UnitMilliseconds, "ms": UnitMilliseconds,
	} {
		got, err := ParseUnit(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseUnit("minutes")
	require.ErrorIs(t, err, ErrInvalidProfile)
}

func TestBuiltinProfiles(t *testing.T) {
	v1, err := LookupProfile("v1")
	require.NoError(t, err)
	assert.Equal(t, UnitSeconds, v1.Unit)
	assert.Equal(t, int64(3600), v1.Duration)
	assert.Equal(t, int64(0), v1.Bound1)
	assert.Nil(t, v1.Bound2)
	assert.True(t, v1.Initialize)

	v2, err := LookupProfile("v2")
	require.NoError(t, err)
	assert.False(t, v2.Initialize)

	v3, err := LookupProfile("v3")
	require.NoError(t, err)
	assert.Equal(t, UnitMilliseconds, v3.Unit)
	assert.Equal(t, int64(3_600_000), v3.Duration)
	assert.Equal(t, int64(1700), v3.Bound1)
	require.NotNil(t, v3.Bound2)
	assert.Equal(t, int64(2000), *v3.Bound2)

	for _, p := range Profiles() {
		assert.NoError(t, p.Validate(), p.Name)
		assert.Positive(t, p.Duration, p.Name)
	}
}

func TestLookupProfile_ReturnsCopy(t *testing.T) {
	p, err := LookupProfile("v3")
	require.NoError(t, err)
	*p.Bound2 = 1

	again, err := LookupProfile("v3")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), *again.Bound2)
}

func TestLookupProfile_Unknown(t *testing.T) {
	_, err := LookupProfile("v9")
	require.ErrorIs(t, err, ErrInvalidProfile)
}

func TestProfile_Validate(t *testing.T) {
	base := Profile{Name: "x", Unit: UnitSeconds, Duration: 1}
	require.NoError(t, base.Validate())

	bad := base
	bad.Duration = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidProfile)

	bad = base
	bad.Unit = "hours"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidProfile)

	bad = base
	bad.Bound1 = -1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidProfile)

	neg := int64(-5)
	bad = base
	bad.Bound2 = &neg
	assert.ErrorIs(t, bad.Validate(), ErrInvalidProfile)
}

func TestProfile_Params(t *testing.T) {
	p, err := LookupProfile("v3")
	require.NoError(t, err)
	registry := common.HexToAddress("0x1234")

	params := p.Params(time.UnixMilli(42_500), registry)
	assert.Equal(t, int64(42_500), params.StartTime)
	assert.Equal(t, int64(3_600_000), params.Duration)
	assert.Equal(t, registry, params.Registry)
	assert.Equal(t, UnitMilliseconds, params.Unit)

	fields := params.Fields()
	assert.Equal(t, int64(2000), fields["bound2"])
	assert.Equal(t, registry.Hex(), fields["registry"])
}
