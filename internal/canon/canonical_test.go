package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_SortsKeys(t *testing.T) {
	got, err := Marshal(map[string]any{
		"registry":   "0xabc",
		"duration":   int64(3600000),
		"start_time": int64(1700000000000),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"duration":3600000,"registry":"0xabc","start_time":1700000000000}`, string(got))
}

func TestMarshal_NestedMaps(t *testing.T) {
	got, err := Marshal(map[string]any{
		"market":   map[string]any{"artifact": "Market", "address": "0x02"},
		"registry": map[string]any{"artifact": "MarketRegistry", "address": "0x01"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"market":{"address":"0x02","artifact":"Market"},"registry":{"address":"0x01","artifact":"MarketRegistry"}}`, string(got))
}

func TestMarshal_RejectsUnsupportedTypes(t *testing.T) {
	for _, v := range []any{1, uint64(2), true, []any{int64(1)}, []string{"a"}} {
		_, err := Marshal(map[string]any{"x": v})
		require.Error(t, err, "%T", v)
		assert.Contains(t, err.Error(), "unsupported type")
	}
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	got, err := Marshal("<a & b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(got))
}

func TestMarshal_EscapesControlCharacters(t *testing.T) {
	got, err := Marshal("a\"b\\c\nd\x01")
	require.NoError(t, err)
	assert.Equal(t, `"a\"b\\c\nd\u0001"`, string(got))
}

func TestMarshal_NFCNormalizes(t *testing.T) {
	decomposed := "e\u0301"
	got, err := Marshal(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshal_UTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as 0xD83D 0xDE00, which sorts before U+E000 in UTF-16
	// even though its code point is larger.
	got, err := Marshal(map[string]any{
		"\uE000":     int64(2),
		"\U0001F600": int64(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":1,\"\uE000\":2}", string(got))
}

func TestMarshal_RejectsFloatAndNull(t *testing.T) {
	_, err := Marshal(map[string]any{"x": 1.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")

	_, err = Marshal(map[string]any{"x": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null is forbidden")
}

func TestFingerprint_StableAndDomainSeparated(t *testing.T) {
	v := map[string]any{"duration": int64(3600)}

	a := MustFingerprint(DomainParams, v)
	b := MustFingerprint(DomainParams, map[string]any{"duration": int64(3600)})
	c := MustFingerprint(DomainRun, v)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
