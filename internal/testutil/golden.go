package testutil

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mktdeploy/internal/canon"
)

// GoldenDir is where golden files live, relative to the test's package.
const GoldenDir = "testdata/golden"

// AssertGolden compares data against testdata/golden/{name}.golden.
//
// To regenerate golden files, run the package's tests with -update.
func AssertGolden(t *testing.T, name string, data []byte) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}

// AssertCanonicalGolden compares the canonical JSON form of fields against a
// golden file, so map ordering never causes spurious diffs.
func AssertCanonicalGolden(t *testing.T, name string, fields map[string]any) {
	t.Helper()

	data, err := canon.Marshal(fields)
	require.NoError(t, err)
	AssertGolden(t, name, data)
}
