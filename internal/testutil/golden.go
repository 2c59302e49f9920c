package testutil

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden compares data against testdata/golden/{name}.golden in the
// calling package's directory.
//
// To regenerate golden files, run the package's tests with -update:
//
//	go test ./internal/render -update
func AssertGolden(t *testing.T, name string, data []byte) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
