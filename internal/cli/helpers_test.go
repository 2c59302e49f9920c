package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"github.com/roach88/loom/internal/testutil"
)

// badPinYAML declares everything correctly but connects a pin X1 lacks.
const badPinYAML = `connectors:
  X1: {pincount: 2}
cables:
  W1: {wirecount: 1}
connections:
  - - X1: [3]
    - W1: [1]
`

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// run executes a full command line through the root command.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return execute(t, NewRootCommand(), args...)
}

// writeDemo writes the demo document into a fresh directory.
func writeDemo(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	return dir, testutil.WriteFile(t, dir, "demo.yml", testutil.DemoYAML)
}
