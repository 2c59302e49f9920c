package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/loom/internal/compiler"
	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/store"
	"github.com/roach88/loom/internal/testutil"
)

func TestBOM_TSV(t *testing.T) {
	_, path := writeDemo(t)

	out, err := run(t, "bom", path)
	require.NoError(t, err)

	testutil.AssertGolden(t, "demo.bom.tsv", []byte(out))
}

func TestBOM_JSON(t *testing.T) {
	_, path := writeDemo(t)

	out, err := run(t, "--format", "json", "bom", path)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   []ir.BOMItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "Connector, Molex KK 254, female, 4 pins", resp.Data[1].Description)
	assert.Equal(t, "2", resp.Data[1].Qty.String())
	assert.Equal(t, []string{"X1", "X2"}, resp.Data[1].Designators)
}

func TestBOM_RejectedDocument(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "bad.yml", badPinYAML)

	_, err := run(t, "bom", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), compiler.ErrUnknownPin)
}

func TestBOM_Show(t *testing.T) {
	dir, path := writeDemo(t)
	db := filepath.Join(dir, "bom.db")

	opts := &BuildOptions{
		RootOptions: &RootOptions{Format: "text"},
		RunIDs:      testutil.NewFixedRunIDGenerator("run-1"),
	}
	_, err := execute(t, newBuildCommand(opts), "--bom-db", db, path)
	require.NoError(t, err)

	out, err := run(t, "bom", "show", "--db", db, "run-1")
	require.NoError(t, err)
	testutil.AssertGolden(t, "demo.bom.tsv", []byte(out))

	_, err = run(t, "bom", "show", "--db", db, "run-404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}

func TestBOM_History(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "bom.db")
	short := testutil.WriteFile(t, dir, "short.yml", testutil.DemoYAML)
	long := testutil.WriteFile(t, dir, "long.yml", `connectors:
  X1: {type: Molex KK 254, subtype: female, pincount: 4}
cables:
  W1: {gauge: 0.25 mm2, length: 1.5, wirecount: 4, shield: true}
connections:
  - - X1: 1-4
    - W1: 1-4
`)

	opts := &BuildOptions{
		RootOptions: &RootOptions{Format: "text"},
		RunIDs:      store.NewSequenceGenerator("run-a", "run-b"),
	}
	_, err := execute(t, newBuildCommand(opts), "--bom-db", db, short, long)
	require.NoError(t, err)

	out, err := run(t, "bom", "history", "--db", db, "Cable, 4 x 0.25 mm² shielded")
	require.NoError(t, err)
	assert.Equal(t, "History: Cable, 4 x 0.25 mm² shielded\n"+
		"  [1] run-a short: 0.2 m\n"+
		"  [2] run-b long: 1.5 m\n", out)

	out, err = run(t, "--format", "json", "bom", "runs", "--db", db, "long")
	require.NoError(t, err)
	var resp struct {
		Data []RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "run-b", resp.Data[0].ID)
	assert.Equal(t, int64(2), resp.Data[0].Seq)

	out, err = run(t, "bom", "history", "--db", db, "Cable, 9 wires")
	require.NoError(t, err)
	assert.Equal(t, "No runs contain \"Cable, 9 wires\"\n", out)
}

func TestBOM_DatabaseRequired(t *testing.T) {
	_, err := run(t, "bom", "runs")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = run(t, "bom", "runs", "--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database not found")
}
