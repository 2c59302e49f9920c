package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/loom/internal/compiler"
	"github.com/roach88/loom/internal/testutil"
)

type buildResponse struct {
	Status string      `json:"status"`
	Data   BuildResult `json:"data"`
	Error  *CLIError   `json:"error"`
}

func TestBuild_NextToDocument(t *testing.T) {
	dir, path := writeDemo(t)

	out, err := run(t, "build", path)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Built demo (3 BOM item(s))")
	assert.FileExists(t, filepath.Join(dir, "demo.gv"))
	assert.FileExists(t, filepath.Join(dir, "demo.bom.tsv"))
	assert.NoFileExists(t, filepath.Join(dir, "demo.html"))
}

func TestBuild_OutputDirAndFormats(t *testing.T) {
	_, path := writeDemo(t)
	outDir := filepath.Join(t.TempDir(), "out")

	out, err := run(t, "--format", "json", "build", "-o", outDir,
		"--graph-format", "dot,json", "--bom-format", "tsv,html", "--workers", "1", path)
	require.NoError(t, err)

	var resp buildResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Documents, 1)

	built := resp.Data.Documents[0]
	assert.Equal(t, "demo", built.Name)
	assert.Equal(t, path, built.Source)
	assert.Equal(t, 3, built.BOMItems)
	assert.Len(t, built.GraphHash, 64)
	assert.Empty(t, built.RunID)
	assert.Equal(t, []string{
		filepath.Join(outDir, "demo.gv"),
		filepath.Join(outDir, "demo.graph.json"),
		filepath.Join(outDir, "demo.bom.tsv"),
		filepath.Join(outDir, "demo.html"),
	}, built.Files)
}

func TestBuild_ColorModeFlag(t *testing.T) {
	dir, path := writeDemo(t)

	_, err := run(t, "build", "--color-mode", "FULL", path)
	require.NoError(t, err)

	dot := testutil.ReadFile(t, filepath.Join(dir, "demo.gv"))
	assert.Contains(t, dot, "GREY")
}

func TestBuild_ConfigFile(t *testing.T) {
	dir, path := writeDemo(t)
	cfg := testutil.WriteFile(t, dir, DefaultConfigFile, `color_mode: full
bom_formats: [tsv, html]
graph_formats: [yaml]
`)

	_, err := run(t, "--config", cfg, "build", path)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "demo.graph.yaml"))
	assert.FileExists(t, filepath.Join(dir, "demo.html"))
	assert.NoFileExists(t, filepath.Join(dir, "demo.gv"))

	graph := testutil.ReadFile(t, filepath.Join(dir, "demo.graph.yaml"))
	assert.Contains(t, graph, "grey")
}

func TestBuild_FlagsOverrideConfig(t *testing.T) {
	dir, path := writeDemo(t)
	cfg := testutil.WriteFile(t, dir, "project.yaml", "bom_formats: [html]\n")

	_, err := run(t, "--config", cfg, "build", "--bom-format", "tsv", path)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "demo.bom.tsv"))
	assert.NoFileExists(t, filepath.Join(dir, "demo.html"))
}

func TestBuild_ConfigErrors(t *testing.T) {
	dir, path := writeDemo(t)

	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "colour_mode: FULL\n"},
		{"bad mode", "color_mode: loud\n"},
		{"bad format", "graph_formats: [png]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testutil.WriteFile(t, dir, "cfg.yaml", tt.content)

			out, err := run(t, "--config", cfg, "build", path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, ErrCodeLoadFailed)
		})
	}
}

func TestBuild_MissingConfig(t *testing.T) {
	_, path := writeDemo(t)

	_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "build", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeLoadFailed)
}

func TestBuild_InvalidFlagValues(t *testing.T) {
	_, path := writeDemo(t)

	for _, args := range [][]string{
		{"build", "--graph-format", "svg", path},
		{"build", "--bom-format", "csv", path},
		{"build", "--color-mode", "LOUD", path},
	} {
		_, err := run(t, args...)
		require.Error(t, err, args)
		assert.Equal(t, ExitCommandError, GetExitCode(err), args)
	}
}

func TestBuild_RejectedDocument(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "bad.yml", badPinYAML)

	out, err := run(t, "build", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error ["+compiler.ErrUnknownPin+"]")
	assert.NoFileExists(t, filepath.Join(dir, "bad.gv"))
}

func TestBuild_AmbiguousLoop(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "loop.yml", `connectors:
  X1: {pincount: 2}
connections:
  - - X1: [1]
    - X1: [2]
`)

	out, err := run(t, "build", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, compiler.ErrAmbiguousRendering)
}

func TestBuild_WriteFailure(t *testing.T) {
	dir, path := writeDemo(t)
	blocker := testutil.WriteFile(t, dir, "blocker", "a file, not a directory")

	out, err := run(t, "build", "-o", filepath.Join(blocker, "out"), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeWriteFailed)
}

func TestBuild_RecordsBOM(t *testing.T) {
	dir, path := writeDemo(t)
	db := filepath.Join(dir, "bom.db")

	opts := &BuildOptions{
		RootOptions: &RootOptions{Format: "text"},
		RunIDs:      testutil.NewFixedRunIDGenerator("run-1"),
	}
	out, err := execute(t, newBuildCommand(opts), "--bom-db", db, path)
	require.NoError(t, err)
	assert.Contains(t, out, "BOM recorded as run run-1")

	_, err = os.Stat(db)
	require.NoError(t, err)

	out, err = run(t, "bom", "runs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded BOMs: 1")
	assert.Contains(t, out, "[1] run-1 demo")
}
