package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/loom/internal/compiler"
	"github.com/roach88/loom/internal/model"
	"github.com/roach88/loom/internal/testutil"
)

func TestIsDocument(t *testing.T) {
	tests := map[string]bool{
		"demo.yml":         true,
		"demo.YAML":        true,
		"harness.cue":      true,
		"dir/loom.yaml":    false,
		"demo.gv":          false,
		"demo.bom.tsv":     false,
		"README":           false,
		"nested/other.yml": true,
	}
	for path, want := range tests {
		assert.Equal(t, want, IsDocument(path), path)
	}
}

func TestResolveInputs(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteFile(t, dir, "b/a.yml", testutil.DemoYAML)
	c := testutil.WriteFile(t, dir, "c.cue", "connectors: {}\n")
	testutil.WriteFile(t, dir, DefaultConfigFile, "")
	single := testutil.WriteFile(t, t.TempDir(), "single.txt", testutil.DemoYAML)

	paths, err := ResolveInputs([]string{single, dir})
	require.NoError(t, err)
	assert.Equal(t, []string{single, a, c}, paths)
}

func TestResolveInputs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"missing", []string{filepath.Join(t.TempDir(), "nope.yml")}, ErrCodeNotFound},
		{"empty dir", []string{t.TempDir()}, ErrCodeNoFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveInputs(tt.args)
			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.code, loadErr.Code)
		})
	}
}

func TestLoadDocument(t *testing.T) {
	_, path := writeDemo(t)

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", doc.Name)

	_, err = LoadDocument(filepath.Join(t.TempDir(), "gone.yml"))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)

	bad := testutil.WriteFile(t, t.TempDir(), "bad.yml", "connectors:\n  X1: {colour: RD}\n")
	_, err = LoadDocument(bad)
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeBuildFailed, loadErr.Code)
}

func TestLoadError_Error(t *testing.T) {
	err := &LoadError{Code: ErrCodeNoFiles, Message: "no harness documents found in ."}
	assert.Equal(t, "E003: no harness documents found in .", err.Error())
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantExit int
		wantCode string
	}{
		{"missing file", &LoadError{Code: ErrCodeNotFound, Message: "gone"}, ExitCommandError, ErrCodeNotFound},
		{"schema rejection", &LoadError{Code: ErrCodeBuildFailed, Message: "field not allowed"}, ExitFailure, ErrCodeBuildFailed},
		{"unknown pin", model.NewUnknownPinError("X1", "pin 3 not found"), ExitFailure, compiler.ErrUnknownPin},
		{"schema violation", model.NewSchemaError("W1", "bad gauge"), ExitFailure, compiler.ErrSchemaViolation},
		{"other", errors.New("disk on fire"), ExitCommandError, ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			err := reportError(&OutputFormatter{Format: "text", Writer: out}, tt.err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantCode)
			assert.Contains(t, out.String(), "Error ["+tt.wantCode+"]")
		})
	}

	passthrough := NewExitError(ExitCommandError, "already reported")
	assert.Same(t, passthrough, reportError(&OutputFormatter{Writer: &bytes.Buffer{}}, passthrough))
}
