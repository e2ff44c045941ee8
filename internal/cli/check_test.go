package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCheck(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewCheckCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCheckMissingArgs(t *testing.T) {
	_, err := executeCheck(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestCheckValidFile(t *testing.T) {
	path := writeIDL(t, t.TempDir(), "clubhouse.json", clubhouseIDL)

	out, err := executeCheck(t, "text", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 type(s), 1 account(s)")
}

func TestCheckJSON(t *testing.T) {
	path := writeIDL(t, t.TempDir(), "clubhouse.json", clubhouseIDL)

	out, err := executeCheck(t, "json", path)
	require.NoError(t, err)

	var summary CheckSummary
	resp := decodeData(t, []byte(out), &summary)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, path, summary.File)
	assert.Equal(t, 1, summary.Types)
	assert.Equal(t, 1, summary.Accounts)
	assert.Len(t, summary.Hash, 64)
}

func TestCheckWithoutDefinitions(t *testing.T) {
	// A types section alone is never merged, so its shape is not checked.
	path := writeIDL(t, t.TempDir(), "types-only.json", `{"types": "not an array"}`)

	out, err := executeCheck(t, "text", path)
	require.NoError(t, err)
	assert.Contains(t, out, "0 type(s), 0 account(s)")
}

func TestCheckErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		path     string
		wantCode string
		wantExit int
	}{
		{"missing file", filepath.Join(dir, "missing.json"), ErrCodeNotFound, ExitCommandError},
		{"malformed", writeIDL(t, dir, "malformed.json", `{"a": }`), ErrCodeParseFailed, ExitCommandError},
		{"empty", writeIDL(t, dir, "empty.json", ``), ErrCodeParseFailed, ExitCommandError},
		{"types not array", writeIDL(t, dir, "types.json", `{"types": {}, "accounts": []}`), ErrCodeInvalidShape, ExitFailure},
		{"unnamed account", writeIDL(t, dir, "unnamed.json", `{"types": [], "accounts": [{"name": 1}]}`), ErrCodeInvalidShape, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCheck(t, "json", tt.path)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))

			resp := decodeData(t, []byte(out), nil)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}
