package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runValidateCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidate_Valid(t *testing.T) {
	dir := writeDecls(t, map[string]string{
		"app.rtinit":   basicDecls,
		"other.rtinit": "pub static MaxSize: int = 1 << 20;\n",
	})

	out, err := runValidateCmd(t, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 file(s), 4 declaration(s) valid")
}

func TestValidate_SyntaxErrors(t *testing.T) {
	dir := writeDecls(t, map[string]string{
		"bad.rtinit": "static broken int = 1;\npub static also: int = 2;\n",
	})

	out, err := runValidateCmd(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err), "syntax failures are validation failures, not command errors")
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, ErrCodeSyntax)
	assert.Contains(t, out, "bad.rtinit:1:")
	assert.Contains(t, out, "bad.rtinit:2:")
}

func TestValidate_JSON(t *testing.T) {
	dir := writeDecls(t, map[string]string{"app.rtinit": basicDecls})

	out, err := runValidateCmd(t, "json", dir)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result ValidationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, 3, result.Decls)
	assert.Empty(t, result.Errors)
}

func TestValidate_JSONWithErrors(t *testing.T) {
	dir := writeDecls(t, map[string]string{
		"bad.rtinit": "static answer: uint64 = ;\n",
	})

	out, err := runValidateCmd(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status) // validation ran; the result reports invalid

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result ValidationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ErrCodeSyntax, result.Errors[0].Code)
	assert.Contains(t, result.Errors[0].Message, "missing initializer")
	assert.Contains(t, result.Errors[0].Pos, "bad.rtinit:1:")
}

func TestValidate_DirNotFound(t *testing.T) {
	out, err := runValidateCmd(t, "text", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestValidate_NoFiles(t *testing.T) {
	out, err := runValidateCmd(t, "text", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNoFiles)
}
