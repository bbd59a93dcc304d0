package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDecls creates a temp declarations directory with the given files.
func writeDecls(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

const basicDecls = `
static nums: []uint64 = []uint64{1, 2, 3};
static answer: uint64 = 42;
static greeting: string = "Hello, World!";
`

func runGenerateCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewGenerateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestGenerate_Basic(t *testing.T) {
	dir := writeDecls(t, map[string]string{"app.rtinit": basicDecls})

	out, err := runGenerateCmd(t, "text", dir, "--package", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Generated 1 file(s), 3 declaration(s)")
	assert.Contains(t, out, "app_rtinit.go")

	generated, err := os.ReadFile(filepath.Join(dir, "app_rtinit.go"))
	require.NoError(t, err)
	s := string(generated)
	assert.Contains(t, s, "// Code generated by rtinit from app.rtinit. DO NOT EDIT.")
	assert.Contains(t, s, "package config")
	assert.Contains(t, s, "var answer = lazy.New(func() uint64 {")
	assert.Contains(t, s, `return "Hello, World!"`)
}

func TestGenerate_JSON(t *testing.T) {
	dir := writeDecls(t, map[string]string{"app.rtinit": basicDecls})

	out, err := runGenerateCmd(t, "json", dir, "--package", "config")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.Data)
}

func TestGenerate_OutputDir(t *testing.T) {
	dir := writeDecls(t, map[string]string{"app.rtinit": basicDecls})
	outDir := filepath.Join(t.TempDir(), "gen")

	_, err := runGenerateCmd(t, "text", dir, "--package", "config", "--output", outDir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outDir, "app_rtinit.go"))
	require.NoError(t, err)
}

func TestGenerate_ConfigFile(t *testing.T) {
	dir := writeDecls(t, map[string]string{
		"app.rtinit": basicDecls,
		ConfigFilename: "package: fromcfg\n" +
			"header: Managed by rtinit.\n",
	})

	_, err := runGenerateCmd(t, "text", dir)
	require.NoError(t, err)

	generated, err := os.ReadFile(filepath.Join(dir, "app_rtinit.go"))
	require.NoError(t, err)
	assert.Contains(t, string(generated), "package fromcfg")
	assert.Contains(t, string(generated), "// Managed by rtinit.")
}

func TestGenerate_FlagOverridesConfig(t *testing.T) {
	dir := writeDecls(t, map[string]string{
		"app.rtinit":   basicDecls,
		ConfigFilename: "package: fromcfg\n",
	})

	_, err := runGenerateCmd(t, "text", dir, "--package", "fromflag")
	require.NoError(t, err)

	generated, err := os.ReadFile(filepath.Join(dir, "app_rtinit.go"))
	require.NoError(t, err)
	assert.Contains(t, string(generated), "package fromflag")
}

func TestGenerate_MissingPackage(t *testing.T) {
	dir := writeDecls(t, map[string]string{"app.rtinit": basicDecls})

	out, err := runGenerateCmd(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeConfig)
	assert.Contains(t, out, "no package name")
}

func TestGenerate_SyntaxErrors(t *testing.T) {
	dir := writeDecls(t, map[string]string{
		"bad.rtinit": "static broken int = 1;\nstatic ok: int = 2;\n",
	})

	out, err := runGenerateCmd(t, "text", dir, "--package", "config")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "✗ Generation failed")
	assert.Contains(t, out, ErrCodeSyntax)
	assert.Contains(t, out, "bad.rtinit:1:")

	// Nothing may be written when any clause is malformed.
	_, statErr := os.Stat(filepath.Join(dir, "bad_rtinit.go"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerate_DirNotFound(t *testing.T) {
	out, err := runGenerateCmd(t, "text", filepath.Join(t.TempDir(), "missing"), "--package", "config")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestGenerate_CacheSkipsUnchanged(t *testing.T) {
	dir := writeDecls(t, map[string]string{"app.rtinit": basicDecls})
	cachePath := filepath.Join(t.TempDir(), "cache.db")

	out, err := runGenerateCmd(t, "text", dir, "--package", "config", "--cache", cachePath)
	require.NoError(t, err)
	assert.NotContains(t, out, "unchanged")

	// Second run: input digest unchanged, output present, so skip.
	out, err = runGenerateCmd(t, "text", dir, "--package", "config", "--cache", cachePath)
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged")
}

func TestGenerate_CacheRegeneratesMissingOutput(t *testing.T) {
	dir := writeDecls(t, map[string]string{"app.rtinit": basicDecls})
	cachePath := filepath.Join(t.TempDir(), "cache.db")

	_, err := runGenerateCmd(t, "text", dir, "--package", "config", "--cache", cachePath)
	require.NoError(t, err)

	outPath := filepath.Join(dir, "app_rtinit.go")
	require.NoError(t, os.Remove(outPath))

	// A cache hit must not skip when the output file is gone.
	out, err := runGenerateCmd(t, "text", dir, "--package", "config", "--cache", cachePath)
	require.NoError(t, err)
	assert.NotContains(t, out, "unchanged")

	_, err = os.Stat(outPath)
	require.NoError(t, err)
}

func TestGenerate_CacheRegeneratesOnChange(t *testing.T) {
	dir := writeDecls(t, map[string]string{"app.rtinit": basicDecls})
	cachePath := filepath.Join(t.TempDir(), "cache.db")

	_, err := runGenerateCmd(t, "text", dir, "--package", "config", "--cache", cachePath)
	require.NoError(t, err)

	// Changing a clause changes the input digest.
	changed := basicDecls + "static extra: int = 7;\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.rtinit"), []byte(changed), 0644))

	out, err := runGenerateCmd(t, "text", dir, "--package", "config", "--cache", cachePath)
	require.NoError(t, err)
	assert.NotContains(t, out, "unchanged")

	generated, err := os.ReadFile(filepath.Join(dir, "app_rtinit.go"))
	require.NoError(t, err)
	assert.Contains(t, string(generated), "var extra")
}

func TestGenerate_MultipleFiles(t *testing.T) {
	dir := writeDecls(t, map[string]string{
		"a.rtinit": "static alpha: int = 1;\n",
		"b.rtinit": "static beta: int = 2;\n",
	})

	out, err := runGenerateCmd(t, "text", dir, "--package", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Generated 2 file(s), 2 declaration(s)")

	for _, name := range []string{"a_rtinit.go", "b_rtinit.go"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, "expected %s", name)
	}
}
