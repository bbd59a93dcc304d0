package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfig_Full(t *testing.T) {
	dir := t.TempDir()
	content := `package: config
output: gen
lazy_import: example.com/vendored/lazy
header: Managed by rtinit.
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFilename), []byte(content), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "config", cfg.Package)
	assert.Equal(t, "gen", cfg.Output)
	assert.Equal(t, "example.com/vendored/lazy", cfg.LazyImport)
	assert.Equal(t, "Managed by rtinit.", cfg.Header)
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFilename), []byte("packge: typo\n"), 0644))

	_, err := LoadConfig(dir)
	require.Error(t, err, "unknown keys must fail instead of being ignored")
	assert.Contains(t, err.Error(), ConfigFilename)
}

func TestLoadConfig_Empty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFilename), []byte(""), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFilename), []byte("package: [\n"), 0644))

	_, err := LoadConfig(dir)
	require.Error(t, err)
}
