package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFilename is the per-directory generator configuration file,
// looked up next to the declaration files.
const ConfigFilename = ".rtinit.yaml"

// Config holds generator settings from .rtinit.yaml. Command-line flags
// take precedence over every field.
type Config struct {
	// Package is the package name for generated files.
	Package string `yaml:"package"`

	// Output is the directory generated files are written to.
	// Defaults to the declarations directory.
	Output string `yaml:"output"`

	// LazyImport overrides the import path of the lazy slot package.
	LazyImport string `yaml:"lazy_import"`

	// Header is an extra comment block for generated files.
	Header string `yaml:"header"`
}

// LoadConfig reads .rtinit.yaml from dir. A missing file is not an
// error: it yields the zero Config. Unknown keys are rejected so a typo
// like "packge" fails loudly instead of being silently ignored.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFilename)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
