package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bst-license-checker/bst-license-checker/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the current directory.
const FileName = ".bst-license-checker.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .bst-license-checker.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads the config at path. With an empty path it reads FileName from
// the current directory and returns DefaultConfig if that does not exist;
// an explicit path must exist. Keys absent from the file keep their defaults.
func (l *YAMLLoader) Load(path string) (domain.ToolConfig, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ToolConfig{}, domain.ConfigError("config", err)
	}

	cfg := domain.DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return domain.ToolConfig{}, domain.ConfigError("config", fmt.Errorf("parsing %s: %w", path, err))
	}

	// Validate after decoding so typos and bad values are reported together.
	if err := cfg.Validate(); err != nil {
		return domain.ToolConfig{}, domain.ConfigError("config", fmt.Errorf("invalid %s: %w", path, err))
	}
	return cfg, nil
}

var _ domain.ConfigLoader = (*YAMLLoader)(nil)
