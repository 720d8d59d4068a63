package config

import (
	"os"
	"path/filepath"

	emerrors "github.com/systmms/envmigrate/internal/errors"
	"github.com/systmms/envmigrate/internal/identity"
	"github.com/systmms/envmigrate/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration.
type Config struct {
	Path       string
	Logger     *logging.Logger
	Definition *Definition
}

// Definition represents the envmigrate.yaml structure. Every field has
// a sensible default; the file is optional.
type Definition struct {
	Version  int            `yaml:"version"`
	Store    StoreConfig    `yaml:"store"`
	Naming   NamingConfig   `yaml:"naming"`
	Classify ClassifyConfig `yaml:"classify"`
	Journal  JournalConfig  `yaml:"journal"`
}

// StoreConfig selects and parameterizes the secret-store CLI.
type StoreConfig struct {
	Command string `yaml:"command"` // CLI binary, default "op"
	Scheme  string `yaml:"scheme"`  // reference scheme, default "op"
	Account string `yaml:"account,omitempty"`
}

// NamingConfig overrides the canonical vault for auto mode.
type NamingConfig struct {
	Vault string `yaml:"vault"`
}

// ClassifyConfig adds keywords to the secret detection set. The base
// set is fixed and cannot be removed.
type ClassifyConfig struct {
	ExtraKeywords []string `yaml:"extraKeywords,omitempty"`
}

// JournalConfig locates the local run journal.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// Defaults returns a definition with all defaults applied.
func Defaults() *Definition {
	return &Definition{
		Version: 1,
		Store:   StoreConfig{Command: "op", Scheme: "op"},
		Naming:  NamingConfig{Vault: identity.DefaultVault},
	}
}

// Load reads and parses the config file. A missing file yields the
// defaults; a malformed file is a ConfigError.
func (c *Config) Load() error {
	def := Defaults()

	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			c.Definition = def
			return nil
		}
		return emerrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	if err := yaml.Unmarshal(data, def); err != nil {
		return emerrors.ConfigError{
			Field:      "path",
			Value:      c.Path,
			Message:    "invalid YAML: " + err.Error(),
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if def.Store.Command == "" {
		def.Store.Command = "op"
	}
	if def.Store.Scheme == "" {
		def.Store.Scheme = "op"
	}
	if def.Naming.Vault == "" {
		def.Naming.Vault = identity.DefaultVault
	}

	c.Definition = def
	return nil
}

// JournalPath returns the configured journal location, defaulting to
// the user state directory.
func (c *Config) JournalPath() (string, error) {
	if c.Definition != nil && c.Definition.Journal.Path != "" {
		return c.Definition.Journal.Path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "envmigrate", "journal.db"), nil
}
