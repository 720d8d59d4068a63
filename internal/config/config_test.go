package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	emerrors "github.com/systmms/envmigrate/internal/errors"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{Path: filepath.Join(t.TempDir(), "envmigrate.yaml")}
	require.NoError(t, cfg.Load())

	assert.Equal(t, "op", cfg.Definition.Store.Command)
	assert.Equal(t, "op", cfg.Definition.Store.Scheme)
	assert.Equal(t, "gh-projects", cfg.Definition.Naming.Vault)
	assert.Empty(t, cfg.Definition.Classify.ExtraKeywords)
}

func TestLoad_ParsesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "envmigrate.yaml")
	content := `version: 1
store:
  command: op
  scheme: vault
  account: work
naming:
  vault: team-vault
classify:
  extraKeywords:
    - dsn
journal:
  path: /tmp/envmigrate-journal.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := &Config{Path: path}
	require.NoError(t, cfg.Load())

	assert.Equal(t, "vault", cfg.Definition.Store.Scheme)
	assert.Equal(t, "work", cfg.Definition.Store.Account)
	assert.Equal(t, "team-vault", cfg.Definition.Naming.Vault)
	assert.Equal(t, []string{"dsn"}, cfg.Definition.Classify.ExtraKeywords)

	journalPath, err := cfg.JournalPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/envmigrate-journal.db", journalPath)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "envmigrate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("naming:\n  vault: custom\n"), 0o600))

	cfg := &Config{Path: path}
	require.NoError(t, cfg.Load())

	assert.Equal(t, "custom", cfg.Definition.Naming.Vault)
	assert.Equal(t, "op", cfg.Definition.Store.Command, "unset fields fall back to defaults")
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "envmigrate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed\n"), 0o600))

	cfg := &Config{Path: path}
	err := cfg.Load()

	var cfgErr emerrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestJournalPath_Default(t *testing.T) {
	t.Parallel()

	cfg := &Config{Definition: Defaults()}
	path, err := cfg.JournalPath()
	require.NoError(t, err)
	assert.Contains(t, path, filepath.Join(".local", "state", "envmigrate"))
}
