// Package migrate drives the migration workflow: classify the source
// file, resolve the vault/item identity, sync secrets to the store and
// write the reference template, with optional backup of the original.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/systmms/envmigrate/internal/classify"
	"github.com/systmms/envmigrate/internal/envfile"
	"github.com/systmms/envmigrate/internal/gitrepo"
	"github.com/systmms/envmigrate/internal/identity"
	"github.com/systmms/envmigrate/internal/logging"
	"github.com/systmms/envmigrate/internal/store"
	"github.com/systmms/envmigrate/internal/template"
)

// VersionControl is the boundary the orchestrator needs from git.
type VersionControl interface {
	RemoteURL(ctx context.Context) (string, error)
	RelPath(ctx context.Context, file string) (string, error)
}

// Options selects the file and the mode for one run.
type Options struct {
	File   string
	Auto   bool   // derive vault/item from the git remote
	Vault  string // manual mode vault (ignored with Auto)
	Item   string // manual mode item (ignored with Auto)
	DryRun bool   // suppress store mutation; template is still written
	Backup bool   // copy the original to a .backup sibling
}

// Summary reports what one run did, for display and for the journal.
type Summary struct {
	File         string
	Vault        string
	Item         string
	SecretCount  int
	PlainCount   int
	TemplatePath string
	BackupPath   string
	DryRun       bool
	Source       string // serialized source, for dry-run previews
	Template     string // serialized template
}

// BackupCollisionError means a prior backup already occupies the
// backup path. Backups are never silently overwritten.
type BackupCollisionError struct {
	Path string
}

func (e *BackupCollisionError) Error() string {
	return fmt.Sprintf("backup file %s already exists; move it aside or rerun without --backup", e.Path)
}

// Orchestrator wires the collaborators for migration runs. One
// orchestrator handles one file per Run call; there is no shared
// mutable state between runs.
type Orchestrator struct {
	gateway    store.Gateway
	vcs        VersionControl
	classifier *classify.Classifier
	logger     *logging.Logger
	vault      string // default vault name for auto mode
}

// New creates an orchestrator. vault is the canonical vault for auto
// mode; empty selects identity.DefaultVault.
func New(gateway store.Gateway, vcs VersionControl, cls *classify.Classifier, logger *logging.Logger, vault string) *Orchestrator {
	if vault == "" {
		vault = identity.DefaultVault
	}
	return &Orchestrator{
		gateway:    gateway,
		vcs:        vcs,
		classifier: cls,
		logger:     logger,
		vault:      vault,
	}
}

// Run executes the migration state machine. Filesystem writes that
// happened before a later failure are left in place; reruns are safe
// because the upsert merges and the template is deterministic.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Backup {
		// Fail before any store or filesystem mutation. The final write
		// still uses exclusive create in case a backup appears in between.
		if _, err := os.Lstat(opts.File + ".backup"); err == nil {
			return nil, &BackupCollisionError{Path: opts.File + ".backup"}
		}
	}

	raw, err := os.ReadFile(opts.File)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", opts.File, err)
	}

	src, err := envfile.Parse(opts.File, string(raw))
	if err != nil {
		return nil, err
	}

	summary := &Summary{File: opts.File, DryRun: opts.DryRun, Source: src.Serialize()}
	for _, line := range src.Assignments() {
		if o.classifier.IsSecret(line.Key) {
			summary.SecretCount++
		} else {
			summary.PlainCount++
		}
	}

	key, err := o.resolveIdentity(ctx, opts)
	if err != nil {
		return nil, err
	}
	summary.Vault, summary.Item = key.Vault, key.Item

	fields := template.SecretFields(src, o.classifier)
	if len(fields) == 0 {
		o.logger.Warn("no secrets detected in %s; template will match the source", opts.File)
	}

	switch {
	case opts.DryRun:
		o.logger.Debug("dry run: skipping store upsert of %d fields", len(fields))
	case len(fields) > 0:
		if err := o.gateway.UpsertFields(ctx, key.Vault, key.Item, fields); err != nil {
			return nil, err
		}
		o.logger.Info("synced %d secret field(s) to %s/%s", len(fields), key.Vault, key.Item)
	}

	tpl := template.Generate(src, o.classifier, o.gateway.Scheme(), key)
	summary.Template = tpl.Serialize()
	summary.TemplatePath = opts.File + ".tpl"
	if err := os.WriteFile(summary.TemplatePath, []byte(summary.Template), 0o600); err != nil {
		return nil, fmt.Errorf("writing template %s: %w", summary.TemplatePath, err)
	}

	if opts.Backup {
		backupPath := opts.File + ".backup"
		if err := writeExclusive(backupPath, raw); err != nil {
			return nil, err
		}
		summary.BackupPath = backupPath
	}

	return summary, nil
}

func (o *Orchestrator) resolveIdentity(ctx context.Context, opts Options) (identity.Key, error) {
	if !opts.Auto {
		return identity.Key{Vault: opts.Vault, Item: opts.Item}, nil
	}

	remote, err := o.vcs.RemoteURL(ctx)
	if err != nil {
		if errors.Is(err, gitrepo.ErrNoRemote) {
			return identity.Key{}, fmt.Errorf("auto naming needs a git remote: %w", err)
		}
		return identity.Key{}, err
	}

	rel, err := o.vcs.RelPath(ctx, opts.File)
	if err != nil {
		return identity.Key{}, err
	}

	id, err := identity.Resolve(remote, rel)
	if err != nil {
		return identity.Key{}, err
	}
	key := id.Key(o.vault)
	o.logger.Debug("resolved identity %s/%s from %s", key.Vault, key.Item, remote)
	return key, nil
}

// writeExclusive creates the file or fails when it exists. Exclusive
// create keeps the existence check and the write one atomic step, so a
// concurrently created backup is never clobbered.
func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return &BackupCollisionError{Path: path}
		}
		return fmt.Errorf("creating backup %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing backup %s: %w", path, err)
	}
	return f.Close()
}
