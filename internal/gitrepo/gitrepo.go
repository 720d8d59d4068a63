// Package gitrepo is the version-control boundary. It shells out to
// the git binary through an injected executor so tests never need a
// real repository.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	emerrors "github.com/systmms/envmigrate/internal/errors"
	pkgexec "github.com/systmms/envmigrate/pkg/exec"
)

// ErrNoRemote is returned when the repository has no origin remote
// configured. Callers distinguish this from a malformed remote URL.
var ErrNoRemote = errors.New("no git remote configured")

// Repo wraps git queries for one working directory.
type Repo struct {
	dir  string
	exec pkgexec.CommandExecutor
}

// New creates a Repo for the given working directory. A nil executor
// selects the production executor.
func New(dir string, executor pkgexec.CommandExecutor) *Repo {
	if executor == nil {
		executor = pkgexec.DefaultExecutor()
	}
	return &Repo{dir: dir, exec: executor}
}

func (r *Repo) git(ctx context.Context, args ...string) (string, string, error) {
	fullArgs := args
	if r.dir != "" {
		fullArgs = append([]string{"-C", r.dir}, args...)
	}
	stdout, stderr, err := r.exec.Execute(ctx, "git", fullArgs...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", emerrors.WrapCommandNotFound("git", err)
		}
		return string(stdout), string(stderr), err
	}
	return string(stdout), string(stderr), nil
}

// IsRepo reports whether the directory is inside a git work tree.
func (r *Repo) IsRepo(ctx context.Context) bool {
	out, _, err := r.git(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// RemoteURL returns the origin remote URL, or ErrNoRemote when none is
// configured.
func (r *Repo) RemoteURL(ctx context.Context) (string, error) {
	out, stderr, err := r.git(ctx, "remote", "get-url", "origin")
	if err != nil {
		var cmdErr emerrors.CommandError
		if errors.As(err, &cmdErr) {
			return "", err
		}
		if strings.Contains(stderr, "No such remote") || strings.TrimSpace(stderr) == "" {
			return "", ErrNoRemote
		}
		return "", fmt.Errorf("git remote get-url: %s", strings.TrimSpace(stderr))
	}
	url := strings.TrimSpace(out)
	if url == "" {
		return "", ErrNoRemote
	}
	return url, nil
}

// Toplevel returns the absolute path of the repository root.
func (r *Repo) Toplevel(ctx context.Context) (string, error) {
	out, stderr, err := r.git(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		var cmdErr emerrors.CommandError
		if errors.As(err, &cmdErr) {
			return "", err
		}
		return "", fmt.Errorf("git rev-parse: %s", strings.TrimSpace(stderr))
	}
	return strings.TrimSpace(out), nil
}

// RelPath returns the path of file relative to the repository root.
// Supports nested checkouts and submodule layouts because the toplevel
// is asked of git, not guessed from the filesystem.
func (r *Repo) RelPath(ctx context.Context, file string) (string, error) {
	top, err := r.Toplevel(ctx)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(top, abs)
	if err != nil {
		return "", fmt.Errorf("file %s is not under repository root %s: %w", file, top, err)
	}
	return filepath.ToSlash(rel), nil
}
