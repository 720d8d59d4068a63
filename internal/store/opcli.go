package store

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	emerrors "github.com/systmms/envmigrate/internal/errors"
	pkgexec "github.com/systmms/envmigrate/pkg/exec"
)

// CLIGateway implements Gateway on top of a 1Password-compatible CLI
// ("op"). All process execution goes through the injected executor so
// tests can script the CLI's behavior.
type CLIGateway struct {
	command string
	account string
	scheme  string
	exec    pkgexec.CommandExecutor
}

// CLIConfig configures the CLI-backed gateway.
type CLIConfig struct {
	Command string // CLI binary name, default "op"
	Account string // optional account shorthand passed as --account
	Scheme  string // reference scheme, default "op"
}

// NewCLIGateway creates a gateway driving the configured CLI. A nil
// executor selects the production executor.
func NewCLIGateway(cfg CLIConfig, executor pkgexec.CommandExecutor) *CLIGateway {
	if cfg.Command == "" {
		cfg.Command = "op"
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "op"
	}
	if executor == nil {
		executor = pkgexec.DefaultExecutor()
	}
	return &CLIGateway{
		command: cfg.Command,
		account: cfg.Account,
		scheme:  cfg.Scheme,
		exec:    executor,
	}
}

// Scheme returns the reference scheme for generated templates.
func (g *CLIGateway) Scheme() string {
	return g.scheme
}

func (g *CLIGateway) args(base ...string) []string {
	if g.account != "" {
		return append(base, "--account", g.account)
	}
	return base
}

// Validate checks that the CLI is installed and has a usable session.
func (g *CLIGateway) Validate(ctx context.Context) error {
	_, stderr, err := g.exec.Execute(ctx, g.command, g.args("account", "get")...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return emerrors.WrapCommandNotFound(g.command, err)
		}
		return &AuthError{Message: fmt.Sprintf("run '%s signin' first", g.command), Err: fmt.Errorf("%s", strings.TrimSpace(string(stderr)))}
	}
	return nil
}

// ItemExists reports whether the item exists in the vault. A "not
// found" answer from the CLI is a clean false, not an error.
func (g *CLIGateway) ItemExists(ctx context.Context, vault, item string) (bool, error) {
	args := g.args("item", "get", item, "--vault", vault, "--format", "json")
	_, stderr, err := g.exec.Execute(ctx, g.command, args...)
	if err == nil {
		return true, nil
	}

	msg := string(stderr)
	if isItemNotFound(msg) {
		return false, nil
	}
	return false, g.classify(err, msg, "read", vault, item)
}

// UpsertFields creates the item when absent, otherwise edits only the
// given fields. Fields are passed in sorted order so repeated runs
// issue identical CLI invocations.
func (g *CLIGateway) UpsertFields(ctx context.Context, vault, item string, fields map[string]string) error {
	exists, err := g.ItemExists(ctx, vault, item)
	if err != nil {
		return err
	}

	assignments := make([]string, 0, len(fields))
	for _, key := range sortedKeys(fields) {
		assignments = append(assignments, fmt.Sprintf("%s[password]=%s", key, fields[key]))
	}

	var args []string
	if exists {
		args = g.args(append([]string{"item", "edit", item, "--vault", vault}, assignments...)...)
	} else {
		args = g.args(append([]string{"item", "create", "--category", "Secure Note", "--title", item, "--vault", vault}, assignments...)...)
	}

	_, stderr, err := g.exec.Execute(ctx, g.command, args...)
	if err != nil {
		return g.classify(err, string(stderr), "write", vault, item)
	}
	return nil
}

// InjectTemplate resolves every store reference in the template text
// by piping it through the CLI's inject mode.
func (g *CLIGateway) InjectTemplate(ctx context.Context, templateText string) (string, error) {
	stdout, stderr, err := g.exec.ExecuteWithInput(ctx, []byte(templateText), g.command, g.args("inject")...)
	if err != nil {
		msg := string(stderr)
		if errors.Is(err, exec.ErrNotFound) {
			return "", emerrors.WrapCommandNotFound(g.command, err)
		}
		if isItemNotFound(msg) || strings.Contains(strings.ToLower(msg), "reference") {
			return "", &ReferenceError{Message: msg}
		}
		return "", g.classify(err, msg, "read", "", "")
	}
	return string(stdout), nil
}

// classify maps CLI stderr output onto the store error taxonomy.
func (g *CLIGateway) classify(err error, stderr, op, vault, item string) error {
	if errors.Is(err, exec.ErrNotFound) {
		return emerrors.WrapCommandNotFound(g.command, err)
	}

	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "not signed in"),
		strings.Contains(lower, "session expired"),
		strings.Contains(lower, "authentication"),
		strings.Contains(lower, "authorization prompt dismissed"):
		return &AuthError{Message: strings.TrimSpace(stderr), Err: err}
	case strings.Contains(lower, "isn't a vault"),
		strings.Contains(lower, "vault") && strings.Contains(lower, "not found"):
		return &VaultNotFoundError{Vault: vault}
	case strings.Contains(lower, "permission"),
		strings.Contains(lower, "access denied"),
		strings.Contains(lower, "forbidden"):
		return &PermissionError{Op: op, Vault: vault, Item: item, Message: strings.TrimSpace(stderr)}
	default:
		return &UnavailableError{Message: stderr, Err: err}
	}
}

func isItemNotFound(stderr string) bool {
	lower := strings.ToLower(stderr)
	if strings.Contains(lower, "vault") && strings.Contains(lower, "not found") {
		return false
	}
	if strings.Contains(lower, "isn't a vault") {
		return false
	}
	return strings.Contains(lower, "isn't an item") ||
		strings.Contains(lower, "not found")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
