// Package execenv runs a child process with resolved secret values in
// its environment, so plaintext never has to touch disk.
package execenv

import (
	"context"
	"os"
	"os/exec"
	"sort"
	"strings"

	emerrors "github.com/systmms/envmigrate/internal/errors"
	"github.com/systmms/envmigrate/internal/logging"
)

// Executor handles running commands with ephemeral environment variables.
type Executor struct {
	logger *logging.Logger
}

// New creates a new executor.
func New(logger *logging.Logger) *Executor {
	return &Executor{logger: logger}
}

// Options configures one child process run.
type Options struct {
	Command     []string          // command and arguments
	Environment map[string]string // variables layered over the inherited env
	WorkingDir  string
}

// Exec runs the command and returns its exit code. Resolved variables
// shadow inherited ones of the same name.
func (e *Executor) Exec(ctx context.Context, options Options) (int, error) {
	if len(options.Command) == 0 {
		return 0, emerrors.UserError{
			Message:    "No command specified",
			Suggestion: "Provide a command after -- (e.g., envmigrate run .env.tpl -- npm start)",
		}
	}

	name := options.Command[0]
	if _, err := exec.LookPath(name); err != nil {
		return 0, emerrors.WrapCommandNotFound(name, err)
	}

	cmd := exec.CommandContext(ctx, name, options.Command[1:]...)
	cmd.Env = mergedEnv(options.Environment)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	e.logger.Debug("executing: %s", strings.Join(options.Command, " "))
	e.logger.Debug("injected variables: %s", strings.Join(sortedNames(options.Environment), ", "))

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return 0, emerrors.CommandError{
			Command: strings.Join(options.Command, " "),
			Message: err.Error(),
		}
	}
	return 0, nil
}

func mergedEnv(vars map[string]string) []string {
	merged := make(map[string]string)
	for _, kv := range os.Environ() {
		if parts := strings.SplitN(kv, "=", 2); len(parts) == 2 {
			merged[parts[0]] = parts[1]
		}
	}
	for k, v := range vars {
		merged[k] = v
	}

	env := make([]string, 0, len(merged))
	for _, k := range sortedNames(merged) {
		env = append(env, k+"="+merged[k])
	}
	return env
}

func sortedNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
