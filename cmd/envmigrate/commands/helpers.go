package commands

import (
	"errors"

	"github.com/systmms/envmigrate/internal/config"
	"github.com/systmms/envmigrate/internal/store"
	pkgexec "github.com/systmms/envmigrate/pkg/exec"
)

// ErrUsage marks argument validation failures so main can map them to
// a distinct exit code.
var ErrUsage = errors.New("usage error")

// newGateway builds the production store gateway from configuration.
func newGateway(cfg *config.Config, executor pkgexec.CommandExecutor) store.Gateway {
	def := cfg.Definition
	return store.NewCLIGateway(store.CLIConfig{
		Command: def.Store.Command,
		Scheme:  def.Store.Scheme,
		Account: def.Store.Account,
	}, executor)
}
