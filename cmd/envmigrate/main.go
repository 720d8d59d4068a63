package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/envmigrate/cmd/envmigrate/commands"
	"github.com/systmms/envmigrate/internal/config"
	emerrors "github.com/systmms/envmigrate/internal/errors"
	"github.com/systmms/envmigrate/internal/logging"
	"github.com/systmms/envmigrate/internal/migrate"
	"github.com/systmms/envmigrate/internal/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run() error {
	var (
		configFile string
		noColor    bool
		debug      bool
	)

	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "envmigrate",
		Short: "Migrate plaintext .env files into a secret store",
		Long: `envmigrate moves secret values from KEY=VALUE env files into your
secret store and rewrites the file as a reference-only template that is
safe to commit. Re-materializing the env file from the template
reproduces the original exactly.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Path = configFile
			cfg.Logger = logging.New(debug, noColor)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "envmigrate.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		commands.NewMigrateCommand(cfg),
		commands.NewRestoreCommand(cfg),
		commands.NewRunCommand(cfg),
		commands.NewDoctorCommand(cfg),
		commands.NewHistoryCommand(cfg),
	)

	return rootCmd.Execute()
}

// exitCode distinguishes failure classes for scripting: 2 usage, 3
// missing external dependency, 4 store failure, 5 backup collision.
func exitCode(err error) int {
	var (
		backupErr  *migrate.BackupCollisionError
		cmdErr     emerrors.CommandError
		authErr    *store.AuthError
		vaultErr   *store.VaultNotFoundError
		permErr    *store.PermissionError
		unavailErr *store.UnavailableError
		refErr     *store.ReferenceError
	)

	switch {
	case errors.As(err, &backupErr):
		return 5
	case errors.As(err, &authErr),
		errors.As(err, &vaultErr),
		errors.As(err, &permErr),
		errors.As(err, &unavailErr),
		errors.As(err, &refErr):
		return 4
	case errors.As(err, &cmdErr) && cmdErr.Message == "command not found":
		return 3
	case errors.Is(err, commands.ErrUsage):
		return 2
	default:
		return 1
	}
}
