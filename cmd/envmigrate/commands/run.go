package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/systmms/envmigrate/internal/config"
	"github.com/systmms/envmigrate/internal/execenv"
	pkgexec "github.com/systmms/envmigrate/pkg/exec"
)

func NewRunCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <template> -- <command> [args...]",
		Short: "Run a command with secrets resolved from a template",
		Long: `Resolve the store references in a template in memory and launch the
given command with those variables in its environment. Plaintext
secrets never touch disk.

Examples:
  envmigrate run .env.tpl -- npm start
  envmigrate run services/api/.env.production.tpl -- ./server`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dash := cmd.ArgsLenAtDash()
			if dash != 1 {
				return fmt.Errorf("%w: expected one template before -- and a command after it", ErrUsage)
			}
			tplPath, child := args[0], args[1:]

			if err := cfg.Load(); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			data, err := os.ReadFile(tplPath)
			if err != nil {
				return fmt.Errorf("reading template %s: %w", tplPath, err)
			}

			ctx := context.Background()
			gateway := newGateway(cfg, pkgexec.DefaultExecutor())
			resolved, err := gateway.InjectTemplate(ctx, string(data))
			if err != nil {
				return err
			}

			vars, err := godotenv.Unmarshal(resolved)
			if err != nil {
				return fmt.Errorf("parsing resolved environment: %w", err)
			}

			code, err := execenv.New(cfg.Logger).Exec(ctx, execenv.Options{
				Command:     child,
				Environment: vars,
			})
			if err != nil {
				return err
			}
			if code != 0 {
				os.Exit(code) // propagate the child's exit code
			}
			return nil
		},
	}

	return cmd
}
