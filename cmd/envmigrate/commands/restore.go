package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/systmms/envmigrate/internal/config"
	pkgexec "github.com/systmms/envmigrate/pkg/exec"
)

func NewRestoreCommand(cfg *config.Config) *cobra.Command {
	var (
		outPath string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "restore <template>",
		Short: "Re-materialize a plaintext env file from a template",
		Long: `Resolve every store reference in a committed template and write the
plaintext env file it was generated from. The output path defaults to
the template path with its .tpl suffix removed.

Examples:
  envmigrate restore .env.tpl
  envmigrate restore .env.tpl --out /tmp/.env --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			tplPath := args[0]
			target := outPath
			if target == "" {
				if !strings.HasSuffix(tplPath, ".tpl") {
					return fmt.Errorf("%w: cannot derive output path from %q, pass --out", ErrUsage, tplPath)
				}
				target = strings.TrimSuffix(tplPath, ".tpl")
			}

			data, err := os.ReadFile(tplPath)
			if err != nil {
				return fmt.Errorf("reading template %s: %w", tplPath, err)
			}

			gateway := newGateway(cfg, pkgexec.DefaultExecutor())
			resolved, err := gateway.InjectTemplate(context.Background(), string(data))
			if err != nil {
				return err
			}

			flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			if !force {
				flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
			}
			f, err := os.OpenFile(target, flags, 0o600)
			if err != nil {
				if os.IsExist(err) {
					return fmt.Errorf("%s already exists; pass --force to overwrite", target)
				}
				return fmt.Errorf("creating %s: %w", target, err)
			}
			if _, err := f.WriteString(resolved); err != nil {
				f.Close()
				return fmt.Errorf("writing %s: %w", target, err)
			}
			if err := f.Close(); err != nil {
				return err
			}

			cfg.Logger.Info("restored %s from %s", target, tplPath)
			cfg.Logger.Warn("%s contains plaintext secrets - keep it out of version control", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output file path (default: template path without .tpl)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite the output file if it exists")

	return cmd
}
