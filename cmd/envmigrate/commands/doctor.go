package commands

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systmms/envmigrate/internal/config"
	"github.com/systmms/envmigrate/internal/gitrepo"
	"github.com/systmms/envmigrate/internal/identity"
	pkgexec "github.com/systmms/envmigrate/pkg/exec"
)

type checkResult struct {
	Name   string
	Status string
	Detail string
}

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check git and secret store availability",
		Long: `Verify everything a migration needs: a valid configuration, the git
binary and repository remote for automatic naming, and an installed,
authenticated secret store CLI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			var results []checkResult

			if err := cfg.Load(); err != nil {
				results = append(results, checkResult{"config", "error", err.Error()})
			} else {
				results = append(results, checkResult{"config", "ok", cfg.Path})
			}

			results = append(results, checkGit(ctx)...)
			results = append(results, checkStore(ctx, cfg))

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CHECK\tSTATUS\tDETAIL")
			failed := false
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Status, r.Detail)
				if r.Status == "error" {
					failed = true
				}
			}
			w.Flush()

			if failed {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}

	return cmd
}

func checkGit(ctx context.Context) []checkResult {
	var results []checkResult

	if _, err := exec.LookPath("git"); err != nil {
		return append(results, checkResult{"git", "error", "git binary not found in PATH"})
	}
	results = append(results, checkResult{"git", "ok", "binary found"})

	repo := gitrepo.New("", pkgexec.DefaultExecutor())
	if !repo.IsRepo(ctx) {
		return append(results, checkResult{"git remote", "warn", "not inside a git repository; only manual naming will work"})
	}

	remote, err := repo.RemoteURL(ctx)
	if err != nil {
		if errors.Is(err, gitrepo.ErrNoRemote) {
			return append(results, checkResult{"git remote", "warn", "no origin remote; only manual naming will work"})
		}
		return append(results, checkResult{"git remote", "error", err.Error()})
	}

	id, err := identity.Resolve(remote, "")
	if err != nil {
		return append(results, checkResult{"git remote", "error", err.Error()})
	}
	key := id.Key("")
	return append(results, checkResult{"git remote", "ok", fmt.Sprintf("%s (auto item prefix %s)", remote, key.Item)})
}

func checkStore(ctx context.Context, cfg *config.Config) checkResult {
	if cfg.Definition == nil {
		return checkResult{"store", "error", "configuration not loaded"}
	}
	gateway := newGateway(cfg, pkgexec.DefaultExecutor())
	if err := gateway.Validate(ctx); err != nil {
		return checkResult{"store", "error", err.Error()}
	}
	return checkResult{"store", "ok", fmt.Sprintf("%s CLI authenticated", cfg.Definition.Store.Command)}
}
