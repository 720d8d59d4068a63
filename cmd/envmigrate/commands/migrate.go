package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"github.com/systmms/envmigrate/internal/classify"
	"github.com/systmms/envmigrate/internal/config"
	"github.com/systmms/envmigrate/internal/gitrepo"
	"github.com/systmms/envmigrate/internal/journal"
	"github.com/systmms/envmigrate/internal/migrate"
	pkgexec "github.com/systmms/envmigrate/pkg/exec"
)

func NewMigrateCommand(cfg *config.Config) *cobra.Command {
	var (
		auto   bool
		backup bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "migrate <file> [<vault> <item>]",
		Short: "Move secrets into the store and write a reference template",
		Long: `Classify the variables in an env file, upsert the secret values into
the secret store and write a <file>.tpl sibling where each secret is a
store reference instead of a literal.

Naming is either automatic (--auto derives vault/item from the git
remote and the file's location in the repository) or explicit via the
<vault> <item> arguments.

Examples:
  envmigrate migrate .env --auto
  envmigrate migrate .env --auto --backup
  envmigrate migrate services/api/.env.production --auto --dry-run
  envmigrate migrate .env gh-projects acme__widget__root`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			opts := migrate.Options{
				File:   args[0],
				Auto:   auto,
				Backup: backup,
				DryRun: dryRun,
			}
			switch {
			case auto && len(args) == 1:
			case !auto && len(args) == 3:
				opts.Vault, opts.Item = args[1], args[2]
			default:
				return fmt.Errorf("%w: pass --auto, or an explicit <vault> <item> pair", ErrUsage)
			}

			executor := pkgexec.DefaultExecutor()
			gateway := newGateway(cfg, executor)
			repo := gitrepo.New(filepath.Dir(opts.File), executor)
			cls := classify.New(cfg.Definition.Classify.ExtraKeywords...)

			orch := migrate.New(gateway, repo, cls, cfg.Logger, cfg.Definition.Naming.Vault)
			summary, err := orch.Run(context.Background(), opts)
			if err != nil {
				return err
			}

			if dryRun {
				cfg.Logger.Info("dry run: store was not modified")
				printDiff(cmd, summary.Source, summary.Template)
			}
			printSummary(cmd, summary)
			recordRun(cfg, summary)

			return nil
		},
	}

	cmd.Flags().BoolVar(&auto, "auto", false, "Derive vault and item from the git remote")
	cmd.Flags().BoolVar(&backup, "backup", false, "Copy the original file to a .backup sibling first")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Skip store mutation; still writes the template preview")

	return cmd
}

func printSummary(cmd *cobra.Command, s *migrate.Summary) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "File:\t%s\n", s.File)
	fmt.Fprintf(w, "Identity:\t%s/%s\n", s.Vault, s.Item)
	fmt.Fprintf(w, "Secrets:\t%d\n", s.SecretCount)
	fmt.Fprintf(w, "Non-secrets:\t%d\n", s.PlainCount)
	fmt.Fprintf(w, "Template:\t%s\n", s.TemplatePath)
	if s.BackupPath != "" {
		fmt.Fprintf(w, "Backup:\t%s\n", s.BackupPath)
	}
	if s.DryRun {
		fmt.Fprintf(w, "Mode:\tdry-run\n")
	}
	w.Flush()
}

// printDiff shows what the template changes relative to the source.
func printDiff(cmd *cobra.Command, source, tpl string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(source, tpl, false)
	dmp.DiffCleanupSemantic(diffs)
	fmt.Fprintln(cmd.OutOrStdout(), dmp.DiffPrettyText(diffs))
}

// recordRun appends to the local journal. Journal failures are warned
// about, never fatal; the migration itself already succeeded.
func recordRun(cfg *config.Config, s *migrate.Summary) {
	path, err := cfg.JournalPath()
	if err != nil {
		cfg.Logger.Warn("journal disabled: %v", err)
		return
	}
	j, err := journal.Open(path)
	if err != nil {
		cfg.Logger.Warn("journal disabled: %v", err)
		return
	}
	defer j.Close()

	abs, _ := filepath.Abs(s.File)
	if abs == "" {
		abs = s.File
	}
	rec := journal.Record{
		File:     abs,
		Vault:    s.Vault,
		Item:     s.Item,
		Secrets:  s.SecretCount,
		Plain:    s.PlainCount,
		DryRun:   s.DryRun,
		Template: s.TemplatePath,
	}
	if err := j.Append(rec); err != nil {
		cfg.Logger.Warn("failed to record run in journal: %v", err)
	}
}
