package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/envmigrate/internal/config"
	"github.com/systmms/envmigrate/internal/journal"
)

func NewHistoryCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past migration runs from the local journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			path, err := cfg.JournalPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				cfg.Logger.Info("no migrations recorded yet")
				return nil
			}

			j, err := journal.Open(path)
			if err != nil {
				return err
			}
			defer j.Close()

			records, err := j.List()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				cfg.Logger.Info("no migrations recorded yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tFILE\tIDENTITY\tSECRETS\tMODE")
			for _, rec := range records {
				mode := "live"
				if rec.DryRun {
					mode = "dry-run"
				}
				fmt.Fprintf(w, "%s\t%s\t%s/%s\t%d\t%s\n",
					rec.Time.Local().Format(time.RFC3339), rec.File, rec.Vault, rec.Item, rec.Secrets, mode)
			}
			return w.Flush()
		},
	}

	return cmd
}
