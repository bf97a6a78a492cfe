package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/nconklindev/pricesheet/internal/config"
	"github.com/nconklindev/pricesheet/internal/history"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversions recorded in PRICESHEET_HISTORY_DB",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.HistoryDB == "" {
				return errors.New("run history is disabled: set PRICESHEET_HISTORY_DB")
			}

			store, err := history.Open(cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversions recorded yet.")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), historyTable(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func historyTable(runs []history.Run) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "When", "Input", "Format", "Read", "Written", "Duplicates", "Skipped")
	for _, r := range runs {
		t = t.Row(
			strconv.FormatInt(r.ID, 10),
			humanize.Time(r.FinishedAt),
			filepath.Base(r.InputFile),
			string(r.Format),
			humanize.Comma(int64(r.Stats.TotalRead)),
			humanize.Comma(int64(r.Stats.Admitted)),
			humanize.Comma(int64(r.Stats.Duplicate)),
			humanize.Comma(int64(r.Stats.Blank+r.Stats.Invalid)),
		)
	}
	return t.String()
}
