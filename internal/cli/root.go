// Package cli implements the pricesheet commands using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/nconklindev/pricesheet/internal/config"
	"github.com/nconklindev/pricesheet/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

func newRootCmd(info BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:   "pricesheet",
		Short: "Convert CSV price lists into Excel or Word documents",
		Long: `pricesheet turns a CSV of product names and prices (and an optional
category) into an .xlsx workbook or a .docx table, dropping blank rows and
repeated product names along the way.

Run without arguments for the interactive file picker.`,
		Version:       fmt.Sprintf("%s\ncommit: %s\nbuilt: %s", info.Version, info.Commit, info.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			p := tea.NewProgram(ui.InitialModel(cfg), tea.WithAltScreen(), tea.WithMouseCellMotion())
			_, err = p.Run()
			return err
		},
	}
	root.SetVersionTemplate("pricesheet {{.Version}}\n")

	root.AddCommand(newConvertCmd(), newHistoryCmd())
	return root
}

// Execute runs the root command.
func Execute(info BuildInfo) {
	if err := newRootCmd(info).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
