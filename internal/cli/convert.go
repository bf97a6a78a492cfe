package cli

import (
	"fmt"
	"path/filepath"

	"github.com/nconklindev/pricesheet/internal/config"
	"github.com/nconklindev/pricesheet/internal/converter"
	"github.com/nconklindev/pricesheet/internal/job"
	"github.com/nconklindev/pricesheet/internal/types"

	"github.com/spf13/cobra"
)

type convertFlags struct {
	format   string
	output   string
	lang     string
	partial  string
	noDedupe bool
	verbose  bool
	logDir   string
}

func newConvertCmd() *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert <file.csv>",
		Short: "Convert one CSV file without the interactive UI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, &cfg); err != nil {
				return err
			}

			// Shell arguments resolve against the working directory, so the
			// ErrNotAbsolute check only rejects paths typed into the UI.
			input := converter.NormalizeUserPath(args[0])
			if abs, err := filepath.Abs(input); err == nil {
				input = abs
			}

			res, logFile, err := job.Run(cfg, job.Request{InputFile: input, OutputFile: flags.output})
			if err != nil {
				if logFile != "" {
					return fmt.Errorf("conversion failed: %w (see %s)", err, logFile)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "[SUCCESS] Conversion completed successfully!")
			fmt.Fprintf(out, "Output file: %s\n", res.OutputFile)
			fmt.Fprint(out, res.Stats.String())
			fmt.Fprintf(out, "Log file: %s\n", res.LogFile)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.format, "format", "f", "", "output format: xlsx or docx")
	f.StringVarP(&flags.output, "output", "o", "", "output path (default: input path with the format's extension)")
	f.StringVar(&flags.lang, "lang", "", "header language: fa or en")
	f.StringVar(&flags.partial, "partial", "", "rows with an empty name but a price count as: invalid or blank")
	f.BoolVar(&flags.noDedupe, "no-dedupe", false, "keep rows with repeated product names")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "mirror the log to stderr")
	f.StringVar(&flags.logDir, "log-dir", "", "directory for the run log (default: next to the input)")
	return cmd
}

// apply overrides cfg with the flags the user actually set
func (fl convertFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("format") {
		format, err := types.ParseFormat(fl.format)
		if err != nil {
			return err
		}
		cfg.Format = format
	}
	if changed("lang") {
		lang, err := types.ParseLanguage(fl.lang)
		if err != nil {
			return err
		}
		cfg.Language = lang
	}
	if changed("partial") {
		policy, err := types.ParsePartialPolicy(fl.partial)
		if err != nil {
			return err
		}
		cfg.PartialPolicy = policy
	}
	if changed("no-dedupe") {
		cfg.Dedupe = !fl.noDedupe
	}
	if changed("verbose") {
		cfg.Verbose = fl.verbose
	}
	if changed("log-dir") {
		cfg.LogDir = fl.logDir
	}
	return nil
}
