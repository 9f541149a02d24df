package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prolifel/ceker/internal/config"
	"github.com/prolifel/ceker/internal/observability"
	"github.com/prolifel/ceker/internal/output"
)

var (
	checkBypass bool
	checkFormat string
)

var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Short: "Classify a website's risk level",
	Long: `Run the full classification pipeline for one URL and print the verdict.

Unknown domains stop at the confirmation gate unless --bypass is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(checkFormat)
		if err != nil {
			return err
		}

		cfg := config.Get()
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := st.Close(); err != nil {
				observability.CLILogger.Warnw("failed to close store", "error", err)
			}
		}()

		eng := buildEngine(cfg, st, nil)

		rawURL := args[0]
		progress := func(percent int, message string) {
			if verbose {
				observability.CLILogger.Debugf("[%3d%%] %s", percent, message)
			}
		}

		outcome, err := eng.Classify(ctx, rawURL, checkBypass, progress)
		if err != nil {
			return fmt.Errorf("classification failed: %w", err)
		}

		formatter := output.NewFormatter(format)
		rendered, err := formatter.FormatOutcome(outcome, rawURL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rendered)

		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkBypass, "bypass", false, "skip the confirmation gate for unknown domains")
	checkCmd.Flags().StringVarP(&checkFormat, "output", "o", "table", "output format (table, json)")
	rootCmd.AddCommand(checkCmd)
}
