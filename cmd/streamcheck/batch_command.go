package main

import (
	"github.com/spf13/cobra"

	"streamcheck/internal/checker"
	"streamcheck/internal/participants"
	"streamcheck/internal/report"
	"streamcheck/internal/window"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var input string
	var flags analysisFlags

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze every contestant in a participant list",
		Long: "Reads a JSON array of participants, or an object with a participants array,\n" +
			"from --input or stdin. Contestants that cannot be analyzed are reported as SKIP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}
			aw, err := window.Resolve(flags.windowOptions(cfg))
			if err != nil {
				return err
			}
			list, err := participants.Read(input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			runCtx, sess, err := ctx.newSession(cmd.Context(), cfg, flags.noCache)
			if err != nil {
				return err
			}
			var outcomes []checker.Outcome
			summary, err := sess.checker.RunBatch(runCtx, list, aw, func(o checker.Outcome) error {
				outcomes = append(outcomes, o)
				return report.AppendCSV(cfg.Analysis.OutputCSV, report.RowFromOutcome(o))
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return report.PrintBatch(out, outcomes, summary, report.ShouldColorize(out))
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Participant list JSON file (default stdin)")
	flags.register(cmd)
	return cmd
}
