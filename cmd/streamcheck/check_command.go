package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"streamcheck/internal/checker"
	"streamcheck/internal/logging"
	"streamcheck/internal/report"
	"streamcheck/internal/riot"
	"streamcheck/internal/window"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var riotID string
	var login string
	var name string
	var flags analysisFlags

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Analyze one contestant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(login) == "" {
				return fmt.Errorf("--twitch is required")
			}
			identity, err := riot.ParseRiotID(riotID)
			if err != nil {
				return err
			}
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

			runCtx, sess, err := ctx.newSession(cmd.Context(), cfg, flags.noCache)
			if err != nil {
				return err
			}
			target := checker.Target{Name: strings.TrimSpace(name), Identity: identity, Twitch: strings.TrimSpace(login)}
			result, err := sess.checker.Analyze(runCtx, target, aw.Window)
			if err != nil {
				logging.ErrorWithContext(logging.WithContext(runCtx, sess.logger), "analysis failed", "analysis_failed",
					logging.String("riot_id", identity.String()),
					logging.Error(err),
				)
				return err
			}

			out := cmd.OutOrStdout()
			if err := report.PrintSummary(out, result, report.ShouldColorize(out)); err != nil {
				return err
			}
			if err := report.AppendCSV(cfg.Analysis.OutputCSV, report.RowFromReport(result)); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&riotID, "riot-id", "", "Riot id as name#tag")
	cmd.Flags().StringVar(&login, "twitch", "", "Twitch login")
	cmd.Flags().StringVar(&name, "name", "", "Display name for the report (defaults to the riot id)")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("riot-id")
	return cmd
}
