package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"streamcheck/internal/preflight"
	"streamcheck/internal/report"
)

var errChecksFailed = errors.New("one or more readiness checks failed")

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Verify credentials, backends and writable paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := report.ShouldColorize(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			lines := renderSection("Configuration", configLines(cfg), colorize)
			lines = append(lines, "")
			lines = append(lines, renderSection("Readiness", readinessLines(results), colorize)...)
			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if preflight.Failed(results) {
				return errChecksFailed
			}
			return nil
		},
	}
}
