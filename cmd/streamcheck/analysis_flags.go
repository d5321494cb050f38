package main

import (
	"strings"

	"github.com/spf13/cobra"

	"streamcheck/internal/config"
	"streamcheck/internal/window"
)

// analysisFlags are the window and classification overrides shared by check
// and batch. Only flags the user set replace config values.
type analysisFlags struct {
	start       string
	end         string
	eventYear   int
	eventStart  string
	eventEnd    string
	days        int
	threshold   float64
	bufferHours float64
	maxMatches  int
	concurrency int
	outputCSV   string
	noCache     bool
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.start, "start", "", "Window start (epoch seconds/ms or ISO-8601)")
	flags.StringVar(&f.end, "end", "", "Window end (epoch seconds/ms or ISO-8601)")
	flags.IntVar(&f.eventYear, "event-year", 0, "Event year used for default event bounds")
	flags.StringVar(&f.eventStart, "event-start", "", "Explicit event start")
	flags.StringVar(&f.eventEnd, "event-end", "", "Explicit event end")
	flags.IntVar(&f.days, "days", 0, "Window length in days when no end is known")
	flags.Float64Var(&f.threshold, "threshold", 0, "Minimum on-stream ratio (0-1) to pass")
	flags.Float64Var(&f.bufferHours, "buffer-hours", 0, "Tolerance added around each broadcast")
	flags.IntVar(&f.maxMatches, "max-matches", 0, "Cap on matches fetched per contestant (0 = all)")
	flags.IntVar(&f.concurrency, "concurrency", 0, "Parallel match detail requests")
	flags.StringVar(&f.outputCSV, "output-csv", "", "CSV file to append results to (empty string disables)")
	flags.BoolVar(&f.noCache, "no-cache", false, "Bypass the response cache")
}

// apply returns a copy of cfg with the changed flags applied and validated.
func (f *analysisFlags) apply(cmd *cobra.Command, cfg *config.Config) (*config.Config, error) {
	out := *cfg
	flags := cmd.Flags()
	if flags.Changed("days") {
		out.Analysis.Days = f.days
	}
	if flags.Changed("threshold") {
		out.Analysis.Threshold = f.threshold
	}
	if flags.Changed("buffer-hours") {
		out.Analysis.BufferHours = f.bufferHours
	}
	if flags.Changed("max-matches") {
		out.Analysis.MaxMatches = max(f.maxMatches, 0)
	}
	if flags.Changed("concurrency") {
		out.Analysis.Concurrency = max(f.concurrency, 1)
	}
	if flags.Changed("output-csv") {
		out.Analysis.OutputCSV = strings.TrimSpace(f.outputCSV)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *analysisFlags) windowOptions(cfg *config.Config) window.Options {
	return window.Options{
		Start:      f.start,
		End:        f.end,
		EventYear:  f.eventYear,
		EventStart: f.eventStart,
		EventEnd:   f.eventEnd,
		Days:       cfg.Analysis.Days,
	}
}
