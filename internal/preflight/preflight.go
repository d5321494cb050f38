package preflight

import (
	"context"
	"path/filepath"
	"strings"

	"streamcheck/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if cfg.Cache.Enabled {
		results = append(results, CheckWritableDirectory("Cache directory", cfg.Cache.Dir))
	} else {
		results = append(results, Result{Name: "Cache directory", Passed: true, Detail: "Disabled"})
	}

	if csv := strings.TrimSpace(cfg.Analysis.OutputCSV); csv != "" {
		results = append(results, CheckWritableDirectory("CSV output", filepath.Dir(csv)))
	}

	results = append(results, CheckRiot(ctx, cfg))
	results = append(results, CheckTwitch(ctx, cfg))

	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
