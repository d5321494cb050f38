package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"streamcheck/internal/config"
	"streamcheck/internal/preflight"
	"streamcheck/internal/report"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusError
)

const (
	statusLabelWidth = 18
	statusIndent     = "  "
)

var statusColors = map[statusKind]text.Colors{
	statusInfo:  {text.FgBlue},
	statusOK:    {text.FgGreen},
	statusError: {text.FgRed, text.Bold},
}

// statusLine is one "label: [KIND] detail" row of status output.
type statusLine struct {
	label  string
	kind   statusKind
	detail string
}

func (l statusLine) render(colorize bool) string {
	tag := "[" + statusKindLabel(l.kind) + "]"
	if l.detail != "" {
		tag += " " + l.detail
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, l.label+":", tag)
	if colorize {
		return statusColors[l.kind].Sprint(line)
	}
	return line
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// renderSection prints a titled block of status lines.
func renderSection(title string, lines []statusLine, colorize bool) []string {
	header := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(header))
	if colorize {
		header = statusColors[statusInfo].Sprint(header)
		rule = statusColors[statusInfo].Sprint(rule)
	}
	out := make([]string, 0, len(lines)+2)
	out = append(out, header, rule)
	for _, l := range lines {
		out = append(out, l.render(colorize))
	}
	return out
}

// configLines summarizes the settings a check or batch run will use.
func configLines(cfg *config.Config) []statusLine {
	cache := statusLine{label: "Cache", kind: statusInfo, detail: "disabled"}
	if cfg.Cache.Enabled {
		cache.detail = cfg.Cache.Dir
	}
	csv := statusLine{label: "CSV output", kind: statusInfo, detail: "disabled"}
	if path := strings.TrimSpace(cfg.Analysis.OutputCSV); path != "" {
		csv.detail = path
	}
	window := fmt.Sprintf("%d days", cfg.Analysis.Days)
	if cfg.Analysis.BufferHours > 0 {
		window += fmt.Sprintf(", %gh broadcast buffer", cfg.Analysis.BufferHours)
	}
	return []statusLine{
		cache,
		csv,
		{label: "Window", kind: statusInfo, detail: window},
		{label: "Threshold", kind: statusInfo, detail: report.FormatPercent(cfg.Analysis.Threshold) + " of matches on stream"},
	}
}

// readinessLines turns preflight results into status lines, adding a summary
// row when anything failed.
func readinessLines(results []preflight.Result) []statusLine {
	lines := make([]statusLine, 0, len(results)+1)
	failed := 0
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
			failed++
		}
		lines = append(lines, statusLine{label: r.Name, kind: kind, detail: r.Detail})
	}
	if failed > 0 {
		lines = append(lines, statusLine{
			label:  "Summary",
			kind:   statusError,
			detail: fmt.Sprintf("%d of %d checks failed", failed, len(results)),
		})
	}
	return lines
}
