package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"streamcheck/internal/checker"
)

// ShouldColorize reports whether w is an interactive terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paintVerdict(verdict string, colorize bool) string {
	if !colorize {
		return verdict
	}
	switch verdict {
	case "PASS":
		return text.FgGreen.Sprint(verdict)
	case "FAIL":
		return text.FgRed.Sprint(verdict)
	default:
		return text.FgYellow.Sprint(verdict)
	}
}

// PrintSummary writes the single-contestant summary block.
func PrintSummary(w io.Writer, r checker.Report, colorize bool) error {
	row := RowFromReport(r)
	res := r.Result
	title := fmt.Sprintf("%s (%s) twitch:%s", row.Name, r.Target.Identity, row.Twitch)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(title)
	tw.AppendRows([]table.Row{
		{"Window", r.Window.String()},
		{"Total matches", res.Total},
		{"On-stream", res.OnStream},
		{"Off-stream", res.OffStream},
		{"Unknown", res.Unknown},
		{"On-stream % (known-only)", FormatPercent(res.PctKnown)},
		{"On-stream % (total)", FormatPercent(res.PctTotal)},
		{"Result", fmt.Sprintf("%s (threshold %.0f%%)", paintVerdict(row.Verdict(), colorize), r.Threshold*100)},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

// PrintBatch writes one table row per outcome followed by the totals.
func PrintBatch(w io.Writer, outcomes []checker.Outcome, summary checker.Summary, colorize bool) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Name", "Twitch", "Total", "On", "Off", "Pct Total", "Result", "Reason"})
	for _, o := range outcomes {
		row := RowFromOutcome(o)
		pct := FormatPercent(row.Result.PctTotal)
		if row.Skipped {
			pct = "-"
		}
		tw.AppendRow(table.Row{
			row.Name,
			row.Twitch,
			row.Result.Total,
			row.Result.OnStream,
			row.Result.OffStream,
			pct,
			paintVerdict(row.Verdict(), colorize),
			strings.TrimSpace(o.SkipReason),
		})
	}
	tw.AppendFooter(table.Row{
		fmt.Sprintf("processed %d", summary.Processed),
		fmt.Sprintf("skipped %d", summary.Skipped),
		"", "", "",
		"",
		fmt.Sprintf("%d/%d pass", summary.Passed, summary.Processed),
		"",
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	_, err := fmt.Fprintln(w, tw.Render())
	return err
}
