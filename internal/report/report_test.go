package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"streamcheck/internal/checker"
	"streamcheck/internal/classify"
	"streamcheck/internal/participants"
	"streamcheck/internal/report"
	"streamcheck/internal/riot"
	"streamcheck/internal/window"
)

func sampleReport() checker.Report {
	w, _ := window.New(1_733_184_000_000, 1_734_595_500_000)
	return checker.Report{
		Target: checker.Target{
			Name:     "Alpha, the Great",
			Identity: riot.Identity{GameName: "Alpha", TagLine: "NA1", Region: riot.RegionAmericas},
			Twitch:   "alpha",
		},
		Window:    w,
		Result:    classify.Result{Total: 4, OnStream: 3, OffStream: 1, PctKnown: 0.75, PctTotal: 0.75, Pass: true},
		Threshold: 0.5,
	}
}

func TestAppendCSVWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output", "stream-check.csv")
	skipped := checker.Outcome{
		Participant: participants.Participant{Name: "Ghost#EUW"},
		Identity:    riot.Identity{GameName: "Ghost", TagLine: "EUW"},
		SkipReason:  "no twitch link",
	}

	if err := report.AppendCSV(path, report.RowFromReport(sampleReport())); err != nil {
		t.Fatalf("AppendCSV returned error: %v", err)
	}
	if err := report.AppendCSV(path, report.RowFromOutcome(skipped)); err != nil {
		t.Fatalf("second AppendCSV returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := strings.Join([]string{
		"Name,GameName,TagLine,Twitch,Total,OnStream,OffStream,Unknown,PctTotal,Result",
		`"Alpha, the Great",Alpha,NA1,alpha,4,3,1,0,75.00%,PASS`,
		"Ghost#EUW,Ghost,EUW,,0,0,0,0,0.00%,SKIP",
		"",
	}, "\n")
	if string(data) != want {
		t.Fatalf("unexpected csv:\n%s\nwant:\n%s", data, want)
	}
}

func TestAppendCSVEmptyPathIsNoop(t *testing.T) {
	if err := report.AppendCSV("  ", report.RowFromReport(sampleReport())); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestFormatPercent(t *testing.T) {
	cases := map[float64]string{0: "0.00%", 0.5: "50.00%", 2.0 / 3: "66.67%", 1: "100.00%"}
	for in, want := range cases {
		if got := report.FormatPercent(in); got != want {
			t.Fatalf("FormatPercent(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport()
	r.Result.Pass = false
	r.Threshold = 0.8
	if err := report.PrintSummary(&buf, r, false); err != nil {
		t.Fatalf("PrintSummary returned error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Alpha#NA1", "twitch:alpha", "75.00%", "FAIL (threshold 80%)", "Total matches"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatal("colour codes must not be emitted when colorize is false")
	}
}

func TestPrintBatch(t *testing.T) {
	r := sampleReport()
	outcomes := []checker.Outcome{
		{Report: &r},
		{Participant: participants.Participant{Name: "Ghost#EUW"}, SkipReason: "eliminated before window"},
	}
	var buf bytes.Buffer
	summary := checker.Summary{Processed: 1, Passed: 1, Skipped: 1}
	if err := report.PrintBatch(&buf, outcomes, summary, true); err != nil {
		t.Fatalf("PrintBatch returned error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Alpha, the Great", "Ghost#EUW", "eliminated before window", "SKIP", "PROCESSED 1", "1/1 PASS"} {
		if !strings.Contains(out, want) {
			t.Fatalf("batch table missing %q:\n%s", want, out)
		}
	}
}

func TestShouldColorizeRejectsBuffers(t *testing.T) {
	if report.ShouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers are never terminals")
	}
}
