package main

import (
	"fmt"
	"strings"
	"testing"

	"streamcheck/internal/config"
	"streamcheck/internal/preflight"
)

func TestStatusLineRender(t *testing.T) {
	got := statusLine{label: "Twitch API", kind: statusError, detail: "auth failed"}.render(false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Twitch API:", "[ERROR] auth failed")
	if got != want {
		t.Fatalf("render mismatch\n got: %q\nwant: %q", got, want)
	}
	if got := (statusLine{label: "Riot API", kind: statusOK}).render(false); !strings.HasSuffix(got, "[OK]") {
		t.Fatalf("line without detail should end with the tag, got %q", got)
	}
}

func TestReadinessLines(t *testing.T) {
	lines := readinessLines([]preflight.Result{
		{Name: "Cache directory", Passed: true, Detail: "Disabled"},
		{Name: "Riot API", Detail: "auth failed (401, check credentials)"},
	})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %+v", len(lines), lines)
	}
	if lines[0].kind != statusOK || lines[1].kind != statusError {
		t.Fatalf("unexpected kinds %+v", lines)
	}
	if lines[2].label != "Summary" || lines[2].detail != "1 of 2 checks failed" {
		t.Fatalf("expected failure summary, got %+v", lines[2])
	}

	if lines := readinessLines([]preflight.Result{{Name: "Riot API", Passed: true}}); len(lines) != 1 {
		t.Fatalf("passing checks should not add a summary: %+v", lines)
	}
}

func TestConfigLines(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Enabled = false
	cfg.Analysis.OutputCSV = ""
	cfg.Analysis.Days = 14
	cfg.Analysis.BufferHours = 1.5
	cfg.Analysis.Threshold = 0.6

	rendered := strings.Join(renderSection("Configuration", configLines(&cfg), false), "\n")
	for _, want := range []string{
		"== Configuration ==",
		"Cache:",
		"[INFO] disabled",
		"[INFO] 14 days, 1.5h broadcast buffer",
		"[INFO] 60.00% of matches on stream",
	} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("expected %q in\n%s", want, rendered)
		}
	}
}
