package window_test

import (
	"errors"
	"testing"
	"time"

	"streamcheck/internal/services"
	"streamcheck/internal/timeutil"
	"streamcheck/internal/window"
)

type openEndedCalendar struct{}

func (openEndedCalendar) Start(year int) int64 {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
}

func (openEndedCalendar) End(int) (int64, bool) { return 0, false }

func ms(year int, month time.Month, day, hour, minute int) int64 {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC).UnixMilli()
}

func TestResolveUsesEventDefaults(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	resolved, err := window.Resolve(window.Options{Days: 30, Now: now})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Year != 2024 {
		t.Fatalf("expected year 2024, got %d", resolved.Year)
	}
	if resolved.EventStartMs != ms(2024, time.December, 3, 0, 0) {
		t.Fatalf("unexpected event start %d", resolved.EventStartMs)
	}
	if !resolved.HasEventEnd || resolved.EventEndMs != ms(2024, time.December, 19, 8, 5) {
		t.Fatalf("unexpected event end %d", resolved.EventEndMs)
	}
	if resolved.Window.StartMs != resolved.EventStartMs || resolved.Window.EndMs != resolved.EventEndMs {
		t.Fatalf("expected window to match event bounds, got %+v", resolved.Window)
	}
}

func TestResolveRespectsExplicitTimes(t *testing.T) {
	resolved, err := window.Resolve(window.Options{
		EventYear: 2023,
		Start:     "2023-12-04T00:00:00Z",
		End:       "2023-12-05T00:00:00Z",
		Days:      10,
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Window.StartMs != ms(2023, time.December, 4, 0, 0) {
		t.Fatalf("unexpected start %d", resolved.Window.StartMs)
	}
	if resolved.Window.EndMs != ms(2023, time.December, 5, 0, 0) {
		t.Fatalf("unexpected end %d", resolved.Window.EndMs)
	}
	if resolved.Year != 2023 {
		t.Fatalf("expected year 2023, got %d", resolved.Year)
	}
}

func TestResolveFallsBackToDays(t *testing.T) {
	resolved, err := window.Resolve(window.Options{
		EventYear: 2024,
		Days:      7,
		Calendar:  openEndedCalendar{},
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := ms(2024, time.January, 1, 0, 0) + 7*timeutil.DayMillis
	if resolved.Window.EndMs != want {
		t.Fatalf("expected end %d, got %d", want, resolved.Window.EndMs)
	}
	if resolved.HasEventEnd {
		t.Fatal("expected no event end for open-ended calendar")
	}
}

func TestResolveRejectsInvertedWindow(t *testing.T) {
	cases := []window.Options{
		{Start: "2023-12-06T00:00:00Z", End: "2023-12-05T00:00:00Z", Days: 5},
		{Start: "2023-12-05T00:00:00Z", End: "2023-12-05T00:00:00Z", Days: 5},
		{EventYear: 2024, Days: 0, Calendar: openEndedCalendar{}},
	}
	for _, opts := range cases {
		_, err := window.Resolve(opts)
		if !errors.Is(err, services.ErrInvalidWindow) {
			t.Fatalf("expected invalid window for %+v, got %v", opts, err)
		}
	}
}

func TestResolvePropagatesFormatErrors(t *testing.T) {
	_, err := window.Resolve(window.Options{Start: "yesterday"})
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestNewRejectsEmptyWindow(t *testing.T) {
	if _, err := window.New(10, 10); err == nil {
		t.Fatal("expected error for empty window")
	}
	if _, err := window.New(10, 11); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNarrowClampsToEventBounds(t *testing.T) {
	a := window.AnalysisWindow{
		Window:       window.TimeWindow{StartMs: 0, EndMs: 10 * timeutil.DayMillis},
		EventStartMs: timeutil.DayMillis,
		EventEndMs:   5 * timeutil.DayMillis,
		HasEventEnd:  true,
	}
	got, ok := a.Narrow(0)
	if !ok {
		t.Fatal("expected narrowed window")
	}
	if got.StartMs != timeutil.DayMillis || got.EndMs != 5*timeutil.DayMillis {
		t.Fatalf("unexpected narrowed window %+v", got)
	}
}

func TestNarrowTruncatesAtElimination(t *testing.T) {
	eventStart := ms(2024, time.December, 3, 0, 0)
	a := window.AnalysisWindow{
		Window:       window.TimeWindow{StartMs: eventStart, EndMs: ms(2024, time.December, 19, 8, 5)},
		EventStartMs: eventStart,
		EventEndMs:   ms(2024, time.December, 19, 8, 5),
		HasEventEnd:  true,
	}
	got, ok := a.Narrow(2)
	if !ok {
		t.Fatal("expected narrowed window")
	}
	if want := eventStart + 2*timeutil.DayMillis - 1; got.EndMs != want {
		t.Fatalf("expected end %d, got %d", want, got.EndMs)
	}
}

func TestNarrowSkipsWhenEliminatedBeforeStart(t *testing.T) {
	eventStart := ms(2024, time.December, 3, 0, 0)
	a := window.AnalysisWindow{
		Window:       window.TimeWindow{StartMs: eventStart + 3*timeutil.DayMillis, EndMs: eventStart + 10*timeutil.DayMillis},
		EventStartMs: eventStart,
		EventEndMs:   eventStart + 16*timeutil.DayMillis,
		HasEventEnd:  true,
	}
	if _, ok := a.Narrow(2); ok {
		t.Fatal("expected contestant to be excluded")
	}
}
