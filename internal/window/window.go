package window

import (
	"fmt"
	"time"

	"streamcheck/internal/services"
	"streamcheck/internal/timeutil"
)

// TimeWindow is a millisecond Unix interval with StartMs < EndMs.
type TimeWindow struct {
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`
}

// New validates and builds a TimeWindow.
func New(startMs, endMs int64) (TimeWindow, error) {
	if startMs >= endMs {
		return TimeWindow{}, services.Wrap(services.ErrInvalidWindow, "window", "", fmt.Sprintf("start must be before end (start=%d end=%d)", startMs, endMs), nil)
	}
	return TimeWindow{StartMs: startMs, EndMs: endMs}, nil
}

// Start returns the window start as a UTC time.
func (w TimeWindow) Start() time.Time { return timeutil.FromMillis(w.StartMs) }

// End returns the window end as a UTC time.
func (w TimeWindow) End() time.Time { return timeutil.FromMillis(w.EndMs) }

func (w TimeWindow) String() string {
	return w.Start().Format(time.RFC3339) + " - " + w.End().Format(time.RFC3339)
}

// AnalysisWindow pairs the query window with the event's canonical bounds.
type AnalysisWindow struct {
	Window       TimeWindow
	EventStartMs int64
	EventEndMs   int64
	HasEventEnd  bool
	Year         int
}

// Calendar supplies default event bounds for a year.
type Calendar interface {
	Start(year int) int64
	End(year int) (int64, bool)
}

// DefaultCalendar places the event between Dec 3 00:00 and Dec 19 08:05 UTC.
type DefaultCalendar struct{}

func (DefaultCalendar) Start(year int) int64 {
	return time.Date(year, time.December, 3, 0, 0, 0, 0, time.UTC).UnixMilli()
}

func (DefaultCalendar) End(year int) (int64, bool) {
	return time.Date(year, time.December, 19, 8, 5, 0, 0, time.UTC).UnixMilli(), true
}

// Options carries the raw window inputs.
type Options struct {
	Start      string
	End        string
	EventYear  int
	EventStart string
	EventEnd   string
	Days       int
	Now        time.Time
	Calendar   Calendar
}

// Resolve derives the authoritative analysis window. Explicit bounds win over
// event bounds, which win over the day-count fallback.
func Resolve(opts Options) (AnalysisWindow, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	year := opts.EventYear
	if year <= 0 {
		year = now.UTC().Year()
	}
	calendar := opts.Calendar
	if calendar == nil {
		calendar = DefaultCalendar{}
	}

	eventStart, ok, err := timeutil.ParseMillis(opts.EventStart)
	if err != nil {
		return AnalysisWindow{}, err
	}
	if !ok {
		eventStart = calendar.Start(year)
	}

	eventEnd, hasEventEnd, err := timeutil.ParseMillis(opts.EventEnd)
	if err != nil {
		return AnalysisWindow{}, err
	}
	if !hasEventEnd {
		eventEnd, hasEventEnd = calendar.End(year)
	}

	start, ok, err := timeutil.ParseMillis(opts.Start)
	if err != nil {
		return AnalysisWindow{}, err
	}
	if !ok {
		start = eventStart
	}

	end, ok, err := timeutil.ParseMillis(opts.End)
	if err != nil {
		return AnalysisWindow{}, err
	}
	if !ok {
		if hasEventEnd {
			end = eventEnd
		} else {
			end = start + int64(opts.Days)*timeutil.DayMillis
		}
	}

	w, err := New(start, end)
	if err != nil {
		return AnalysisWindow{}, err
	}
	return AnalysisWindow{
		Window:       w,
		EventStartMs: eventStart,
		EventEndMs:   eventEnd,
		HasEventEnd:  hasEventEnd,
		Year:         year,
	}, nil
}

// Narrow clamps the window to the event bounds for one contestant. When
// eliminatedDay is positive (1-indexed from the event start) the end is cut at
// the last millisecond of that day. ok is false when nothing remains.
func (a AnalysisWindow) Narrow(eliminatedDay int) (TimeWindow, bool) {
	start := max(a.Window.StartMs, a.EventStartMs)
	end := a.Window.EndMs
	if a.HasEventEnd {
		end = min(end, a.EventEndMs)
	}
	if eliminatedDay > 0 {
		end = min(end, EliminationCutoff(a.EventStartMs, eliminatedDay))
	}
	if end <= start {
		return TimeWindow{}, false
	}
	return TimeWindow{StartMs: start, EndMs: end}, true
}

// EliminationCutoff returns the last millisecond of the given event day.
func EliminationCutoff(eventStartMs int64, day int) int64 {
	return eventStartMs + int64(day)*timeutil.DayMillis - 1
}
