package classify_test

import (
	"testing"

	"streamcheck/internal/classify"
	"streamcheck/internal/riot"
	"streamcheck/internal/twitch"
)

func matchesAt(starts ...int64) []riot.MatchRecord {
	out := make([]riot.MatchRecord, 0, len(starts))
	for i, s := range starts {
		out = append(out, riot.MatchRecord{MatchID: string(rune('a' + i)), StartMs: s, EndMs: s + 30*60_000})
	}
	return out
}

func TestClassify(t *testing.T) {
	broadcast := []twitch.BroadcastInterval{{ID: "v1", StartMs: 0, EndMs: 1500}}
	tests := []struct {
		name      string
		matches   []riot.MatchRecord
		intervals []twitch.BroadcastInterval
		buffer    float64
		threshold float64
		want      classify.Result
	}{
		{
			name:      "inside broadcast",
			matches:   matchesAt(1000),
			intervals: broadcast,
			threshold: 0.5,
			want:      classify.Result{Total: 1, OnStream: 1, PctKnown: 1, PctTotal: 1, Pass: true},
		},
		{
			name:      "after broadcast",
			matches:   matchesAt(10_000),
			intervals: broadcast,
			threshold: 0.5,
			want:      classify.Result{Total: 1, OffStream: 1},
		},
		{
			name:      "half on stream meets threshold",
			matches:   matchesAt(1000, 10_000),
			intervals: broadcast,
			threshold: 0.5,
			want:      classify.Result{Total: 2, OnStream: 1, OffStream: 1, PctKnown: 0.5, PctTotal: 0.5, Pass: true},
		},
		{
			name:      "half on stream below threshold",
			matches:   matchesAt(1000, 10_000),
			intervals: broadcast,
			threshold: 0.6,
			want:      classify.Result{Total: 2, OnStream: 1, OffStream: 1, PctKnown: 0.5, PctTotal: 0.5},
		},
		{
			name:      "buffer widens both edges",
			matches:   matchesAt(-3_600_000, 1500+3_600_000, 1500+3_600_001),
			intervals: broadcast,
			buffer:    1,
			threshold: 0.5,
			want:      classify.Result{Total: 3, OnStream: 2, OffStream: 1, PctKnown: 2.0 / 3, PctTotal: 2.0 / 3, Pass: true},
		},
		{
			name:      "negative buffer ignored",
			matches:   matchesAt(1501),
			intervals: broadcast,
			buffer:    -2,
			threshold: 0.5,
			want:      classify.Result{Total: 1, OffStream: 1},
		},
		{
			name:      "no matches passes zero threshold",
			threshold: 0,
			want:      classify.Result{Pass: true},
		},
		{
			name:      "no broadcasts",
			matches:   matchesAt(1, 2),
			threshold: 0.1,
			want:      classify.Result{Total: 2, OffStream: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify.Classify(tt.matches, tt.intervals, tt.buffer, tt.threshold)
			if got != tt.want {
				t.Fatalf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClassifyUsesMatchStartOnly(t *testing.T) {
	m := []riot.MatchRecord{{MatchID: "long", StartMs: 2000, EndMs: 10_000}}
	got := classify.Classify(m, []twitch.BroadcastInterval{{StartMs: 5000, EndMs: 6000}}, 0, 0.5)
	if got.OnStream != 0 || got.OffStream != 1 {
		t.Fatalf("a match overlapping only by its span must be off stream: %+v", got)
	}
}
