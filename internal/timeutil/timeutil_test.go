package timeutil

import (
	"errors"
	"testing"

	"streamcheck/internal/services"
)

func TestNormalizeEpoch(t *testing.T) {
	cases := []struct {
		in   int64
		want int64
	}{
		{0, 0},
		{1_700_000_000, 1_700_000_000_000},
		{EpochMillisThreshold - 1, (EpochMillisThreshold - 1) * 1000},
		{EpochMillisThreshold, EpochMillisThreshold},
		{1_700_000_000_000, 1_700_000_000_000},
	}
	for _, tc := range cases {
		if got := NormalizeEpoch(tc.in); got != tc.want {
			t.Fatalf("NormalizeEpoch(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseMillisValid(t *testing.T) {
	cases := map[string]int64{
		"1700000000":                1_700_000_000_000,
		"1700000000000":             1_700_000_000_000,
		"2023-12-03T00:00:00Z":      1_701_561_600_000,
		"2023-12-03T00:00:00":       1_701_561_600_000,
		"2023-12-03":                1_701_561_600_000,
		"2023-12-03T02:00:00+02:00": 1_701_561_600_000,
	}
	for input, want := range cases {
		got, ok, err := ParseMillis(input)
		if err != nil {
			t.Fatalf("ParseMillis(%q) returned error: %v", input, err)
		}
		if !ok || got != want {
			t.Fatalf("ParseMillis(%q) = %d (ok=%v), want %d", input, got, ok, want)
		}
	}
}

func TestParseMillisBlank(t *testing.T) {
	for _, input := range []string{"", "   "} {
		if _, ok, err := ParseMillis(input); ok || err != nil {
			t.Fatalf("ParseMillis(%q) expected absent, got ok=%v err=%v", input, ok, err)
		}
	}
}

func TestParseMillisRejectsGarbage(t *testing.T) {
	_, _, err := ParseMillis("not-a-time")
	if err == nil {
		t.Fatal("expected error for unparseable literal")
	}
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
}
