// Package timeutil converts epoch values and absolute time literals into
// millisecond Unix timestamps.
package timeutil

import (
	"strconv"
	"strings"
	"time"

	"streamcheck/internal/services"
)

// EpochMillisThreshold separates second-resolution epochs from millisecond ones.
const EpochMillisThreshold int64 = 1_000_000_000_000

// DayMillis is the length of one day in milliseconds.
const DayMillis int64 = 86_400_000

// offsetless layouts are interpreted as UTC.
var literalLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NormalizeEpoch scales second-resolution epochs to milliseconds.
func NormalizeEpoch(value int64) int64 {
	if value < EpochMillisThreshold {
		return value * 1000
	}
	return value
}

// ParseMillis parses a time literal into Unix milliseconds. Blank input reports
// ok=false without an error so callers can fall back to defaults.
func ParseMillis(value string) (int64, bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false, nil
	}
	if isDigits(trimmed) {
		num, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return 0, false, services.Wrap(services.ErrFormat, "time", "parse", "could not parse time: "+value, err)
		}
		return NormalizeEpoch(num), true, nil
	}
	for _, layout := range literalLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UnixMilli(), true, nil
		}
	}
	return 0, false, services.Wrap(services.ErrFormat, "time", "parse", "could not parse time: "+value, nil)
}

// FromMillis converts Unix milliseconds to a UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
