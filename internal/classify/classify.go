// Package classify decides which matches were played while a broadcast was
// live and turns the counts into a pass/fail verdict.
package classify

import (
	"streamcheck/internal/riot"
	"streamcheck/internal/twitch"
)

const msPerHour = 3_600_000

// Result summarizes one contestant's matches against their broadcasts.
type Result struct {
	Total     int     `json:"total"`
	OnStream  int     `json:"on_stream"`
	OffStream int     `json:"off_stream"`
	Unknown   int     `json:"unknown"`
	PctKnown  float64 `json:"pct_known"`
	PctTotal  float64 `json:"pct_total"`
	Pass      bool    `json:"pass"`
}

// Classify counts matches whose start lies inside any broadcast interval
// widened by bufferHours on both sides. Unknown is always zero: every match
// resolves to on or off stream.
func Classify(matches []riot.MatchRecord, intervals []twitch.BroadcastInterval, bufferHours, threshold float64) Result {
	var bufferMs int64
	if bufferHours > 0 {
		bufferMs = int64(bufferHours * msPerHour)
	}

	res := Result{Total: len(matches)}
	for _, m := range matches {
		if onStream(m.StartMs, intervals, bufferMs) {
			res.OnStream++
		} else {
			res.OffStream++
		}
	}

	if known := res.OnStream + res.OffStream; known > 0 {
		res.PctKnown = float64(res.OnStream) / float64(known)
	}
	if res.Total > 0 {
		res.PctTotal = float64(res.OnStream) / float64(res.Total)
	}
	res.Pass = res.PctKnown >= threshold
	return res
}

func onStream(startMs int64, intervals []twitch.BroadcastInterval, bufferMs int64) bool {
	for _, iv := range intervals {
		if startMs >= iv.StartMs-bufferMs && startMs <= iv.EndMs+bufferMs {
			return true
		}
	}
	return false
}
