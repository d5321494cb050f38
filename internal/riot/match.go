package riot

import (
	"encoding/json"
	"math"
	"strings"

	"streamcheck/internal/timeutil"
)

// MatchDetail is the subset of a match payload used for classification.
type MatchDetail struct {
	Info *MatchInfo `json:"info"`
}

// MatchInfo carries the timing fields of a match. The backend has used both
// camelCase and snake_case spellings over time, so decoding accepts either.
type MatchInfo struct {
	GameCreation       *int64
	GameDatetime       *int64
	GameStartTimestamp *int64
	GameStartTime      *int64
	GameLength         *int64
	GameDuration       *int64
	QueueID            *int
	SetNumber          *int
	GameType           string
}

// UnmarshalJSON matches keys ignoring case and underscores.
func (m *MatchInfo) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := make(map[string]json.RawMessage, len(raw))
	for key, value := range raw {
		fields[strings.ToLower(strings.ReplaceAll(key, "_", ""))] = value
	}
	*m = MatchInfo{
		GameCreation:       int64Field(fields["gamecreation"]),
		GameDatetime:       int64Field(fields["gamedatetime"]),
		GameStartTimestamp: int64Field(fields["gamestarttimestamp"]),
		GameStartTime:      int64Field(fields["gamestarttime"]),
		GameLength:         int64Field(fields["gamelength"]),
		GameDuration:       int64Field(fields["gameduration"]),
		QueueID:            intField(fields["queueid"]),
		SetNumber:          intField(fields["tftsetnumber"]),
	}
	if value, ok := fields["tftgametype"]; ok {
		_ = json.Unmarshal(value, &m.GameType)
	}
	return nil
}

func int64Field(value json.RawMessage) *int64 {
	if len(value) == 0 {
		return nil
	}
	var number *float64
	if err := json.Unmarshal(value, &number); err != nil || number == nil {
		return nil
	}
	v := int64(math.Trunc(*number))
	return &v
}

func intField(value json.RawMessage) *int {
	v := int64Field(value)
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}

// MatchRecord is a normalized match with millisecond bounds.
type MatchRecord struct {
	MatchID   string `json:"match_id"`
	StartMs   int64  `json:"start_ms"`
	EndMs     int64  `json:"end_ms"`
	QueueID   *int   `json:"queue_id,omitempty"`
	SetNumber *int   `json:"set_number,omitempty"`
	GameType  string `json:"game_type,omitempty"`
}

// Normalize converts a match detail into a MatchRecord. The start instant is
// taken from the first present of gameCreation, gameDatetime,
// gameStartTimestamp and gameStartTime; second-resolution values are scaled to
// milliseconds. Duration is gameLength, then gameDuration, in seconds.
// ok is false when detail has no info block or no start field.
func Normalize(matchID string, detail *MatchDetail) (MatchRecord, bool) {
	if detail == nil || detail.Info == nil {
		return MatchRecord{}, false
	}
	info := detail.Info
	start := firstPresent(info.GameCreation, info.GameDatetime, info.GameStartTimestamp, info.GameStartTime)
	if start == nil {
		return MatchRecord{}, false
	}
	startMs := timeutil.NormalizeEpoch(*start)
	var duration int64
	if d := firstPresent(info.GameLength, info.GameDuration); d != nil {
		duration = *d
	}
	return MatchRecord{
		MatchID:   matchID,
		StartMs:   startMs,
		EndMs:     startMs + duration*1000,
		QueueID:   info.QueueID,
		SetNumber: info.SetNumber,
		GameType:  info.GameType,
	}, true
}

func firstPresent(values ...*int64) *int64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
