// Package participants reads contestant lists for batch runs.
package participants

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"streamcheck/internal/services"
)

// Social is one profile link published for a contestant.
type Social struct {
	LinkURI string `json:"linkUri"`
}

// Participant is a contestant entry. Name carries the riot id ("name#tag").
// Keys are matched case-insensitively by encoding/json.
type Participant struct {
	Name          string   `json:"name"`
	Rank          *float64 `json:"rank,omitempty"`
	Socials       []Social `json:"socials,omitempty"`
	RankURL       string   `json:"rankUrl,omitempty"`
	Eliminated    *bool    `json:"eliminated,omitempty"`
	DayEliminated *int     `json:"dayEliminated,omitempty"`
}

type envelope struct {
	Participants []*Participant `json:"participants"`
}

// EliminatedDay returns the 1-indexed elimination day when the contestant is
// marked eliminated.
func (p Participant) EliminatedDay() (int, bool) {
	if p.DayEliminated == nil || *p.DayEliminated <= 0 {
		return 0, false
	}
	if p.Eliminated != nil && !*p.Eliminated {
		return 0, false
	}
	return *p.DayEliminated, true
}

// TwitchLogin returns the login from the first twitch.tv social link.
func (p Participant) TwitchLogin() (string, bool) {
	for _, s := range p.Socials {
		if login, ok := loginFromLink(s.LinkURI); ok {
			return login, true
		}
	}
	return "", false
}

func loginFromLink(link string) (string, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", false
	}
	if !strings.Contains(link, "://") {
		link = "https://" + link
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	if host != "twitch.tv" && host != "m.twitch.tv" {
		return "", false
	}
	first, _, _ := strings.Cut(strings.Trim(u.Path, "/"), "/")
	if first == "" {
		return "", false
	}
	return strings.ToLower(first), true
}

// Parse decodes a bare JSON array of participants or an object holding a
// participants array. Null entries are dropped.
func Parse(data []byte) ([]Participant, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, services.Wrap(services.ErrFormat, "participants", "parse", "input is empty", nil)
	}

	var entries []*Participant
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, services.Wrap(services.ErrFormat, "participants", "parse", "decode participant array", err)
		}
	case '{':
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, services.Wrap(services.ErrFormat, "participants", "parse", "decode participant envelope", err)
		}
		if env.Participants == nil {
			return nil, services.Wrap(services.ErrFormat, "participants", "parse", "input must be array or object with participants[]", nil)
		}
		entries = env.Participants
	default:
		return nil, services.Wrap(services.ErrFormat, "participants", "parse", "input must be array or object with participants[]", nil)
	}

	out := make([]Participant, 0, len(entries))
	for _, p := range entries {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

// Read loads participants from path, or from stdin when path is empty or "-".
func Read(path string, stdin io.Reader) ([]Participant, error) {
	var (
		data []byte
		err  error
	)
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		if stdin == nil {
			return nil, services.Wrap(services.ErrConfiguration, "participants", "read", "no input path and no stdin", nil)
		}
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read participants: %w", err)
	}
	return Parse(data)
}
