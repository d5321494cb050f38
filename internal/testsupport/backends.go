package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// Match is a ranked match served by Backends.
type Match struct {
	ID     string
	Start  time.Time
	Length time.Duration
}

// Video is an archived broadcast served by Backends. Duration uses the
// compact "1h2m3s" form.
type Video struct {
	ID       string
	Start    time.Time
	Duration string
}

// Backends is an in-process stand-in for both the match history API and the
// stream archive API. Routes mirror the real paths under a region prefix
// (riot) and /helix (twitch).
type Backends struct {
	URL string

	mu       sync.Mutex
	accounts map[string]string
	matches  map[string][]Match
	users    map[string]string
	videos   map[string][]Video
	hits     map[string]int
}

// NewBackends starts the fake server; it is closed when the test ends.
func NewBackends(t testing.TB) *Backends {
	t.Helper()
	b := &Backends{
		accounts: map[string]string{},
		matches:  map[string][]Match{},
		users:    map[string]string{},
		videos:   map[string][]Video{},
		hits:     map[string]int{},
	}
	srv := httptest.NewServer(b.routes())
	t.Cleanup(srv.Close)
	b.URL = srv.URL
	return b
}

// AddAccount registers riotID ("name#tag") with its matches.
func (b *Backends) AddAccount(riotID, puuid string, matches ...Match) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[strings.ToLower(riotID)] = puuid
	b.matches[puuid] = append(b.matches[puuid], matches...)
}

// AddStreamer registers a broadcaster and their archive.
func (b *Backends) AddStreamer(login, id string, videos ...Video) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[strings.ToLower(login)] = id
	b.videos[id] = append(b.videos[id], videos...)
}

// Hits returns how many requests reached the named route: "account",
// "match_ids", "match", "token", "users" or "videos".
func (b *Backends) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

// RiotBaseURL is the base URL template to hand to the riot client.
func (b *Backends) RiotBaseURL() string { return b.URL + "/{region}" }

// TwitchAuthURL is the token endpoint.
func (b *Backends) TwitchAuthURL() string { return b.URL + "/oauth2/token" }

// TwitchAPIURL is the helix base URL.
func (b *Backends) TwitchAPIURL() string { return b.URL + "/helix" }

func (b *Backends) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{region}/riot/account/v1/accounts/by-riot-id/{name}/{tag}", b.account)
	mux.HandleFunc("GET /{region}/tft/match/v1/matches/by-puuid/{puuid}/ids", b.matchIDs)
	mux.HandleFunc("GET /{region}/tft/match/v1/matches/{id}", b.match)
	mux.HandleFunc("POST /oauth2/token", b.token)
	mux.HandleFunc("GET /helix/users", b.user)
	mux.HandleFunc("GET /helix/videos", b.videoList)
	return mux
}

func (b *Backends) count(route string) {
	b.mu.Lock()
	b.hits[route]++
	b.mu.Unlock()
}

func (b *Backends) account(w http.ResponseWriter, r *http.Request) {
	b.count("account")
	if r.Header.Get("X-Riot-Token") == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	b.mu.Lock()
	puuid, ok := b.accounts[strings.ToLower(r.PathValue("name")+"#"+r.PathValue("tag"))]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"status": map[string]any{"status_code": 404}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"puuid": puuid, "gameName": r.PathValue("name"), "tagLine": r.PathValue("tag")})
}

func (b *Backends) matchIDs(w http.ResponseWriter, r *http.Request) {
	b.count("match_ids")
	q := r.URL.Query()
	startSec := atoi64(q.Get("startTime"))
	endSec := atoi64(q.Get("endTime"))
	offset := int(atoi64(q.Get("start")))
	count := int(atoi64(q.Get("count")))

	b.mu.Lock()
	all := b.matches[r.PathValue("puuid")]
	b.mu.Unlock()
	ids := []string{}
	for _, m := range all {
		if sec := m.Start.Unix(); sec >= startSec && sec <= endSec {
			ids = append(ids, m.ID)
		}
	}
	if offset >= len(ids) {
		ids = ids[:0]
	} else {
		ids = ids[offset:min(len(ids), offset+count)]
	}
	writeJSON(w, http.StatusOK, ids)
}

func (b *Backends) match(w http.ResponseWriter, r *http.Request) {
	b.count("match")
	id := r.PathValue("id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, list := range b.matches {
		for _, m := range list {
			if m.ID == id {
				writeJSON(w, http.StatusOK, map[string]any{
					"metadata": map[string]string{"match_id": id},
					"info": map[string]any{
						"game_datetime": m.Start.UnixMilli(),
						"game_length":   m.Length.Seconds(),
					},
				})
				return
			}
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (b *Backends) token(w http.ResponseWriter, r *http.Request) {
	b.count("token")
	q := r.URL.Query()
	if q.Get("client_id") == "" || q.Get("client_secret") == "" || q.Get("grant_type") != "client_credentials" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid client"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"access_token": "fake-token", "expires_in": 3600, "token_type": "bearer"})
}

func (b *Backends) authorized(r *http.Request) bool {
	return r.Header.Get("Client-ID") != "" && r.Header.Get("Authorization") == "Bearer fake-token"
}

func (b *Backends) user(w http.ResponseWriter, r *http.Request) {
	b.count("users")
	if !b.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	login := strings.ToLower(r.URL.Query().Get("login"))
	b.mu.Lock()
	id, ok := b.users[login]
	b.mu.Unlock()
	data := []map[string]string{}
	if ok {
		data = append(data, map[string]string{"id": id, "login": login, "display_name": login})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (b *Backends) videoList(w http.ResponseWriter, r *http.Request) {
	b.count("videos")
	if !b.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	b.mu.Lock()
	videos := b.videos[r.URL.Query().Get("user_id")]
	b.mu.Unlock()
	data := make([]map[string]string, 0, len(videos))
	for _, v := range videos {
		data = append(data, map[string]string{
			"id":         v.ID,
			"created_at": v.Start.UTC().Format(time.RFC3339),
			"duration":   v.Duration,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data, "pagination": map[string]any{}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func atoi64(s string) int64 {
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int64(r-'0')
	}
	return n
}
