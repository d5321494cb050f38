package twitch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"streamcheck/internal/blobcache"
	"streamcheck/internal/httpretry"
	"streamcheck/internal/logging"
	"streamcheck/internal/services"
	"streamcheck/internal/timeutil"
	"streamcheck/internal/window"
)

const (
	defaultAuthURL = "https://id.twitch.tv/oauth2/token"
	defaultAPIURL  = "https://api.twitch.tv/helix"
	videosPageSize = 100
)

// User is a resolved broadcaster.
type User struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

type usersResponse struct {
	Data []User `json:"data"`
}

type video struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	Duration  string `json:"duration"`
}

type videosResponse struct {
	Data       []video `json:"data"`
	Pagination struct {
		Cursor string `json:"cursor"`
	} `json:"pagination"`
}

// BroadcastInterval is one archived broadcast in epoch milliseconds.
type BroadcastInterval struct {
	ID      string `json:"id"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
}

// Client provides access to the users and videos endpoints.
type Client struct {
	clientID     string
	clientSecret string
	authURL      string
	apiURL       string
	transport    *httpretry.Client
	logger       *slog.Logger
	now          func() time.Time
	token        tokenSource
	users        *blobcache.Typed[usersResponse]
	intervals    *blobcache.Typed[[]BroadcastInterval]
}

// Option configures a Client.
type Option func(*Client)

// WithTransport overrides the retrying HTTP transport.
func WithTransport(transport *httpretry.Client) Option {
	return func(c *Client) {
		if transport != nil {
			c.transport = transport
		}
	}
}

// WithCache enables on-disk caching of user lookups and broadcast listings.
func WithCache(store *blobcache.Store) Option {
	return func(c *Client) {
		c.users = blobcache.NewTyped[usersResponse](store, "twitchUsers")
		c.intervals = blobcache.NewTyped[[]BroadcastInterval](store, "vods")
	}
}

// WithAuthURL overrides the OAuth token endpoint.
func WithAuthURL(authURL string) Option {
	return func(c *Client) {
		if authURL = strings.TrimSpace(authURL); authURL != "" {
			c.authURL = authURL
		}
	}
}

// WithAPIURL overrides the API base URL.
func WithAPIURL(apiURL string) Option {
	return func(c *Client) {
		if apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/"); apiURL != "" {
			c.apiURL = apiURL
		}
	}
}

// WithClock overrides the time source used for token expiry (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a video backend client.
func New(clientID, clientSecret string, opts ...Option) (*Client, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, services.Wrap(services.ErrConfiguration, "twitch", "init", "client id and secret required", nil)
	}
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		authURL:      defaultAuthURL,
		apiURL:       defaultAPIURL,
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.transport == nil {
		c.transport = httpretry.New(httpretry.WithLogger(c.logger))
	}
	c.logger = logging.NewComponentLogger(c.logger, "twitch")
	if c.users == nil {
		WithCache(nil)(c)
	}
	return c, nil
}

// ResolveUser looks up a broadcaster by login.
func (c *Client) ResolveUser(ctx context.Context, login string) (User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return User{}, services.Wrap(services.ErrFormat, "twitch", "resolve user", "twitch login required", nil)
	}
	key := url.PathEscape(login) + ".json"
	if cached, ok := c.users.Read(key); ok && len(cached.Data) > 0 && cached.Data[0].ID != "" {
		logging.WithContext(ctx, c.logger).Debug("user cache hit", logging.String("twitch", login))
		return cached.Data[0], nil
	}

	params := url.Values{}
	params.Set("login", login)
	var payload usersResponse
	if err := c.getJSON(ctx, "resolve user", c.apiURL+"/users?"+params.Encode(), &payload); err != nil {
		return User{}, err
	}
	if len(payload.Data) == 0 || strings.TrimSpace(payload.Data[0].ID) == "" {
		return User{}, services.Wrap(services.ErrNotFound, "twitch", "resolve user", "twitch user not found for login "+login, nil)
	}
	c.storeCache(ctx, func() error { return c.users.Write(key, payload) }, c.users.Key(key))
	return payload.Data[0], nil
}

// ListBroadcastIntervals returns archived broadcasts of userID that overlap w
// widened by bufferHours on both sides, sorted by start.
func (c *Client) ListBroadcastIntervals(ctx context.Context, userID string, w window.TimeWindow, bufferHours float64) ([]BroadcastInterval, error) {
	key := intervalCacheKey(userID, w, bufferHours)
	if cached, ok := c.intervals.Read(key); ok {
		logging.WithContext(ctx, c.logger).Debug("broadcast cache hit", logging.Int("broadcasts", len(cached)))
		return cached, nil
	}

	bufferMs := int64(max(bufferHours, 0) * 3_600_000)
	lower := w.StartMs - bufferMs
	upper := w.EndMs + bufferMs
	kept := make([]BroadcastInterval, 0)
	cursor := ""
	for {
		params := url.Values{}
		params.Set("user_id", userID)
		params.Set("type", "archive")
		params.Set("first", strconv.Itoa(videosPageSize))
		if cursor != "" {
			params.Set("after", cursor)
		}
		var page videosResponse
		if err := c.getJSON(ctx, "list videos", c.apiURL+"/videos?"+params.Encode(), &page); err != nil {
			return nil, err
		}
		for _, v := range page.Data {
			startMs, ok, err := timeutil.ParseMillis(v.CreatedAt)
			if err != nil {
				logging.WarnWithContext(logging.WithContext(ctx, c.logger), "skipping video with unparseable created_at", "video_skipped",
					logging.String("video_id", v.ID),
					logging.String("created_at", v.CreatedAt),
					logging.String(logging.FieldImpact, "matches during this broadcast count as off stream"),
				)
				continue
			}
			if !ok {
				continue
			}
			endMs := startMs + ParseDuration(v.Duration)*1000
			if endMs >= lower && startMs <= upper {
				kept = append(kept, BroadcastInterval{ID: v.ID, StartMs: startMs, EndMs: endMs})
			}
		}
		cursor = strings.TrimSpace(page.Pagination.Cursor)
		if cursor == "" {
			break
		}
	}

	slices.SortStableFunc(kept, func(a, b BroadcastInterval) int {
		switch {
		case a.StartMs < b.StartMs:
			return -1
		case a.StartMs > b.StartMs:
			return 1
		default:
			return 0
		}
	})
	c.storeCache(ctx, func() error { return c.intervals.Write(key, kept) }, c.intervals.Key(key))
	return kept, nil
}

// getJSON performs an authorized GET. A 401 drops the cached token and the
// request is repeated once with a fresh one.
func (c *Client) getJSON(ctx context.Context, operation, endpoint string, target any) error {
	for attempt := 0; ; attempt++ {
		token, err := c.AppToken(ctx)
		if err != nil {
			return err
		}
		logging.WithContext(ctx, c.logger).Debug("twitch request", logging.String("url", endpoint))
		resp, err := c.transport.Send(ctx, func(ctx context.Context) (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Client-ID", c.clientID)
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Accept", "application/json")
			return req, nil
		})
		if err != nil {
			return wrapTransport(operation, err)
		}
		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			c.token.invalidate(token)
			logging.WithContext(ctx, c.logger).Debug("app token rejected; refreshing")
			continue
		}
		err = func() error {
			defer resp.Body.Close()
			if err := checkStatus(resp); err != nil {
				return wrapStatus(operation, err)
			}
			if err := decodeBody(resp.Body, target); err != nil {
				return services.Wrap(services.ErrInvalidResponse, "twitch", operation, "decode response", err)
			}
			return nil
		}()
		return err
	}
}

func (c *Client) storeCache(ctx context.Context, write func() error, key string) {
	if err := write(); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "cache write failed", "cache_write_failed",
			logging.String("cache_key", key),
			logging.Error(err),
			logging.String(logging.FieldImpact, "next run refetches from the backend"),
			logging.String(logging.FieldErrorHint, "check cache directory permissions"),
		)
	}
}

func intervalCacheKey(userID string, w window.TimeWindow, bufferHours float64) string {
	return fmt.Sprintf("%s_%d_%d_%s.json", url.PathEscape(userID), w.StartMs, w.EndMs,
		strconv.FormatFloat(bufferHours, 'f', -1, 64))
}

func wrapTransport(operation string, err error) error {
	return fmt.Errorf("twitch %s: %w", operation, err)
}

func wrapStatus(operation string, err error) error {
	marker := services.ErrInvalidResponse
	var statusErr *httpretry.StatusError
	if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500) {
		marker = services.ErrTransientNetwork
	}
	return services.Wrap(marker, "twitch", operation, "", err)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return httpretry.NewStatusError(resp)
}

func decodeBody(body io.Reader, target any) error {
	return json.NewDecoder(body).Decode(target)
}
