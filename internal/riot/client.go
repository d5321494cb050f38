package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"streamcheck/internal/blobcache"
	"streamcheck/internal/httpretry"
	"streamcheck/internal/logging"
	"streamcheck/internal/services"
	"streamcheck/internal/window"
)

const (
	defaultBaseURLTemplate = "https://{region}.api.riotgames.com"
	// DefaultPageSize is the largest page the match id listing accepts.
	DefaultPageSize = 200
	tokenHeader     = "X-Riot-Token"
)

type accountDTO struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName,omitempty"`
	TagLine  string `json:"tagLine,omitempty"`
}

// Client provides access to the account and match endpoints.
type Client struct {
	apiKey          string
	baseURLTemplate string
	pageSize        int
	transport       *httpretry.Client
	logger          *slog.Logger
	accounts        *blobcache.Typed[accountDTO]
	matchLists      *blobcache.Typed[[]string]
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

// WithCache enables on-disk caching of account ids and match listings.
func WithCache(store *blobcache.Store) Option {
	return func(c *Client) {
		c.accounts = blobcache.NewTyped[accountDTO](store, "puuid")
		c.matchLists = blobcache.NewTyped[[]string](store, "matchLists")
	}
}

// WithBaseURLTemplate overrides the API host. "{region}" is replaced with the
// lower-cased routing region.
func WithBaseURLTemplate(template string) Option {
	return func(c *Client) {
		if template = strings.TrimRight(strings.TrimSpace(template), "/"); template != "" {
			c.baseURLTemplate = template
		}
	}
}

// WithPageSize sets how many match ids are requested per page (1-200).
func WithPageSize(size int) Option {
	return func(c *Client) {
		c.pageSize = size
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a match backend client.
func New(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "riot", "init", "riot api key required", nil)
	}
	c := &Client{
		apiKey:          apiKey,
		baseURLTemplate: defaultBaseURLTemplate,
		pageSize:        DefaultPageSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.transport == nil {
		c.transport = httpretry.New(httpretry.WithLogger(c.logger))
	}
	if c.pageSize < 1 {
		c.pageSize = 1
	}
	if c.pageSize > DefaultPageSize {
		c.pageSize = DefaultPageSize
	}
	c.logger = logging.NewComponentLogger(c.logger, "riot")
	if c.accounts == nil {
		WithCache(nil)(c)
	}
	return c, nil
}

// ResolveAccountID returns the stable account id for identity.
func (c *Client) ResolveAccountID(ctx context.Context, identity Identity) (string, error) {
	key := accountCacheKey(identity)
	if cached, ok := c.accounts.Read(key); ok && cached.PUUID != "" {
		logging.WithContext(ctx, c.logger).Debug("account cache hit", logging.String("riot_id", identity.String()))
		return cached.PUUID, nil
	}

	endpoint := c.baseURL(identity.Region) + "/riot/account/v1/accounts/by-riot-id/" +
		url.PathEscape(identity.GameName) + "/" + url.PathEscape(identity.TagLine)
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return "", wrapTransport("resolve account", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", services.Wrap(services.ErrNotFound, "riot", "resolve account", "riot id not found: "+identity.String(), nil)
	}
	if err := checkStatus(resp); err != nil {
		return "", wrapStatus("resolve account", err)
	}

	var dto accountDTO
	if err := decodeBody(resp.Body, &dto); err != nil {
		return "", services.Wrap(services.ErrInvalidResponse, "riot", "resolve account", "decode account", err)
	}
	dto.PUUID = strings.TrimSpace(dto.PUUID)
	if dto.PUUID == "" {
		return "", services.Wrap(services.ErrInvalidResponse, "riot", "resolve account", "puuid missing from response", nil)
	}
	c.storeCache(ctx, func() error { return c.accounts.Write(key, dto) }, c.accounts.Key(key))
	return dto.PUUID, nil
}

// ListMatchIDs pages through match ids played inside w, newest first as the
// backend returns them. maxMatches <= 0 fetches every page.
func (c *Client) ListMatchIDs(ctx context.Context, puuid string, region Region, w window.TimeWindow, maxMatches int) ([]string, error) {
	capped := maxMatches > 0
	key := matchListCacheKey(puuid, region, w, maxMatches)
	if cached, ok := c.matchLists.Read(key); ok && len(cached) > 0 {
		logging.WithContext(ctx, c.logger).Debug("match list cache hit",
			logging.Int("matches_total", len(cached)))
		if capped && len(cached) > maxMatches {
			return cached[:maxMatches], nil
		}
		return cached, nil
	}

	startSec := w.StartMs / 1000
	endSec := w.EndMs / 1000
	ids := make([]string, 0)
	offset := 0
	for {
		if capped && len(ids) >= maxMatches {
			break
		}
		count := c.pageSize
		if capped {
			count = min(count, maxMatches-len(ids))
		}

		params := url.Values{}
		params.Set("startTime", strconv.FormatInt(startSec, 10))
		params.Set("endTime", strconv.FormatInt(endSec, 10))
		params.Set("start", strconv.Itoa(offset))
		params.Set("count", strconv.Itoa(count))
		endpoint := c.baseURL(region) + "/tft/match/v1/matches/by-puuid/" + url.PathEscape(puuid) + "/ids?" + params.Encode()

		page, err := c.fetchIDPage(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		ids = append(ids, page...)
		if len(page) < count {
			break
		}
		offset += count
	}
	if capped && len(ids) > maxMatches {
		ids = ids[:maxMatches]
	}

	c.storeCache(ctx, func() error { return c.matchLists.Write(key, ids) }, c.matchLists.Key(key))
	return ids, nil
}

func (c *Client) fetchIDPage(ctx context.Context, endpoint string) ([]string, error) {
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, wrapTransport("list matches", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, wrapStatus("list matches", err)
	}
	var page []string
	if err := decodeBody(resp.Body, &page); err != nil {
		return nil, services.Wrap(services.ErrInvalidResponse, "riot", "list matches", "decode match ids", err)
	}
	return page, nil
}

// GetMatchDetail fetches one match. A missing match yields (nil, nil).
func (c *Client) GetMatchDetail(ctx context.Context, matchID string, region Region) (*MatchDetail, error) {
	endpoint := c.baseURL(region) + "/tft/match/v1/matches/" + url.PathEscape(matchID)
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, wrapTransport("match detail "+matchID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		logging.WithContext(ctx, c.logger).Debug("match not found", logging.String("match_id", matchID))
		return nil, nil
	}
	if err := checkStatus(resp); err != nil {
		return nil, wrapStatus("match detail", err)
	}
	var detail MatchDetail
	if err := decodeBody(resp.Body, &detail); err != nil {
		return nil, services.Wrap(services.ErrInvalidResponse, "riot", "match detail", "decode "+matchID, err)
	}
	return &detail, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	logging.WithContext(ctx, c.logger).Debug("riot request", logging.String("url", endpoint))
	return c.transport.Send(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set(tokenHeader, c.apiKey)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
}

func (c *Client) baseURL(region Region) string {
	return strings.ReplaceAll(c.baseURLTemplate, "{region}", region.Host())
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

func accountCacheKey(identity Identity) string {
	return fmt.Sprintf("%s_%s_%s.json", identity.Region, url.PathEscape(identity.GameName), url.PathEscape(identity.TagLine))
}

func matchListCacheKey(puuid string, region Region, w window.TimeWindow, maxMatches int) string {
	limit := "all"
	if maxMatches > 0 {
		limit = strconv.Itoa(maxMatches)
	}
	return fmt.Sprintf("%s_%s_%d_%d_%s.json", region, url.PathEscape(puuid), w.StartMs, w.EndMs, limit)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return httpretry.NewStatusError(resp)
}

// wrapTransport annotates errors from the retrying transport, which already
// carry their classification.
func wrapTransport(operation string, err error) error {
	return fmt.Errorf("riot %s: %w", operation, err)
}

// wrapStatus tags throttling and server failures as transient and anything
// else as an unexpected response.
func wrapStatus(operation string, err error) error {
	marker := services.ErrInvalidResponse
	var statusErr *httpretry.StatusError
	if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500) {
		marker = services.ErrTransientNetwork
	}
	return services.Wrap(marker, "riot", operation, "", err)
}

func decodeBody(body io.Reader, target any) error {
	return json.NewDecoder(body).Decode(target)
}
