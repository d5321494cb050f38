package twitch

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"streamcheck/internal/logging"
	"streamcheck/internal/services"
)

const tokenRefreshLeeway = time.Minute

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// tokenSource owns the single cached app token.
type tokenSource struct {
	mu        sync.RWMutex
	value     string
	expiresAt time.Time
}

func (s *tokenSource) cached(now time.Time) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validLocked(now)
}

func (s *tokenSource) validLocked(now time.Time) (string, bool) {
	if s.value != "" && now.Add(tokenRefreshLeeway).Before(s.expiresAt) {
		return s.value, true
	}
	return "", false
}

// invalidate drops value if it is still the cached token.
func (s *tokenSource) invalidate(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.value == value {
		s.value = ""
		s.expiresAt = time.Time{}
	}
}

// AppToken returns a valid app access token, fetching a new one when the
// cached token is missing or expires within a minute.
func (c *Client) AppToken(ctx context.Context) (string, error) {
	if token, ok := c.token.cached(c.now()); ok {
		return token, nil
	}
	return c.refreshToken(ctx)
}

func (c *Client) refreshToken(ctx context.Context) (string, error) {
	c.token.mu.Lock()
	defer c.token.mu.Unlock()

	if token, ok := c.token.validLocked(c.now()); ok {
		return token, nil
	}

	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("client_secret", c.clientSecret)
	params.Set("grant_type", "client_credentials")
	endpoint := c.authURL + "?" + params.Encode()

	logging.WithContext(ctx, c.logger).Debug("requesting app token")
	resp, err := c.transport.Send(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	})
	if err != nil {
		return "", wrapTransport("app token", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return "", wrapStatus("app token", err)
	}

	var payload tokenResponse
	if err := decodeBody(resp.Body, &payload); err != nil {
		return "", services.Wrap(services.ErrInvalidResponse, "twitch", "app token", "decode token", err)
	}
	payload.AccessToken = strings.TrimSpace(payload.AccessToken)
	if payload.AccessToken == "" {
		return "", services.Wrap(services.ErrInvalidResponse, "twitch", "app token", "token missing from response", nil)
	}

	c.token.value = payload.AccessToken
	c.token.expiresAt = c.now().Add(time.Duration(max(payload.ExpiresIn, 0)) * time.Second)
	return c.token.value, nil
}
