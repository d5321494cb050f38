package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"streamcheck/internal/config"
	"streamcheck/internal/httpretry"
	"streamcheck/internal/riot"
	"streamcheck/internal/services"
	"streamcheck/internal/twitch"
)

const checkTimeout = 10 * time.Second

// probeIdentity is looked up to validate the riot key; a 404 proves the key
// was accepted.
var probeIdentity = riot.Identity{GameName: "streamcheck", TagLine: "probe", Region: riot.RegionAmericas}

// CheckRiot verifies the match backend accepts the configured API key.
func CheckRiot(ctx context.Context, cfg *config.Config) Result {
	const name = "Riot API"

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	client, err := riot.New(cfg.Riot.APIKey,
		riot.WithTransport(singleAttempt(cfg)),
		riot.WithBaseURLTemplate(cfg.Riot.BaseURLTemplate),
	)
	if err != nil {
		return Result{Name: name, Detail: "API key missing"}
	}
	_, err = client.ResolveAccountID(checkCtx, probeIdentity)
	if err == nil || errors.Is(err, services.ErrNotFound) {
		return Result{Name: name, Passed: true, Detail: "API key accepted"}
	}
	return Result{Name: name, Detail: summarizeError(err)}
}

// CheckTwitch verifies the app credentials by requesting an access token.
func CheckTwitch(ctx context.Context, cfg *config.Config) Result {
	const name = "Twitch API"

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	client, err := twitch.New(cfg.Twitch.ClientID, cfg.Twitch.ClientSecret,
		twitch.WithTransport(singleAttempt(cfg)),
		twitch.WithAuthURL(cfg.Twitch.AuthURL),
		twitch.WithAPIURL(cfg.Twitch.APIURL),
	)
	if err != nil {
		return Result{Name: name, Detail: "client id or secret missing"}
	}
	if _, err := client.AppToken(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "App token issued"}
}

// CheckWritableDirectory verifies that the directory is readable and
// writable. A missing directory passes when its nearest existing ancestor is
// writable, since it is created on first use.
func CheckWritableDirectory(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
		}
		parent := nearestExisting(path)
		if parent == "" {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing parent)", path)}
		}
		if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created on first use)", path)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func nearestExisting(path string) string {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		if next := filepath.Dir(dir); next == dir {
			return ""
		}
	}
}

func singleAttempt(cfg *config.Config) *httpretry.Client {
	return httpretry.New(
		httpretry.WithHTTPClient(httpretry.NewHTTPClient(checkTimeout)),
		httpretry.WithMaxRetries(1),
		httpretry.WithBackoff(time.Duration(cfg.HTTP.BackoffMS)*time.Millisecond),
	)
}

// summarizeError produces a human-readable summary for failed backend checks.
func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (API unreachable)"
	}
	var statusErr *httpretry.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Sprintf("auth failed (%d, check credentials)", statusErr.StatusCode)
		default:
			return fmt.Sprintf("unexpected status %d", statusErr.StatusCode)
		}
	}
	return err.Error()
}
