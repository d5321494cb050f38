package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"streamcheck/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrInvalidResponse, "riot", "resolve account", "puuid missing", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrInvalidResponse) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"riot", "resolve account", "puuid missing"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

// clientTimeout mirrors net/http client timeouts, which match
// context.DeadlineExceeded under errors.Is.
type clientTimeout struct{}

func (clientTimeout) Error() string        { return "Client.Timeout exceeded while awaiting headers" }
func (clientTimeout) Timeout() bool        { return true }
func (clientTimeout) Is(target error) bool { return target == context.DeadlineExceeded }

func TestIsSkippable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", services.Wrap(services.ErrNotFound, "twitch", "user", "missing", nil), true},
		{"network", services.Wrap(services.ErrTransientNetwork, "riot", "ids", "", errors.New("reset")), true},
		{"plain", errors.New("status 403"), true},
		{"canceled", fmt.Errorf("fetch: %w", context.Canceled), false},
		{"config", services.Wrap(services.ErrConfiguration, "config", "", "api key", nil), false},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), false},
		{"client timeout", services.Wrap(services.ErrTransientNetwork, "http", "send", "GET /ids failed after 2 attempts", clientTimeout{}), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.IsSkippable(tc.err); got != tc.want {
				t.Fatalf("IsSkippable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestSkipReasonPrefixesKind(t *testing.T) {
	err := services.Wrap(services.ErrNotFound, "riot", "resolve account", "riot id not found", nil)
	reason := services.SkipReason(err)
	if !strings.HasPrefix(reason, "not found: ") {
		t.Fatalf("unexpected reason %q", reason)
	}
	if services.SkipReason(nil) != "" {
		t.Fatal("expected empty reason for nil error")
	}
}
