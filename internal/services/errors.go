package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidResponse  = errors.New("invalid response")
	ErrTransientNetwork = errors.New("transient network failure")
	ErrInvalidWindow    = errors.New("invalid window")
	ErrFormat           = errors.New("format error")
	ErrConfiguration    = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransientNetwork
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsSkippable reports whether a per-contestant failure should be recorded as a
// skip so a batch run can continue. Cancellation and configuration problems
// abort the whole run instead.
//
// Backend markers are checked first: an HTTP client timeout is tagged
// ErrTransientNetwork but also matches context.DeadlineExceeded. Callers
// detect their own cancellation through ctx.Err().
func IsSkippable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidResponse), errors.Is(err, ErrTransientNetwork):
		return true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrConfiguration):
		return false
	default:
		return true
	}
}

// SkipReason renders a short reason string for a skipped contestant.
func SkipReason(err error) string {
	if err == nil {
		return ""
	}
	var kind string
	switch {
	case errors.Is(err, ErrNotFound):
		kind = "not found"
	case errors.Is(err, ErrInvalidResponse):
		kind = "invalid response"
	case errors.Is(err, ErrTransientNetwork):
		kind = "network"
	case errors.Is(err, ErrInvalidWindow):
		kind = "window"
	case errors.Is(err, ErrFormat):
		kind = "format"
	default:
		return strings.TrimSpace(err.Error())
	}
	return kind + ": " + strings.TrimSpace(err.Error())
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
