package httpretry

import (
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

const (
	defaultTimeout       = 30 * time.Second
	http2ReadIdleTimeout = 30 * time.Second
	http2PingTimeout     = 15 * time.Second
)

// NewHTTPClient builds an HTTP client whose TLS connections negotiate HTTP/2
// with idle health-check pings. Plain http targets keep using HTTP/1.1.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := http.DefaultTransport.(*http.Transport).Clone()
	if h2, err := http2.ConfigureTransports(base); err == nil {
		h2.ReadIdleTimeout = http2ReadIdleTimeout
		h2.PingTimeout = http2PingTimeout
	}
	return &http.Client{
		Transport: base,
		Timeout:   timeout,
	}
}
