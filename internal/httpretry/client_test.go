package httpretry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"streamcheck/internal/services"
)

type scriptedServer struct {
	t        *testing.T
	server   *httptest.Server
	requests atomic.Int32
}

type scriptedReply struct {
	status     int
	retryAfter string
}

func newScriptedServer(t *testing.T, replies ...scriptedReply) *scriptedServer {
	t.Helper()
	s := &scriptedServer{t: t}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idx := int(s.requests.Add(1)) - 1
		if idx >= len(replies) {
			idx = len(replies) - 1
		}
		reply := replies[idx]
		if reply.retryAfter != "" {
			w.Header().Set("Retry-After", reply.retryAfter)
		}
		w.WriteHeader(reply.status)
		_, _ = w.Write([]byte("attempt " + strconv.Itoa(idx+1)))
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *scriptedServer) builder() RequestBuilder {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, s.server.URL+"/resource", nil)
	}
}

type sleepRecorder struct {
	delays []time.Duration
}

func (r *sleepRecorder) sleep(d time.Duration) {
	r.delays = append(r.delays, d)
}

func newTestClient(rec *sleepRecorder, opts ...Option) *Client {
	base := []Option{WithBackoff(time.Second), WithSleeper(rec.sleep)}
	return New(append(base, opts...)...)
}

func assertDelays(t *testing.T, got []time.Duration, want ...time.Duration) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d waits %v, got %v", len(want), want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("wait %d: expected %s, got %s (all: %v)", i, want[i], got[i], got)
		}
	}
}

func TestSendHonorsRetryAfterOn429(t *testing.T) {
	srv := newScriptedServer(t,
		scriptedReply{status: http.StatusTooManyRequests, retryAfter: "1"},
		scriptedReply{status: http.StatusOK},
	)
	rec := &sleepRecorder{}
	client := newTestClient(rec, WithBackoff(5*time.Second))

	resp, err := client.Send(context.Background(), srv.builder())
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if srv.requests.Load() != 2 {
		t.Fatalf("expected exactly one retry, got %d requests", srv.requests.Load())
	}
	assertDelays(t, rec.delays, time.Second)
}

func TestSendBacksOffByHalfOnServerErrors(t *testing.T) {
	srv := newScriptedServer(t,
		scriptedReply{status: http.StatusServiceUnavailable},
		scriptedReply{status: http.StatusBadGateway},
		scriptedReply{status: http.StatusInternalServerError},
		scriptedReply{status: http.StatusOK},
	)
	rec := &sleepRecorder{}
	client := newTestClient(rec)

	resp, err := client.Send(context.Background(), srv.builder())
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	assertDelays(t, rec.delays, 1000*time.Millisecond, 1500*time.Millisecond, 2250*time.Millisecond)
}

func TestSendRetryAfterDoesNotResetBackoffSequence(t *testing.T) {
	srv := newScriptedServer(t,
		scriptedReply{status: http.StatusTooManyRequests, retryAfter: "7"},
		scriptedReply{status: http.StatusServiceUnavailable},
		scriptedReply{status: http.StatusOK},
	)
	rec := &sleepRecorder{}
	client := newTestClient(rec)

	resp, err := client.Send(context.Background(), srv.builder())
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	resp.Body.Close()
	assertDelays(t, rec.delays, 7*time.Second, 1500*time.Millisecond)
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	srv := newScriptedServer(t, scriptedReply{status: http.StatusBadRequest})
	rec := &sleepRecorder{}
	client := newTestClient(rec)

	resp, err := client.Send(context.Background(), srv.builder())
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 passed through, got %d", resp.StatusCode)
	}
	if srv.requests.Load() != 1 || len(rec.delays) != 0 {
		t.Fatalf("expected single attempt, got %d requests and waits %v", srv.requests.Load(), rec.delays)
	}
}

func TestSendReturnsLastResponseWhenRetriesExhausted(t *testing.T) {
	srv := newScriptedServer(t, scriptedReply{status: http.StatusInternalServerError})
	rec := &sleepRecorder{}
	client := newTestClient(rec, WithMaxRetries(3))

	resp, err := client.Send(context.Background(), srv.builder())
	if err != nil {
		t.Fatalf("exhaustion on HTTP responses should not error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected final 500, got %d", resp.StatusCode)
	}
	if srv.requests.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", srv.requests.Load())
	}
	assertDelays(t, rec.delays, time.Second, 1500*time.Millisecond)
}

func TestSendBuildsFreshRequestPerAttempt(t *testing.T) {
	srv := newScriptedServer(t,
		scriptedReply{status: http.StatusServiceUnavailable},
		scriptedReply{status: http.StatusOK},
	)
	rec := &sleepRecorder{}
	client := newTestClient(rec)

	var built []*http.Request
	resp, err := client.Send(context.Background(), func(ctx context.Context) (*http.Request, error) {
		req, err := srv.builder()(ctx)
		built = append(built, req)
		return req, err
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	resp.Body.Close()
	if len(built) != 2 || built[0] == built[1] {
		t.Fatalf("expected two distinct requests, got %d", len(built))
	}
}

func TestSendTransportFailureOnFinalAttemptErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := &sleepRecorder{}
	client := newTestClient(rec, WithMaxRetries(2))

	_, err := client.Send(context.Background(), func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !errors.Is(err, services.ErrTransientNetwork) {
		t.Fatalf("expected ErrTransientNetwork, got %v", err)
	}
	if !strings.Contains(err.Error(), "GET "+url+" failed after 2 attempts") {
		t.Fatalf("expected request url in error, got %q", err.Error())
	}
	assertDelays(t, rec.delays, time.Second)
}

func TestSendCancellationDuringWaitAbortsChain(t *testing.T) {
	srv := newScriptedServer(t, scriptedReply{status: http.StatusServiceUnavailable})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := New(WithBackoff(time.Second), WithSleeper(func(time.Duration) { cancel() }))
	_, err := client.Send(ctx, srv.builder())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if srv.requests.Load() != 1 {
		t.Fatalf("expected no attempts after cancellation, got %d", srv.requests.Load())
	}
}

func TestSendRealTimerRespectsCancellation(t *testing.T) {
	srv := newScriptedServer(t, scriptedReply{status: http.StatusServiceUnavailable})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := New(WithBackoff(time.Hour))
	start := time.Now()
	_, err := client.Send(ctx, srv.builder())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("backoff wait was not interrupted by cancellation")
	}
}

func TestNextDelayRoundsUp(t *testing.T) {
	cases := map[time.Duration]time.Duration{
		time.Millisecond:        2 * time.Millisecond,
		1000 * time.Millisecond: 1500 * time.Millisecond,
		1500 * time.Millisecond: 2250 * time.Millisecond,
		2250 * time.Millisecond: 3375 * time.Millisecond,
		333 * time.Millisecond:  500 * time.Millisecond,
	}
	for in, want := range cases {
		if got := nextDelay(in); got != want {
			t.Fatalf("nextDelay(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("seconds form: got %s %v", d, ok)
	}
	future := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)
	if d, ok := parseRetryAfter(future); !ok || d <= 0 || d > 90*time.Second {
		t.Fatalf("date form: got %s %v", d, ok)
	}
	for _, bad := range []string{"", "-1", "soon", time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)} {
		if _, ok := parseRetryAfter(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestStatusErrorCapturesBody(t *testing.T) {
	srv := newScriptedServer(t, scriptedReply{status: http.StatusForbidden})
	resp, err := New().Send(context.Background(), srv.builder())
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	statusErr := NewStatusError(resp)
	if statusErr.StatusCode != http.StatusForbidden || statusErr.Body != "attempt 1" {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
	if statusErr.Error() != "http status 403: attempt 1" {
		t.Fatalf("unexpected message: %q", statusErr.Error())
	}
}
