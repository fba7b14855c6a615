package ai

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// responseMeta collects headers from the most recent response of one call.
// SDK clients hide response headers, so they are captured at the transport.
type responseMeta struct {
	requestID  string
	retryAfter time.Duration
}

type metaKey struct{}

func withMeta(ctx context.Context) (context.Context, *responseMeta) {
	m := &responseMeta{}
	return context.WithValue(ctx, metaKey{}, m), m
}

// metaTransport records request ids and Retry-After into the responseMeta
// stored on the request context.
type metaTransport struct {
	base http.RoundTripper
}

func (t *metaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	if m, ok := req.Context().Value(metaKey{}).(*responseMeta); ok {
		m.requestID = extractRequestID(resp)
		m.retryAfter = 0
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := parseRetryAfterSeconds(v); err == nil && secs > 0 {
				m.retryAfter = time.Duration(secs) * time.Second
			}
		}
	}
	return resp, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout, Transport: &metaTransport{}}
}

// extractRequestID pulls a best-effort request ID from common headers.
func extractRequestID(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	keys := []string{"X-Request-Id", "Request-Id", "OpenAI-Request-ID", "Openrouter-Request-ID", "X-Amzn-Requestid"}
	for _, k := range keys {
		if v := resp.Header.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// parseRetryAfterSeconds interprets a Retry-After value as seconds or an HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}

// backoff retries rate limits, 5xx responses and unreachable endpoints with
// exponential delays capped at max. A Retry-After hint replaces the delay.
type backoff struct {
	attempts int
	base     time.Duration
	max      time.Duration
}

func (b backoff) do(ctx context.Context, call func() error) error {
	delay := b.base
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	attempts := b.attempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = call()
		if err == nil || !retryable(err) || attempt == attempts {
			return err
		}
		wait := withJitter(delay)
		if rl, ok := err.(*RateLimitError); ok && rl.RetryAfter > 0 {
			wait = rl.RetryAfter
		} else if b.max > 0 && wait > b.max {
			wait = b.max
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return err
}

// withJitter returns a backoff duration with +/- 20% jitter applied.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 500 * time.Millisecond
	}
	f := 0.8 + rand.Float64()*0.4
	out := time.Duration(float64(d) * f)
	if out <= 0 {
		return d
	}
	return out
}
