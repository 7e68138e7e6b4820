package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxRetryAfter caps the wait a server may ask for. Longer Retry-After
// values fall back to the exponential backoff.
const maxRetryAfter = 2 * time.Minute

// RetryTransport wraps an http.RoundTripper and retries responses with a
// 5xx or 429 status. It waits for the server's Retry-After when one is
// given and uses exponential backoff otherwise. Transport errors are
// returned immediately.
type RetryTransport struct {
	base        http.RoundTripper
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
	recorder    Recorder
}

// NewRetryTransport creates a RetryTransport. maxAttempts counts the first
// try; backoff is the delay before the second try and doubles afterwards.
func NewRetryTransport(base http.RoundTripper, maxAttempts int, backoff time.Duration, logger *slog.Logger, recorder Recorder) *RetryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &RetryTransport{
		base:        base,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger,
		recorder:    recorder,
	}
}

// RoundTrip implements http.RoundTripper.
func (rt *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := req.Context().Err(); err != nil {
			return nil, err
		}

		resp, err := rt.base.RoundTrip(req.Clone(req.Context()))
		if err != nil {
			return nil, err
		}

		if !isRetryableStatus(resp.StatusCode) || attempt+1 >= rt.maxAttempts {
			return resp, nil
		}

		delay := rt.delay(attempt)
		if d, ok := retryAfter(resp.Header, time.Now()); ok {
			delay = d
		}

		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		_ = resp.Body.Close()

		rt.recorder.ObserveRetry(req.Method)
		if err := rt.waitForRetry(req.Context(), attempt, delay, resp.StatusCode, req.URL.String()); err != nil {
			return nil, err
		}
	}
}

// isRetryableStatus reports whether a status is worth another attempt.
func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code <= 599)
}

func (rt *RetryTransport) waitForRetry(ctx context.Context, attempt int, delay time.Duration, statusCode int, target string) error {
	rt.logger.Debug("retrying request",
		"url", target,
		"status", statusCode,
		"attempt", attempt+1,
		"max_attempts", rt.maxAttempts,
		"delay", delay,
	)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// delay returns backoff * 2^attempt.
func (rt *RetryTransport) delay(attempt int) time.Duration {
	return rt.backoff << attempt
}

// retryAfter parses a Retry-After header given either as seconds or as an
// HTTP date. It reports false when the header is absent, malformed or
// asks for more than maxRetryAfter.
func retryAfter(h http.Header, now time.Time) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0, false
	}

	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		d = time.Duration(secs) * time.Second
	} else if t, err := http.ParseTime(v); err == nil {
		d = max(t.Sub(now), 0)
	} else {
		return 0, false
	}

	if d > maxRetryAfter {
		return 0, false
	}
	return d, true
}
