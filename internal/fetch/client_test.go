package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const testHTML = `<html><head><title>Acme</title></head><body><p>Hello</p></body></html>`

// countingRecorder records telemetry calls for assertions.
type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
	retries  int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{outcomes: make(map[string]int)}
}

func (r *countingRecorder) ObserveRequest(method, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[method+" "+outcome]++
}

func (r *countingRecorder) ObserveRetry(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries++
}

func newTestClient(opts ...Option) *Client {
	base := []Option{WithRetry(3, time.Millisecond), WithExistsTimeout(2 * time.Second)}
	return New(append(base, opts...)...)
}

func TestClientFetch(t *testing.T) {
	t.Parallel()

	t.Run("returns html page", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(testHTML))
		}))
		defer server.Close()

		page, err := newTestClient().Fetch(t.Context(), server.URL, time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", page.StatusCode)
		}
		if page.ContentType != "text/html" {
			t.Errorf("expected media type text/html, got %q", page.ContentType)
		}
		if string(page.Body) != testHTML {
			t.Errorf("unexpected body %q", page.Body)
		}
		if !page.IsHTML() {
			t.Error("expected IsHTML")
		}
	})

	t.Run("non html content is rejected", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4"))
		}))
		defer server.Close()

		_, err := newTestClient().Fetch(t.Context(), server.URL, time.Second)
		if !errors.Is(err, ErrNotHTML) {
			t.Fatalf("expected ErrNotHTML, got %v", err)
		}
		fe, ok := IsFetchError(err)
		if !ok || fe.Kind != KindContentType {
			t.Errorf("expected content type FetchError, got %#v", err)
		}
	})

	t.Run("missing content type is sniffed", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header()["Content-Type"] = nil
			_, _ = w.Write([]byte("<!DOCTYPE html>" + testHTML))
		}))
		defer server.Close()

		if _, err := newTestClient().Fetch(t.Context(), server.URL, time.Second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("404 is not retried", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			http.NotFound(w, nil)
		}))
		defer server.Close()

		_, err := newTestClient().Fetch(t.Context(), server.URL, time.Second)
		if !errors.Is(err, ErrStatus) {
			t.Fatalf("expected ErrStatus, got %v", err)
		}
		if got := hits.Load(); got != 1 {
			t.Errorf("expected 1 request, got %d", got)
		}
	})

	t.Run("5xx is retried until success", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if hits.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(testHTML))
		}))
		defer server.Close()

		rec := newCountingRecorder()
		if _, err := newTestClient(WithRecorder(rec)).Fetch(t.Context(), server.URL, time.Second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := hits.Load(); got != 3 {
			t.Errorf("expected 3 requests, got %d", got)
		}
		if rec.retries != 2 {
			t.Errorf("expected 2 retries recorded, got %d", rec.retries)
		}
	})

	t.Run("persistent 500 gives up after max attempts", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := newTestClient().Fetch(t.Context(), server.URL, time.Second)
		fe, ok := IsFetchError(err)
		if !ok || fe.StatusCode != http.StatusInternalServerError {
			t.Fatalf("expected status FetchError, got %v", err)
		}
		if got := hits.Load(); got != 3 {
			t.Errorf("expected 3 requests, got %d", got)
		}
	})

	t.Run("429 is retried", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if hits.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(testHTML))
		}))
		defer server.Close()

		if _, err := newTestClient().Fetch(t.Context(), server.URL, time.Second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := hits.Load(); got != 2 {
			t.Errorf("expected 2 requests, got %d", got)
		}
	})

	t.Run("identity and site headers are sent", func(t *testing.T) {
		t.Parallel()

		headers := make(chan http.Header, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers <- r.Header.Clone()
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(testHTML))
		}))
		defer server.Close()

		client := newTestClient(
			WithUserAgent("TestAgent/1.0"),
			WithCookie("session=abc"),
			WithHeaders(map[string]string{"Accept-Language": "de-DE"}),
		)
		if _, err := client.Fetch(t.Context(), server.URL, time.Second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		h := <-headers
		if h.Get("User-Agent") != "TestAgent/1.0" || h.Get("Cookie") != "session=abc" || h.Get("Accept-Language") != "de-DE" {
			t.Errorf("unexpected headers %v", h)
		}
	})

	t.Run("body is limited", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(testHTML))
		}))
		defer server.Close()

		page, err := newTestClient(WithMaxBodySize(10)).Fetch(t.Context(), server.URL, time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Body) != 10 {
			t.Errorf("expected 10 bytes, got %d", len(page.Body))
		}
	})

	t.Run("unreachable host is a network error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		target := server.URL
		server.Close()

		_, err := newTestClient().Fetch(t.Context(), target, time.Second)
		if !errors.Is(err, ErrNetwork) {
			t.Fatalf("expected ErrNetwork, got %v", err)
		}
	})

	t.Run("timeout is honoured", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		start := time.Now()
		_, err := newTestClient().Fetch(t.Context(), server.URL, 50*time.Millisecond)
		if !errors.Is(err, ErrNetwork) {
			t.Fatalf("expected ErrNetwork, got %v", err)
		}
		if time.Since(start) > 2*time.Second {
			t.Error("fetch did not honour the timeout")
		}
	})
}

func TestClientExists(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/no-head", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	tests := []struct {
		path string
		want bool
	}{
		{path: "/ok", want: true},
		{path: "/no-head", want: true},
		{path: "/gone", want: false},
		{path: "/missing", want: false},
	}

	client := newTestClient()
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := client.Exists(t.Context(), server.URL+tt.path); got != tt.want {
				t.Errorf("Exists(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestClientRobots(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(testHTML))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(WithRobots(true))

	if _, err := client.Fetch(t.Context(), server.URL+"/about", time.Second); err != nil {
		t.Errorf("expected /about to be allowed, got %v", err)
	}
	_, err := client.Fetch(t.Context(), server.URL+"/private/page", time.Second)
	if !errors.Is(err, ErrDisallowed) {
		t.Errorf("expected ErrDisallowed, got %v", err)
	}
	if client.Exists(t.Context(), server.URL+"/private/page") {
		t.Error("expected disallowed URL to not exist")
	}
}

func TestLimiter(t *testing.T) {
	t.Parallel()

	t.Run("nop limiter does not block", func(t *testing.T) {
		t.Parallel()
		if err := NewIntervalLimiter(0).Wait(t.Context()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("interval limiter spaces requests", func(t *testing.T) {
		t.Parallel()

		l := NewIntervalLimiter(40 * time.Millisecond)
		start := time.Now()
		for range 3 {
			if err := l.Wait(t.Context()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if elapsed := time.Since(start); elapsed < 70*time.Millisecond {
			t.Errorf("expected at least two intervals, got %v", elapsed)
		}
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		if err := (NopLimiter{}).Wait(ctx); err == nil {
			t.Error("expected context error")
		}
	})
}

func TestFetchErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *FetchError
		want error
	}{
		{err: &FetchError{URL: "u", Kind: KindNetwork, Err: errors.New("boom")}, want: ErrNetwork},
		{err: &FetchError{URL: "u", Kind: KindStatus, StatusCode: 500}, want: ErrStatus},
		{err: &FetchError{URL: "u", Kind: KindContentType, ContentType: "image/png"}, want: ErrNotHTML},
		{err: &FetchError{URL: "u", Kind: KindRobots}, want: ErrDisallowed},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%v: expected errors.Is(%v)", tt.err, tt.want)
		}
		if tt.err.Error() == "" {
			t.Errorf("empty message for kind %s", tt.err.Kind)
		}
	}
}

func TestRetryAfter(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		value  string
		want   time.Duration
		wantOK bool
	}{
		{name: "absent", value: "", wantOK: false},
		{name: "seconds", value: "3", want: 3 * time.Second, wantOK: true},
		{name: "zero seconds", value: "0", want: 0, wantOK: true},
		{name: "negative seconds", value: "-1", wantOK: false},
		{name: "http date", value: now.Add(10 * time.Second).Format(http.TimeFormat), want: 10 * time.Second, wantOK: true},
		{name: "date in the past", value: now.Add(-time.Minute).Format(http.TimeFormat), want: 0, wantOK: true},
		{name: "too long", value: "3600", wantOK: false},
		{name: "garbage", value: "soon", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := http.Header{}
			if tt.value != "" {
				h.Set("Retry-After", tt.value)
			}
			got, ok := retryAfter(h, now)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("retryAfter(%q) = %v, %v, want %v, %v", tt.value, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRetryTransportHonorsRetryAfter(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(testHTML))
	}))
	defer server.Close()

	start := time.Now()
	if _, err := newTestClient().Fetch(t.Context(), server.URL, 5*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("retried after %v, want at least the 1s Retry-After", elapsed)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("expected 2 requests, got %d", got)
	}
}
