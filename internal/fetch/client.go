package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/sitescout/internal/model"
)

// Default request settings.
const (
	DefaultUserAgent     = "Mozilla/5.0 (compatible; sitescout/1.0)"
	DefaultTimeout       = 15 * time.Second
	DefaultExistsTimeout = 4 * time.Second
	DefaultMaxBodySize   = 5 * 1024 * 1024
	DefaultMaxAttempts   = 3
	DefaultBackoff       = 500 * time.Millisecond
)

// Request outcomes reported to the Recorder.
const (
	OutcomeOK = "ok"
)

// Recorder receives fetch telemetry. The monitoring package provides a
// Prometheus implementation.
type Recorder interface {
	ObserveRequest(method, outcome string)
	ObserveRetry(method string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRequest(string, string) {}
func (nopRecorder) ObserveRetry(string)           {}

// Client is the only component that touches the network. It sends a
// fixed identity header, retries 5xx/429 responses and only returns
// HTML documents.
type Client struct {
	httpClient    *http.Client
	baseTransport http.RoundTripper
	userAgent     string
	headers       map[string]string
	cookie        string
	maxBodySize   int64
	existsTimeout time.Duration
	maxAttempts   int
	backoff       time.Duration
	respectRobots bool
	robots        *RobotsChecker
	logger        *slog.Logger
	recorder      Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHeaders adds extra request headers.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithCookie sets the Cookie header.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithMaxBodySize limits how many body bytes are read per response.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithExistsTimeout sets the timeout of a single existence check.
func WithExistsTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.existsTimeout = d
		}
	}
}

// WithRetry sets the number of attempts and the initial backoff.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxAttempts = maxAttempts
		c.backoff = backoff
	}
}

// WithTransport sets the underlying transport wrapped by the retry layer.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.baseTransport = rt
	}
}

// WithRobots enables the robots.txt gate.
func WithRobots(enabled bool) Option {
	return func(c *Client) {
		c.respectRobots = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRecorder sets the telemetry recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		userAgent:     DefaultUserAgent,
		headers:       make(map[string]string),
		maxBodySize:   DefaultMaxBodySize,
		existsTimeout: DefaultExistsTimeout,
		maxAttempts:   DefaultMaxAttempts,
		backoff:       DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}

	c.httpClient = &http.Client{
		Transport: NewRetryTransport(c.baseTransport, c.maxAttempts, c.backoff, c.logger, c.recorder),
	}
	if c.respectRobots {
		c.robots = NewRobotsChecker(&http.Client{Transport: c.baseTransportOrDefault()}, c.userAgent)
	}
	return c
}

func (c *Client) baseTransportOrDefault() http.RoundTripper {
	if c.baseTransport != nil {
		return c.baseTransport
	}
	return http.DefaultTransport
}

// Fetch GETs target and returns the page when the response is a 2xx HTML
// document. timeout bounds the whole request including retries; zero
// means DefaultTimeout.
func (c *Client) Fetch(ctx context.Context, target string, timeout time.Duration) (*model.FetchedPage, error) {
	if c.robots != nil && !c.robots.Allowed(ctx, target) {
		return nil, c.fail(http.MethodGet, &FetchError{URL: target, Kind: KindRobots})
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodGet, target)
	if err != nil {
		return nil, c.fail(http.MethodGet, &FetchError{URL: target, Kind: KindNetwork, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(http.MethodGet, &FetchError{URL: target, Kind: KindStatus, StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, c.fail(http.MethodGet, &FetchError{URL: target, Kind: KindNetwork, Err: err})
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	if !model.IsHTMLContentType(contentType) {
		return nil, c.fail(http.MethodGet, &FetchError{
			URL:         target,
			Kind:        KindContentType,
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
		})
	}

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	c.recorder.ObserveRequest(http.MethodGet, OutcomeOK)
	return &model.FetchedPage{
		URL:         finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: mediaType(contentType),
		Headers:     resp.Header,
		Body:        body,
	}, nil
}

// Exists reports whether target answers with a 2xx status. It sends HEAD
// first and falls back to GET when HEAD fails or is rejected, since many
// servers mishandle HEAD.
func (c *Client) Exists(ctx context.Context, target string) bool {
	if c.robots != nil && !c.robots.Allowed(ctx, target) {
		c.recorder.ObserveRequest(http.MethodHead, KindRobots.String())
		return false
	}

	if c.probe(ctx, http.MethodHead, target) {
		return true
	}
	return c.probe(ctx, http.MethodGet, target)
}

func (c *Client) probe(ctx context.Context, method, target string) bool {
	ctx, cancel := context.WithTimeout(ctx, c.existsTimeout)
	defer cancel()

	resp, err := c.do(ctx, method, target)
	if err != nil {
		c.recorder.ObserveRequest(method, KindNetwork.String())
		c.logger.Debug("existence check failed", "method", method, "url", target, "error", err)
		return false
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	if ok {
		c.recorder.ObserveRequest(method, OutcomeOK)
	} else {
		c.recorder.ObserveRequest(method, KindStatus.String())
	}
	return ok
}

func (c *Client) do(ctx context.Context, method, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	return c.httpClient.Do(req)
}

// fail records and logs a fetch error and returns it.
func (c *Client) fail(method string, err *FetchError) error {
	c.recorder.ObserveRequest(method, err.Kind.String())
	c.logger.Debug("fetch failed", "url", err.URL, "kind", err.Kind.String(), "status", err.StatusCode)
	return err
}

// IsFetchError reports whether err is a FetchError and returns it.
func IsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
