// Package fetch retrieves marketplace search pages. Failures never escape
// as panics or out-of-band errors: every call returns a Result, and a failed
// Result has an empty body.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultUserAgent identifies the watcher to marketplaces.
	DefaultUserAgent = "Mozilla/5.0 (compatible; frommer-watcher/1.1)"

	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBodyBytes caps how much of a page is read.
	DefaultMaxBodyBytes int64 = 10 << 20

	acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

var (
	// ErrInvalidTimeout is returned without any network call when the
	// configured timeout is zero or negative.
	ErrInvalidTimeout = errors.New("request timeout must be positive")

	// ErrStatus wraps any non-2xx response.
	ErrStatus = errors.New("unexpected HTTP status")
)

// Result is the outcome of one fetch. Err is nil on success.
type Result struct {
	URL        string
	StatusCode int
	Body       string
	Truncated  bool
	Err        error
}

// OK reports whether the fetch succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Fetcher performs GET requests with a fixed header set and timeout.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	userAgent    string
	maxBodyBytes int64
	log          *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithTimeout sets the per-request timeout. Values <= 0 make every fetch
// fail with ErrInvalidTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodyBytes caps the number of body bytes read.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodyBytes = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.log = l
	}
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:       &http.Client{},
		timeout:      DefaultTimeout,
		userAgent:    DefaultUserAgent,
		maxBodyBytes: DefaultMaxBodyBytes,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch GETs url. Transport errors, timeouts, and non-2xx statuses are
// logged as warnings and reported through Result.Err with an empty body.
func (f *Fetcher) Fetch(ctx context.Context, url string) Result {
	res := f.get(ctx, url)
	if res.Err != nil {
		f.log.Warn("fetch failed",
			"url", url,
			"status", res.StatusCode,
			"error", res.Err,
		)
		res.Body = ""
		res.Truncated = false
		return res
	}

	if res.Truncated {
		f.log.Debug("response body truncated", "url", url, "max_bytes", f.maxBodyBytes)
	}

	return res
}

func (f *Fetcher) get(ctx context.Context, url string) Result {
	res := Result{URL: url}

	if f.timeout <= 0 {
		res.Err = fmt.Errorf("%w (got %s)", ErrInvalidTimeout, f.timeout)
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		res.Err = fmt.Errorf("creating request: %w", err)
		return res
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("executing request: %w", err)
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res.Err = fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
		return res
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		res.Err = fmt.Errorf("reading response body: %w", err)
		return res
	}
	if int64(len(body)) > f.maxBodyBytes {
		body = body[:f.maxBodyBytes]
		res.Truncated = true
	}

	res.Body = string(body)
	return res
}
