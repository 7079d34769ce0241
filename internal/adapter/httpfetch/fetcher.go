// Package httpfetch implements ports.Fetcher over net/http.
// Every failure (network error, timeout, non-200 status, oversized body)
// is reported as a *domain.FetchError matching domain.ErrNoData.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tejashwikalptaru/tunelib/internal/domain"
	"github.com/tejashwikalptaru/tunelib/internal/ports"
)

const (
	// DefaultTimeout bounds a whole fetch, redirects included
	DefaultTimeout = 15 * time.Second

	// DefaultMaxRedirects is the number of 3xx hops followed before giving up
	DefaultMaxRedirects = 10

	// DefaultMaxBodyBytes caps the response body (32MB)
	DefaultMaxBodyBytes = 32 << 20

	// DefaultUserAgent is sent with every request
	DefaultUserAgent = "tunelib/1.0"
)

// Fetcher errors, wrapped inside FetchError.
var (
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrMissingLocation  = errors.New("redirect without location")
	ErrBodyTooLarge     = errors.New("response body too large")
)

// Fetcher downloads resources with a bounded timeout, following redirects itself.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	maxRedirects int
	maxBodyBytes int64
	userAgent    string
	logger       *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxRedirects sets how many redirects are followed.
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxRedirects = n
		}
	}
}

// WithMaxBodyBytes sets the body size cap.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodyBytes = n
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHTTPClient replaces the underlying client (useful for testing).
// Its redirect policy is overridden.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// New creates a fetcher.
func New(logger *slog.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:       &http.Client{},
		timeout:      DefaultTimeout,
		maxRedirects: DefaultMaxRedirects,
		maxBodyBytes: DefaultMaxBodyBytes,
		userAgent:    DefaultUserAgent,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(f)
	}

	client := *f.client
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	f.client = &client
	return f
}

// Fetch GETs rawURL and returns the body of the terminal 200 response.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	current, err := url.Parse(rawURL)
	if err != nil {
		return nil, domain.NewFetchError(rawURL, 0, err)
	}

	for hop := 0; ; hop++ {
		resp, err := f.get(ctx, current.String())
		if err != nil {
			f.debug("fetch failed", rawURL, err)
			return nil, domain.NewFetchError(rawURL, 0, err)
		}

		if isRedirect(resp.StatusCode) {
			location := resp.Header.Get("Location")
			drain(resp)
			if location == "" {
				return nil, domain.NewFetchError(rawURL, resp.StatusCode, ErrMissingLocation)
			}
			if hop >= f.maxRedirects {
				return nil, domain.NewFetchError(rawURL, 0, ErrTooManyRedirects)
			}
			next, err := current.Parse(location)
			if err != nil {
				return nil, domain.NewFetchError(rawURL, 0, fmt.Errorf("bad location %q: %w", location, err))
			}
			current = next
			continue
		}

		return f.readBody(rawURL, resp)
	}
}

func (f *Fetcher) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	return f.client.Do(req)
}

func (f *Fetcher) readBody(rawURL string, resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.debug("unexpected status", rawURL, fmt.Errorf("status %d", resp.StatusCode))
		return nil, domain.NewFetchError(rawURL, resp.StatusCode, nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, domain.NewFetchError(rawURL, 0, fmt.Errorf("read response: %w", err))
	}
	if int64(len(data)) > f.maxBodyBytes {
		return nil, domain.NewFetchError(rawURL, 0, ErrBodyTooLarge)
	}
	return data, nil
}

func (f *Fetcher) debug(msg, rawURL string, err error) {
	if f.logger != nil {
		f.logger.Debug(msg, slog.String("url", rawURL), slog.Any("error", err))
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}

// Verify interface implementation
var _ ports.Fetcher = (*Fetcher)(nil)
