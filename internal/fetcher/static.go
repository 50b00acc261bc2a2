package fetcher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Static fetch defaults.
const (
	// DefaultTimeout bounds a whole static request including the body read.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxBodySize limits how much of a body is read.
	// Pages larger than this are truncated; head data lives at the top.
	DefaultMaxBodySize = 5 * 1024 * 1024
)

// acceptHeader mirrors what a desktop browser sends for a navigation.
const acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// StaticFetcher fetches raw documents over HTTP.
// It is safe for concurrent use.
type StaticFetcher struct {
	client      *http.Client
	identity    Identity
	timeout     time.Duration
	maxBodySize int64
	proxy       string
	cookie      string
	headers     map[string]string
	logger      *slog.Logger
}

// StaticOption configures a StaticFetcher.
type StaticOption func(*StaticFetcher)

// WithTimeout sets the per-request timeout. 0 disables it.
func WithTimeout(d time.Duration) StaticOption {
	return func(f *StaticFetcher) {
		f.timeout = d
	}
}

// WithMaxBodySize sets the maximum number of body bytes read.
func WithMaxBodySize(size int64) StaticOption {
	return func(f *StaticFetcher) {
		f.maxBodySize = size
	}
}

// WithIdentity sets the browser identity sent with each request.
func WithIdentity(id Identity) StaticOption {
	return func(f *StaticFetcher) {
		f.identity = id
	}
}

// WithProxy routes requests through a SOCKS5 proxy at "host:port".
func WithProxy(address string) StaticOption {
	return func(f *StaticFetcher) {
		f.proxy = address
	}
}

// WithCookie sends a raw cookie string (e.g., "session=abc") with each request.
func WithCookie(cookie string) StaticOption {
	return func(f *StaticFetcher) {
		f.cookie = cookie
	}
}

// WithHeaders sends additional headers with each request.
func WithHeaders(headers map[string]string) StaticOption {
	return func(f *StaticFetcher) {
		f.headers = headers
	}
}

// WithStaticLogger sets the logger for the fetcher.
func WithStaticLogger(logger *slog.Logger) StaticOption {
	return func(f *StaticFetcher) {
		f.logger = logger
	}
}

// NewStaticFetcher creates a StaticFetcher.
// It fails only when the proxy address is malformed.
func NewStaticFetcher(opts ...StaticOption) (*StaticFetcher, error) {
	f := &StaticFetcher{
		identity:    DefaultIdentity(),
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}

	transport, err := newTransport(f.proxy)
	if err != nil {
		return nil, err
	}
	var rt http.RoundTripper = transport
	if f.cookie != "" || len(f.headers) > 0 {
		rt = &headerInjectingTransport{
			base:    transport,
			cookie:  f.cookie,
			headers: f.headers,
		}
	}

	f.client = &http.Client{
		Transport: rt,
		Timeout:   f.timeout,
		// The first response is the result: a 301 is reported as a 301.
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return f, nil
}

// Fetch performs a GET request for rawURL without following redirects.
// Any transport failure is returned as *NetworkError; HTTP error statuses
// are not errors.
func (f *StaticFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	for k, v := range f.identity.Headers() {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	f.logger.Debug("static fetch", "url", rawURL, "status", resp.StatusCode, "bytes", len(raw))

	contentType := resp.Header.Get("Content-Type")
	return &Response{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       toUTF8(raw, contentType),
		Raw:        raw,
	}, nil
}
