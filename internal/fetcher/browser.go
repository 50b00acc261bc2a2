package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"golang.org/x/sync/semaphore"
)

// Rendered fetch defaults.
const (
	// DefaultRenderTimeout bounds one rendered fetch from navigation to idle.
	DefaultRenderTimeout = 60 * time.Second

	// DefaultMaxTabs caps how many tabs render at the same time.
	DefaultMaxTabs = 4
)

// outerHTMLScript serializes the current DOM.
const outerHTMLScript = "document.documentElement.outerHTML"

// Browser is a lazily started headless Chrome session shared by all
// rendered fetches of a run.
//
// Design decision: The session is an explicitly owned handle rather than a
// package-level singleton. Whoever creates it closes it (typically with
// defer), and every component that renders receives the same handle. The
// browser process is only launched when the first page actually needs
// rendering, so feed runs and runs without HTML pages never start Chrome.
type Browser struct {
	identity        Identity
	execPath        string
	proxyServer     string
	headless        bool
	renderTimeout   time.Duration
	idleConnections int
	idleInterval    time.Duration
	logger          *slog.Logger

	// tabs limits concurrently open tabs.
	tabs *semaphore.Weighted

	// mu guards the session fields below.
	mu            sync.Mutex
	browserCtx    context.Context
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	closed        bool
}

// BrowserOption configures a Browser.
type BrowserOption func(*Browser)

// WithBrowserIdentity sets the identity headers sent by every tab.
func WithBrowserIdentity(id Identity) BrowserOption {
	return func(b *Browser) {
		b.identity = id
	}
}

// WithExecPath sets the Chrome/Chromium executable.
// When empty, chromedp searches the usual install locations.
func WithExecPath(path string) BrowserOption {
	return func(b *Browser) {
		b.execPath = path
	}
}

// WithProxyServer routes browser traffic through a proxy
// (e.g., "socks5://127.0.0.1:1080").
func WithProxyServer(server string) BrowserOption {
	return func(b *Browser) {
		b.proxyServer = server
	}
}

// WithHeadless controls whether Chrome runs without a window.
func WithHeadless(headless bool) BrowserOption {
	return func(b *Browser) {
		b.headless = headless
	}
}

// WithRenderTimeout sets the per-page render deadline.
func WithRenderTimeout(d time.Duration) BrowserOption {
	return func(b *Browser) {
		b.renderTimeout = d
	}
}

// WithMaxTabs caps concurrently open tabs. Values below 1 are ignored.
func WithMaxTabs(n int) BrowserOption {
	return func(b *Browser) {
		if n > 0 {
			b.tabs = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithBrowserLogger sets the logger for the browser.
func WithBrowserLogger(logger *slog.Logger) BrowserOption {
	return func(b *Browser) {
		b.logger = logger
	}
}

// NewBrowser creates a Browser. No process is started until Render is called.
func NewBrowser(opts ...BrowserOption) *Browser {
	b := &Browser{
		identity:        DefaultIdentity(),
		headless:        true,
		renderTimeout:   DefaultRenderTimeout,
		idleConnections: DefaultIdleConnections,
		idleInterval:    DefaultIdleInterval,
		tabs:            semaphore.NewWeighted(DefaultMaxTabs),
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// session returns the browser context, launching Chrome on first use.
func (b *Browser) session() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBrowserClosed
	}
	if b.browserCtx != nil {
		return b.browserCtx, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(b.identity.UserAgent),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}
	if b.proxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(b.proxyServer))
	}

	// The session outlives any single request, so it is rooted in Background.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %w", ErrBrowserUnavailable, err)
	}

	b.browserCtx = browserCtx
	b.allocCancel = allocCancel
	b.browserCancel = browserCancel
	b.logger.Debug("browser started", "headless", b.headless)
	return browserCtx, nil
}

// Render loads rawURL in a new tab and returns the serialized DOM once the
// network has settled. The status code and headers are those of the main
// document response.
//
// A page that does not settle within the render timeout yields a
// *RenderTimeoutError. Cancelling ctx aborts the render.
func (b *Browser) Render(ctx context.Context, rawURL string) (*Response, error) {
	browserCtx, err := b.session()
	if err != nil {
		return nil, err
	}

	if err := b.tabs.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer b.tabs.Release(1)

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	// Create the target before starting the clock so tab creation is not
	// charged to the page.
	if err := chromedp.Run(tabCtx); err != nil {
		return nil, fmt.Errorf("open tab for %s: %w", rawURL, err)
	}

	tracker := newIdleTracker(b.idleConnections, b.idleInterval, nil)
	doc := &documentResponse{}
	chromedp.ListenTarget(tabCtx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			// A redirect reuses the request ID of the hop it replaces.
			if e.RedirectResponse == nil {
				tracker.started(string(e.RequestID))
			}
			if e.Type == network.ResourceTypeDocument {
				doc.claim(string(e.RequestID))
			}
		case *network.EventResponseReceived:
			doc.record(string(e.RequestID), e.Response)
		case *network.EventLoadingFinished:
			tracker.finished(string(e.RequestID))
		case *network.EventLoadingFailed:
			tracker.finished(string(e.RequestID))
		}
	})

	timeoutCtx, cancelTimeout := context.WithTimeout(tabCtx, b.renderTimeout)
	defer cancelTimeout()

	var outerHTML string
	err = chromedp.Run(timeoutCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(toNetworkHeaders(b.identity.Headers())),
		chromedp.Navigate(rawURL),
		chromedp.ActionFunc(tracker.wait),
		chromedp.Evaluate(outerHTMLScript, &outerHTML),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &RenderTimeoutError{URL: rawURL, Timeout: b.renderTimeout}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("render %s: %w", rawURL, err)
	}

	status, header := doc.result()
	b.logger.Debug("rendered fetch", "url", rawURL, "status", status, "bytes", len(outerHTML))
	return &Response{
		URL:        rawURL,
		StatusCode: status,
		Header:     header,
		Body:       []byte(outerHTML),
	}, nil
}

// Close shuts the browser down. It is safe to call Close multiple times or
// on a Browser that never started.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.browserCtx == nil {
		return nil
	}

	// Cancelling the browser context closes Chrome gracefully; the allocator
	// cancel then waits for the process to exit and removes its profile dir.
	b.browserCancel()
	b.allocCancel()
	b.browserCtx = nil
	b.logger.Debug("browser closed")
	return nil
}

// Started reports whether the browser process has been launched.
func (b *Browser) Started() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.browserCtx != nil
}

// documentResponse captures the main document response of a tab.
type documentResponse struct {
	mu        sync.Mutex
	requestID string
	status    int
	header    http.Header
}

// claim marks the first document request as the main one.
func (d *documentResponse) claim(requestID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.requestID == "" {
		d.requestID = requestID
	}
}

// record stores the response if it belongs to the main document. Redirect
// hops reuse the ID, so the last response seen is the final document.
func (d *documentResponse) record(requestID string, resp *network.Response) {
	if resp == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if requestID != d.requestID {
		return
	}
	d.status = int(resp.Status)
	d.header = fromNetworkHeaders(resp.Headers)
}

func (d *documentResponse) result() (int, http.Header) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.header == nil {
		return d.status, http.Header{}
	}
	return d.status, d.header
}

// toNetworkHeaders converts a header map to the DevTools representation.
func toNetworkHeaders(h map[string]string) network.Headers {
	out := make(network.Headers, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// fromNetworkHeaders converts DevTools headers to http.Header.
// DevTools joins repeated headers with newlines.
func fromNetworkHeaders(h network.Headers) http.Header {
	out := make(http.Header, len(h))
	for k, v := range h {
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprint(v)
		}
		for _, line := range strings.Split(s, "\n") {
			out.Add(k, line)
		}
	}
	return out
}
