// Package fetcher acquires pages in two modes.
//
// # Static mode
//
// StaticFetcher performs a plain HTTP GET and returns the first response as
// is: redirects are reported, not followed. Requests carry a fixed browser
// identity (User-Agent and Accept-Language) and may be routed through a
// SOCKS5 proxy.
//
// # Rendered mode
//
// Browser drives a headless Chrome session through chromedp. The session is
// started on the first Render call and shared by every later call; each call
// opens its own tab, waits for the network to go quiet and returns the
// serialized DOM. Close releases the session.
//
// # Usage
//
//	static, err := fetcher.NewStaticFetcher(fetcher.WithTimeout(30 * time.Second))
//	resp, err := static.Fetch(ctx, "https://example.com/")
//
//	browser := fetcher.NewBrowser()
//	defer browser.Close()
//	rendered, err := browser.Render(ctx, "https://example.com/")
//
// No retries are attempted in either mode. Transport failures surface as
// *NetworkError and render timeouts as *RenderTimeoutError.
package fetcher
