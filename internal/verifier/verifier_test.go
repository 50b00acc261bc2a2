package verifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/linkcheck/internal/fetcher"
)

// fakeFetcher serves canned responses and counts concurrent calls.
type fakeFetcher struct {
	responses map[string]*fetcher.Response
	delay     time.Duration

	mu       sync.Mutex
	calls    []string
	active   atomic.Int32
	maxSeen  atomic.Int32
	failURLs map[string]bool
}

func (f *fakeFetcher) Fetch(_ context.Context, u string) (*fetcher.Response, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.calls = append(f.calls, u)
	f.mu.Unlock()

	if f.failURLs[u] {
		return nil, &fetcher.NetworkError{URL: u, Err: errors.New("connection refused")}
	}
	resp, ok := f.responses[u]
	if !ok {
		return &fetcher.Response{URL: u, StatusCode: http.StatusNotFound, Header: http.Header{}}, nil
	}
	return resp, nil
}

// fakeRenderer returns a fixed DOM per URL.
type fakeRenderer struct {
	bodies map[string]string
	err    error
	calls  atomic.Int32
}

func (r *fakeRenderer) Render(_ context.Context, u string) (*fetcher.Response, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return &fetcher.Response{URL: u, StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte(r.bodies[u])}, nil
}

func htmlResponse(u, body string, header http.Header) *fetcher.Response {
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "text/html; charset=utf-8")
	return &fetcher.Response{URL: u, StatusCode: http.StatusOK, Header: header, Body: []byte(body), Raw: []byte(body)}
}

func TestVerifierCheck(t *testing.T) {
	t.Parallel()

	t.Run("redirect record shape", func(t *testing.T) {
		t.Parallel()

		u := "https://example.com/old"
		f := &fakeFetcher{responses: map[string]*fetcher.Response{
			u: {URL: u, StatusCode: http.StatusMovedPermanently, Header: http.Header{
				"Location":     []string{"https://example.com/new"},
				"Content-Type": []string{"text/html"},
			}},
		}}
		r := &fakeRenderer{}
		record, err := New(f, r).Check(context.Background(), u)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.StatusCode != 301 || record.RedirectLocation != "https://example.com/new" {
			t.Errorf("unexpected record %+v", record)
		}
		if record.TitleStatic != "" || record.ContentType != "" || record.ContentDigest != "" {
			t.Errorf("redirect record carries 200-only fields: %+v", record)
		}
		if r.calls.Load() != 0 {
			t.Error("redirect was rendered")
		}
	})

	t.Run("html page gets the full record", func(t *testing.T) {
		t.Parallel()

		u := "https://example.com/"
		header := http.Header{"Link": []string{`<https://example.com/>; rel="canonical"`}}
		f := &fakeFetcher{responses: map[string]*fetcher.Response{
			u: htmlResponse(u, `<html><head><title>Static</title><link rel="canonical" href="https://example.com/"></head></html>`, header),
		}}
		r := &fakeRenderer{bodies: map[string]string{
			u: `<html><head><title>Rendered</title><link rel="canonical" href="https://example.com/r"></head></html>`,
		}}

		record, err := New(f, r).Check(context.Background(), u)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.CanonicalHeader != "https://example.com/" {
			t.Errorf("unexpected canonical header %q", record.CanonicalHeader)
		}
		if record.TitleStatic != "Static" || record.CanonicalStatic != "https://example.com/" {
			t.Errorf("unexpected static head data %+v", record)
		}
		if record.TitleRendered != "Rendered" || record.CanonicalRendered != "https://example.com/r" {
			t.Errorf("unexpected rendered head data %+v", record)
		}
		if record.ContentType != "text/html; charset=utf-8" {
			t.Errorf("unexpected content type %q", record.ContentType)
		}
		if len(record.ContentDigest) != 64 {
			t.Errorf("expected hex SHA3-256 digest, got %q", record.ContentDigest)
		}
		if record.RedirectLocation != "" {
			t.Errorf("unexpected redirect location %q", record.RedirectLocation)
		}
	})

	t.Run("non html page is not rendered", func(t *testing.T) {
		t.Parallel()

		u := "https://example.com/logo.png"
		f := &fakeFetcher{responses: map[string]*fetcher.Response{
			u: {URL: u, StatusCode: http.StatusOK, Header: http.Header{"Content-Type": []string{"image/png"}}, Raw: []byte{0x89}},
		}}
		r := &fakeRenderer{}
		record, err := New(f, r).Check(context.Background(), u)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.calls.Load() != 0 {
			t.Error("image was rendered")
		}
		if record.ContentType != "image/png" {
			t.Errorf("unexpected content type %q", record.ContentType)
		}
	})

	t.Run("render failure leaves rendered fields empty", func(t *testing.T) {
		t.Parallel()

		u := "https://example.com/slow"
		f := &fakeFetcher{responses: map[string]*fetcher.Response{
			u: htmlResponse(u, `<html><head><title>Slow</title></head></html>`, nil),
		}}
		r := &fakeRenderer{err: &fetcher.RenderTimeoutError{URL: u, Timeout: time.Minute}}
		record, err := New(f, r).Check(context.Background(), u)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.TitleStatic != "Slow" || record.TitleRendered != "" {
			t.Errorf("unexpected record %+v", record)
		}
	})

	t.Run("other statuses keep status and canonical header", func(t *testing.T) {
		t.Parallel()

		u := "https://example.com/gone"
		f := &fakeFetcher{responses: map[string]*fetcher.Response{
			u: {URL: u, StatusCode: http.StatusGone, Header: http.Header{
				"Link":     []string{`<https://example.com/>; rel="canonical"`},
				"Location": []string{"https://example.com/ignored"},
			}},
		}}
		record, err := New(f, nil).Check(context.Background(), u)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.StatusCode != 410 || record.CanonicalHeader != "https://example.com/" || record.RedirectLocation != "" {
			t.Errorf("unexpected record %+v", record)
		}
	})
}

func TestVerifierVerify(t *testing.T) {
	t.Parallel()

	t.Run("failures are isolated", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{
			responses: map[string]*fetcher.Response{
				"https://example.com/a": htmlResponse("https://example.com/a", "<title>A</title>", nil),
			},
			failURLs: map[string]bool{"https://example.com/down": true},
		}
		table := New(f, nil).Verify(context.Background(), "example.com", []string{
			"https://example.com/a",
			"https://example.com/down",
			"https://example.com/missing",
		})
		if table.Len() != 2 {
			t.Fatalf("expected 2 records, got %d", table.Len())
		}
		if _, ok := table.Get("https://example.com/down"); ok {
			t.Error("failed URL has a record")
		}
		if r, ok := table.Get("https://example.com/missing"); !ok || r.StatusCode != 404 {
			t.Errorf("unexpected record for missing page: %+v", r)
		}
	})

	t.Run("dispatch filter", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{}
		New(f, nil).Verify(context.Background(), "example.com", []string{
			"https://example.com/a",
			"https://other.net/b",
			"ftp://example.com/c",
		})
		if len(f.calls) != 1 || f.calls[0] != "https://example.com/a" {
			t.Errorf("unexpected dispatched URLs %v", f.calls)
		}
	})

	t.Run("host match ignores case", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{}
		table := New(f, nil, WithConcurrency(1)).Verify(context.Background(), "Example.com", []string{
			"https://Example.com/",
			"https://example.com/about",
		})
		if table.Len() != 2 {
			t.Errorf("expected both URLs dispatched, got %v", f.calls)
		}
	})

	t.Run("concurrency is bounded", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{delay: 20 * time.Millisecond}
		frontier := make([]string, 20)
		for i := range frontier {
			frontier[i] = fmt.Sprintf("https://example.com/%d", i)
		}
		table := New(f, nil, WithConcurrency(3)).Verify(context.Background(), "example.com", frontier)
		if table.Len() != 20 {
			t.Errorf("expected 20 records, got %d", table.Len())
		}
		if got := f.maxSeen.Load(); got > 3 {
			t.Errorf("expected at most 3 concurrent fetches, saw %d", got)
		}
	})

	t.Run("zero means unbounded", func(t *testing.T) {
		t.Parallel()

		f := &fakeFetcher{delay: 50 * time.Millisecond}
		frontier := make([]string, 15)
		for i := range frontier {
			frontier[i] = fmt.Sprintf("https://example.com/%d", i)
		}
		New(f, nil, WithConcurrency(0)).Verify(context.Background(), "example.com", frontier)
		if got := f.maxSeen.Load(); got <= DefaultConcurrency {
			t.Errorf("expected more than %d concurrent fetches, saw %d", DefaultConcurrency, got)
		}
	})

	t.Run("cancelled context dispatches nothing", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		f := &fakeFetcher{}
		table := New(f, nil).Verify(ctx, "example.com", []string{"https://example.com/a"})
		if table.Len() != 0 || len(f.calls) != 0 {
			t.Errorf("expected no work after cancellation, got %d records", table.Len())
		}
	})
}
