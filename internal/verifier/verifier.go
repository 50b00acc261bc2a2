package verifier

import (
	"context"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/linkcheck/internal/extractor"
	"github.com/nao1215/linkcheck/internal/fetcher"
	"github.com/nao1215/linkcheck/internal/model"
	"github.com/nao1215/linkcheck/internal/registry"
	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of URLs verified at the same time.
const DefaultConcurrency = 10

// Fetcher performs static fetches.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.Response, error)
}

// Renderer performs rendered fetches.
type Renderer interface {
	Render(ctx context.Context, url string) (*fetcher.Response, error)
}

// Verifier builds LinkRecords for frontier URLs.
type Verifier struct {
	static   Fetcher
	renderer Renderer

	// concurrency is the maximum number of URLs in flight. 0 means no limit.
	concurrency int

	logger *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithConcurrency sets the maximum number of concurrent verifications.
// 0 removes the limit; negative values are ignored.
func WithConcurrency(n int) Option {
	return func(v *Verifier) {
		if n >= 0 {
			v.concurrency = n
		}
	}
}

// WithLogger sets the logger for the verifier.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// New creates a Verifier. renderer may be nil, in which case rendered
// fields are never populated.
func New(static Fetcher, renderer Renderer, opts ...Option) *Verifier {
	v := &Verifier{
		static:      static,
		renderer:    renderer,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks every dispatchable frontier URL and returns the table of
// records. A URL is dispatched if it is a web URI containing seedHost.
//
// Design decision: We use errgroup.SetLimit rather than a hand-written
// worker pool because it gives the same bounded fan-out with far less code.
// Workers never return errors: a failed URL is logged and skipped, so the
// group only ever waits.
func (v *Verifier) Verify(ctx context.Context, seedHost string, frontier []string) *model.StatusTable {
	table := model.NewStatusTable()
	start := time.Now()

	var g errgroup.Group
	if v.concurrency > 0 {
		g.SetLimit(v.concurrency)
	}

	dispatched := 0
	for _, u := range frontier {
		if !dispatchable(u, seedHost) {
			v.logger.Debug("skipping URL outside seed host", "url", u)
			continue
		}
		if ctx.Err() != nil {
			break
		}
		dispatched++
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			record, err := v.Check(ctx, u)
			if err != nil {
				v.logger.Warn("link check failed", "url", u, "error", err)
				return nil
			}
			table.Set(u, record)
			v.logger.Debug("checked link", "url", u, "status", record.StatusCode)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	v.logger.Info("verification finished",
		"dispatched", dispatched,
		"recorded", table.Len(),
		"duration", time.Since(start),
	)
	return table
}

// dispatchable reports whether u should be verified for seedHost.
// The registry already restricts the frontier to the seed host, so this is
// a second, looser guard that never removes a registry-approved URL.
// Hosts are case-insensitive, so the match ignores case.
func dispatchable(u, seedHost string) bool {
	return registry.IsWebURI(u) && strings.Contains(strings.ToLower(u), strings.ToLower(seedHost))
}

// Check verifies a single URL. It returns an error only when the static
// fetch fails; a failed render leaves the rendered fields empty.
func (v *Verifier) Check(ctx context.Context, u string) (*model.LinkRecord, error) {
	resp, err := v.static.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	record := &model.LinkRecord{
		StatusCode:      resp.StatusCode,
		CanonicalHeader: extractor.CanonicalFromLinkHeader(resp.LinkHeaders()),
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		head := extractor.Head(resp.Body)
		record.ContentType = resp.ContentType()
		record.TitleStatic = head.Title
		record.CanonicalStatic = head.Canonical
		record.ContentDigest = digest(resp.Raw)

		if resp.IsHTML() && v.renderer != nil {
			v.render(ctx, u, record)
		}
	case resp.IsRedirect():
		record.RedirectLocation = resp.Location()
	}
	return record, nil
}

// render fills the rendered head data of record.
func (v *Verifier) render(ctx context.Context, u string, record *model.LinkRecord) {
	rendered, err := v.renderer.Render(ctx, u)
	if err != nil {
		v.logger.Warn("render failed", "url", u, "error", err)
		return
	}
	head := extractor.Head(rendered.Body)
	record.TitleRendered = head.Title
	record.CanonicalRendered = head.Canonical
}

// digest returns the hex SHA3-256 of body.
func digest(body []byte) string {
	sum := sha3.Sum256(body)
	return hex.EncodeToString(sum[:])
}
