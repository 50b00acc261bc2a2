package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/linkcheck/internal/analyzer"
	"github.com/nao1215/linkcheck/internal/extractor"
	"github.com/nao1215/linkcheck/internal/model"
	"github.com/nao1215/linkcheck/internal/ranker"
	"github.com/nao1215/linkcheck/internal/registry"
	"github.com/nao1215/linkcheck/internal/verifier"
)

// DiscoverStep collects link candidates from the seed.
//
// Feed seeds (by URL, or by the content type of the seed response) use the
// feed policy on the static body only. Page seeds use the markup policy on
// both the static body and the rendered DOM.
//
// Design decision: Failing to fetch or render the seed is not fatal. The
// frontier still contains the seed itself, so the run reports the seed's
// status instead of aborting with nothing to show.
type DiscoverStep struct {
	static   verifier.Fetcher
	renderer verifier.Renderer
	logger   *slog.Logger
}

// DiscoverStepOption configures a DiscoverStep.
type DiscoverStepOption func(*DiscoverStep)

// WithDiscoverLogger sets a custom logger for the discover step.
func WithDiscoverLogger(logger *slog.Logger) DiscoverStepOption {
	return func(s *DiscoverStep) {
		s.logger = logger
	}
}

// NewDiscoverStep creates a new discovery step. renderer may be nil to
// skip the rendered pass.
func NewDiscoverStep(static verifier.Fetcher, renderer verifier.Renderer, opts ...DiscoverStepOption) *DiscoverStep {
	s := &DiscoverStep{
		static:   static,
		renderer: renderer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *DiscoverStep) Name() string {
	return "discover"
}

// Do executes the discovery step.
func (s *DiscoverStep) Do(ctx context.Context, run *model.Run) error {
	seed, err := registry.ParseSeed(run.SeedURL)
	if err != nil {
		return err
	}
	run.SeedHost = strings.ToLower(seed.Hostname())

	if extractor.IsFeed(run.SeedURL, "") {
		run.IsFeed = true
	}

	resp, err := s.static.Fetch(ctx, run.SeedURL)
	if err != nil {
		s.logger.Warn("seed fetch failed", "url", run.SeedURL, "error", err)
		return nil
	}

	if run.IsFeed || extractor.IsFeedContentType(resp.ContentType()) {
		run.IsFeed = true
		run.Candidates = extractor.FeedLinks(resp.Body)
		s.logger.Info("feed links collected", "url", run.SeedURL, "links", len(run.Candidates))
		return nil
	}

	staticLinks := extractor.Links(resp.Body)
	run.Candidates = append(run.Candidates, staticLinks...)

	var renderedLinks []string
	if s.renderer != nil {
		rendered, err := s.renderer.Render(ctx, run.SeedURL)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			s.logger.Warn("seed render failed", "url", run.SeedURL, "error", err)
		} else {
			renderedLinks = extractor.Links(rendered.Body)
			run.Candidates = append(run.Candidates, renderedLinks...)
		}
	}

	s.logger.Info("page links collected",
		"url", run.SeedURL,
		"static", len(staticLinks),
		"rendered", len(renderedLinks),
	)
	return nil
}

// FrontierStep turns the candidates into the frontier.
type FrontierStep struct {
	registry *registry.Registry
}

// NewFrontierStep creates a new frontier step.
func NewFrontierStep(r *registry.Registry) *FrontierStep {
	return &FrontierStep{registry: r}
}

// Name returns the step name.
func (s *FrontierStep) Name() string {
	return "frontier"
}

// Do executes the frontier step.
func (s *FrontierStep) Do(_ context.Context, run *model.Run) error {
	var (
		frontier registry.Frontier
		err      error
	)
	if run.IsFeed {
		frontier, err = s.registry.BuildFeed(run.SeedURL, run.Candidates)
	} else {
		frontier, err = s.registry.Build(run.SeedURL, run.Candidates)
	}
	if err != nil {
		return fmt.Errorf("failed to build frontier: %w", err)
	}
	run.Frontier = frontier
	return nil
}

// VerifyStep checks every frontier URL.
type VerifyStep struct {
	verifier *verifier.Verifier
}

// NewVerifyStep creates a new verification step.
func NewVerifyStep(v *verifier.Verifier) *VerifyStep {
	return &VerifyStep{verifier: v}
}

// Name returns the step name.
func (s *VerifyStep) Name() string {
	return "verify"
}

// Do executes the verification step.
// A cancelled context keeps the partial table and is reported as an error.
func (s *VerifyStep) Do(ctx context.Context, run *model.Run) error {
	run.Table = s.verifier.Verify(ctx, run.SeedHost, run.Frontier)
	return ctx.Err()
}

// AnalyzeStep runs the consistency checks.
type AnalyzeStep struct {
	analyzer *analyzer.Analyzer
}

// NewAnalyzeStep creates a new analysis step.
func NewAnalyzeStep(a *analyzer.Analyzer) *AnalyzeStep {
	return &AnalyzeStep{analyzer: a}
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do executes the analysis step.
func (s *AnalyzeStep) Do(ctx context.Context, run *model.Run) error {
	diagnostics, err := s.analyzer.Analyze(ctx, run.Table)
	run.Diagnostics = diagnostics
	return err
}

// RankStep orders the results for presentation.
type RankStep struct{}

// NewRankStep creates a new ranking step.
func NewRankStep() *RankStep {
	return &RankStep{}
}

// Name returns the step name.
func (s *RankStep) Name() string {
	return "rank"
}

// Do executes the ranking step.
func (s *RankStep) Do(_ context.Context, run *model.Run) error {
	run.Ranked = ranker.Rank(run.Table)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// IgnorePatterns are URL path patterns excluded from the frontier.
	IgnorePatterns []string

	// Concurrency is the maximum number of URLs verified at once.
	// 0 means no limit.
	Concurrency int

	// Logger is passed to every component.
	Logger *slog.Logger
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineIgnorePatterns sets URL patterns excluded from the frontier.
func WithPipelineIgnorePatterns(patterns []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.IgnorePatterns = patterns
	}
}

// WithPipelineConcurrency sets the verification concurrency.
func WithPipelineConcurrency(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Concurrency = n
	}
}

// WithPipelineLogger sets the logger for every component.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline creates a pipeline with all default steps configured:
// discover, frontier, verify, analyze, rank.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts component config options (WithPipelineConcurrency, etc).
// renderer may be nil for a static-only check.
func DefaultPipeline(static verifier.Fetcher, renderer verifier.Renderer, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	cfg := &DefaultPipelineConfig{
		Concurrency: verifier.DefaultConcurrency,
		Logger:      slog.Default(),
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p := New(append([]Option{WithLogger(cfg.Logger)}, pipelineOpts...)...)
	p.AddSteps(
		NewDiscoverStep(static, renderer, WithDiscoverLogger(cfg.Logger)),
		NewFrontierStep(registry.New(
			registry.WithIgnorePatterns(cfg.IgnorePatterns),
			registry.WithLogger(cfg.Logger),
		)),
		NewVerifyStep(verifier.New(static, renderer,
			verifier.WithConcurrency(cfg.Concurrency),
			verifier.WithLogger(cfg.Logger),
		)),
		NewAnalyzeStep(analyzer.New(analyzer.WithLogger(cfg.Logger))),
		NewRankStep(),
	)
	return p
}
