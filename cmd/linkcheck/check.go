package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/nao1215/linkcheck/internal/config"
	"github.com/nao1215/linkcheck/internal/database"
	"github.com/nao1215/linkcheck/internal/fetcher"
	"github.com/nao1215/linkcheck/internal/log"
	"github.com/nao1215/linkcheck/internal/model"
	"github.com/nao1215/linkcheck/internal/pipeline"
	"github.com/nao1215/linkcheck/internal/registry"
	"github.com/nao1215/linkcheck/internal/report"
	"github.com/nao1215/linkcheck/internal/verifier"
	"github.com/nao1215/linkcheck/internal/viewer"
	"github.com/spf13/cobra"
)

// errSeedConflict is returned when the URL is given twice with different values.
var errSeedConflict = errors.New("the URL was given both as argument and with --url")

// runCheckCmd executes a link check.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogJSON)
	slog.SetDefault(logger)

	return runCheck(cmd.Context(), cfg, logger, cmd.OutOrStdout())
}

// getBoolFlag retrieves a bool flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// buildConfig creates a Config from cobra command flags.
//
// Precedence, highest first: flags, LINKCHECK_* environment variables,
// the dotenv file, the site config file, built-in defaults.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	urlFlag, err := flags.GetString("url")
	if err != nil {
		return nil, err
	}
	switch {
	case len(args) > 0 && urlFlag != "" && args[0] != urlFlag:
		return nil, errSeedConflict
	case len(args) > 0:
		cfg.SeedURL = args[0]
	default:
		cfg.SeedURL = urlFlag
	}

	cfg.EnvFile, err = flags.GetString("env-file")
	if err != nil {
		return nil, err
	}
	if err := cfg.LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// Flags backed by environment variables only win when set explicitly.
	for name, field := range map[string]*string{
		"user-agent":      &cfg.UserAgent,
		"accept-language": &cfg.AcceptLanguage,
		"proxy":           &cfg.ProxyAddress,
		"chrome-path":     &cfg.ChromePath,
	} {
		if !flags.Changed(name) {
			continue
		}
		if *field, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.RenderTimeout, err = flags.GetDuration("render-timeout"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.MaxTabs, err = flags.GetInt("max-tabs"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.StaticOnly, err = flags.GetBool("static-only"); err != nil {
		return nil, err
	}
	if cfg.Headless, err = flags.GetBool("headless"); err != nil {
		return nil, err
	}
	if cfg.Format, err = flags.GetString("format"); err != nil {
		return nil, err
	}
	if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
		return nil, err
	}
	if cfg.NoOpen, err = flags.GetBool("no-open"); err != nil {
		return nil, err
	}
	if cfg.NoSave, err = flags.GetBool("no-save"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.LogJSON = getBoolFlag(cmd, "log-json")

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case explicitConfigPath:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	return cfg, nil
}

// setupLogger creates a structured logger that redacts credentials.
func setupLogger(w io.Writer, verbose, jsonOutput bool) *slog.Logger {
	if jsonOutput {
		return log.NewSecureJSONLogger(w, verbose)
	}
	return log.NewSecureLogger(w, verbose)
}

// runCheck checks the links of cfg.SeedURL, writes the report and prints
// a summary to out.
func runCheck(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	seed, err := registry.ParseSeed(cfg.SeedURL)
	if err != nil {
		return err
	}

	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	site := cfg.Site(seed.Hostname())
	identity := fetcher.Identity{
		UserAgent:      site.UserAgent,
		AcceptLanguage: site.AcceptLanguage,
	}

	static, err := newStaticFetcher(cfg, site, identity, logger)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// A nil *fetcher.Browser must not reach the pipeline as a non-nil interface.
	var renderer verifier.Renderer
	if !cfg.StaticOnly {
		browser := newBrowser(cfg, identity, logger)
		defer func() {
			if err := browser.Close(); err != nil {
				logger.Warn("failed to close browser", "error", err)
			}
		}()
		renderer = browser
	}

	logger.Info("starting check",
		"seed", cfg.SeedURL,
		"staticOnly", cfg.StaticOnly,
		"concurrency", cfg.Concurrency,
		"format", format,
	)

	p := pipeline.DefaultPipeline(static, renderer,
		[]pipeline.Option{pipeline.WithContinueOnError(false)},
		pipeline.WithPipelineIgnorePatterns(site.IgnorePatterns),
		pipeline.WithPipelineConcurrency(cfg.Concurrency),
		pipeline.WithPipelineLogger(logger),
	)

	run := model.NewRun(cfg.SeedURL)

	fmt.Fprintf(out, "Checking %s...\n", cfg.SeedURL)
	if err := p.Execute(ctx, run); err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	fmt.Fprintf(out, "Check completed in %s\n\n", run.Duration().Round(time.Millisecond))

	rep := report.NewReport(run, getVersion())

	if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	reportPath, err := report.WriteFile(cfg.OutputDir, rep, format)
	if err != nil {
		return err
	}
	logger.Info("report written", "path", reportPath)

	if !cfg.NoSave {
		if err := saveRun(ctx, cfg.DBDir, run, logger); err != nil {
			logger.Error("failed to save run", "seed", cfg.SeedURL, "error", err)
		}
	}

	if !cfg.NoOpen {
		// Failure is logged by the viewer and never fails the check.
		_ = viewer.New(viewer.WithLogger(logger)).Open(reportPath) //nolint:errcheck
	}

	summary := report.NewSimpleWriter(out,
		report.WithVerbose(cfg.Verbose),
		report.WithReportPath(reportPath),
	)
	if _, err := summary.Write(rep); err != nil {
		return fmt.Errorf("failed to print summary: %w", err)
	}
	return nil
}

// newStaticFetcher builds the raw HTML fetcher for a site.
func newStaticFetcher(cfg *config.Config, site config.SiteConfig, identity fetcher.Identity, logger *slog.Logger) (*fetcher.StaticFetcher, error) {
	opts := []fetcher.StaticOption{
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithIdentity(identity),
		fetcher.WithStaticLogger(logger),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, fetcher.WithProxy(cfg.ProxyAddress))
	}
	if site.Cookie != "" {
		opts = append(opts, fetcher.WithCookie(site.Cookie))
	}
	if len(site.Headers) > 0 {
		opts = append(opts, fetcher.WithHeaders(site.Headers))
	}
	// The secure logger redacts the cookie and credential headers.
	logger.Debug("static fetcher configured",
		"proxy", cfg.ProxyAddress,
		"cookie", site.Cookie,
		headerGroup(site.Headers),
	)
	return fetcher.NewStaticFetcher(opts...)
}

// headerGroup logs custom headers as a group keyed by header name.
func headerGroup(h map[string]string) slog.Attr {
	attrs := make([]any, 0, len(h))
	for _, k := range slices.Sorted(maps.Keys(h)) {
		attrs = append(attrs, slog.String(k, h[k]))
	}
	return slog.Group("headers", attrs...)
}

// newBrowser builds the rendering session. Chrome starts on first use.
func newBrowser(cfg *config.Config, identity fetcher.Identity, logger *slog.Logger) *fetcher.Browser {
	opts := []fetcher.BrowserOption{
		fetcher.WithBrowserIdentity(identity),
		fetcher.WithHeadless(cfg.Headless),
		fetcher.WithRenderTimeout(cfg.RenderTimeout),
		fetcher.WithMaxTabs(cfg.MaxTabs),
		fetcher.WithBrowserLogger(logger),
	}
	if cfg.ChromePath != "" {
		opts = append(opts, fetcher.WithExecPath(cfg.ChromePath))
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, fetcher.WithProxyServer("socks5://"+cfg.ProxyAddress))
	}
	return fetcher.NewBrowser(opts...)
}

// saveRun stores a finished run in the history database.
func saveRun(ctx context.Context, dbDir string, run *model.Run, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	logger.Info("run saved to database", "seed", run.SeedURL, "id", id)
	return nil
}
