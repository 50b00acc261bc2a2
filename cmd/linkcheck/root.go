package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/linkcheck/internal/config"
	"github.com/nao1215/linkcheck/internal/report"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linkcheck.
// The root command itself runs a link check.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkcheck [url]",
		Short: "Check the links of a page or feed for SEO consistency",
		Long: `linkcheck collects every same-site link of a page (or every URL of an
RSS/Atom feed), requests each one and checks it for SEO consistency:

- HTTP status code and redirect target
- rel=canonical in the Link header, the static HTML and the rendered DOM
- <title> in the static HTML and the rendered DOM

Pages are rendered with a headless Chrome. Use --static-only to skip it.
The result is written as a report grouped by status code and opened in
the default viewer.

Examples:
  # Check a page
  linkcheck https://example.com/

  # Check every URL listed in a feed
  linkcheck https://example.com/feed/

  # Write a Markdown report without opening it
  linkcheck -u https://example.com/ --format markdown --no-open

  # Skip the browser
  linkcheck --static-only https://example.com/`,
		Version:       getVersion(),
		Args:          cobra.MaximumNArgs(1),
		RunE:          runCheckCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	// Target
	cmd.Flags().StringP("url", "u", "",
		"Page or feed URL to check (alternative to the positional argument)")

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each static request (0 disables it)")
	cmd.Flags().Duration("render-timeout", config.DefaultRenderTimeout,
		"Timeout for each rendered page")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of links verified at once (0 means no limit)")
	cmd.Flags().Int("max-tabs", config.DefaultMaxTabs,
		"Number of browser tabs rendering at once")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes")
	cmd.Flags().Bool("static-only", false,
		"Skip the headless browser (rendered checks are not applicable)")
	cmd.Flags().Bool("headless", true,
		"Run Chrome without a window")
	cmd.Flags().String("chrome-path", "",
		"Chrome or Chromium executable (default: searched in the usual locations)")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address for all requests (e.g., 127.0.0.1:1080)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().String("accept-language", config.DefaultAcceptLanguage,
		"Accept-Language header sent with every request")

	// Report flags
	cmd.Flags().StringP("format", "f", config.DefaultFormat,
		fmt.Sprintf("Report format %v", report.Formats()))
	cmd.Flags().StringP("output-dir", "o", ".",
		"Directory the report is written to")
	cmd.Flags().Bool("no-open", false,
		"Do not open the report after the check")
	cmd.Flags().Bool("no-save", false,
		"Do not store the run in the history database")

	// Configuration files
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkcheck in current, home or config directory)")
	cmd.Flags().String("env-file", config.DefaultEnvFile,
		"Dotenv file with LINKCHECK_* variables")

	// Add subcommands
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
// Interrupt signals cancel the running check.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
