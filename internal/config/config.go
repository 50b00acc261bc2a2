package config

import (
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"

	"github.com/nao1215/linkcheck/internal/fetcher"
	"github.com/nao1215/linkcheck/internal/verifier"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "linkcheck"

	// DefaultTimeout bounds each static fetch. 0 disables the bound.
	DefaultTimeout = fetcher.DefaultTimeout

	// DefaultRenderTimeout bounds each rendered fetch, including the wait for
	// the network to go idle.
	DefaultRenderTimeout = fetcher.DefaultRenderTimeout

	// DefaultConcurrency is the number of URLs verified at once.
	DefaultConcurrency = verifier.DefaultConcurrency

	// DefaultMaxTabs is the number of browser tabs open at once.
	DefaultMaxTabs = fetcher.DefaultMaxTabs

	// DefaultMaxBodySize limits the maximum response body size to read.
	DefaultMaxBodySize = fetcher.DefaultMaxBodySize

	// DefaultUserAgent is sent by both the static and the rendered fetcher.
	DefaultUserAgent = fetcher.DefaultUserAgent

	// DefaultAcceptLanguage is sent by both the static and the rendered fetcher.
	DefaultAcceptLanguage = fetcher.DefaultAcceptLanguage

	// DefaultFormat is the default report format.
	DefaultFormat = "html"
)

// Config holds all configuration options for a link check.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// SeedURL is the page or feed the check starts from.
	SeedURL string

	// Timeout bounds each static fetch. 0 disables the bound.
	Timeout time.Duration

	// RenderTimeout bounds each rendered fetch.
	RenderTimeout time.Duration

	// Concurrency is the number of URLs verified at once. 0 means no limit.
	Concurrency int

	// MaxTabs is the number of browser tabs rendering at once.
	MaxTabs int

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// StaticOnly skips the headless browser entirely. Rendered fields stay
	// empty and the checks comparing them are not applicable.
	StaticOnly bool

	// Headless runs Chrome without a window. Disable it to watch renders.
	Headless bool

	// ChromePath is the Chrome or Chromium executable. Empty means the
	// browser is looked up in the usual locations.
	ChromePath string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format used by
	// both fetchers.
	ProxyAddress string

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// AcceptLanguage is the Accept-Language header sent with every request.
	AcceptLanguage string

	// Format is the report format name (html, markdown or json).
	Format string

	// OutputDir is the directory the report is written to.
	OutputDir string

	// NoOpen disables opening the report after the check.
	NoOpen bool

	// NoSave disables storing the run in the history database.
	NoSave bool

	// DBDir is the directory holding the history database.
	// Defaults to XDG data directory (~/.local/share/linkcheck on Linux).
	DBDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogJSON selects JSON log output instead of text.
	LogJSON bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the usual locations.
	ConfigFilePath string

	// EnvFile is the path of an optional dotenv file with LINKCHECK_*
	// variables.
	EnvFile string

	// SiteConfigs holds site-specific configurations loaded from the config file.
	SiteConfigs *File
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, the
// user agent). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:        DefaultTimeout,
		RenderTimeout:  DefaultRenderTimeout,
		Concurrency:    DefaultConcurrency,
		MaxTabs:        DefaultMaxTabs,
		MaxBodySize:    DefaultMaxBodySize,
		Headless:       true,
		UserAgent:      DefaultUserAgent,
		AcceptLanguage: DefaultAcceptLanguage,
		Format:         DefaultFormat,
		OutputDir:      ".",
		DBDir:          XDGDataDir(),
		EnvFile:        DefaultEnvFile,
	}
}

// XDGDataDir returns the XDG data directory for linkcheck.
// On Linux: ~/.local/share/linkcheck
// On macOS: ~/Library/Application Support/linkcheck
// On Windows: %LOCALAPPDATA%\linkcheck
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for linkcheck.
// On Linux: ~/.config/linkcheck
// On macOS: ~/Library/Application Support/linkcheck
// On Windows: %APPDATA%\linkcheck
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any fetching begins.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeed
	}

	// 0 disables the static timeout, as a deliberately unbounded fetch
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	if c.RenderTimeout <= 0 {
		return ErrInvalidRenderTimeout
	}

	// 0 means unbounded verification
	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxTabs <= 0 {
		return ErrInvalidMaxTabs
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if err := ValidateAcceptLanguage(c.AcceptLanguage); err != nil {
		return err
	}

	if c.ProxyAddress != "" && !isValidHostPort(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}

	return nil
}

// ValidateAcceptLanguage checks that value is a parseable Accept-Language
// header with at least one language tag.
func ValidateAcceptLanguage(value string) error {
	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return ErrInvalidAcceptLanguage
	}
	return nil
}

// isValidHostPort reports whether address is "host:port" with a valid port.
func isValidHostPort(address string) bool {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	port, err := strconv.Atoi(portStr)
	return err == nil && port > 0 && port <= 65535
}

// Site returns the effective site configuration for host.
// Values set by flags or the environment win over the config file; the
// file only fills user agent and accept language when they were left at
// their defaults.
func (c *Config) Site(host string) SiteConfig {
	var site SiteConfig
	if c.SiteConfigs != nil {
		site = c.SiteConfigs.GetSiteConfig(host)
	}

	if site.UserAgent == "" || c.UserAgent != DefaultUserAgent {
		site.UserAgent = c.UserAgent
	}
	if site.AcceptLanguage == "" || c.AcceptLanguage != DefaultAcceptLanguage {
		site.AcceptLanguage = c.AcceptLanguage
	}
	return site
}
