package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".linkcheck"

// DefaultEnvFile is the default dotenv file name.
const DefaultEnvFile = ".env"

// Environment variables overriding configuration values.
const (
	EnvUserAgent      = "LINKCHECK_USER_AGENT"
	EnvAcceptLanguage = "LINKCHECK_ACCEPT_LANGUAGE"
	EnvProxy          = "LINKCHECK_PROXY"
	EnvChromePath     = "LINKCHECK_CHROME_PATH"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads site configurations from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}

	for host, site := range cf.Sites {
		if site.AcceptLanguage != "" {
			if err := ValidateAcceptLanguage(site.AcceptLanguage); err != nil {
				return nil, fmt.Errorf("site %s: %w", host, err)
			}
		}
	}
	if cf.Defaults.AcceptLanguage != "" {
		if err := ValidateAcceptLanguage(cf.Defaults.AcceptLanguage); err != nil {
			return nil, fmt.Errorf("defaults: %w", err)
		}
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .linkcheck in the current directory
// 3. Look for .linkcheck in the user's home directory
// 4. Look for .linkcheck in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), DefaultConfigFile))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadEnv applies LINKCHECK_* overrides from the process environment and
// from the dotenv file c.EnvFile. Process variables win over the file.
// A missing dotenv file is not an error.
func (c *Config) LoadEnv() error {
	fileVars := make(map[string]string)
	if c.EnvFile != "" {
		vars, err := godotenv.Read(c.EnvFile)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("failed to read %s: %w", c.EnvFile, err)
		}
	}

	c.applyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	})
	return nil
}

// applyEnv sets every value whose variable lookup finds.
func (c *Config) applyEnv(lookup func(key string) (string, bool)) {
	for key, field := range map[string]*string{
		EnvUserAgent:      &c.UserAgent,
		EnvAcceptLanguage: &c.AcceptLanguage,
		EnvProxy:          &c.ProxyAddress,
		EnvChromePath:     &c.ChromePath,
	} {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}
}
