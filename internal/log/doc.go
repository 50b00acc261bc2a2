// Package log builds the slog loggers used by linkcheck.
//
// Site configuration can carry credentials: a session cookie, an
// Authorization header, or a seed URL with basic auth userinfo. The
// loggers returned here wrap their handler in a RedactHandler so these
// values never reach the log output, not even in verbose mode.
//
//	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
//	logger.Debug("static fetcher configured", "cookie", site.Cookie)
//	// cookie=[redacted]
package log
