// Package log provides slog loggers that sanitize sensitive values.
//
// The SecureHandler masks:
//   - HTTP credentials (Authorization, Cookie, Set-Cookie, API keys)
//   - Values that look like secrets (JWTs, bearer tokens, AWS keys)
//   - Contact data extracted from crawled pages: attributes named
//     email/phone are masked, and addresses inside free text keep only
//     their domain
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("contact extracted", "url", page, "emails", emails)
//	slog.SetDefault(logger)
package log
