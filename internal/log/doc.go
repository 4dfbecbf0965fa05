// Package log builds slog loggers that keep credentials out of the output.
//
// SecureHandler masks:
//   - attributes whose key names a credential (cookie, authorization, token)
//   - values that look like credentials (bearer and basic auth, JWTs, keys)
//   - passwords and signature parameters inside logged URLs
//   - sensitive entries of logged header maps
//
// Masking also applies in verbose mode, so a debug log can be shared.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
