// Package logging provides structured logging for espdash.
//
// This package wraps a zap logger with convenience functions for the
// logging patterns used by the device client, the refresh loop and the
// web dashboard.
//
// # Log Levels
//
//   - Debug: every device fetch, every swallowed poll failure after the first
//   - Info: dashboard start/stop, browser connections
//   - Warn: first failure of a polling streak, failed initial load
//   - Error: startup failures
//
// # Configuration
//
// Logging is silent unless a level is given with --log-level or the
// ESPDASH_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Output goes to stderr so it never interleaves with rendered dashboards
// written to stdout.
package logging
