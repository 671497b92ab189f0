// Package constants defines timeout values and limits used throughout the
// application.
package constants

import "time"

// Timeouts.
const (
	// Budget for one whole aggregation pass (catalog, detail or stream).
	RequestTimeout = 30 * time.Second

	// Per-upstream budget within a fan-out.
	ProviderTimeout = 10 * time.Second

	// Budget for a manifest fetch during addon installation.
	InstallTimeout = 15 * time.Second
)

// Fan-out limits.
const (
	// Upper bound on concurrent upstream requests in one fan-out.
	FanOutConcurrency = 8

	// Image enhancement runs in batches of this size with a pause in
	// between, to stay under the metadata provider's rate limits.
	EnhanceBatchSize  = 3
	EnhanceBatchDelay = 250 * time.Millisecond
)

// Memory cache defaults.
const (
	DefaultCacheSize = 5000
	DefaultCacheTTL  = 24 * time.Hour
)

// Install retry policy. Installation happens once, on explicit user action,
// so it is exempt from the one-attempt-per-cycle rule applied to fan-outs.
const (
	InstallRetryAttempts = 3
	InstallRetryDelay    = 500 * time.Millisecond
)
