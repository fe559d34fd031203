package health

import (
	"time"

	"carhire/models"
)

// Tracker is the per-source circuit breaker. The fan-out engine consults
// Allow before every dispatch and feeds Record after every adapter call.
type Tracker interface {
	// Allow reports whether the source may be called right now. An excluded
	// source is skipped entirely and treated as having contributed zero
	// offers.
	Allow(sourceID string) bool
	// Record accounts one completed adapter call: its latency and whether it
	// hard-failed.
	Record(sourceID string, latency time.Duration, callErr error)
	// Snapshot returns the current health state for a source.
	Snapshot(sourceID string) models.SourceHealth
	// Reset is the administrative escape hatch: clears backoff, counters and
	// the exclusion window immediately, recording who asked.
	Reset(sourceID, actor string)
}

// Policy holds the tunable escalation curve. The exact curve is policy, not
// protocol; values come from configuration.
type Policy struct {
	SlowCallThreshold time.Duration
	SlowRateTrip      float64
	WindowSize        int
	StrikeLimit       int
	BackoffBase       time.Duration
	BackoffCap        time.Duration
}
