// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Link management metrics
	IncLinkCreated()
	IncLinkDeleted()

	// Redirect metrics
	IncRedirect()
	ObserveRedirectDuration(duration time.Duration)

	// Click capture metrics
	IncClickRecorded(status string) // status: "success" or "failed"
	IncGeoLookup(status string)     // status: "success" or "fallback"

	// Account metrics
	IncUserRegistered()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
