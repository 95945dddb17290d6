package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LinksCreated            uint64
	LinksDeleted            uint64
	Redirects               uint64
	RedirectDurationCount   uint64
	RedirectDurationTotalNs int64
	ClicksRecorded          uint64
	ClicksFailed            uint64
	GeoLookups              uint64
	GeoFallbacks            uint64
	UsersRegistered         uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	linksCreated            uint64
	linksDeleted            uint64
	redirects               uint64
	redirectDurationCount   uint64
	redirectDurationTotalNs int64
	clicksRecorded          uint64
	clicksFailed            uint64
	geoLookups              uint64
	geoFallbacks            uint64
	usersRegistered         uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		LinksCreated:            atomic.LoadUint64(&m.linksCreated),
		LinksDeleted:            atomic.LoadUint64(&m.linksDeleted),
		Redirects:               atomic.LoadUint64(&m.redirects),
		RedirectDurationCount:   atomic.LoadUint64(&m.redirectDurationCount),
		RedirectDurationTotalNs: atomic.LoadInt64(&m.redirectDurationTotalNs),
		ClicksRecorded:          atomic.LoadUint64(&m.clicksRecorded),
		ClicksFailed:            atomic.LoadUint64(&m.clicksFailed),
		GeoLookups:              atomic.LoadUint64(&m.geoLookups),
		GeoFallbacks:            atomic.LoadUint64(&m.geoFallbacks),
		UsersRegistered:         atomic.LoadUint64(&m.usersRegistered),
	}
}

// IncLinkCreated increments the link created counter.
func (m *InMemoryRecorder) IncLinkCreated() {
	atomic.AddUint64(&m.linksCreated, 1)
}

// IncLinkDeleted increments the link deleted counter.
func (m *InMemoryRecorder) IncLinkDeleted() {
	atomic.AddUint64(&m.linksDeleted, 1)
}

// IncRedirect increments the redirect counter.
func (m *InMemoryRecorder) IncRedirect() {
	atomic.AddUint64(&m.redirects, 1)
}

// ObserveRedirectDuration records redirect duration.
func (m *InMemoryRecorder) ObserveRedirectDuration(duration time.Duration) {
	atomic.AddUint64(&m.redirectDurationCount, 1)
	atomic.AddInt64(&m.redirectDurationTotalNs, duration.Nanoseconds())
}

// IncClickRecorded increments the click capture counters.
func (m *InMemoryRecorder) IncClickRecorded(status string) {
	if status == "success" {
		atomic.AddUint64(&m.clicksRecorded, 1)
		return
	}
	atomic.AddUint64(&m.clicksFailed, 1)
}

// IncGeoLookup increments the geolocation lookup counters.
func (m *InMemoryRecorder) IncGeoLookup(status string) {
	if status == "success" {
		atomic.AddUint64(&m.geoLookups, 1)
		return
	}
	atomic.AddUint64(&m.geoFallbacks, 1)
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}
