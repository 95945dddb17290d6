package model

import "time"

// ClickEvent represents a single recorded resolution of a short code.
// Events are immutable and embedded in their parent Link; they are never
// addressable on their own.
type ClickEvent struct {
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`

	// Source address
	IP string `json:"ip" bson:"ip"`

	// Best-effort geolocation. "Unknown" when the lookup fails or the
	// address is private.
	City    string `json:"city" bson:"city"`
	Region  string `json:"region" bson:"region"`
	Country string `json:"country" bson:"country"`

	// User-agent derived fields
	Browser string `json:"browser,omitempty" bson:"browser,omitempty"`
	OS      string `json:"os,omitempty" bson:"os,omitempty"`
	Device  string `json:"device,omitempty" bson:"device,omitempty"`

	// Referer header (sanitized, truncated)
	Referrer string `json:"referrer,omitempty" bson:"referrer,omitempty"`
}
