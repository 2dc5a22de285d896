package license

import "time"

// Record asserts that a purchaser identifier is entitled to use the
// application. Exactly one record exists per identifier; re-issuing
// overwrites it.
type Record struct {
	Identifier    string    `json:"identifier"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	SourceEventID string    `json:"source_event_id"`
}
