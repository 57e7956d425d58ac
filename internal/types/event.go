package types

import "time"

// Event is an immutable, timestamped payload carrier. The engines and
// handlers react to events; events themselves carry no behavior.
type Event struct {
	// Time is the point in time the event describes (e.g. bar close time).
	Time time.Time
	// Payload is the opaque event payload (e.g. MarketData for a bar event).
	Payload any
}
