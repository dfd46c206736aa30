package models

import "time"

// Slot is a candidate bookable interval of exactly the requested duration.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AvailabilityResult carries the generated slots plus the effective policy
// that produced them, for caller transparency.
type AvailabilityResult struct {
	Resource    ResolvedResource `json:"resource"`
	Slots       []Slot           `json:"slots"`
	Hours       BusinessHours    `json:"businessHours"`
	DurationMin int              `json:"durationMinutes"`
	BufferMin   int              `json:"bufferMinutes"`
}
