package models

import "time"

// BusyInterval is a time range reported as occupied by the remote calendar.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CalendarEvent is the provider-independent view of a remote calendar event.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

// BookingRecord describes an appointment created through the orchestrator.
// It is never stored beyond the response (and the idempotency cache window).
type BookingRecord struct {
	EventID     string    `json:"eventId"`
	ResourceID  string    `json:"resourceId,omitempty"`
	Resource    string    `json:"resource,omitempty"`
	CalendarRef string    `json:"-"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description,omitempty"`
}
