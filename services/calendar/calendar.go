// Package calendar defines the contract with the remote calendar
// collaborator and its Google Calendar implementation.
package calendar

import (
	"context"
	"time"

	"slotgate/models"
)

// Client is the remote calendar collaborator contract consumed by the core.
// Implementations map their transport failures into the gateway's error
// taxonomy before returning.
type Client interface {
	// ListBusy returns the occupied time ranges on calendarRef within [from, to).
	ListBusy(ctx context.Context, calendarRef string, from, to time.Time) ([]models.BusyInterval, error)

	// Insert creates an event and returns its id.
	Insert(ctx context.Context, calendarRef string, start, end time.Time, summary, description string) (string, error)

	// Delete removes an event.
	Delete(ctx context.Context, calendarRef, eventID string) error

	// ListEvents returns the events on calendarRef within [from, to).
	ListEvents(ctx context.Context, calendarRef string, from, to time.Time) ([]models.CalendarEvent, error)
}
