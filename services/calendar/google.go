package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"slotgate/models"
	"slotgate/utils"
)

// GoogleClient wraps the Google Calendar service.
type GoogleClient struct {
	svc *gcal.Service
}

// NewGoogleClient creates a Google Calendar client authenticated with the
// service-account credentials file.
func NewGoogleClient(ctx context.Context, credentialsFile string) (*GoogleClient, error) {
	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &GoogleClient{svc: svc}, nil
}

// ListBusy queries the free/busy state of calendarRef within [from, to).
func (c *GoogleClient) ListBusy(ctx context.Context, calendarRef string, from, to time.Time) ([]models.BusyInterval, error) {
	resp, err := c.svc.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: calendarRef}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapGoogleError(err, "failed to query busy intervals")
	}

	cal, ok := resp.Calendars[calendarRef]
	if !ok {
		return nil, utils.Errf(utils.CodeNotFound, "calendar %q not found in free/busy response", calendarRef)
	}
	busy := make([]models.BusyInterval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, utils.WrapErr(utils.CodeInternal, err, "unparsable busy interval start")
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, utils.WrapErr(utils.CodeInternal, err, "unparsable busy interval end")
		}
		busy = append(busy, models.BusyInterval{Start: start, End: end})
	}
	return busy, nil
}

// Insert creates an event on calendarRef and returns its id.
func (c *GoogleClient) Insert(ctx context.Context, calendarRef string, start, end time.Time, summary, description string) (string, error) {
	event, err := c.svc.Events.Insert(calendarRef, &gcal.Event{
		Summary:     summary,
		Description: description,
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}).Context(ctx).Do()
	if err != nil {
		return "", mapGoogleError(err, "failed to create event")
	}
	return event.Id, nil
}

// Delete removes an event from calendarRef.
func (c *GoogleClient) Delete(ctx context.Context, calendarRef, eventID string) error {
	if err := c.svc.Events.Delete(calendarRef, eventID).Context(ctx).Do(); err != nil {
		return mapGoogleError(err, "failed to delete event")
	}
	return nil
}

// ListEvents returns the events on calendarRef within [from, to), sorted by
// start time.
func (c *GoogleClient) ListEvents(ctx context.Context, calendarRef string, from, to time.Time) ([]models.CalendarEvent, error) {
	resp, err := c.svc.Events.List(calendarRef).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).Do()
	if err != nil {
		return nil, mapGoogleError(err, "failed to list events")
	}

	events := make([]models.CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, models.CalendarEvent{
			ID:          item.Id,
			Summary:     item.Summary,
			Description: item.Description,
			Location:    item.Location,
			Start:       parseEventTime(item.Start),
			End:         parseEventTime(item.End),
		})
	}
	return events, nil
}

func parseEventTime(edt *gcal.EventDateTime) time.Time {
	if edt == nil {
		return time.Time{}
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t
		}
	}
	// All-day events carry only a date.
	if t, err := time.Parse("2006-01-02", edt.Date); err == nil {
		return t
	}
	return time.Time{}
}

// mapGoogleError translates a transport status into the error taxonomy.
func mapGoogleError(err error, message string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound, http.StatusGone:
			return utils.WrapErr(utils.CodeEventNotFound, err, message)
		case http.StatusForbidden:
			return utils.WrapErr(utils.CodeForbidden, err, message)
		}
	}
	return utils.WrapErr(utils.CodeInternal, err, message)
}
