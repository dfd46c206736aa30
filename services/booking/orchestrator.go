// Package booking validates booking requests, resolves the target resource,
// and delegates mutations to the remote calendar collaborator with
// at-most-one remote mutation per idempotency key.
package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"slotgate/config"
	"slotgate/models"
	"slotgate/services/calendar"
	"slotgate/services/identity"
	"slotgate/utils"
)

const createKeyPrefix = "calendar:create:"

// CreateRequest describes one appointment to create. The target time is
// either an absolute When timestamp or a Date+Time pair interpreted in the
// configured timezone.
type CreateRequest struct {
	When           string
	Date           string
	Time           string
	DurationMin    int
	Description    string
	CalendarRef    string
	Name           string
	IdempotencyKey string
}

// CancelRequest identifies one appointment to cancel.
type CancelRequest struct {
	EventID     string
	CalendarRef string
	Name        string
}

// SearchRequest filters historical bookings by phone number or client
// identifier, optionally narrowed to one resource and a time range.
type SearchRequest struct {
	Phone       string
	ClientID    string
	From        time.Time
	To          time.Time
	CalendarRef string
	Name        string
}

// Orchestrator coordinates booking operations against the remote calendar.
type Orchestrator struct {
	Calendar calendar.Client
	Resolver *identity.Resolver
	Catalog  *config.Catalog
	Cache    *utils.Cache
	Config   *config.Config
	Now      func() time.Time
	Logger   *zap.Logger

	group singleflight.Group
}

// NewOrchestrator wires an orchestrator with its collaborators.
func NewOrchestrator(cal calendar.Client, resolver *identity.Resolver, catalog *config.Catalog, cache *utils.Cache, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		Calendar: cal,
		Resolver: resolver,
		Catalog:  catalog,
		Cache:    cache,
		Config:   cfg,
		Now:      time.Now,
		Logger:   utils.GetLogger(),
	}
}

// Create validates and creates one booking. With an idempotency key, repeated
// calls within the cache TTL return the first successful result without
// re-invoking the remote mutation; the check-execute-store sequence is
// serialized per key.
func (o *Orchestrator) Create(ctx context.Context, req CreateRequest) (*models.BookingRecord, error) {
	if req.IdempotencyKey == "" {
		return o.create(ctx, req)
	}

	// The cache lookup runs before any validation: a retry carrying a key
	// already bound to a booking must get that booking back even after the
	// booked time has passed.
	key := createKeyPrefix + req.IdempotencyKey
	v, err, _ := o.group.Do(key, func() (any, error) {
		if cached, ok := o.Cache.Get(key); ok {
			return cached, nil
		}
		record, err := o.create(ctx, req)
		if err != nil {
			return nil, err
		}
		o.Cache.SetDefault(key, record)
		return record, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.BookingRecord), nil
}

func (o *Orchestrator) create(ctx context.Context, req CreateRequest) (*models.BookingRecord, error) {
	start, err := o.parseWhen(req)
	if err != nil {
		return nil, err
	}
	if req.Description == "" {
		return nil, utils.Errf(utils.CodeMissingParam, "a booking description is required")
	}

	now := o.Now().In(o.Catalog.Location())
	if !start.After(now) {
		return nil, utils.Errf(utils.CodeInPast, "booking time %s is not in the future", start.Format(time.RFC3339))
	}

	resource, err := o.Resolver.ResolveSelector(req.CalendarRef, req.Name)
	if err != nil {
		return nil, err
	}

	durationMin := req.DurationMin
	if durationMin <= 0 {
		durationMin = o.Config.DefaultSlotMinutes
	}
	end := start.Add(time.Duration(durationMin) * time.Minute)

	return o.insert(ctx, resource, start, end, req.Description)
}

// parseWhen resolves the requested start time in the configured timezone.
func (o *Orchestrator) parseWhen(req CreateRequest) (time.Time, error) {
	loc := o.Catalog.Location()
	if req.When != "" {
		if t, err := time.Parse(time.RFC3339, req.When); err == nil {
			return t.In(loc), nil
		}
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", req.When, loc); err == nil {
			return t, nil
		}
		if t, err := time.ParseInLocation("2006-01-02 15:04", req.When, loc); err == nil {
			return t, nil
		}
		return time.Time{}, utils.Errf(utils.CodeInvalidWhen, "cannot parse booking time %q", req.When)
	}
	if req.Date != "" && req.Time != "" {
		t, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, loc)
		if err != nil {
			return time.Time{}, utils.Errf(utils.CodeInvalidWhen, "cannot parse booking date/time %q %q", req.Date, req.Time)
		}
		return t, nil
	}
	return time.Time{}, utils.Errf(utils.CodeMissingParam, "a booking time is required (when, or date and time)")
}

func (o *Orchestrator) insert(ctx context.Context, resource *models.ResourceIdentity, start, end time.Time, description string) (*models.BookingRecord, error) {
	eventID, err := o.Calendar.Insert(ctx, resource.CalendarRef, start, end, description, description)
	if err != nil {
		return nil, err
	}
	o.Logger.Info("created booking",
		zap.String("eventId", eventID),
		zap.String("calendarRef", resource.CalendarRef),
		zap.Time("start", start))
	return &models.BookingRecord{
		EventID:     eventID,
		ResourceID:  resource.ID,
		Resource:    resource.DisplayName,
		CalendarRef: resource.CalendarRef,
		Start:       start,
		End:         end,
		Description: description,
	}, nil
}

// Cancel deletes one booking on the remote calendar.
func (o *Orchestrator) Cancel(ctx context.Context, req CancelRequest) error {
	if req.EventID == "" {
		return utils.Errf(utils.CodeMissingParam, "eventId is required")
	}
	resource, err := o.Resolver.ResolveSelector(req.CalendarRef, req.Name)
	if err != nil {
		return err
	}
	if err := o.Calendar.Delete(ctx, resource.CalendarRef, req.EventID); err != nil {
		return err
	}
	o.Logger.Info("cancelled booking",
		zap.String("eventId", req.EventID),
		zap.String("calendarRef", resource.CalendarRef))
	return nil
}

// Search returns past and upcoming bookings whose location or description
// matches the phone number or client identifier, sorted ascending by start.
// A failure against any resource fails the whole search.
func (o *Orchestrator) Search(ctx context.Context, req SearchRequest) ([]models.CalendarEvent, error) {
	if req.Phone == "" && req.ClientID == "" {
		return nil, utils.Errf(utils.CodeMissingParam, "either phone or clientId is required")
	}

	from, to := req.From, req.To
	now := o.Now()
	if from.IsZero() {
		from = now.AddDate(0, 0, -30)
	}
	if to.IsZero() {
		to = now.AddDate(0, 0, 30)
	}
	if !from.Before(to) {
		return nil, utils.Errf(utils.CodeInvalidRange, "from must be before to")
	}

	var targets []models.ResourceIdentity
	if req.CalendarRef != "" || req.Name != "" {
		resource, err := o.Resolver.ResolveSelector(req.CalendarRef, req.Name)
		if err != nil {
			return nil, err
		}
		targets = []models.ResourceIdentity{*resource}
	} else {
		for _, r := range o.Catalog.Resources() {
			if r.CalendarRef != "" {
				targets = append(targets, r)
			}
		}
	}

	var results []models.CalendarEvent
	for _, target := range targets {
		events, err := o.Calendar.ListEvents(ctx, target.CalendarRef, from, to)
		if err != nil {
			return nil, fmt.Errorf("search failed for %s: %w", target.DisplayName, err)
		}
		for _, ev := range events {
			if eventMatches(ev, req.Phone, req.ClientID) {
				results = append(results, ev)
			}
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Start.Before(results[j].Start)
	})
	return results, nil
}

// eventMatches checks the event's location and description for a normalized
// occurrence of the phone number or client identifier.
func eventMatches(ev models.CalendarEvent, phone, clientID string) bool {
	haystacks := []string{ev.Location, ev.Description}
	if phone != "" {
		needle := digitsOnly(phone)
		if needle != "" {
			for _, h := range haystacks {
				if strings.Contains(digitsOnly(h), needle) {
					return true
				}
			}
		}
	}
	if clientID != "" {
		needle := identity.Normalize(clientID)
		for _, h := range haystacks {
			if strings.Contains(identity.Normalize(h), needle) {
				return true
			}
		}
	}
	return false
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
