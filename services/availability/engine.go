// Package availability computes bookable slots from remote busy intervals,
// business-hours windows, safety buffers, and the requested duration.
package availability

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"slotgate/config"
	"slotgate/models"
	"slotgate/services/calendar"
	"slotgate/services/identity"
	"slotgate/utils"
)

// Request selects a resource (explicit calendar reference or a name to
// resolve) and the slot parameters for one availability computation.
type Request struct {
	From        time.Time
	To          time.Time
	DurationMin int
	BufferMin   int
	CalendarRef string
	Name        string
}

// Engine is the availability computation service.
type Engine struct {
	Calendar calendar.Client
	Resolver *identity.Resolver
	Catalog  *config.Catalog
	Cache    *utils.Cache
	Now      func() time.Time
	Logger   *zap.Logger
}

// NewEngine wires an engine with its collaborators.
func NewEngine(cal calendar.Client, resolver *identity.Resolver, catalog *config.Catalog, cache *utils.Cache) *Engine {
	return &Engine{
		Calendar: cal,
		Resolver: resolver,
		Catalog:  catalog,
		Cache:    cache,
		Now:      time.Now,
		Logger:   utils.GetLogger(),
	}
}

// Slots computes the bookable slots for req. Results are memoized on the
// resolved calendar reference and the request parameters; a cache hit skips
// the remote fetch entirely.
func (e *Engine) Slots(ctx context.Context, req Request) (*models.AvailabilityResult, error) {
	if req.From.IsZero() || req.To.IsZero() {
		return nil, utils.Errf(utils.CodeMissingParam, "from and to are required")
	}
	if !req.From.Before(req.To) {
		return nil, utils.Errf(utils.CodeInvalidRange, "from must be before to")
	}
	if req.DurationMin <= 0 {
		return nil, utils.Errf(utils.CodeInvalidRange, "duration must be positive")
	}
	if req.BufferMin < 0 {
		return nil, utils.Errf(utils.CodeInvalidRange, "buffer must not be negative")
	}

	resource, err := e.Resolver.ResolveSelector(req.CalendarRef, req.Name)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("availability:%s:%d:%d:%d:%d",
		resource.CalendarRef, req.From.Unix(), req.To.Unix(), req.DurationMin, req.BufferMin)
	if e.Cache != nil {
		if cached, ok := e.Cache.Get(cacheKey); ok {
			if result, ok := cached.(*models.AvailabilityResult); ok {
				return result, nil
			}
		}
	}

	busy, err := e.Calendar.ListBusy(ctx, resource.CalendarRef, req.From, req.To)
	if err != nil {
		return nil, err
	}

	hours := e.Catalog.HoursFor(resource.ID)
	openMin, closeMin, err := hours.Window()
	if err != nil {
		return nil, utils.WrapErr(utils.CodeInternal, err, "invalid business-hours configuration")
	}

	loc := e.Catalog.Location()
	from := req.From.In(loc)
	to := req.To.In(loc)
	now := e.Now().In(loc)
	duration := time.Duration(req.DurationMin) * time.Minute
	buffer := time.Duration(req.BufferMin) * time.Minute

	var slots []models.Slot
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	for day.Before(to) {
		if hours.OpenOn(day.Weekday()) {
			winStart := time.Date(day.Year(), day.Month(), day.Day(), openMin/60, openMin%60, 0, 0, loc)
			winEnd := time.Date(day.Year(), day.Month(), day.Day(), closeMin/60, closeMin%60, 0, 0, loc)
			if winStart.Before(from) {
				winStart = from
			}
			if winEnd.After(to) {
				winEnd = to
			}
			if winStart.Before(winEnd) {
				merged := MergeIntervals(clipExpand(busy, winStart, winEnd, buffer))
				for _, gap := range freeGaps(merged, winStart, winEnd) {
					slots = append(slots, slotsInGap(gap.Start, gap.End, duration, now)...)
				}
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	result := &models.AvailabilityResult{
		Resource:    models.ResolvedResource{ID: resource.ID, DisplayName: resource.DisplayName},
		Slots:       slots,
		Hours:       hours,
		DurationMin: req.DurationMin,
		BufferMin:   req.BufferMin,
	}
	if e.Cache != nil {
		e.Cache.SetDefault(cacheKey, result)
	}

	e.Logger.Debug("computed availability",
		zap.String("calendarRef", resource.CalendarRef),
		zap.Int("busyIntervals", len(busy)),
		zap.Int("slots", len(slots)))
	return result, nil
}
