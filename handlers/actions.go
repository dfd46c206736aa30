package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"slotgate/services/availability"
	"slotgate/services/booking"
)

func (g *Gateway) availabilityAction(ctx context.Context, params map[string]any) (any, error) {
	loc := g.Catalog.Location()
	from, err := requiredTime(params, "from", loc)
	if err != nil {
		return nil, err
	}
	to, err := requiredTime(params, "to", loc)
	if err != nil {
		return nil, err
	}
	durationMin, err := intParam(params, "durationMinutes", g.Config.DefaultSlotMinutes)
	if err != nil {
		return nil, err
	}
	bufferMin, err := intParam(params, "bufferMinutes", 0)
	if err != nil {
		return nil, err
	}
	return g.Engine.Slots(ctx, availability.Request{
		From:        from,
		To:          to,
		DurationMin: durationMin,
		BufferMin:   bufferMin,
		CalendarRef: stringParam(params, "calendarRef"),
		Name:        stringParam(params, "staff"),
	})
}

func (g *Gateway) createAction(ctx context.Context, params map[string]any) (any, error) {
	durationMin, err := intParam(params, "durationMinutes", 0)
	if err != nil {
		return nil, err
	}
	return g.Orchestrator.Create(ctx, booking.CreateRequest{
		When:           stringParam(params, "when"),
		Date:           stringParam(params, "date"),
		Time:           stringParam(params, "time"),
		DurationMin:    durationMin,
		Description:    stringParam(params, "description"),
		CalendarRef:    stringParam(params, "calendarRef"),
		Name:           stringParam(params, "staff"),
		IdempotencyKey: stringParam(params, "idempotencyKey"),
	})
}

func (g *Gateway) cancelAction(ctx context.Context, params map[string]any) (any, error) {
	eventID, err := requiredString(params, "eventId")
	if err != nil {
		return nil, err
	}
	if err := g.Orchestrator.Cancel(ctx, booking.CancelRequest{
		EventID:     eventID,
		CalendarRef: stringParam(params, "calendarRef"),
		Name:        stringParam(params, "staff"),
	}); err != nil {
		return nil, err
	}
	return gin.H{"cancelled": eventID}, nil
}

func (g *Gateway) searchAction(ctx context.Context, params map[string]any) (any, error) {
	loc := g.Catalog.Location()
	from, err := timeParam(params, "from", loc)
	if err != nil {
		return nil, err
	}
	to, err := timeParam(params, "to", loc)
	if err != nil {
		return nil, err
	}
	events, err := g.Orchestrator.Search(ctx, booking.SearchRequest{
		Phone:       stringParam(params, "phone"),
		ClientID:    stringParam(params, "clientId"),
		From:        from,
		To:          to,
		CalendarRef: stringParam(params, "calendarRef"),
		Name:        stringParam(params, "staff"),
	})
	if err != nil {
		return nil, err
	}
	return gin.H{"bookings": events, "count": len(events)}, nil
}

func (g *Gateway) resolveAction(_ context.Context, params map[string]any) (any, error) {
	name, err := requiredString(params, "name")
	if err != nil {
		return nil, err
	}
	return g.Resolver.Resolve(name)
}

func (g *Gateway) healthAction(context.Context, map[string]any) (any, error) {
	return gin.H{
		"status": "ok",
		"uptime": time.Since(g.started).Round(time.Second).String(),
		"time":   time.Now().In(g.Catalog.Location()).Format(time.RFC3339),
	}, nil
}
