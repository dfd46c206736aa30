package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotgate/config"
	"slotgate/models"
	"slotgate/services/availability"
	"slotgate/services/booking"
	"slotgate/services/identity"
	"slotgate/utils"
)

type fakeCalendar struct {
	busy        []models.BusyInterval
	listCalls   int
	insertCalls int
}

func (f *fakeCalendar) ListBusy(context.Context, string, time.Time, time.Time) ([]models.BusyInterval, error) {
	f.listCalls++
	return f.busy, nil
}

func (f *fakeCalendar) Insert(context.Context, string, time.Time, time.Time, string, string) (string, error) {
	f.insertCalls++
	return fmt.Sprintf("evt-%d", f.insertCalls), nil
}

func (f *fakeCalendar) Delete(context.Context, string, string) error { return nil }

func (f *fakeCalendar) ListEvents(context.Context, string, time.Time, time.Time) ([]models.CalendarEvent, error) {
	return nil, nil
}

var gatewayNow = time.Date(2025, 6, 4, 7, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T, cal *fakeCalendar) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog, err := config.NewCatalog(
		[]models.ResourceIdentity{
			{ID: "res-1", DisplayName: "María García", Aliases: []string{"Maria"}, CalendarRef: "cal-maria"},
			{ID: "res-2", DisplayName: "John Smith", CalendarRef: "cal-john"},
			{ID: "res-3", DisplayName: "Joan Smith", CalendarRef: "cal-joan"},
		},
		map[string]models.BusinessHours{
			config.DefaultHoursKey: {Days: []string{"mon", "tue", "wed", "thu", "fri"}, Start: "08:00", End: "12:00"},
		},
		time.UTC,
	)
	require.NoError(t, err)

	cfg := &config.Config{DefaultSlotMinutes: 30, CacheTTLSeconds: 300, Timezone: "UTC"}
	cache := utils.NewCache(time.Minute)
	resolver := identity.NewResolver(catalog)

	engine := availability.NewEngine(cal, resolver, catalog, cache)
	engine.Now = func() time.Time { return gatewayNow }
	orch := booking.NewOrchestrator(cal, resolver, catalog, cache, cfg)
	orch.Now = func() time.Time { return gatewayNow }

	gateway := NewGateway(engine, orch, resolver, catalog, cfg, cache)

	router := gin.New()
	router.POST("/api/tools/call", gateway.HandleToolCall)
	return router
}

func callTool(t *testing.T, router *gin.Engine, body any) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/tools/call", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestInvalidEnvelope(t *testing.T) {
	router := newTestRouter(t, &fakeCalendar{})

	w, resp := callTool(t, router, map[string]any{"action": "availability"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "INVALID_ENVELOPE", resp.Error)
}

func TestUnknownToolAndAction(t *testing.T) {
	router := newTestRouter(t, &fakeCalendar{})

	w, resp := callTool(t, router, models.ToolCall{Tool: "weather", Action: "today"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error)

	w, resp = callTool(t, router, models.ToolCall{Tool: "calendar", Action: "teleport"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error)
}

func TestHealthAction(t *testing.T) {
	router := newTestRouter(t, &fakeCalendar{})

	w, resp := callTool(t, router, models.ToolCall{Tool: "system", Action: "health"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "OK", resp.Message)
}

func TestResolveActionCached(t *testing.T) {
	router := newTestRouter(t, &fakeCalendar{})
	body := models.ToolCall{Tool: "staff", Action: "resolve", Params: map[string]any{"name": "Maria"}}

	w, resp := callTool(t, router, body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.FromCache)

	_, resp = callTool(t, router, body)
	assert.True(t, resp.FromCache, "identical read must be served from cache")
}

func TestResolveAmbiguousCarriesCandidates(t *testing.T) {
	router := newTestRouter(t, &fakeCalendar{})

	w, resp := callTool(t, router, models.ToolCall{
		Tool: "staff", Action: "resolve", Params: map[string]any{"name": "Smith"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "AMBIGUOUS", resp.Error)

	candidates, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"John Smith", "Joan Smith"}, candidates)
}

func TestAvailabilityActionSkipsRemoteOnCacheHit(t *testing.T) {
	cal := &fakeCalendar{busy: []models.BusyInterval{
		{Start: time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC), End: time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)},
	}}
	router := newTestRouter(t, cal)
	body := models.ToolCall{Tool: "calendar", Action: "availability", Params: map[string]any{
		"from":            "2025-06-04T08:00:00Z",
		"to":              "2025-06-04T12:00:00Z",
		"durationMinutes": 30,
		"staff":           "Maria",
	}}

	w, resp := callTool(t, router, body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.FromCache)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	slots, ok := data["slots"].([]any)
	require.True(t, ok)
	assert.Len(t, slots, 6)

	_, resp = callTool(t, router, body)
	assert.True(t, resp.FromCache)
	assert.Equal(t, 1, cal.listCalls, "cache hits must not reach the remote calendar")
}

func TestCacheKeysAreNamespacedPerAction(t *testing.T) {
	router := newTestRouter(t, &fakeCalendar{})

	_, resp := callTool(t, router, models.ToolCall{
		Tool: "staff", Action: "resolve",
		Params: map[string]any{"name": "Maria", "idempotencyKey": "tok-shared"},
	})
	assert.False(t, resp.FromCache)

	// The same caller token against a different action must not surface the
	// cached resolution.
	w, resp := callTool(t, router, models.ToolCall{
		Tool: "calendar", Action: "availability",
		Params: map[string]any{
			"from":           "2025-06-04T08:00:00Z",
			"to":             "2025-06-04T12:00:00Z",
			"staff":          "Maria",
			"idempotencyKey": "tok-shared",
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.FromCache)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, data, "slots")
}

func TestCreateActionIdempotentViaToken(t *testing.T) {
	cal := &fakeCalendar{}
	router := newTestRouter(t, cal)
	body := models.ToolCall{Tool: "calendar", Action: "create", Params: map[string]any{
		"when":           "2025-06-05T10:00:00Z",
		"description":    "Cut for Grace",
		"staff":          "Maria",
		"idempotencyKey": "tok-1",
	}}

	w, first := callTool(t, router, body)
	require.Equal(t, http.StatusOK, w.Code)
	_, second := callTool(t, router, body)

	firstData, err := json.Marshal(first.Data)
	require.NoError(t, err)
	secondData, err := json.Marshal(second.Data)
	require.NoError(t, err)
	assert.JSONEq(t, string(firstData), string(secondData))
	assert.Equal(t, 1, cal.insertCalls)
}

func TestCreateActionInPast(t *testing.T) {
	router := newTestRouter(t, &fakeCalendar{})

	w, resp := callTool(t, router, models.ToolCall{Tool: "calendar", Action: "create", Params: map[string]any{
		"when":        "2025-06-04T06:00:00Z",
		"description": "Too late",
		"staff":       "Maria",
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "IN_PAST", resp.Error)
}

func TestSearchActionMissingParam(t *testing.T) {
	router := newTestRouter(t, &fakeCalendar{})

	w, resp := callTool(t, router, models.ToolCall{Tool: "calendar", Action: "search"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_PARAM", resp.Error)
}
