// Package handlers implements the request gateway: envelope validation,
// routing over a typed tool/action registry, response caching, and the
// normalization of domain failures into the external error taxonomy.
package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"slotgate/config"
	"slotgate/models"
	"slotgate/services/availability"
	"slotgate/services/booking"
	"slotgate/services/identity"
	"slotgate/utils"
)

type actionFunc func(ctx context.Context, params map[string]any) (any, error)

// action is one routable entry in the registry. Cacheable actions are
// idempotent reads whose responses may be memoized.
type action struct {
	cacheable bool
	run       actionFunc
}

// Gateway routes tool calls to the domain services.
type Gateway struct {
	Engine       *availability.Engine
	Orchestrator *booking.Orchestrator
	Resolver     *identity.Resolver
	Catalog      *config.Catalog
	Config       *config.Config
	Cache        *utils.Cache
	Logger       *zap.Logger

	registry map[string]map[string]action
	group    singleflight.Group
	started  time.Time
}

// NewGateway wires a gateway and its fixed tool/action registry.
func NewGateway(engine *availability.Engine, orch *booking.Orchestrator, resolver *identity.Resolver,
	catalog *config.Catalog, cfg *config.Config, cache *utils.Cache) *Gateway {
	g := &Gateway{
		Engine:       engine,
		Orchestrator: orch,
		Resolver:     resolver,
		Catalog:      catalog,
		Config:       cfg,
		Cache:        cache,
		Logger:       utils.GetLogger(),
		started:      time.Now(),
	}
	g.registry = map[string]map[string]action{
		"calendar": {
			"availability": {cacheable: true, run: g.availabilityAction},
			"create":       {run: g.createAction},
			"cancel":       {run: g.cancelAction},
			"search":       {run: g.searchAction},
		},
		"staff": {
			"resolve": {cacheable: true, run: g.resolveAction},
		},
		"system": {
			"health": {run: g.healthAction},
		},
	}
	return g
}

// HandleToolCall is the single gateway endpoint: it validates the envelope,
// routes to an action, applies response caching for cache-safe actions, and
// maps every failure into the uniform taxonomy.
func (g *Gateway) HandleToolCall(c *gin.Context) {
	var call models.ToolCall
	if err := c.ShouldBindJSON(&call); err != nil {
		g.respondError(c, "", utils.WrapErr(utils.CodeInvalidEnvelope, err, "request envelope must have tool, action, and params"))
		return
	}
	requestID := call.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	actions, ok := g.registry[call.Tool]
	if !ok {
		g.respondError(c, requestID, utils.Errf(utils.CodeNotFound, "unknown tool %q", call.Tool))
		return
	}
	act, ok := actions[call.Action]
	if !ok {
		g.respondError(c, requestID, utils.Errf(utils.CodeNotFound, "unknown action %q for tool %q", call.Action, call.Tool))
		return
	}

	params := call.Params
	if params == nil {
		params = map[string]any{}
	}
	ctx := c.Request.Context()

	if !act.cacheable {
		result, err := act.run(ctx, params)
		if err != nil {
			g.respondError(c, requestID, err)
			return
		}
		c.JSON(http.StatusOK, models.OKResponse(result, false))
		return
	}

	// Caller-supplied keys are namespaced per action so the same token
	// presented to different actions cannot collide.
	key := stringParam(params, "idempotencyKey")
	if key != "" {
		key = call.Tool + ":" + call.Action + ":" + key
	} else {
		key = hashCall(call.Tool, call.Action, params)
	}
	if cached, ok := g.Cache.Get(key); ok {
		g.Logger.Debug("gateway cache hit",
			zap.String("tool", call.Tool),
			zap.String("action", call.Action),
			zap.String("requestId", requestID))
		c.JSON(http.StatusOK, models.OKResponse(cached, true))
		return
	}

	// Coalesce concurrent identical requests; only a success is stored.
	result, err, _ := g.group.Do(key, func() (any, error) {
		out, err := act.run(ctx, params)
		if err != nil {
			return nil, err
		}
		g.Cache.SetDefault(key, out)
		return out, nil
	})
	if err != nil {
		g.respondError(c, requestID, err)
		return
	}
	c.JSON(http.StatusOK, models.OKResponse(result, false))
}

// respondError converts a typed failure into the external status/code pair.
// This is the single place that mapping happens.
func (g *Gateway) respondError(c *gin.Context, requestID string, err error) {
	se := utils.AsServiceError(err)
	message := se.Message
	if se.Code == utils.CodeInternal {
		// Full detail stays in the logs; the caller gets a generic message.
		g.Logger.Error("internal gateway error",
			zap.String("requestId", requestID),
			zap.Error(err))
		message = "An unexpected error occurred. Please try again later."
	} else {
		g.Logger.Warn("tool call failed",
			zap.String("requestId", requestID),
			zap.String("code", string(se.Code)),
			zap.String("message", se.Message))
	}
	resp := models.FailResponse(string(se.Code), message)
	resp.Data = se.Details
	c.JSON(utils.HTTPStatus(se.Code), resp)
}

// hashCall derives a deterministic cache key from the full parameter set.
// encoding/json sorts map keys, so equal parameter sets hash equally.
func hashCall(tool, action string, params map[string]any) string {
	payload, err := json.Marshal(struct {
		Tool   string         `json:"tool"`
		Action string         `json:"action"`
		Params map[string]any `json:"params"`
	}{tool, action, params})
	if err != nil {
		return tool + ":" + action
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
