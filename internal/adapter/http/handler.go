package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"autoupgrader/internal/adapter/game/sim"
	"autoupgrader/internal/adapter/notify"
	"autoupgrader/internal/app/policy"
	"autoupgrader/internal/app/ports"
	"autoupgrader/internal/app/roster"
	"autoupgrader/internal/app/status"
	"autoupgrader/internal/app/upgrade"
	"autoupgrader/internal/domain/bestiary"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const defaultNotificationLimit = 20

type Handler struct {
	PolicyUC      policy.UseCase
	RosterUC      roster.UseCase
	StatusUC      status.UseCase
	Notifications notificationFeed
	Sim           simCollection
	KPI           kpiSnapshotProvider
	Metrics       http.Handler
}

type notificationFeed interface {
	Recent(limit int) []notify.Entry
}

type simCollection interface {
	Snapshot(ctx context.Context) (bestiary.Snapshot, error)
	Add(e bestiary.Entity) (bestiary.Entity, error)
	SetLevel(instanceID string, level int) (bestiary.Entity, error)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	upgrader := s.Group("/api/upgrader")
	upgrader.GET("/policy", h.getPolicy)
	upgrader.PUT("/policy", h.updatePolicy)
	upgrader.POST("/toggle", h.toggle)
	upgrader.POST("/run-next", h.runNext)
	upgrader.POST("/queue", h.enqueue)
	upgrader.GET("/status", h.status)
	upgrader.GET("/roster", h.roster)
	upgrader.GET("/notifications", h.notifications)

	if h.Sim != nil {
		simGroup := s.Group("/api/sim")
		simGroup.GET("/monsters", h.simMonsters)
		simGroup.POST("/monsters", h.simAddMonster)
		simGroup.POST("/monsters/:id/level", h.simSetLevel)
	}

	s.GET("/ops/kpi", h.kpi)
	if h.Metrics != nil {
		s.GET("/metrics", adaptor.HertzHandler(h.Metrics))
	}
}

func (h Handler) getPolicy(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, h.PolicyUC.Get(c))
}

func (h Handler) updatePolicy(c context.Context, ctx *app.RequestContext) {
	var body bestiary.Policy
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.PolicyUC.Update(c, policy.UpdateRequest{Policy: body})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) toggle(c context.Context, ctx *app.RequestContext) {
	resp, err := h.PolicyUC.Toggle(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) runNext(c context.Context, ctx *app.RequestContext) {
	resp, err := h.PolicyUC.RunNext(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusAccepted, resp)
}

func (h Handler) enqueue(c context.Context, ctx *app.RequestContext) {
	var body policy.QueueRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	resp, err := h.PolicyUC.Enqueue(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusAccepted, resp)
}

func (h Handler) status(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Execute(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) roster(c context.Context, ctx *app.RequestContext) {
	resp, err := h.RosterUC.Execute(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) notifications(_ context.Context, ctx *app.RequestContext) {
	if h.Notifications == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "notification feed not configured")
		return
	}
	limit := defaultNotificationLimit
	if raw := strings.TrimSpace(string(ctx.Query("limit"))); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	ctx.JSON(consts.StatusOK, map[string]any{"notifications": h.Notifications.Recent(limit)})
}

func (h Handler) simMonsters(c context.Context, ctx *app.RequestContext) {
	snapshot, err := h.Sim.Snapshot(c)
	if err != nil {
		writeError(ctx, err)
		return
	}
	if snapshot == nil {
		snapshot = bestiary.Snapshot{}
	}
	ctx.JSON(consts.StatusOK, map[string]any{"monsters": snapshot})
}

func (h Handler) simAddMonster(_ context.Context, ctx *app.RequestContext) {
	var body bestiary.Entity
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	added, err := h.Sim.Add(body)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, added)
}

type setLevelRequest struct {
	Level int `json:"level"`
}

func (h Handler) simSetLevel(_ context.Context, ctx *app.RequestContext) {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "missing instance id")
		return
	}
	var body setLevelRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	updated, err := h.Sim.SetLevel(id, body.Level)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, updated)
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, policy.ErrNoTarget):
		writeErrorBody(ctx, consts.StatusConflict, "no_target_species", err.Error())
	case errors.Is(err, policy.ErrNoEligibleBase):
		writeErrorBody(ctx, consts.StatusConflict, "no_eligible_base", err.Error())
	case errors.Is(err, upgrade.ErrQueueClosed):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "queue_closed", err.Error())
	case errors.Is(err, policy.ErrInvalidPolicy),
		errors.Is(err, policy.ErrInvalidRequest),
		errors.Is(err, sim.ErrInvalidMonster):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
