package httpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"autoupgrader/internal/adapter/game/sim"
	"autoupgrader/internal/adapter/notify"
	"autoupgrader/internal/adapter/repo/memory"
	"autoupgrader/internal/app/policy"
	"autoupgrader/internal/app/ports"
	"autoupgrader/internal/app/roster"
	"autoupgrader/internal/app/upgrade"
	"autoupgrader/internal/domain/bestiary"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/route/param"
)

type handlerFixture struct {
	h     Handler
	store *upgrade.PolicyStore
	queue *fakeQueue
	feed  *notify.Feed
	coll  *sim.Collection
}

func newFixture(seed ...bestiary.Entity) handlerFixture {
	store := upgrade.NewPolicyStore(bestiary.DefaultPolicy())
	mem := memory.NewStore()
	feed := notify.NewFeed(10)
	coll := sim.NewCollection(seed)
	queue := &fakeQueue{}
	return handlerFixture{
		h: Handler{
			PolicyUC: policy.UseCase{
				Store:     store,
				Repo:      memory.NewPolicyRepo(mem),
				TxManager: memory.NewTxManager(mem),
				Notifier:  feed,
				Snapshots: coll,
				Queue:     queue,
				ProfileID: "default",
			},
			RosterUC:      roster.UseCase{Snapshots: coll, Policy: store},
			Notifications: feed,
			Sim:           coll,
		},
		store: store,
		queue: queue,
		feed:  feed,
		coll:  coll,
	}
}

func TestGetPolicy_ReturnsCurrentPolicy(t *testing.T) {
	f := newFixture()
	ctx := &app.RequestContext{}

	f.h.getPolicy(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	var body map[string]any
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got, want := body["level_threshold"], float64(bestiary.DefaultLevelThreshold); got != want {
		t.Fatalf("level_threshold mismatch: got=%v want=%v", got, want)
	}
}

func TestUpdatePolicy_SavesAndNotifies(t *testing.T) {
	f := newFixture()
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"enabled":false,"level_threshold":70,"reserve_count_per_species":2,"min_fodder_tier":1,"max_fodder_tier":3,"target_species_ids":[9,4]}`))

	f.h.updatePolicy(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	if got := f.store.Get(); got.LevelThreshold != 70 || len(got.TargetSpeciesIDs) != 2 {
		t.Fatalf("policy not applied: %+v", got)
	}
	if recent := f.feed.Recent(1); len(recent) != 1 || recent[0].Message != "Settings saved" {
		t.Fatalf("expected settings saved notification, got %+v", recent)
	}
}

func TestUpdatePolicy_RejectsInvalidJSON(t *testing.T) {
	f := newFixture()
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"enabled":`))

	f.h.updatePolicy(context.Background(), ctx)

	assertErrorCode(t, ctx, consts.StatusBadRequest, "invalid_json")
}

func TestUpdatePolicy_RejectsInvalidTarget(t *testing.T) {
	f := newFixture()
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"level_threshold":50,"min_fodder_tier":1,"max_fodder_tier":4,"target_species_ids":[-3]}`))

	f.h.updatePolicy(context.Background(), ctx)

	assertErrorCode(t, ctx, consts.StatusBadRequest, "bad_request")
}

func TestToggle_FlipsEnabled(t *testing.T) {
	f := newFixture()
	ctx := &app.RequestContext{}

	f.h.toggle(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusOK; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	if !f.store.Get().Enabled {
		t.Fatalf("expected enabled after toggle")
	}
}

func TestRunNext_NoTargetIsConflict(t *testing.T) {
	f := newFixture()
	ctx := &app.RequestContext{}

	f.h.runNext(context.Background(), ctx)

	assertErrorCode(t, ctx, consts.StatusConflict, "no_target_species")
}

func TestRunNext_QueuesFirstTarget(t *testing.T) {
	f := newFixture(bestiary.Entity{InstanceID: "a", SpeciesID: 4, Tier: 2, Level: 70})
	p := f.store.Get()
	p.TargetSpeciesIDs = []bestiary.SpeciesID{4}
	f.store.Set(p)
	ctx := &app.RequestContext{}

	f.h.runNext(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusAccepted; got != want {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, want, ctx.Response.Body())
	}
	if len(f.queue.ids) != 1 || f.queue.ids[0] != 4 {
		t.Fatalf("expected species 4 queued, got %v", f.queue.ids)
	}
}

func TestEnqueue_ValidatesSpecies(t *testing.T) {
	f := newFixture()
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"species_id":0}`))

	f.h.enqueue(context.Background(), ctx)

	assertErrorCode(t, ctx, consts.StatusBadRequest, "bad_request")
}

func TestEnqueue_Accepted(t *testing.T) {
	f := newFixture()
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"species_id":12}`))

	f.h.enqueue(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusAccepted; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	var body map[string]any
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got, want := body["queued"], true; got != want {
		t.Fatalf("queued mismatch: got=%v want=%v", got, want)
	}
}

func TestRoster_ListsSpecies(t *testing.T) {
	f := newFixture(
		bestiary.Entity{InstanceID: "a", SpeciesID: 4, Tier: 2, Level: 70},
		bestiary.Entity{InstanceID: "b", SpeciesID: 4, Tier: 1, Level: 7},
	)
	ctx := &app.RequestContext{}

	f.h.roster(context.Background(), ctx)

	var body struct {
		Species []map[string]any `json:"species"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(body.Species) != 1 || body.Species[0]["count"] != float64(2) {
		t.Fatalf("unexpected roster %+v", body.Species)
	}
}

func TestNotifications_HonorsLimit(t *testing.T) {
	f := newFixture()
	for i := 0; i < 3; i++ {
		f.feed.Notify(context.Background(), ports.LevelInfo, fmt.Sprintf("n%d", i))
	}
	ctx := &app.RequestContext{}
	ctx.Request.SetRequestURI("/api/upgrader/notifications?limit=2")

	f.h.notifications(context.Background(), ctx)

	var body struct {
		Notifications []notify.Entry `json:"notifications"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(body.Notifications) != 2 || body.Notifications[0].Message != "n2" {
		t.Fatalf("unexpected notifications %+v", body.Notifications)
	}
}

func TestNotifications_RejectsBadLimit(t *testing.T) {
	f := newFixture()
	ctx := &app.RequestContext{}
	ctx.Request.SetRequestURI("/api/upgrader/notifications?limit=abc")

	f.h.notifications(context.Background(), ctx)

	assertErrorCode(t, ctx, consts.StatusBadRequest, "bad_request")
}

func TestSimSetLevel_UnknownInstance(t *testing.T) {
	f := newFixture()
	ctx := &app.RequestContext{}
	ctx.Params = param.Params{{Key: "id", Value: "ghost"}}
	ctx.Request.SetBody([]byte(`{"level":10}`))

	f.h.simSetLevel(context.Background(), ctx)

	assertErrorCode(t, ctx, consts.StatusNotFound, "not_found")
}

func TestSimAddMonster_Created(t *testing.T) {
	f := newFixture()
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"species_id":3,"tier":1,"level":5}`))

	f.h.simAddMonster(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusCreated; got != want {
		t.Fatalf("status mismatch: got=%d want=%d", got, want)
	}
	snap, _ := f.coll.Snapshot(context.Background())
	if len(snap) != 1 || snap[0].SpeciesID != 3 {
		t.Fatalf("monster not added: %+v", snap)
	}
}

func TestKPI_NotConfigured(t *testing.T) {
	ctx := &app.RequestContext{}
	Handler{}.kpi(context.Background(), ctx)
	assertErrorCode(t, ctx, consts.StatusNotFound, "not_configured")
}

func TestEnqueue_ClosedQueueIsUnavailable(t *testing.T) {
	f := newFixture()
	queue := upgrade.NewQueue(context.Background(), func(context.Context, bestiary.SpeciesID) {}, upgrade.QueueOptions{Cooldown: -1})
	if err := queue.Close(); err != nil {
		t.Fatalf("close queue: %v", err)
	}
	f.h.PolicyUC.Queue = queue
	ctx := &app.RequestContext{}
	ctx.Request.SetBody([]byte(`{"species_id":12}`))

	f.h.enqueue(context.Background(), ctx)

	assertErrorCode(t, ctx, consts.StatusServiceUnavailable, "queue_closed")
}

func TestWriteError_QueueClosed(t *testing.T) {
	ctx := &app.RequestContext{}
	writeError(ctx, fmt.Errorf("enqueue: %w", upgrade.ErrQueueClosed))
	assertErrorCode(t, ctx, consts.StatusServiceUnavailable, "queue_closed")
}

func TestWriteError_HidesUnknownErrors(t *testing.T) {
	ctx := &app.RequestContext{}
	writeError(ctx, fmt.Errorf("pq: password=secret"))
	assertErrorCode(t, ctx, consts.StatusInternalServerError, "internal_error")
	var body map[string]map[string]string
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got, want := body["error"]["message"], "internal error"; got != want {
		t.Fatalf("message mismatch: got=%q want=%q", got, want)
	}
}

func assertErrorCode(t *testing.T, ctx *app.RequestContext, status int, code string) {
	t.Helper()
	if got := ctx.Response.StatusCode(); got != status {
		t.Fatalf("status mismatch: got=%d want=%d body=%s", got, status, ctx.Response.Body())
	}
	var body map[string]map[string]string
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got := body["error"]["code"]; got != code {
		t.Fatalf("error code mismatch: got=%q want=%q", got, code)
	}
}

type fakeQueue struct{ ids []bestiary.SpeciesID }

func (q *fakeQueue) Enqueue(id bestiary.SpeciesID) bool {
	q.ids = append(q.ids, id)
	return true
}
