package sweep

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/dayboard/dayboard/internal/cache"
	"github.com/dayboard/dayboard/internal/clock"
	"github.com/dayboard/dayboard/internal/gate"
	"github.com/dayboard/dayboard/internal/model"
	"github.com/dayboard/dayboard/internal/orchestrator"
	"github.com/dayboard/dayboard/internal/store/memory"
)

type seqGenerator struct{ calls atomic.Int64 }

func (g *seqGenerator) Generate(_ context.Context, ct model.ContentType, d model.Date) (json.RawMessage, error) {
	g.calls.Add(1)
	return json.RawMessage(fmt.Sprintf(`{"type":%q,"date":%q}`, ct, d)), nil
}

type sweepHarness struct {
	worker *Worker
	orch   *orchestrator.Orchestrator
	gen    *seqGenerator
	fake   *clockwork.FakeClock
	auth   *memory.Store
}

// newSweepHarness pins canonical time to 2024-06-02T18:00 UTC, so yesterday
// is 2024-06-01 and tomorrow's (2024-06-03) window is already open.
func newSweepHarness(t *testing.T, scopes ...string) *sweepHarness {
	t.Helper()
	fake := clockwork.NewFakeClockAt(time.Date(2024, 6, 2, 18, 0, 0, 0, time.UTC))
	clk := clock.NewWithClock(fake, time.UTC)
	t0 := memory.New()
	auth := memory.New()
	c := cache.NewTiered(zerolog.Nop(), t0, auth)
	gen := &seqGenerator{}
	policy := gate.NewPolicy(17)
	orch := orchestrator.New(c, gen, clk, policy, zerolog.Nop())
	w := NewWorker(orch, c, clk, policy, Config{Interval: time.Hour, Scopes: scopes}, zerolog.Nop())
	return &sweepHarness{worker: w, orch: orch, gen: gen, fake: fake, auth: auth}
}

func sweepDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSweep_ArchivesYesterday(t *testing.T) {
	h := newSweepHarness(t, "u1")
	ctx := context.Background()
	yesterday := sweepDate(t, "2024-06-01")

	// Generate two of the six types for yesterday.
	if _, err := h.orch.GetOrGenerate(ctx, "u1", model.ContentFoodPlan, yesterday); err != nil {
		t.Fatal(err)
	}
	if _, err := h.orch.GetOrGenerate(ctx, "u1", model.ContentPhysicsFact, yesterday); err != nil {
		t.Fatal(err)
	}

	if err := h.worker.ProcessOnce(ctx); err != nil {
		t.Fatalf("ProcessOnce: %v", err)
	}

	ar, err := h.auth.Archives().Get(ctx, "u1", yesterday)
	if err != nil {
		t.Fatalf("archive missing: %v", err)
	}
	// Partial data archives; gaps do not block.
	if len(ar.Snapshot) != 2 {
		t.Fatalf("snapshot size: %d, want 2", len(ar.Snapshot))
	}
	if _, ok := ar.Snapshot[model.ContentFoodPlan]; !ok {
		t.Fatal("food plan missing from snapshot")
	}
}

func TestSweep_ArchiveIdempotent(t *testing.T) {
	h := newSweepHarness(t, "u1")
	ctx := context.Background()
	yesterday := sweepDate(t, "2024-06-01")

	if _, err := h.orch.GetOrGenerate(ctx, "u1", model.ContentFoodPlan, yesterday); err != nil {
		t.Fatal(err)
	}
	if err := h.worker.ProcessOnce(ctx); err != nil {
		t.Fatal(err)
	}
	first, err := h.auth.Archives().Get(ctx, "u1", yesterday)
	if err != nil {
		t.Fatal(err)
	}

	// Generate another type after archiving; a second sweep must not grow
	// the terminal snapshot.
	if _, err := h.orch.GetOrGenerate(ctx, "u1", model.ContentDailyBrief, yesterday); err != nil {
		t.Fatal(err)
	}
	if err := h.worker.ProcessOnce(ctx); err != nil {
		t.Fatal(err)
	}
	second, err := h.auth.Archives().Get(ctx, "u1", yesterday)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Snapshot) != len(first.Snapshot) || !second.ArchivedAt.Equal(first.ArchivedAt) {
		t.Fatalf("archive mutated by second sweep: %+v vs %+v", second, first)
	}
}

func TestSweep_SkipsEmptyDay(t *testing.T) {
	h := newSweepHarness(t, "u1")
	ctx := context.Background()

	if err := h.worker.ProcessOnce(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := h.auth.Archives().Get(ctx, "u1", sweepDate(t, "2024-06-01")); err == nil {
		t.Fatal("empty day was archived")
	}
}

func TestSweep_WarmupOncePerWindow(t *testing.T) {
	h := newSweepHarness(t, "u1")
	ctx := context.Background()

	if err := h.worker.ProcessOnce(ctx); err != nil {
		t.Fatal(err)
	}
	// Six types generated for tomorrow.
	afterFirst := h.gen.calls.Load()
	if afterFirst != int64(len(model.KnownContentTypes())) {
		t.Fatalf("warm-up generated %d types, want %d", afterFirst, len(model.KnownContentTypes()))
	}

	// The flag short-circuits the second sweep.
	if err := h.worker.ProcessOnce(ctx); err != nil {
		t.Fatal(err)
	}
	if n := h.gen.calls.Load(); n != afterFirst {
		t.Fatalf("second sweep regenerated content: %d calls", n)
	}
}

func TestSweep_WarmupRespectsGate(t *testing.T) {
	// 10:00 canonical: tomorrow's window has not opened.
	fake := clockwork.NewFakeClockAt(time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC))
	clk := clock.NewWithClock(fake, time.UTC)
	c := cache.NewTiered(zerolog.Nop(), memory.New(), memory.New())
	gen := &seqGenerator{}
	policy := gate.NewPolicy(17)
	orch := orchestrator.New(c, gen, clk, policy, zerolog.Nop())
	w := NewWorker(orch, c, clk, policy, Config{Interval: time.Hour, Scopes: []string{"u1"}}, zerolog.Nop())

	if err := w.ProcessOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := gen.calls.Load(); n != 0 {
		t.Fatalf("warm-up ran before unlock: %d calls", n)
	}
}
