package agent

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
	"lukechampine.com/blake3"

	"github.com/Mirroar/hivemind-sub000/config"
	"github.com/Mirroar/hivemind-sub000/ipc"
	"github.com/Mirroar/hivemind-sub000/layout"
	"github.com/Mirroar/hivemind-sub000/model"
	"github.com/Mirroar/hivemind-sub000/plan"
	"github.com/Mirroar/hivemind-sub000/rules"
	"github.com/Mirroar/hivemind-sub000/safety"
)

// Territory owns the lifecycle of one territory: safety check, resumable
// planning, then reconciliation. The record is cached in memory and
// written back to the store after every tick.
type Territory struct {
	Name string

	rec     *plan.Record
	terrain *model.Terrain
	planner *layout.Planner
	log     *slog.Logger

	// stuckLog throttles escalation once MaxAttempts is exceeded.
	stuckLog rate.Sometimes
}

func newTerritory(name string, rec *plan.Record, opts layout.Options, log *slog.Logger) *Territory {
	log = log.With("territory", name)
	return &Territory{
		Name:     name,
		rec:      rec,
		planner:  layout.NewPlanner(opts, log),
		log:      log,
		stuckLog: rate.Sometimes{First: 1, Every: 10},
	}
}

// Record exposes the current record for plan queries.
func (t *Territory) Record() *plan.Record { return t.rec }

// env is what a tick needs from the agent.
type env struct {
	cfg        config.Config
	oracle     *safety.Oracle
	reconciler *rules.Reconciler
	store      plan.Store
}

// Tick runs one observation through the lifecycle and returns the
// commands to send back. Planning or reconciliation failures are logged
// and produce an empty command list; only store errors are returned.
func (t *Territory) Tick(ctx context.Context, e env, obs *model.Observation) (*ipc.CommandsMessage, error) {
	out := &ipc.CommandsMessage{Territory: t.Name, Tick: obs.Tick, Commands: []ipc.Command{}}

	t.checkTerrain(obs.Terrain)
	t.terrain = obs.Terrain
	t.checkVersion(e.cfg.Planner.Version)
	t.checkSafety(e, obs.Tick)
	if t.rec.ReplanNextTick {
		t.invalidate("replan requested")
	}

	if !t.rec.PlanningFinished() {
		t.advance(e.cfg.Planner, obs)
	}

	if t.rec.PlanningFinished() {
		cmd := newCommandBuffer(out, obs)
		res, err := e.reconciler.Reconcile(t.rec, obs, cmd)
		switch {
		case err != nil:
			t.log.Warn("reconciliation failed", "tick", obs.Tick, "error", err)
		case !res.Skipped:
			t.log.Debug("reconciled", "tick", obs.Tick, "result", res.String())
		}
	}

	if err := e.store.Save(ctx, t.rec); err != nil {
		return out, fmt.Errorf("save %s: %w", t.Name, err)
	}
	return out, nil
}

func (t *Territory) invalidate(reason string) {
	t.log.Info("plan invalidated", "reason", reason)
	t.rec.Invalidate()
	t.planner.Reset()
}

// TerrainDigest identifies a terrain grid.
func TerrainDigest(terrain *model.Terrain) string {
	sum := blake3.Sum256([]byte(terrain.String()))
	return hex.EncodeToString(sum[:16])
}

func (t *Territory) checkTerrain(terrain *model.Terrain) {
	digest := TerrainDigest(terrain)
	if t.rec.TerrainDigest != "" && t.rec.TerrainDigest != digest {
		t.invalidate("terrain changed")
	}
	t.rec.TerrainDigest = digest
}

func (t *Territory) checkVersion(version int) {
	if t.rec.PlanningFinished() && t.rec.Version != version {
		t.log.Info("plan version outdated", "stored", t.rec.Version, "want", version)
		t.invalidate("version bump")
	}
}

// checkSafety asks the oracle again every RecheckTicks. A verdict that
// differs from the one the plan was built around throws the plan away.
func (t *Territory) checkSafety(e env, tick int) {
	if t.rec.SafetyKnown && tick-t.rec.SafetyTick < e.cfg.Safety.RecheckTicks {
		return
	}
	st := e.oracle.Check(t.Name, e.cfg.Safety.Range, tick)
	if t.rec.SafetyKnown && t.rec.Safety != st.Safe {
		t.log.Info("safety changed", "was", t.rec.Safety, "now", st.Safe)
		t.invalidate("safety changed")
	}
	t.rec.Safety = st.Safe
	t.rec.SafeNeighbors = st.SafeNeighbors
	t.rec.SafetyKnown = true
	t.rec.SafetyTick = tick
}

func (t *Territory) input(obs *model.Observation) layout.Input {
	in := layout.Input{
		Terrain:    obs.Terrain,
		Controller: obs.Controller,
		Sources:    obs.Sources,
		Mineral:    obs.Mineral,
		Safe:       t.rec.Safety,
	}
	if t.rec.MisplacedSpawn {
		if spawns := obs.StructuresOfType(model.Spawn); len(spawns) > 0 {
			p := spawns[0].Position()
			in.AnchorSpawn = &p
		}
	}
	return in
}

// retryDue gates new passes after a failure; a pass already running is
// always allowed to continue.
func (t *Territory) retryDue(opts layout.Options, tick int) bool {
	if t.rec.Attempts == 0 || t.planner.InFlight() {
		return true
	}
	return tick-t.rec.LastAttemptTick >= opts.RetryTicks
}

func (t *Territory) advance(opts layout.Options, obs *model.Observation) {
	if !t.retryDue(opts, obs.Tick) {
		return
	}
	grant := time.Duration(obs.BudgetMs * float64(time.Millisecond))
	if obs.BudgetMs > 0 && grant < opts.MinBudget {
		t.log.Debug("planning deferred, budget too small", "budget", grant)
		return
	}

	done, err := t.planner.Advance(t.rec, t.input(obs), layout.NewDeadline(grant))
	if err != nil {
		t.rec.LastAttemptTick = obs.Tick
		if !errors.Is(err, layout.ErrPlanningIncomplete) {
			t.log.Error("planning failed", "error", err)
			return
		}
		if t.rec.Attempts >= opts.MaxAttempts {
			t.stuckLog.Do(func() {
				t.log.Error("planning stuck", "attempts", t.rec.Attempts, "run", t.rec.RunID, "error", err)
			})
			return
		}
		t.log.Warn("planning incomplete", "attempts", t.rec.Attempts, "error", err)
		return
	}
	if done {
		t.rec.FinalizedTick = obs.Tick
	}
}
