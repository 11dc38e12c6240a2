package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Mirroar/hivemind-sub000/config"
	"github.com/Mirroar/hivemind-sub000/ipc"
	"github.com/Mirroar/hivemind-sub000/model"
	"github.com/Mirroar/hivemind-sub000/plan"
	"github.com/Mirroar/hivemind-sub000/rules"
	"github.com/Mirroar/hivemind-sub000/safety"
)

// storeTimeout bounds one store round trip inside a handler.
const storeTimeout = 5 * time.Second

// Agent routes bridge messages to the territories it manages. One agent
// serves every connection; territories are processed one message at a
// time.
type Agent struct {
	cfg        config.Config
	store      plan.Store
	oracle     *safety.Oracle
	reconciler *rules.Reconciler
	log        *slog.Logger

	mu          sync.Mutex
	territories map[string]*Territory
}

func New(cfg config.Config, store plan.Store, log *slog.Logger) (*Agent, error) {
	if log == nil {
		log = slog.Default()
	}
	rec, err := rules.NewReconciler(rules.DefaultRules(), cfg.Reconcile, log)
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	return &Agent{
		cfg:         cfg,
		store:       store,
		oracle:      safety.NewOracle(cfg.Safety.MaxIntelAge),
		reconciler:  rec,
		log:         log,
		territories: make(map[string]*Territory),
	}, nil
}

func (a *Agent) env() env {
	return env{cfg: a.cfg, oracle: a.oracle, reconciler: a.reconciler, store: a.store}
}

// territory returns the cached territory, loading its record from the
// store on first use.
func (a *Agent) territory(ctx context.Context, name string) (*Territory, error) {
	if t, ok := a.territories[name]; ok {
		return t, nil
	}
	rec, err := a.store.Load(ctx, name)
	switch {
	case errors.Is(err, plan.ErrNotFound):
		rec = plan.NewRecord(name)
	case err != nil:
		return nil, fmt.Errorf("load %s: %w", name, err)
	default:
		a.log.Info("record restored", "territory", name, "phase", rec.Phase, "version", rec.Version)
	}
	t := newTerritory(name, rec, a.cfg.Planner, a.log)
	a.territories[name] = t
	return t, nil
}

// HandleHello completes the handshake so the bridge knows the planner is ready.
func (a *Agent) HandleHello(c *ipc.Connection) ipc.Handler {
	return func(env ipc.Envelope) (*ipc.Envelope, error) {
		var hello ipc.HelloMessage
		if err := json.Unmarshal(env.Data, &hello); err != nil {
			return nil, fmt.Errorf("unmarshal hello: %w", err)
		}
		if c != nil {
			c.Player = hello.Player
		}
		a.log.Info("player identified", "player", hello.Player, "shard", hello.Shard)

		ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
		if err != nil {
			return nil, err
		}
		return &ack, nil
	}
}

// HandleObservation runs one territory tick and replies with the commands
// to apply. A territory that fails this tick replies with no commands.
func (a *Agent) HandleObservation(env ipc.Envelope) (*ipc.Envelope, error) {
	obs, err := ipc.DecodeObservation(env.Data)
	if err != nil {
		return nil, err
	}
	a.oracle.Update(obs.Intel...)

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	a.mu.Lock()
	defer a.mu.Unlock()

	out := &ipc.CommandsMessage{Territory: obs.Territory, Tick: obs.Tick, Commands: []ipc.Command{}}
	t, err := a.territory(ctx, obs.Territory)
	if err != nil {
		a.log.Error("territory unavailable", "territory", obs.Territory, "error", err)
	} else if out, err = t.Tick(ctx, a.env(), obs); err != nil {
		a.log.Error("territory tick failed", "territory", obs.Territory, "tick", obs.Tick, "error", err)
	}

	reply, err := ipc.NewEnvelope(ipc.TypeCommands, out)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// HandlePlanQuery answers with the stored plan. Categories stay empty
// until planning is finished.
func (a *Agent) HandlePlanQuery(env ipc.Envelope) (*ipc.Envelope, error) {
	var q ipc.PlanQuery
	if err := json.Unmarshal(env.Data, &q); err != nil {
		return nil, fmt.Errorf("unmarshal plan query: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	a.mu.Lock()
	defer a.mu.Unlock()
	t, err := a.territory(ctx, q.Territory)
	if err != nil {
		return nil, err
	}
	reply, err := ipc.NewEnvelope(ipc.TypePlan, planMessage(t.Record()))
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func planMessage(rec *plan.Record) ipc.PlanMessage {
	msg := ipc.PlanMessage{
		Territory:     rec.Territory,
		Phase:         rec.Phase.String(),
		Finished:      rec.PlanningFinished(),
		SafeNeighbors: rec.SafeNeighbors,
	}
	if msg.SafeNeighbors == nil {
		msg.SafeNeighbors = []string{}
	}
	for id := range rec.Dismantle {
		msg.Dismantle = append(msg.Dismantle, id)
	}
	slices.Sort(msg.Dismantle)
	if center, ok := rec.Center(); ok {
		msg.Center = &center
		msg.Categories = make(map[string][]model.Pos)
		for _, c := range rec.Plan.Categories() {
			msg.Categories[c.String()] = rec.PlannedPositions(c)
		}
	}
	return msg
}

// HandleCostMatrix serves navigation costs for a planned territory. The
// terrain comes from the last observation, so it needs at least one tick.
func (a *Agent) HandleCostMatrix(env ipc.Envelope) (*ipc.Envelope, error) {
	var q ipc.CostMatrixQuery
	if err := json.Unmarshal(env.Data, &q); err != nil {
		return nil, fmt.Errorf("unmarshal cost matrix query: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	t, ok := a.territories[q.Territory]
	if !ok || t.terrain == nil || !t.rec.PlanningFinished() {
		return nil, fmt.Errorf("cost matrix %s: no finished plan", q.Territory)
	}
	costs := plan.NavigationCosts(t.rec.Plan, t.terrain)
	reply, err := ipc.NewEnvelope(ipc.TypeCosts, ipc.CostsMessage{Territory: q.Territory, Costs: costs[:]})
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// HandleDemolition allows a queued structure to be destroyed outright on
// the next reconciliation.
func (a *Agent) HandleDemolition(env ipc.Envelope) (*ipc.Envelope, error) {
	var req ipc.DemolitionRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		return nil, fmt.Errorf("unmarshal demolition request: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	a.mu.Lock()
	defer a.mu.Unlock()
	t, err := a.territory(ctx, req.Territory)
	if err != nil {
		return nil, err
	}
	status := "ok"
	if t.rec.NeedsDismantling(req.ID) {
		t.rec.RequestDemolition(req.ID)
		if err := a.store.Save(ctx, t.rec); err != nil {
			return nil, fmt.Errorf("save %s: %w", req.Territory, err)
		}
	} else {
		status = "not_queued"
	}
	a.log.Info("demolition requested", "territory", req.Territory, "id", req.ID, "status", status)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: status})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// HandleAbandon drops a territory's in-memory state and stored record.
func (a *Agent) HandleAbandon(env ipc.Envelope) (*ipc.Envelope, error) {
	var msg ipc.AbandonMessage
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal abandon: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.territories, msg.Territory)
	if err := a.store.Delete(ctx, msg.Territory); err != nil {
		return nil, fmt.Errorf("delete %s: %w", msg.Territory, err)
	}
	a.log.Info("territory abandoned", "territory", msg.Territory)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok"})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// Register installs every handler on c.
func (a *Agent) Register(c *ipc.Connection) {
	c.RegisterHandler(ipc.TypeHello, a.HandleHello(c))
	c.RegisterHandler(ipc.TypeObservation, a.HandleObservation)
	c.RegisterHandler(ipc.TypePlanQuery, a.HandlePlanQuery)
	c.RegisterHandler(ipc.TypeCostMatrix, a.HandleCostMatrix)
	c.RegisterHandler(ipc.TypeDemolish, a.HandleDemolition)
	c.RegisterHandler(ipc.TypeAbandon, a.HandleAbandon)
}
