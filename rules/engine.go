package rules

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/expr-lang/expr/vm"
	"golang.org/x/time/rate"

	"github.com/Mirroar/hivemind-sub000/model"
	"github.com/Mirroar/hivemind-sub000/plan"
)

// ErrPlacementBlocked is returned by a Commander when a site cannot be
// placed because the tile is occupied or the world-wide cap is reached.
// Placement of that category pauses until a later tick.
var ErrPlacementBlocked = errors.New("placement blocked")

// Commander issues world mutations. Destroy of a structure that no longer
// exists must be a no-op.
type Commander interface {
	PlaceSite(t model.StructureType, pos model.Pos) error
	Destroy(id string) error
}

// Result summarizes one reconciliation pass.
type Result struct {
	Skipped   bool
	Placed    int
	Destroyed int
	Queued    int
	Integrity bool

	// Blocked is the first category that could not finish this tick.
	Blocked    plan.Category
	HasBlocked bool

	// Replan is set when the plan must be regenerated before the next
	// pass, e.g. after a misplaced lone spawn.
	Replan bool
}

// Reconciler turns a finished plan into site placements and demolitions,
// one bounded batch per tick.
type Reconciler struct {
	rules []*Rule
	opts  Options
	log   *slog.Logger

	integrityLog rate.Sometimes
}

// NewReconciler compiles rule conditions into expr bytecode and sorts by
// priority.
func NewReconciler(rules []*Rule, opts Options, log *slog.Logger) (*Reconciler, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	opts.Validate()
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		rules:        compiled,
		opts:         opts,
		log:          log,
		integrityLog: rate.Sometimes{First: 3, Interval: 10 * time.Minute},
	}, nil
}

func (r *Reconciler) Options() Options { return r.opts }

// world indexes one observation for the pass.
type world struct {
	obs        *model.Observation
	structures map[model.Pos][]model.Structure
	sites      map[model.Pos][]model.Site
	built      map[model.StructureType]int
	pending    map[model.StructureType]int
}

func indexWorld(obs *model.Observation) *world {
	return &world{
		obs:        obs,
		structures: byPosition(obs.Structures),
		sites:      byPosition(obs.Sites),
		built:      countByType(obs.Structures),
		pending:    countByType(obs.Sites),
	}
}

// satisfied reports whether a planned position of c already holds an
// accepted structure or site.
func (w *world) satisfied(c plan.Category, pos model.Pos) bool {
	for _, s := range w.structures[pos] {
		if c.Accepts(s.Type) {
			return true
		}
	}
	for _, s := range w.sites[pos] {
		if c.Accepts(s.Type) {
			return true
		}
	}
	return false
}

// Reconcile runs one pass for rec against obs. Running it again in the same
// reconciliation interval is a no-op.
func (r *Reconciler) Reconcile(rec *plan.Record, obs *model.Observation, cmd Commander) (Result, error) {
	var res Result
	if !rec.PlanningFinished() {
		res.Skipped = true
		return res, nil
	}
	if rec.LastReconcileTick >= 0 && obs.Tick-rec.LastReconcileTick < r.opts.IntervalTicks {
		res.Skipped = true
		return res, nil
	}
	rec.LastReconcileTick = obs.Tick

	w := indexWorld(obs)
	res.Integrity = Integrity(rec.Plan, w.structures, r.opts.IntegrityHits)
	if obs.Level >= 4 && !res.Integrity {
		r.integrityLog.Do(func() {
			r.log.Info("perimeter integrity not met, interior structures withheld",
				"territory", rec.Territory, "threshold", r.opts.IntegrityHits)
		})
	}

	if err := r.demolish(rec, w, cmd, &res); err != nil {
		return res, err
	}
	if res.Replan {
		return res, nil
	}

	env := ReconcileEnv{
		Level:           obs.Level,
		PerimeterIntact: res.Integrity,
		StoredEnergy:    obs.StoredEnergy,
		BuilderCapacity: obs.BuilderCapacity,
		built:           w.built,
		pending:         w.pending,
		planned:         plannedByType(rec.Plan),
	}
	if err := r.place(rec, w, env, cmd, &res); err != nil {
		return res, err
	}
	return res, nil
}

// place walks the rules in priority order and issues sites for missing
// positions within the per-tick and world-wide caps.
func (r *Reconciler) place(rec *plan.Record, w *world, env ReconcileEnv, cmd Commander, res *Result) error {
	budget := min(r.opts.MaxSitesPerTick, r.opts.siteCeiling()-w.obs.GlobalSites)
	if budget <= 0 {
		r.log.Debug("site cap reached", "territory", rec.Territory, "global", w.obs.GlobalSites)
	}

	for _, rule := range r.rules {
		result, err := vm.Run(rule.program, env)
		if err != nil {
			r.log.Warn("rule condition error", "rule", rule.Name, "error", err)
			continue
		}
		if open, ok := result.(bool); !ok || !open {
			continue
		}

		complete := r.placeCategory(rec, w, rule.Category, &budget, cmd, res)
		if complete {
			continue
		}
		if !res.HasBlocked {
			res.Blocked, res.HasBlocked = rule.Category, true
		}
		if r.opts.Ordering == OrderingLegacy {
			r.log.Debug("category incomplete, lower priorities wait",
				"territory", rec.Territory, "category", rule.Category)
			break
		}
	}
	return nil
}

// placeCategory issues sites for c and reports whether every missing
// position the quota allows is now covered.
func (r *Reconciler) placeCategory(rec *plan.Record, w *world, c plan.Category, budget *int, cmd Commander, res *Result) bool {
	st := c.Structure()
	quota := model.Quota(st, w.obs.Level)
	complete := true
	for _, pos := range rec.Plan.Positions(c) {
		if w.satisfied(c, pos) {
			continue
		}
		if w.built[st]+w.pending[st] >= quota {
			break
		}
		if *budget <= 0 {
			complete = false
			break
		}
		if err := cmd.PlaceSite(st, pos); err != nil {
			if !errors.Is(err, ErrPlacementBlocked) {
				r.log.Warn("site placement failed", "territory", rec.Territory,
					"category", c, "pos", pos, "error", err)
			}
			complete = false
			continue
		}
		*budget--
		res.Placed++
		w.pending[st]++
		w.sites[pos] = append(w.sites[pos], model.Site{Type: st, X: pos.X, Y: pos.Y})
		r.log.Debug("site placed", "territory", rec.Territory, "category", c, "pos", pos)
	}
	return complete
}

// Integrity reports whether every planned rampart tile is covered by a
// rampart or wall with at least minHits hit points.
func Integrity(p *plan.Plan, structures map[model.Pos][]model.Structure, minHits int) bool {
	for _, c := range []plan.Category{plan.RampartRoad, plan.Rampart} {
		for _, pos := range p.Positions(c) {
			ok := slices.ContainsFunc(structures[pos], func(s model.Structure) bool {
				return c.Accepts(s.Type) && s.Hits >= minHits
			})
			if !ok {
				return false
			}
		}
	}
	return true
}

func plannedByType(p *plan.Plan) map[model.StructureType]int {
	out := make(map[model.StructureType]int)
	for _, c := range p.Categories() {
		if st := c.Structure(); st != "" {
			out[st] += p.Count(c)
		}
	}
	return out
}

// String is used in logs.
func (res Result) String() string {
	return fmt.Sprintf("placed=%d destroyed=%d queued=%d integrity=%v", res.Placed, res.Destroyed, res.Queued, res.Integrity)
}
