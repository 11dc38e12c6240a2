package rules

import (
	"slices"
	"strings"

	"github.com/Mirroar/hivemind-sub000/model"
	"github.com/Mirroar/hivemind-sub000/plan"
)

// managed reports whether reconciliation owns structures of type t.
func managed(t model.StructureType) bool {
	return t != model.Controller && len(plan.CategoriesFor(t)) > 0
}

// plannedFor reports whether s stands on a position planned for its type.
func plannedFor(p *plan.Plan, s model.Structure) bool {
	pos := s.Position()
	for _, c := range plan.CategoriesFor(s.Type) {
		if p.Has(c, pos) {
			return true
		}
	}
	return false
}

// demolish removes structures the plan does not want, bounded per tick.
// Walls and ramparts are only queued for dismantling; a queued rampart is
// destroyed once demolition was requested for its ID. A lone misplaced
// spawn triggers a replan anchored at it instead.
func (r *Reconciler) demolish(rec *plan.Record, w *world, cmd Commander, res *Result) error {
	structures := slices.Clone(w.obs.Structures)
	slices.SortFunc(structures, func(a, b model.Structure) int { return strings.Compare(a.ID, b.ID) })

	alive := make(map[string]bool, len(structures))
	for _, s := range structures {
		alive[s.ID] = true
	}
	rec.PruneDismantle(alive)

	for _, s := range structures {
		if !managed(s.Type) || plannedFor(rec.Plan, s) {
			continue
		}

		switch s.Type {
		case model.ConstructedWall, model.Rampart:
			if !rec.NeedsDismantling(s.ID) {
				rec.QueueDismantle(s.ID)
				res.Queued++
			}
			if s.Type != model.Rampart || !rec.DemolitionRequested(s.ID) {
				continue
			}
		case model.Spawn:
			if !r.spawnExpendable(w) {
				r.keepMisplacedSpawn(rec, s, res)
				continue
			}
		}

		if res.Destroyed >= r.opts.MaxDestroysPerTick {
			continue
		}
		if err := cmd.Destroy(s.ID); err != nil {
			r.log.Warn("destroy failed", "territory", rec.Territory, "id", s.ID, "type", s.Type, "error", err)
			continue
		}
		res.Destroyed++
		w.built[s.Type]--
		r.log.Info("misplaced structure destroyed", "territory", rec.Territory,
			"id", s.ID, "type", s.Type, "pos", s.Position())
	}
	return nil
}

// spawnExpendable reports whether a spawn may be destroyed: another spawn
// remains, or enough energy and builders exist to rebuild it.
func (r *Reconciler) spawnExpendable(w *world) bool {
	if w.built[model.Spawn] > 1 {
		return true
	}
	return w.obs.StoredEnergy >= r.opts.SpawnRebuildEnergy &&
		w.obs.BuilderCapacity >= r.opts.SpawnRebuildBuilders
}

// keepMisplacedSpawn asks for a replan that anchors the first spawn on the
// existing one. It fires once; a spawn still misplaced afterwards stays.
func (r *Reconciler) keepMisplacedSpawn(rec *plan.Record, s model.Structure, res *Result) {
	if rec.MisplacedSpawn {
		return
	}
	rec.MisplacedSpawn = true
	rec.ClearCategory(plan.Spawn)
	res.Replan = true
	r.log.Warn("lone spawn off plan, replanning around it", "territory", rec.Territory, "pos", s.Position())
}
