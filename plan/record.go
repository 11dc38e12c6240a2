package plan

import (
	"github.com/Mirroar/hivemind-sub000/model"
)

// Phase is where a territory's planner stands. Planning resumes across
// ticks from the persisted phase.
type Phase uint8

const (
	PhaseAwaitingDistance Phase = iota // distance matrices incomplete
	PhasePlanning                      // matrices ready, layout pass in flight
	PhaseFinalized                     // plan complete and readable
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingDistance:
		return "awaiting-distance"
	case PhasePlanning:
		return "planning"
	case PhaseFinalized:
		return "finalized"
	}
	return "unknown"
}

// DistanceState is the checkpoint of the distance transform. Matrices are
// row-major; Stage/Level tell the analyzer where to resume.
type DistanceState struct {
	Wall   []uint8
	Border []uint8
	Stage  uint8
	Level  uint8
}

// Done reports whether both matrices are final.
func (d *DistanceState) Done() bool { return d != nil && d.Stage >= DistanceStageDone }

const (
	DistanceStageWall uint8 = iota
	DistanceStageBorder
	DistanceStageDone
)

// Record is everything persisted for one territory: the plan, the cached
// distance matrices, safety status and reconciliation bookkeeping.
type Record struct {
	Territory string
	Version   int
	Phase     Phase
	Plan      *Plan

	TerrainDigest string
	Distance      *DistanceState

	Safety        [4]bool
	SafetyKnown   bool
	SafetyTick    int
	SafeNeighbors []string

	Attempts        int
	LastAttemptTick int
	RunID           string
	FinalizedTick   int

	ReplanNextTick    bool
	MisplacedSpawn    bool
	Dismantle         map[string]bool
	LastReconcileTick int
}

// NewRecord creates the record for a newly observed territory.
func NewRecord(territory string) *Record {
	return &Record{
		Territory:         territory,
		Dismantle:         make(map[string]bool),
		LastReconcileTick: -1,
	}
}

// PlanningFinished is the gate reconciliation checks before reading the plan.
func (r *Record) PlanningFinished() bool {
	return r.Phase == PhaseFinalized && r.Plan != nil
}

// Invalidate drops the plan and cached matrices so the next tick replans
// from scratch.
func (r *Record) Invalidate() {
	r.Phase = PhaseAwaitingDistance
	r.Plan = nil
	r.Distance = nil
	r.Attempts = 0
	r.RunID = ""
	r.ReplanNextTick = false
}

// ClearCategory removes one category so the planner regenerates it. The
// plan as a whole must be rebuilt since placements interact.
func (r *Record) ClearCategory(c Category) {
	if r.Plan != nil {
		r.Plan.Clear(c)
	}
	r.ReplanNextTick = true
}

// Center returns the planned territory center.
func (r *Record) Center() (model.Pos, bool) {
	if !r.PlanningFinished() {
		return model.Pos{}, false
	}
	return r.Plan.Center, true
}

// IsPlanned answers "is position p planned for category c".
func (r *Record) IsPlanned(c Category, p model.Pos) bool {
	return r.PlanningFinished() && r.Plan.Has(c, p)
}

// PlannedPositions answers "get planned positions for category c".
func (r *Record) PlannedPositions(c Category) []model.Pos {
	if !r.PlanningFinished() {
		return nil
	}
	return r.Plan.Positions(c)
}

// QueueDismantle adds a structure to the dismantle queue without
// requesting destruction.
func (r *Record) QueueDismantle(id string) {
	if _, ok := r.Dismantle[id]; !ok {
		r.Dismantle[id] = false
	}
}

// RequestDemolition marks a queued structure for outright destruction.
func (r *Record) RequestDemolition(id string) {
	r.Dismantle[id] = true
}

// NeedsDismantling answers "does this structure need dismantling".
func (r *Record) NeedsDismantling(id string) bool {
	_, ok := r.Dismantle[id]
	return ok
}

// DemolitionRequested reports whether id may be destroyed outright.
func (r *Record) DemolitionRequested(id string) bool {
	return r.Dismantle[id]
}

// PruneDismantle drops queue entries for structures that no longer exist.
func (r *Record) PruneDismantle(alive map[string]bool) {
	for id := range r.Dismantle {
		if !alive[id] {
			delete(r.Dismantle, id)
		}
	}
}
