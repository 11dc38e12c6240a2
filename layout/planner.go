package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Mirroar/hivemind-sub000/model"
	"github.com/Mirroar/hivemind-sub000/plan"
)

// ErrPlanningIncomplete is returned when a pass cannot find a center, a
// route or a template fit. The caller retries on a later tick.
var ErrPlanningIncomplete = errors.New("planning incomplete")

// Strategy selects how the defensive perimeter is derived.
type Strategy string

const (
	StrategyFloodFill Strategy = "floodfill"
	StrategyMinCut    Strategy = "mincut"
)

// Options tune a planning pass. Loaded from the planner section of the
// config file.
type Options struct {
	Version           int           `yaml:"version"`
	Strategy          Strategy      `yaml:"strategy"`
	MinBudget         time.Duration `yaml:"min_budget"`
	MaxAttempts       int           `yaml:"max_attempts"`
	RetryTicks        int           `yaml:"retry_ticks"`
	Spawns            int           `yaml:"spawns"`
	Extensions        int           `yaml:"extensions"`
	Towers            int           `yaml:"towers"`
	ProtectRadius     int           `yaml:"protect_radius"`
	PerimeterDistance int           `yaml:"perimeter_distance"`
	TowerCoverRange   int           `yaml:"tower_cover_range"`
}

func DefaultOptions() Options {
	return Options{
		Version:           1,
		Strategy:          StrategyFloodFill,
		MinBudget:         5 * time.Millisecond,
		MaxAttempts:       10,
		RetryTicks:        100,
		Spawns:            3,
		Extensions:        60,
		Towers:            6,
		ProtectRadius:     2,
		PerimeterDistance: 3,
		TowerCoverRange:   10,
	}
}

// Validate clamps every option to a usable range.
func (o *Options) Validate() {
	if o.Strategy != StrategyMinCut {
		o.Strategy = StrategyFloodFill
	}
	o.Version = max(o.Version, 1)
	o.MaxAttempts = clampInt(o.MaxAttempts, 1, 1000)
	o.RetryTicks = clampInt(o.RetryTicks, 1, 100000)
	o.Spawns = clampInt(o.Spawns, 1, 3)
	o.Extensions = clampInt(o.Extensions, 0, 60)
	o.Towers = clampInt(o.Towers, 0, 6)
	o.ProtectRadius = clampInt(o.ProtectRadius, 0, 5)
	o.PerimeterDistance = clampInt(o.PerimeterDistance, 2, walkMinBorder-1)
	o.TowerCoverRange = clampInt(o.TowerCoverRange, 1, 50)
	if o.MinBudget < 0 {
		o.MinBudget = 0
	}
}

// clampInt restricts v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Input is the terrain and points of interest of one territory.
type Input struct {
	Terrain    *model.Terrain
	Controller *model.Pos
	Sources    []model.Pos
	Mineral    *model.Pos

	// Safe holds per-direction safety; unsafe borders are walled off.
	Safe [4]bool

	// AnchorSpawn pins the first spawn to an existing structure that could
	// not be demolished.
	AnchorSpawn *model.Pos
}

type passStep struct {
	name string
	run  func(*pass) error
}

// passSteps run in order; the obstruction matrix carries each step's
// placements into the next.
var passSteps = []passStep{
	{"core", (*pass).placeCore},
	{"resources", (*pass).routeResources},
	{"exits", (*pass).routeExits},
	{"spawns", (*pass).placeSpawns},
	{"parking", (*pass).placeParking},
	{"labs", (*pass).placeLabs},
	{"bays", (*pass).placeBays},
	{"singletons", (*pass).placeSingletons},
	{"perimeter", (*pass).placePerimeter},
	{"towers", (*pass).placeTowers},
}

// Planner drives one territory's record from raw terrain to a finalized
// plan. Distance matrices are checkpointed in the record; the in-flight
// pass lives here and restarts from its first step if lost.
type Planner struct {
	opts Options
	log  *slog.Logger
	cur  *pass
	step int
}

func NewPlanner(opts Options, log *slog.Logger) *Planner {
	opts.Validate()
	if log == nil {
		log = slog.Default()
	}
	return &Planner{opts: opts, log: log}
}

func (pl *Planner) Options() Options { return pl.opts }

// Reset drops the in-flight pass, e.g. after the record was invalidated.
func (pl *Planner) Reset() { pl.cur = nil }

// InFlight reports whether a layout pass has started and not yet finished.
func (pl *Planner) InFlight() bool { return pl.cur != nil }

// Advance moves rec toward PhaseFinalized, stopping whenever b runs out.
// It reports true once rec holds a finished plan.
func (pl *Planner) Advance(rec *plan.Record, in Input, b Budget) (bool, error) {
	if rec.PlanningFinished() {
		return true, nil
	}
	if rec.Phase == plan.PhaseFinalized {
		rec.Phase = plan.PhaseAwaitingDistance
	}

	if rec.Phase == plan.PhaseAwaitingDistance {
		if rec.Distance == nil {
			rec.Distance = NewDistanceState(in.Terrain)
		}
		if !AdvanceDistance(in.Terrain, rec.Distance, b) {
			pl.log.Debug("distance transform suspended", "territory", rec.Territory,
				"stage", rec.Distance.Stage, "level", rec.Distance.Level)
			return false, nil
		}
		rec.Phase = plan.PhasePlanning
		pl.cur = nil
	}
	if !rec.Distance.Done() {
		rec.Phase = plan.PhaseAwaitingDistance
		return false, nil
	}

	if pl.cur == nil {
		if b.Exhausted() {
			return false, nil
		}
		rec.Attempts++
		rec.RunID = uuid.NewString()
		cur, err := newPass(in, Distances{Wall: rec.Distance.Wall, Border: rec.Distance.Border}, pl.opts, pl.log)
		if err != nil {
			return false, err
		}
		pl.cur, pl.step = cur, 0
		pl.log.Info("planning pass started", "territory", rec.Territory, "run", rec.RunID,
			"attempt", rec.Attempts, "center", cur.center)
	}

	for pl.step < len(passSteps) {
		if b.Exhausted() {
			return false, nil
		}
		s := passSteps[pl.step]
		if err := s.run(pl.cur); err != nil {
			pl.cur = nil
			return false, fmt.Errorf("plan step %s: %w", s.name, err)
		}
		pl.step++
	}

	rec.Plan = pl.cur.plan
	rec.Phase = plan.PhaseFinalized
	rec.Version = pl.opts.Version
	rec.Distance = nil
	rec.Attempts = 0
	pl.cur = nil
	pl.log.Info("plan finalized", "territory", rec.Territory, "run", rec.RunID,
		"categories", len(rec.Plan.Categories()))
	return true, nil
}

// Plan runs a complete pass without budget limits.
func Plan(in Input, opts Options) (*plan.Plan, error) {
	rec := plan.NewRecord("")
	if _, err := NewPlanner(opts, nil).Advance(rec, in, Unlimited{}); err != nil {
		return nil, err
	}
	return rec.Plan, nil
}
