package layout

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Mirroar/hivemind-sub000/model"
	"github.com/Mirroar/hivemind-sub000/plan"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func ptr(p model.Pos) *model.Pos { return &p }

// scenarioInput is an open territory with exits on every side, two
// sources, a controller and a mineral.
func scenarioInput() Input {
	return Input{
		Terrain:    openTerrain(),
		Controller: ptr(model.Pos{X: 30, Y: 12}),
		Sources:    []model.Pos{{X: 12, Y: 14}, {X: 38, Y: 36}},
		Mineral:    ptr(model.Pos{X: 14, Y: 38}),
	}
}

func TestPlanScenarioOpenTerritory(t *testing.T) {
	opts := DefaultOptions()
	p, err := Plan(scenarioInput(), opts)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if p.Center != (model.Pos{X: 25, Y: 25}) {
		t.Errorf("center = %v, want (25,25)", p.Center)
	}

	fixed := []struct {
		c   plan.Category
		pos model.Pos
	}{
		{plan.Road, model.Pos{X: 25, Y: 25}},
		{plan.Storage, model.Pos{X: 25, Y: 24}},
		{plan.LinkCore, model.Pos{X: 26, Y: 25}},
		{plan.Terminal, model.Pos{X: 25, Y: 26}},
		{plan.Lab, model.Pos{X: 24, Y: 25}},
		{plan.Extractor, model.Pos{X: 14, Y: 38}},
	}
	for _, f := range fixed {
		if !p.Has(f.c, f.pos) {
			t.Errorf("%s not planned at %v", f.c, f.pos)
		}
	}

	counts := []struct {
		c    plan.Category
		want int
	}{
		{plan.Spawn, opts.Spawns},
		{plan.Lab, 10},
		{plan.Extension, opts.Extensions},
		{plan.Tower, opts.Towers},
		{plan.ContainerSource, 2},
		{plan.ContainerMineral, 1},
		{plan.LinkSource, 2},
		{plan.LinkController, 1},
		{plan.Storage, 1},
		{plan.Terminal, 1},
		{plan.Observer, 1},
		{plan.PowerSpawn, 1},
		{plan.Nuker, 1},
		{plan.Factory, 1},
		{plan.Parking, 1},
	}
	for _, tt := range counts {
		if got := p.Count(tt.c); got != tt.want {
			t.Errorf("Count(%s) = %d, want %d", tt.c, got, tt.want)
		}
	}
	if p.Count(plan.RoadSource) == 0 || p.Count(plan.RoadController) == 0 || p.Count(plan.RoadMineral) == 0 {
		t.Error("resource routes missing")
	}
	if p.Count(plan.Rampart)+p.Count(plan.RampartRoad) == 0 {
		t.Error("no perimeter planned")
	}
}

func TestPlanCategoriesMutuallyCompatible(t *testing.T) {
	for _, s := range []Strategy{StrategyFloodFill, StrategyMinCut} {
		opts := DefaultOptions()
		opts.Strategy = s
		in := scenarioInput()
		p, err := Plan(in, opts)
		if err != nil {
			t.Fatalf("%s: Plan: %v", s, err)
		}
		for i := 0; i < gridLen; i++ {
			pos := model.Unpack(i)
			cats := p.CategoriesAt(pos)
			if len(cats) > 0 && in.Terrain.AtPos(pos) == model.Wall {
				t.Errorf("%s: %v planned on a wall", s, cats)
			}
			for a := range cats {
				for b := a + 1; b < len(cats); b++ {
					if !plan.Compatible(cats[a], cats[b]) {
						t.Errorf("%s: %s and %s share %v", s, cats[a], cats[b], pos)
					}
				}
			}
		}
	}
}

// northSouthInput walls the west and east columns so only the north and
// south borders have exits.
func northSouthInput(source model.Pos) Input {
	terrain := openTerrain()
	for y := 0; y < model.Size; y++ {
		terrain.Set(0, y, model.Wall)
		terrain.Set(model.Size-1, y, model.Wall)
	}
	return Input{Terrain: terrain, Sources: []model.Pos{source}}
}

// escapes floods from every interior anchor and its open neighbors without
// crossing ramparts and reports the first anchor that reaches an exit tile
// of a walled direction.
func escapes(in Input, p *plan.Plan, dirs [4]bool) (model.Pos, bool) {
	exit := map[model.Pos]bool{}
	for _, e := range FindExits(in.Terrain) {
		if dirs[e.Direction] {
			for _, t := range e.Tiles {
				exit[t] = true
			}
		}
	}
	blocked := func(q model.Pos) bool {
		return !q.InBounds() || in.Terrain.AtPos(q) == model.Wall || p.HasAny(q, plan.Rampart, plan.RampartRoad)
	}

	anchors := append([]model.Pos{p.Center}, in.Sources...)
	if in.Controller != nil {
		anchors = append(anchors, *in.Controller)
	}
	if in.Mineral != nil {
		anchors = append(anchors, *in.Mineral)
	}
	for _, a := range anchors {
		var seen [gridLen]bool
		queue := []model.Pos{a}
		seen[a.Pack()] = true
		for _, n := range a.Neighbors() {
			if !blocked(n) {
				seen[n.Pack()] = true
				queue = append(queue, n)
			}
		}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if exit[cur] {
				return a, true
			}
			for _, n := range cur.Neighbors() {
				if seen[n.Pack()] || blocked(n) {
					continue
				}
				seen[n.Pack()] = true
				queue = append(queue, n)
			}
		}
	}
	return model.Pos{}, false
}

func TestPerimeterEnclosesAnchors(t *testing.T) {
	all := [4]bool{true, true, true, true}
	withController := northSouthInput(model.Pos{X: 8, Y: 20})
	withController.Controller = ptr(model.Pos{X: 41, Y: 29})

	inputs := []struct {
		name string
		in   Input
	}{
		{"open territory", scenarioInput()},
		{"north south single source", northSouthInput(model.Pos{X: 10, Y: 20})},
		{"north south source and controller", withController},
	}
	for _, tt := range inputs {
		for _, s := range []Strategy{StrategyFloodFill, StrategyMinCut} {
			t.Run(tt.name+"/"+string(s), func(t *testing.T) {
				opts := DefaultOptions()
				opts.Strategy = s
				p, err := Plan(tt.in, opts)
				if err != nil {
					t.Fatalf("Plan: %v", err)
				}
				if p.Count(plan.Rampart)+p.Count(plan.RampartRoad) == 0 {
					t.Fatal("no perimeter planned")
				}
				if a, ok := escapes(tt.in, p, all); ok {
					t.Errorf("anchor %v reaches an exit without crossing a rampart", a)
				}
			})
		}
	}
}

func TestPlanMinCutKeepsTowersOffRamparts(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = StrategyMinCut
	for _, x := range []int{3, 5, 8, 10} {
		in := northSouthInput(model.Pos{X: x, Y: 20})
		p, err := Plan(in, opts)
		if err != nil {
			t.Fatalf("source x=%d: Plan: %v", x, err)
		}
		if got := p.Count(plan.Tower); got != opts.Towers {
			t.Errorf("source x=%d: Count(tower) = %d, want %d", x, got, opts.Towers)
		}
		for _, pos := range p.Positions(plan.Tower) {
			if p.HasAny(pos, plan.Rampart, plan.RampartRoad) {
				t.Errorf("source x=%d: tower at %v shares a rampart tile", x, pos)
			}
		}
	}
}

func TestMinCutIsSmallerThanRing(t *testing.T) {
	in := scenarioInput()
	flood := DefaultOptions()
	cut := DefaultOptions()
	cut.Strategy = StrategyMinCut

	pf, err := Plan(in, flood)
	if err != nil {
		t.Fatalf("floodfill: %v", err)
	}
	pc, err := Plan(in, cut)
	if err != nil {
		t.Fatalf("mincut: %v", err)
	}
	nf := pf.Count(plan.Rampart) + pf.Count(plan.RampartRoad)
	nc := pc.Count(plan.Rampart) + pc.Count(plan.RampartRoad)
	if nc == 0 || nc > nf {
		t.Errorf("mincut ramparts = %d, floodfill = %d", nc, nf)
	}
}

func TestPlannerResumesAcrossTicks(t *testing.T) {
	in := scenarioInput()
	want, err := Plan(in, DefaultOptions())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	pl := NewPlanner(DefaultOptions(), discardLogger())
	rec := plan.NewRecord("W1N1")
	ticks := 0
	for {
		done, err := pl.Advance(rec, in, NewSteps(3))
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		ticks++
		if done {
			break
		}
		if ticks > 500 {
			t.Fatal("planner never finished")
		}
	}
	if ticks < 2 {
		t.Errorf("ticks = %d, expected the planner to suspend", ticks)
	}
	if rec.Phase != plan.PhaseFinalized || rec.Distance != nil {
		t.Errorf("phase = %s, distance kept = %v", rec.Phase, rec.Distance != nil)
	}
	if rec.RunID == "" {
		t.Error("RunID not assigned")
	}
	if !rec.Plan.Equal(want) {
		t.Error("resumed plan differs from a single-tick plan")
	}
}

func TestPlannerReportsIncomplete(t *testing.T) {
	rows := make([]string, model.Size)
	for y := range rows {
		if y%2 == 1 {
			rows[y] = "##################################################"
		}
	}
	in := Input{Terrain: model.TerrainFromRows(rows...)}
	pl := NewPlanner(DefaultOptions(), discardLogger())
	rec := plan.NewRecord("W2N2")
	done, err := pl.Advance(rec, in, Unlimited{})
	if done || !errors.Is(err, ErrPlanningIncomplete) {
		t.Fatalf("Advance = %v, %v; want ErrPlanningIncomplete", done, err)
	}
	if rec.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", rec.Attempts)
	}
	if rec.PlanningFinished() {
		t.Error("incomplete planning must not be readable")
	}
}

func TestOptionsValidate(t *testing.T) {
	o := Options{Strategy: "bogus", Spawns: 9, Extensions: -1, Towers: 12, PerimeterDistance: 0}
	o.Validate()
	if o.Strategy != StrategyFloodFill {
		t.Errorf("Strategy = %q, want %q", o.Strategy, StrategyFloodFill)
	}
	if o.Spawns != 3 || o.Extensions != 0 || o.Towers != 6 || o.PerimeterDistance != 2 {
		t.Errorf("clamped options = %+v", o)
	}
}

func TestPlanNorthSouthExitsOnly(t *testing.T) {
	source := model.Pos{X: 10, Y: 20}
	in := northSouthInput(source)
	p, err := Plan(in, DefaultOptions())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	route := p.Positions(plan.RoadSource)
	if len(route) == 0 {
		t.Fatal("no road from the source")
	}
	nearSource := false
	for _, pos := range route {
		if pos.Range(source) == 1 {
			nearSource = true
		}
	}
	if !nearSource {
		t.Error("source road does not start next to the source")
	}

	var north, south bool
	for _, c := range []plan.Category{plan.Rampart, plan.RampartRoad} {
		for _, pos := range p.Positions(c) {
			north = north || pos.Y < 10
			south = south || pos.Y > 40
		}
	}
	if !north || !south {
		t.Errorf("rampart ring misses an exit: north=%v south=%v", north, south)
	}
	if a, ok := escapes(in, p, [4]bool{true, true, true, true}); ok {
		t.Errorf("anchor %v reaches an exit without crossing a rampart", a)
	}

	for _, s := range p.Positions(plan.Spawn) {
		road := false
		for _, n := range s.Neighbors() {
			road = road || p.HasAny(n, plan.Road, plan.RoadSource)
		}
		if !road {
			t.Errorf("spawn at %v has no adjacent road", s)
		}
	}
}
