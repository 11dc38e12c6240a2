package layout

import (
	"slices"
	"testing"

	"github.com/Mirroar/hivemind-sub000/model"
)

func openTerrain() *model.Terrain { return &model.Terrain{} }

func TestDistancesOpenTerrain(t *testing.T) {
	d := ComputeDistances(openTerrain())
	tests := []struct {
		pos          model.Pos
		wall, border uint8
	}{
		{model.Pos{X: 0, Y: 10}, 1, 1},
		{model.Pos{X: 1, Y: 10}, 2, 2},
		{model.Pos{X: 5, Y: 20}, 6, 6},
		{model.Pos{X: 24, Y: 24}, 25, 25},
		{model.Pos{X: 49, Y: 49}, 1, 1},
	}
	for _, tt := range tests {
		if got := d.WallAt(tt.pos); got != tt.wall {
			t.Errorf("WallAt(%v) = %d, want %d", tt.pos, got, tt.wall)
		}
		if got := d.BorderAt(tt.pos); got != tt.border {
			t.Errorf("BorderAt(%v) = %d, want %d", tt.pos, got, tt.border)
		}
	}
}

func TestDistancesWallsAndPockets(t *testing.T) {
	terrain := openTerrain()
	// A closed 5x5 box with a walkable 3x3 inside.
	for i := 20; i <= 24; i++ {
		terrain.Set(i, 20, model.Wall)
		terrain.Set(i, 24, model.Wall)
		terrain.Set(20, i, model.Wall)
		terrain.Set(24, i, model.Wall)
	}
	d := ComputeDistances(terrain)

	if got := d.WallAt(model.Pos{X: 20, Y: 20}); got != Unreachable {
		t.Errorf("WallAt(wall) = %d, want %d", got, Unreachable)
	}
	if got := d.WallAt(model.Pos{X: 22, Y: 22}); got != 2 {
		t.Errorf("WallAt(box center) = %d, want 2", got)
	}
	if got := d.WallAt(model.Pos{X: 19, Y: 22}); got != 1 {
		t.Errorf("WallAt(next to box) = %d, want 1", got)
	}
	if got := d.BorderAt(model.Pos{X: 22, Y: 22}); got != Unreachable {
		t.Errorf("BorderAt(enclosed) = %d, want %d", got, Unreachable)
	}
	if got := d.WallAt(model.Pos{X: -1, Y: 0}); got != Unreachable {
		t.Errorf("WallAt(out of bounds) = %d, want %d", got, Unreachable)
	}
}

func TestDistancesIdempotent(t *testing.T) {
	terrain := model.TerrainFromRows(
		"##########",
		"#   ~~   ",
		"#  ###   ",
	)
	a := ComputeDistances(terrain)
	b := ComputeDistances(terrain)
	if !slices.Equal(a.Wall, b.Wall) || !slices.Equal(a.Border, b.Border) {
		t.Error("two runs over the same terrain differ")
	}
}

func TestDistancesMonotonic(t *testing.T) {
	terrain := model.TerrainFromRows("", "", "     #####", "     #", "     #")
	d := ComputeDistances(terrain)
	for i := 0; i < gridLen; i++ {
		p := model.Unpack(i)
		v := d.WallAt(p)
		if v == Unreachable {
			continue
		}
		for _, n := range p.Neighbors() {
			w := d.WallAt(n)
			if w == Unreachable {
				continue
			}
			if int(v)-int(w) > 1 || int(w)-int(v) > 1 {
				t.Fatalf("WallAt(%v) = %d but neighbor %v = %d", p, v, n, w)
			}
		}
	}
}

func TestAdvanceDistanceResumes(t *testing.T) {
	terrain := model.TerrainFromRows("", "  ####", "  #  #", "  ####")
	want := ComputeDistances(terrain)

	st := NewDistanceState(terrain)
	calls := 0
	for !AdvanceDistance(terrain, st, NewSteps(2)) {
		calls++
		if calls > 200 {
			t.Fatal("distance transform never finished")
		}
	}
	if calls == 0 {
		t.Error("expected the transform to suspend at least once")
	}
	if !slices.Equal(st.Wall, want.Wall) || !slices.Equal(st.Border, want.Border) {
		t.Error("resumed matrices differ from a single run")
	}
}

func TestBudgets(t *testing.T) {
	s := NewSteps(2)
	if s.Exhausted() || s.Exhausted() {
		t.Error("Steps(2) exhausted too early")
	}
	if !s.Exhausted() {
		t.Error("Steps(2) not exhausted after two checks")
	}
	if _, ok := NewDeadline(0).(Unlimited); !ok {
		t.Error("NewDeadline(0) should be unlimited")
	}
}
