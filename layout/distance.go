package layout

import (
	"github.com/Mirroar/hivemind-sub000/model"
	"github.com/Mirroar/hivemind-sub000/plan"
)

// Unreachable marks walls and tiles a distance transform never reached.
const Unreachable uint8 = 255

const gridLen = model.Size * model.Size

// Distances is a read-only view over the two finished matrices.
type Distances struct {
	Wall   []uint8
	Border []uint8
}

func (d Distances) WallAt(p model.Pos) uint8 {
	if !p.InBounds() {
		return Unreachable
	}
	return d.Wall[p.Pack()]
}

func (d Distances) BorderAt(p model.Pos) uint8 {
	if !p.InBounds() {
		return Unreachable
	}
	return d.Border[p.Pack()]
}

// NewDistanceState seeds the wall matrix and returns a checkpoint ready for
// AdvanceDistance.
func NewDistanceState(t *model.Terrain) *plan.DistanceState {
	return &plan.DistanceState{
		Wall:  seedWall(t),
		Stage: plan.DistanceStageWall,
		Level: 1,
	}
}

// ComputeDistances runs both transforms to completion.
func ComputeDistances(t *model.Terrain) Distances {
	st := NewDistanceState(t)
	AdvanceDistance(t, st, Unlimited{})
	return Distances{Wall: st.Wall, Border: st.Border}
}

// AdvanceDistance relaxes the matrices one distance level per budget check
// and reports whether both are complete.
func AdvanceDistance(t *model.Terrain, st *plan.DistanceState, b Budget) bool {
	for st.Stage != plan.DistanceStageDone {
		if b.Exhausted() {
			return false
		}
		m := st.Wall
		if st.Stage == plan.DistanceStageBorder {
			m = st.Border
		}
		if st.Level < Unreachable-1 && relax(m, st.Level) {
			st.Level++
			continue
		}

		// No change in a full pass: this matrix is final.
		for i, v := range m {
			if v == 0 {
				m[i] = Unreachable
			}
		}
		if st.Stage == plan.DistanceStageWall {
			st.Border = seedBorder(t)
			st.Stage = plan.DistanceStageBorder
			st.Level = 1
			continue
		}
		st.Stage = plan.DistanceStageDone
	}
	return true
}

// seedWall marks walls as unreachable and every tile touching a wall as 1.
// Out-of-bounds reads as wall, so the border ring is seeded too.
func seedWall(t *model.Terrain) []uint8 {
	m := make([]uint8, gridLen)
	for i := range m {
		p := model.Unpack(i)
		if t.AtPos(p) == model.Wall {
			m[i] = Unreachable
			continue
		}
		for _, o := range model.Offsets8 {
			if t.At(p.X+o[0], p.Y+o[1]) == model.Wall {
				m[i] = 1
				break
			}
		}
	}
	return m
}

// seedBorder marks the walkable edge tiles as 1.
func seedBorder(t *model.Terrain) []uint8 {
	m := make([]uint8, gridLen)
	for i := range m {
		p := model.Unpack(i)
		switch {
		case t.AtPos(p) == model.Wall:
			m[i] = Unreachable
		case p.OnBorder():
			m[i] = 1
		}
	}
	return m
}

// relax sets every unassigned tile next to a tile of value d to d+1.
// Newly written values are d+1, so one pass never cascades.
func relax(m []uint8, d uint8) bool {
	changed := false
	for i, v := range m {
		if v != 0 {
			continue
		}
		p := model.Unpack(i)
		for _, o := range model.Offsets8 {
			n := p.Add(o[0], o[1])
			if n.InBounds() && m[n.Pack()] == d {
				m[i] = d + 1
				changed = true
				break
			}
		}
	}
	return changed
}
