package plan

import "github.com/Mirroar/hivemind-sub000/model"

// Movement costs of the navigation view.
const (
	CostRoad    uint8 = 1
	CostPlain   uint8 = 2
	CostSwamp   uint8 = 10
	CostBlocked uint8 = 255
)

// CostMatrix is a row-major movement cost grid for pathfinding
// collaborators. Zero never appears; every tile has an explicit cost.
type CostMatrix [model.Size * model.Size]uint8

func (m *CostMatrix) At(p model.Pos) uint8 { return m[p.Pack()] }

// NavigationCosts derives the cost view of a finished plan: planned roads
// are cheap, planned solid structures block even before they are built.
func NavigationCosts(p *Plan, t *model.Terrain) *CostMatrix {
	m := &CostMatrix{}
	for i := range m {
		switch t.Tiles[i] {
		case model.Wall:
			m[i] = CostBlocked
		case model.Swamp:
			m[i] = CostSwamp
		default:
			m[i] = CostPlain
		}
	}
	if p == nil {
		return m
	}
	for _, c := range p.Categories() {
		for _, pos := range p.Positions(c) {
			i := pos.Pack()
			switch {
			case c.Solid():
				m[i] = CostBlocked
			case c.IsRoad() && m[i] != CostBlocked:
				m[i] = CostRoad
			}
		}
	}
	return m
}
