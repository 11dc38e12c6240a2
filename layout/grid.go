package layout

import (
	"github.com/Mirroar/hivemind-sub000/model"
)

// Obstruction costs used while one planning pass is in flight.
const (
	costRoad    uint8 = 1
	costFree    uint8 = 2
	costBlocked uint8 = 255
)

// grid is the obstruction matrix of a planning pass. It starts from terrain
// and accumulates planned structures so later steps avoid earlier ones.
type grid struct {
	cost    [gridLen]uint8
	terrain *model.Terrain
	dist    Distances

	// perimeter marks planned rampart tiles. They stay passable but are
	// no longer free to build on.
	perimeter [gridLen]bool
}

func newGrid(t *model.Terrain, d Distances) *grid {
	g := &grid{terrain: t, dist: d}
	for i := range g.cost {
		p := model.Unpack(i)
		switch {
		case t.AtPos(p) == model.Wall, p.OnBorder():
			g.cost[i] = costBlocked
		default:
			g.cost[i] = costFree
		}
	}
	return g
}

func (g *grid) at(p model.Pos) uint8 {
	if !p.InBounds() {
		return costBlocked
	}
	return g.cost[p.Pack()]
}

func (g *grid) passable(p model.Pos) bool { return g.at(p) < costBlocked }

// buildable reports whether terrain allows a structure at p at all.
func (g *grid) buildable(p model.Pos) bool {
	return p.InBounds() && !p.OnBorder() && g.terrain.AtPos(p) != model.Wall
}

// free reports whether p is buildable and nothing is planned there yet.
func (g *grid) free(p model.Pos) bool {
	return g.buildable(p) && g.at(p) == costFree && !g.perimeter[p.Pack()]
}

func (g *grid) block(p model.Pos) {
	if p.InBounds() {
		g.cost[p.Pack()] = costBlocked
	}
}

func (g *grid) markPerimeter(p model.Pos) {
	if p.InBounds() {
		g.perimeter[p.Pack()] = true
	}
}

// markRoad lowers p to road cost unless something solid is already there.
func (g *grid) markRoad(p model.Pos) {
	if p.InBounds() && g.cost[p.Pack()] != costBlocked {
		g.cost[p.Pack()] = costRoad
	}
}

// reachable floods passable tiles from origin. The origin itself is always
// included.
func (g *grid) reachable(origin model.Pos) [gridLen]bool {
	var seen [gridLen]bool
	seen[origin.Pack()] = true
	queue := []model.Pos{origin}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range cur.Neighbors() {
			if seen[n.Pack()] || !g.passable(n) {
				continue
			}
			seen[n.Pack()] = true
			queue = append(queue, n)
		}
	}
	return seen
}
