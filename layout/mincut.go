package layout

import (
	"github.com/Mirroar/hivemind-sub000/model"
	"github.com/Mirroar/hivemind-sub000/plan"
)

// Tile capacities in the cut graph.
const (
	capCuttable = 1
	capBlocked  = 10000
	capInfinite = 1 << 30
)

type flowEdge struct {
	to  int
	cap int
}

// flowGraph is a residual graph for Dinic's max-flow. Edge i and i^1 are
// each other's reverse.
type flowGraph struct {
	edges []flowEdge
	adj   [][]int
	level []int
	iter  []int
}

func newFlowGraph(n int) *flowGraph {
	return &flowGraph{
		adj:   make([][]int, n),
		level: make([]int, n),
		iter:  make([]int, n),
	}
}

func (f *flowGraph) addEdge(u, v, c int) {
	f.adj[u] = append(f.adj[u], len(f.edges))
	f.edges = append(f.edges, flowEdge{to: v, cap: c})
	f.adj[v] = append(f.adj[v], len(f.edges))
	f.edges = append(f.edges, flowEdge{to: u, cap: 0})
}

// levels builds the BFS layering and reports whether t is reachable.
func (f *flowGraph) levels(s, t int) bool {
	for i := range f.level {
		f.level[i] = -1
	}
	f.level[s] = 0
	queue := []int{s}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, id := range f.adj[u] {
			e := f.edges[id]
			if e.cap > 0 && f.level[e.to] < 0 {
				f.level[e.to] = f.level[u] + 1
				queue = append(queue, e.to)
			}
		}
	}
	return f.level[t] >= 0
}

func (f *flowGraph) push(u, t, limit int) int {
	if u == t {
		return limit
	}
	for ; f.iter[u] < len(f.adj[u]); f.iter[u]++ {
		id := f.adj[u][f.iter[u]]
		e := f.edges[id]
		if e.cap <= 0 || f.level[e.to] != f.level[u]+1 {
			continue
		}
		if d := f.push(e.to, t, min(limit, e.cap)); d > 0 {
			f.edges[id].cap -= d
			f.edges[id^1].cap += d
			return d
		}
	}
	return 0
}

func (f *flowGraph) maxFlow(s, t int) int {
	flow := 0
	for f.levels(s, t) {
		for i := range f.iter {
			f.iter[i] = 0
		}
		for {
			d := f.push(s, t, capInfinite)
			if d == 0 {
				break
			}
			flow += d
		}
	}
	return flow
}

// residualReach marks every node reachable from s in the residual graph.
func (f *flowGraph) residualReach(s int) []bool {
	seen := make([]bool, len(f.adj))
	seen[s] = true
	stack := []int{s}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, id := range f.adj[u] {
			e := f.edges[id]
			if e.cap > 0 && !seen[e.to] {
				seen[e.to] = true
				stack = append(stack, e.to)
			}
		}
	}
	return seen
}

// minCutPerimeter finds the smallest set of tiles whose removal separates
// the protected core from the unsafe exits. Each tile is split into an in
// and an out node joined by its capacity; walls are left out of the graph.
func (p *pass) minCutPerimeter() []model.Pos {
	src, sink := 2*gridLen, 2*gridLen+1
	in := func(i int) int { return 2 * i }
	out := func(i int) int { return 2*i + 1 }

	protected := p.protectedTiles()
	dirs := p.targetDirections()
	var exitTile [gridLen]bool
	sinks := 0
	for _, e := range p.exits {
		if !dirs[e.Direction] {
			continue
		}
		for _, t := range e.Tiles {
			exitTile[t.Pack()] = true
			sinks++
		}
	}
	if sinks == 0 {
		return nil
	}

	f := newFlowGraph(2*gridLen + 2)
	var capacity [gridLen]int
	for i := 0; i < gridLen; i++ {
		pos := model.Unpack(i)
		if p.in.Terrain.AtPos(pos) == model.Wall {
			continue
		}
		switch {
		case protected[i]:
			capacity[i] = capInfinite
			f.addEdge(src, in(i), capInfinite)
		case p.cuttable(pos):
			capacity[i] = capCuttable
		default:
			capacity[i] = capBlocked
		}
		f.addEdge(in(i), out(i), capacity[i])
		for _, n := range pos.Neighbors() {
			if p.in.Terrain.AtPos(n) != model.Wall {
				f.addEdge(out(i), in(n.Pack()), capInfinite)
			}
		}
		if exitTile[i] {
			f.addEdge(out(i), sink, capInfinite)
		}
	}

	flow := f.maxFlow(src, sink)
	reach := f.residualReach(src)
	var cut []model.Pos
	for i := 0; i < gridLen; i++ {
		if capacity[i] == 0 || !reach[in(i)] || reach[out(i)] {
			continue
		}
		if capacity[i] != capCuttable {
			p.log.Warn("perimeter cut crosses an unbuildable tile", "pos", model.Unpack(i))
			continue
		}
		cut = append(cut, model.Unpack(i))
	}
	p.log.Debug("min-cut perimeter", "flow", flow, "tiles", len(cut))
	return cut
}

// cuttable reports whether a rampart may stand on pos.
func (p *pass) cuttable(pos model.Pos) bool {
	b := p.dist.BorderAt(pos)
	return b != Unreachable && int(b) >= p.opts.PerimeterDistance && !p.occupied(pos)
}

// protectedTiles marks the source side of the cut: a radius around every
// protected structure, the harvest and upgrade roads, the tiles around
// sources, controller and mineral, and the center. Tiles too close to the
// border are never protected so a cut always exists.
func (p *pass) protectedTiles() [gridLen]bool {
	var out [gridLen]bool
	mark := func(center model.Pos, r int) {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				q := center.Add(dx, dy)
				if !q.InBounds() || p.in.Terrain.AtPos(q) == model.Wall {
					continue
				}
				if b := p.dist.BorderAt(q); b == Unreachable || int(b) <= p.opts.PerimeterDistance {
					continue
				}
				out[q.Pack()] = true
			}
		}
	}
	for _, c := range p.plan.Categories() {
		if !protectedCategory(c) {
			continue
		}
		for _, pos := range p.plan.Positions(c) {
			mark(pos, p.opts.ProtectRadius)
		}
	}
	for _, c := range []plan.Category{plan.RoadSource, plan.RoadController} {
		for _, pos := range p.plan.Positions(c) {
			mark(pos, 0)
		}
	}
	for _, obj := range p.objects() {
		mark(obj, 1)
	}
	mark(p.center, p.opts.ProtectRadius)
	return out
}
