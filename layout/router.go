package layout

import (
	"container/heap"

	"github.com/Mirroar/hivemind-sub000/model"
)

// --- A* road routing ---

type pathNode struct {
	pos    model.Pos
	g, h   int
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	fi, fj := ol[i].g+ol[i].h, ol[j].g+ol[j].h
	if fi != fj {
		return fi < fj
	}
	return ol[i].pos.Pack() < ol[j].pos.Pack()
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

// findPath returns the cheapest path from start to any goal using the
// obstruction matrix as step cost. The start tile is exempt from its own
// cost (it is usually an object like a source) and is not part of the
// result; the goal is. Returns false if no goal is reachable.
func (g *grid) findPath(start model.Pos, goals []model.Pos) ([]model.Pos, bool) {
	if len(goals) == 0 {
		return nil, false
	}
	isGoal := make(map[model.Pos]bool, len(goals))
	for _, p := range goals {
		isGoal[p] = true
	}
	if isGoal[start] {
		return nil, true
	}
	heuristic := func(p model.Pos) int {
		best := -1
		for _, q := range goals {
			if r := p.Range(q); best < 0 || r < best {
				best = r
			}
		}
		return best * int(costRoad)
	}

	startNode := &pathNode{pos: start, h: heuristic(start)}
	ol := &openList{startNode}
	heap.Init(ol)

	var closed [gridLen]bool
	best := make(map[int]*pathNode)
	best[start.Pack()] = startNode

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		k := cur.pos.Pack()
		if closed[k] {
			continue
		}
		closed[k] = true
		if isGoal[cur.pos] {
			return buildPath(cur), true
		}

		for _, n := range cur.pos.Neighbors() {
			if !g.passable(n) {
				continue
			}
			nk := n.Pack()
			if closed[nk] {
				continue
			}
			ng := cur.g + int(g.at(n))
			if prev, ok := best[nk]; ok && ng >= prev.g {
				continue
			}
			node := &pathNode{pos: n, g: ng, h: heuristic(n), parent: cur}
			best[nk] = node
			heap.Push(ol, node)
		}
	}
	return nil, false
}

// buildPath unwinds parents into start-exclusive order.
func buildPath(end *pathNode) []model.Pos {
	var cells []model.Pos
	for n := end; n.parent != nil; n = n.parent {
		cells = append(cells, n.pos)
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}
