package layout

import (
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/Mirroar/hivemind-sub000/model"
	"github.com/Mirroar/hivemind-sub000/plan"
)

// floodFillPerimeter picks ring tiles at the perimeter border distance that
// separate the base from the unsafe exits. A ring tile is kept only if the
// flood from the anchors and the flood from an unsafe exit both touch it;
// ring tiles facing safe borders or dead-end pockets are dropped.
func (p *pass) floodFillPerimeter() []model.Pos {
	ring := uint8(p.opts.PerimeterDistance)
	candidate := func(pos model.Pos) bool {
		return p.dist.BorderAt(pos) == ring && !p.occupied(pos)
	}

	anchors := append([]model.Pos{p.center}, p.objects()...)
	inner := p.flood(anchors, candidate, func(model.Pos) bool { return false })

	dirs := p.targetDirections()
	var starts []model.Pos
	for _, e := range p.exits {
		if dirs[e.Direction] {
			starts = append(starts, e.Tiles...)
		}
	}
	// Structures sitting on the ring already block the way out.
	outer := p.flood(starts, candidate, func(pos model.Pos) bool {
		return p.dist.BorderAt(pos) == ring && p.occupied(pos)
	})

	var out []model.Pos
	inner.Each(func(pos model.Pos) {
		if outer.Has(pos) {
			out = append(out, pos)
		}
	})
	sortPositions(out)
	return out
}

// occupied reports whether pos holds a source, controller or mineral, or
// anything other than road is planned there.
func (p *pass) occupied(pos model.Pos) bool {
	if slices.Contains(p.in.Sources, pos) {
		return true
	}
	if (p.in.Controller != nil && *p.in.Controller == pos) || (p.in.Mineral != nil && *p.in.Mineral == pos) {
		return true
	}
	for _, c := range p.plan.CategoriesAt(pos) {
		if !c.IsRoad() {
			return true
		}
	}
	return false
}

// flood expands from starts through walkable terrain and returns the
// candidate tiles it touched. Candidates stop the flood, as do walls and
// tiles for which stop is true.
func (p *pass) flood(starts []model.Pos, candidate, stop func(model.Pos) bool) mapset.Set[model.Pos] {
	touched := mapset.New[model.Pos]()
	var seen [gridLen]bool
	queue := make([]model.Pos, 0, len(starts))
	for _, s := range starts {
		if !s.InBounds() || seen[s.Pack()] {
			continue
		}
		seen[s.Pack()] = true
		queue = append(queue, s)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range cur.Neighbors() {
			k := n.Pack()
			if seen[k] {
				continue
			}
			seen[k] = true
			if p.in.Terrain.AtPos(n) == model.Wall || stop(n) {
				continue
			}
			if candidate(n) {
				touched.Put(n)
				continue
			}
			queue = append(queue, n)
		}
	}
	return touched
}

func sortPositions(ps []model.Pos) {
	slices.SortFunc(ps, func(a, b model.Pos) int { return a.Pack() - b.Pack() })
}

// protectedCategory reports whether the min-cut must keep c inside the
// wall. Extensions and the extractor are left out.
func protectedCategory(c plan.Category) bool {
	return c.Solid() && c != plan.Extension && c != plan.Extractor
}
