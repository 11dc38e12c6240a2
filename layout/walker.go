package layout

import "github.com/Mirroar/hivemind-sub000/model"

// Spot walk bounds.
const (
	walkMinBorder = 6 // never wander closer to exits than this
	walkMinRange  = 3 // keep the core compound clear
)

// walker yields build spots in breadth-first order outward from an origin.
// It reads the grid live, so it must be recreated after the grid changes.
type walker struct {
	g      *grid
	origin model.Pos
	queue  []model.Pos
	seen   [gridLen]bool
}

func (g *grid) newWalker(origin model.Pos) *walker {
	w := &walker{g: g, origin: origin, queue: []model.Pos{origin}}
	w.seen[origin.Pack()] = true
	return w
}

// next returns the next free spot, or false once the walk is exhausted.
func (w *walker) next() (model.Pos, bool) {
	for len(w.queue) > 0 {
		cur := w.queue[0]
		w.queue = w.queue[1:]
		for _, n := range cur.Neighbors() {
			k := n.Pack()
			if w.seen[k] {
				continue
			}
			w.seen[k] = true
			b := w.g.dist.BorderAt(n)
			if b == Unreachable || b < walkMinBorder || !w.g.passable(n) {
				continue
			}
			w.queue = append(w.queue, n)
		}
		if cur != w.origin && cur.Range(w.origin) > walkMinRange && w.g.free(cur) {
			return cur, true
		}
	}
	return model.Pos{}, false
}
