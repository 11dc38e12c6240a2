package layout

import (
	"fmt"
	"math"

	"github.com/Mirroar/hivemind-sub000/model"
)

// Exit is one contiguous run of walkable border tiles.
type Exit struct {
	Direction model.Direction
	Tiles     []model.Pos
	Center    model.Pos
}

// FindExits walks each border in order and splits its walkable tiles into
// runs; a gap of more than one tile starts a new run.
func FindExits(t *model.Terrain) []Exit {
	var out []Exit
	for _, d := range model.Directions {
		var cur []model.Pos
		last := -10
		flush := func() {
			if len(cur) > 0 {
				out = append(out, Exit{Direction: d, Tiles: cur, Center: cur[len(cur)/2]})
			}
			cur = nil
		}
		for i, p := range model.BorderTiles(d) {
			if t.AtPos(p) == model.Wall {
				continue
			}
			if i-last > 1 {
				flush()
			}
			cur = append(cur, p)
			last = i
		}
		flush()
	}
	return out
}

// Center thresholds: enough room for the core compound, far from exits.
const (
	centerMinWall   = 4
	centerMinBorder = 8
)

// FindCenter returns the buildable tile nearest to the mean of all exit
// centers. The mean itself is often unbuildable, so it is only a target.
func FindCenter(exits []Exit, d Distances) (model.Pos, error) {
	tx, ty := float64(model.Size-1)/2, float64(model.Size-1)/2
	if len(exits) > 0 {
		tx, ty = 0, 0
		for _, e := range exits {
			tx += float64(e.Center.X)
			ty += float64(e.Center.Y)
		}
		tx /= float64(len(exits))
		ty /= float64(len(exits))
	}

	best := model.Pos{}
	bestDist := math.Inf(1)
	for i := 0; i < gridLen; i++ {
		p := model.Unpack(i)
		w, b := d.WallAt(p), d.BorderAt(p)
		if w == Unreachable || w < centerMinWall || b == Unreachable || b <= centerMinBorder {
			continue
		}
		dx, dy := float64(p.X)-tx, float64(p.Y)-ty
		if dist := dx*dx + dy*dy; dist < bestDist {
			best, bestDist = p, dist
		}
	}
	if math.IsInf(bestDist, 1) {
		return model.Pos{}, fmt.Errorf("%w: no tile satisfies center distance constraints", ErrPlanningIncomplete)
	}
	return best, nil
}
