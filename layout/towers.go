package layout

import (
	"github.com/Mirroar/hivemind-sub000/model"
	"github.com/Mirroar/hivemind-sub000/plan"
)

type towerTarget struct {
	pos model.Pos
	dir model.Direction
}

// placeTowers greedily places towers where they cover the most uncovered
// exit and rampart tiles. Directions already served by a tower weigh less,
// which spreads coverage over all unsafe borders.
func (p *pass) placeTowers() error {
	dirs := p.targetDirections()
	var targets []towerTarget
	for _, e := range p.exits {
		if !dirs[e.Direction] {
			continue
		}
		for _, t := range e.Tiles {
			targets = append(targets, towerTarget{pos: t, dir: e.Direction})
		}
	}
	for _, c := range []plan.Category{plan.RampartRoad, plan.Rampart} {
		for _, pos := range p.plan.Positions(c) {
			targets = append(targets, towerTarget{pos: pos, dir: model.NearestBorder(pos)})
		}
	}

	covered := make([]bool, len(targets))
	var served [4]int
	for placed := 0; placed < p.opts.Towers; placed++ {
		reach := p.g.reachable(p.center)
		var best model.Pos
		var bestDir model.Direction
		bestScore := -1.0
		w := p.g.newWalker(p.center)
		for {
			spot, ok := w.next()
			if !ok {
				break
			}
			if !p.fits(plan.Tower, spot) || !reachableNeighbor(spot, &reach) {
				continue
			}
			score, dir := towerScore(spot, targets, covered, served)
			if score > bestScore {
				best, bestDir, bestScore = spot, dir, score
			}
		}
		if bestScore < 0 {
			p.log.Warn("no tower spot", "placed", placed, "want", p.opts.Towers)
			break
		}
		if err := p.add(plan.Tower, best); err != nil {
			return err
		}
		served[bestDir]++
		for i, t := range targets {
			if !covered[i] && t.pos.Range(best) <= p.opts.TowerCoverRange {
				covered[i] = true
			}
		}
	}
	return nil
}

// reachableNeighbor keeps towers refillable: some neighbor must connect to
// the center once the tower tile itself is blocked.
func reachableNeighbor(spot model.Pos, reach *[gridLen]bool) bool {
	for _, n := range spot.Neighbors() {
		if reach[n.Pack()] {
			return true
		}
	}
	return false
}

// towerScore sums inverse-range weights of uncovered targets, damped per
// direction by the towers already serving it. It also returns the
// direction contributing most.
func towerScore(spot model.Pos, targets []towerTarget, covered []bool, served [4]int) (float64, model.Direction) {
	var perDir [4]float64
	for i, t := range targets {
		if covered[i] {
			continue
		}
		perDir[t.dir] += 1 / float64(max(1, spot.Range(t.pos)))
	}
	total := 0.0
	dominant, dominantScore := model.Top, -1.0
	for _, d := range model.Directions {
		s := perDir[d] / float64(1+served[d])
		total += s
		if s > dominantScore {
			dominant, dominantScore = d, s
		}
	}
	return total, dominant
}
