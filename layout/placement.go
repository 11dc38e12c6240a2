package layout

import (
	"fmt"
	"log/slog"

	"github.com/Mirroar/hivemind-sub000/model"
	"github.com/Mirroar/hivemind-sub000/plan"
)

// pass is one in-flight planning attempt.
type pass struct {
	in        Input
	opts      Options
	log       *slog.Logger
	g         *grid
	plan      *plan.Plan
	dist      Distances
	exits     []Exit
	center    model.Pos
	entrances []model.Pos
}

func newPass(in Input, d Distances, opts Options, log *slog.Logger) (*pass, error) {
	if in.Terrain == nil {
		return nil, fmt.Errorf("%w: no terrain", ErrPlanningIncomplete)
	}
	exits := FindExits(in.Terrain)
	center, err := FindCenter(exits, d)
	if err != nil {
		return nil, err
	}
	p := &pass{
		in:     in,
		opts:   opts,
		log:    log,
		g:      newGrid(in.Terrain, d),
		plan:   plan.New(center),
		dist:   d,
		exits:  exits,
		center: center,
	}
	for _, obj := range p.objects() {
		p.g.block(obj)
	}
	return p, nil
}

// objects lists the fixed points of interest: sources, controller, mineral.
func (p *pass) objects() []model.Pos {
	out := append([]model.Pos(nil), p.in.Sources...)
	if p.in.Controller != nil {
		out = append(out, *p.in.Controller)
	}
	if p.in.Mineral != nil {
		out = append(out, *p.in.Mineral)
	}
	return out
}

// add records a placement and updates the obstruction matrix.
func (p *pass) add(c plan.Category, pos model.Pos) error {
	if err := p.plan.Add(c, pos); err != nil {
		return err
	}
	switch {
	case c.IsRoad():
		p.g.markRoad(pos)
	case c.IsPerimeter():
		p.g.markPerimeter(pos)
	case c.Layer() == plan.LayerWalkable:
		if p.g.at(pos) != costRoad {
			p.g.block(pos)
		}
	default:
		p.g.block(pos)
	}
	return nil
}

// fits reports whether c may join whatever is already planned at pos.
func (p *pass) fits(c plan.Category, pos model.Pos) bool {
	if !p.g.buildable(pos) {
		return false
	}
	for _, other := range p.plan.CategoriesAt(pos) {
		if !plan.Compatible(c, other) {
			return false
		}
	}
	return true
}

// routeTo plans a road of category c from start to the core entrances and
// returns the path ordered from start toward the center.
func (p *pass) routeTo(start model.Pos, c plan.Category) ([]model.Pos, error) {
	path, ok := p.g.findPath(start, p.entrances)
	if !ok {
		return nil, fmt.Errorf("%w: no %s route from %v", ErrPlanningIncomplete, c, start)
	}
	for _, pos := range path {
		if err := p.add(c, pos); err != nil {
			return nil, err
		}
	}
	return path, nil
}

// placeCore lays out the compound around the center: storage, core link,
// terminal and one lab orthogonally adjacent, roads on the diagonals and
// on the four entrances at range two.
func (p *pass) placeCore() error {
	c := p.center
	if err := p.add(plan.Road, c); err != nil {
		return err
	}
	for _, o := range model.Offsets8[4:] {
		if err := p.add(plan.Road, c.Add(o[0], o[1])); err != nil {
			return err
		}
	}
	core := []struct {
		dx, dy int
		cat    plan.Category
	}{
		{0, -1, plan.Storage},
		{1, 0, plan.LinkCore},
		{0, 1, plan.Terminal},
		{-1, 0, plan.Lab},
	}
	for _, s := range core {
		if err := p.add(s.cat, c.Add(s.dx, s.dy)); err != nil {
			return err
		}
	}
	for _, o := range model.Offsets8[:4] {
		e := c.Add(o[0]*2, o[1]*2)
		if !p.g.buildable(e) {
			continue
		}
		if err := p.add(plan.Road, e); err != nil {
			return err
		}
		p.entrances = append(p.entrances, e)
	}
	if len(p.entrances) == 0 {
		return fmt.Errorf("%w: core at %v has no entrance", ErrPlanningIncomplete, c)
	}
	return nil
}

// routeResources connects sources, controller and mineral to the core and
// places their containers, links and the extractor.
func (p *pass) routeResources() error {
	for _, src := range p.in.Sources {
		path, err := p.routeTo(src, plan.RoadSource)
		if err != nil {
			return err
		}
		if len(path) == 0 {
			return fmt.Errorf("%w: source %v sits on the core", ErrPlanningIncomplete, src)
		}
		// The harvest tile is occupied by a worker, keep later routes off it.
		p.g.block(path[0])
		if err := p.placeContainer(path, src, plan.ContainerSource); err != nil {
			return err
		}
		if err := p.placeLink(path[0], plan.LinkSource); err != nil {
			return err
		}
	}

	if ctrl := p.in.Controller; ctrl != nil {
		path, err := p.routeTo(*ctrl, plan.RoadController)
		if err != nil {
			return err
		}
		near := *ctrl
		if len(path) > 0 {
			near = path[0]
		}
		if err := p.placeLink(near, plan.LinkController); err != nil {
			return err
		}
	}

	if m := p.in.Mineral; m != nil {
		path, err := p.routeTo(*m, plan.RoadMineral)
		if err != nil {
			return err
		}
		if len(path) > 0 {
			p.g.block(path[0])
			if err := p.placeContainer(path, *m, plan.ContainerMineral); err != nil {
				return err
			}
		}
		if err := p.plan.Add(plan.Extractor, *m); err != nil {
			return err
		}
	}
	return nil
}

// placeContainer prefers the tile after the harvest tile, then the harvest
// tile itself, then any free tile next to the object.
func (p *pass) placeContainer(path []model.Pos, object model.Pos, c plan.Category) error {
	var candidates []model.Pos
	if len(path) > 1 {
		candidates = append(candidates, path[1])
	}
	candidates = append(candidates, path[0])
	for _, pos := range candidates {
		if p.fits(c, pos) {
			return p.add(c, pos)
		}
	}
	for _, n := range object.Neighbors() {
		if p.g.free(n) {
			return p.add(c, n)
		}
	}
	p.log.Warn("no room for container", "category", c, "object", object)
	return nil
}

// placeLink puts a link next to near, on the free tile closest to the center.
func (p *pass) placeLink(near model.Pos, c plan.Category) error {
	var best model.Pos
	found := false
	for _, n := range near.Neighbors() {
		if !p.g.free(n) {
			continue
		}
		if !found || n.Range(p.center) < best.Range(p.center) {
			best, found = n, true
		}
	}
	if !found {
		p.log.Warn("no room for link", "category", c, "near", near)
		return nil
	}
	return p.add(c, best)
}

// routeExits connects every exit run to the core. Unreachable exits are
// skipped; they only matter for traffic.
func (p *pass) routeExits() error {
	for _, e := range p.exits {
		path, ok := p.g.findPath(e.Center, p.entrances)
		if !ok {
			p.log.Warn("exit unreachable from core", "direction", e.Direction, "exit", e.Center)
			continue
		}
		for _, pos := range path {
			if err := p.add(plan.Road, pos); err != nil {
				return err
			}
		}
	}
	return nil
}

// placeSpawns puts spawns on walker spots with all four orthogonal
// neighbors open, ringed by road. An anchored spawn goes first.
func (p *pass) placeSpawns() error {
	placed := 0
	if a := p.in.AnchorSpawn; a != nil && p.g.free(*a) {
		if err := p.placeSpawnAt(*a); err != nil {
			return err
		}
		placed++
	}
	for placed < p.opts.Spawns {
		spot, ok := p.findSpot(p.spawnFits)
		if !ok {
			break
		}
		if err := p.placeSpawnAt(spot); err != nil {
			return err
		}
		placed++
	}
	if placed == 0 {
		return fmt.Errorf("%w: no spawn spot", ErrPlanningIncomplete)
	}
	if placed < p.opts.Spawns {
		p.log.Warn("fewer spawns than requested", "placed", placed, "want", p.opts.Spawns)
	}
	return nil
}

func (p *pass) spawnFits(spot model.Pos) bool {
	for _, n := range spot.Orthogonal() {
		if !p.g.buildable(n) || (!p.g.free(n) && p.g.at(n) != costRoad) {
			return false
		}
	}
	return true
}

func (p *pass) placeSpawnAt(spot model.Pos) error {
	if err := p.add(plan.Spawn, spot); err != nil {
		return err
	}
	var entry model.Pos
	found := false
	for _, n := range spot.Orthogonal() {
		if p.g.free(n) {
			if err := p.add(plan.Road, n); err != nil {
				return err
			}
		}
		if p.g.at(n) != costRoad {
			continue
		}
		if !found || n.Range(p.center) < entry.Range(p.center) {
			entry, found = n, true
		}
	}
	if !found {
		return fmt.Errorf("%w: spawn at %v has no access road", ErrPlanningIncomplete, spot)
	}
	_, err := p.routeTo(entry, plan.Road)
	return err
}

// findSpot returns the first walker spot accepted by ok.
func (p *pass) findSpot(ok func(model.Pos) bool) (model.Pos, bool) {
	w := p.g.newWalker(p.center)
	for {
		spot, more := w.next()
		if !more {
			return model.Pos{}, false
		}
		if ok(spot) {
			return spot, true
		}
	}
}

// placeParking reserves one idle tile for the core manager.
func (p *pass) placeParking() error {
	spot, ok := p.findSpot(func(model.Pos) bool { return true })
	if !ok {
		p.log.Warn("no parking spot")
		return nil
	}
	return p.add(plan.Parking, spot)
}

// labTemplate is anchored at its top-left corner. R is road, L is lab.
var labTemplate = []string{
	"RLLL",
	"LRLL",
	"LLRL",
}

// placeLabs fits the lab template at the first walker spot where every
// tile is free.
func (p *pass) placeLabs() error {
	anchor, ok := p.findSpot(func(spot model.Pos) bool {
		for y, row := range labTemplate {
			for x := range row {
				if !p.g.free(spot.Add(x, y)) {
					return false
				}
			}
		}
		return true
	})
	if !ok {
		return fmt.Errorf("%w: lab template does not fit", ErrPlanningIncomplete)
	}

	var entry model.Pos
	found := false
	for y, row := range labTemplate {
		for x, ch := range row {
			pos := anchor.Add(x, y)
			c := plan.Lab
			if ch == 'R' {
				c = plan.Road
				if !found || pos.Range(p.center) < entry.Range(p.center) {
					entry, found = pos, true
				}
			}
			if err := p.add(c, pos); err != nil {
				return err
			}
		}
	}
	_, err := p.routeTo(entry, plan.Road)
	return err
}

// bayMinTiles is the least number of free neighbors a bay center needs.
const bayMinTiles = 4

// placeBays fills extension bays until the quota is met or no candidate
// remains. Every round either places at least one extension or stops, so
// cramped terrain terminates with a partial quota.
func (p *pass) placeBays() error {
	remaining := p.opts.Extensions
	for remaining > 0 {
		center, ok := p.bestBay()
		if !ok {
			p.log.Warn("extension quota not met", "missing", remaining)
			break
		}
		n, err := p.fillBay(center, remaining)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		remaining -= n
	}
	return nil
}

// freeNeighbors counts free tiles around pos.
func (p *pass) freeNeighbors(pos model.Pos) int {
	n := 0
	for _, q := range pos.Neighbors() {
		if p.g.free(q) {
			n++
		}
	}
	return n
}

// bestBay picks a bay center. A full ring of eight always wins; otherwise
// more tiles and less distance score higher.
func (p *pass) bestBay() (model.Pos, bool) {
	var best model.Pos
	bestFull, found := false, false
	bestScore := 0.0
	w := p.g.newWalker(p.center)
	for {
		spot, ok := w.next()
		if !ok {
			break
		}
		count := p.freeNeighbors(spot)
		if count < bayMinTiles {
			continue
		}
		full := count == 8
		score := float64(count) / float64(spot.Range(p.center)+10)
		switch {
		case !found, full && !bestFull, full == bestFull && score > bestScore:
			best, bestFull, bestScore, found = spot, full, score, true
		}
	}
	return best, found
}

// fillBay turns center into a road hub and fills its free neighbors with
// up to limit extensions. A road already touching the hub serves as its
// entry; otherwise the free neighbor closest to the core becomes one.
func (p *pass) fillBay(center model.Pos, limit int) (int, error) {
	if err := p.add(plan.Road, center); err != nil {
		return 0, err
	}
	var tiles []model.Pos
	var entry, road model.Pos
	found, hasRoad := false, false
	for _, n := range center.Neighbors() {
		if p.g.buildable(n) && p.g.at(n) == costRoad {
			if !hasRoad || n.Range(p.center) < road.Range(p.center) {
				road, hasRoad = n, true
			}
			continue
		}
		if !p.g.free(n) {
			continue
		}
		tiles = append(tiles, n)
		if !found || n.Range(p.center) < entry.Range(p.center) {
			entry, found = n, true
		}
	}
	if len(tiles) == 0 {
		return 0, nil
	}
	if hasRoad {
		entry = road
	} else if err := p.add(plan.Road, entry); err != nil {
		return 0, err
	}
	placed := 0
	for _, t := range tiles {
		if t == entry || placed >= limit {
			continue
		}
		if err := p.add(plan.Extension, t); err != nil {
			return placed, err
		}
		placed++
	}
	if _, err := p.routeTo(entry, plan.Road); err != nil {
		p.log.Debug("bay not connected", "center", center, "err", err)
	}
	return placed, nil
}

// placeSingletons places the one-off late-game structures.
func (p *pass) placeSingletons() error {
	for _, c := range []plan.Category{plan.Observer, plan.PowerSpawn, plan.Nuker, plan.Factory} {
		spot, ok := p.findSpot(func(spot model.Pos) bool {
			for _, n := range spot.Neighbors() {
				if p.g.passable(n) {
					return true
				}
			}
			return false
		})
		if !ok {
			p.log.Warn("no spot for structure", "category", c)
			continue
		}
		if err := p.add(c, spot); err != nil {
			return err
		}
	}
	return nil
}

// targetDirections lists the directions to wall off. When every direction
// is safe all of them are used, so a perimeter always exists.
func (p *pass) targetDirections() [4]bool {
	var out [4]bool
	unsafe := false
	for _, d := range model.Directions {
		out[d] = !p.in.Safe[d]
		unsafe = unsafe || out[d]
	}
	if !unsafe {
		out = [4]bool{true, true, true, true}
	}
	return out
}

// placePerimeter derives the rampart line with the configured strategy.
// Ramparts over roads get their own first-tier category.
func (p *pass) placePerimeter() error {
	var tiles []model.Pos
	if p.opts.Strategy == StrategyMinCut {
		tiles = p.minCutPerimeter()
	} else {
		tiles = p.floodFillPerimeter()
	}
	for _, pos := range tiles {
		c := plan.Rampart
		if p.plan.HasAny(pos, plan.RoadSource, plan.RoadController, plan.RoadMineral, plan.Road) {
			c = plan.RampartRoad
		}
		if !p.fits(c, pos) {
			continue
		}
		if err := p.add(c, pos); err != nil {
			return err
		}
	}
	p.log.Debug("perimeter placed", "strategy", p.opts.Strategy, "tiles", len(tiles))
	return nil
}
