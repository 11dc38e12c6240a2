// Package safety decides which borders of a territory face danger by
// walking the cached exit graph of the surrounding territories.
package safety

import (
	"slices"
	"sync"

	"github.com/zyedidia/generic/mapset"

	"github.com/Mirroar/hivemind-sub000/model"
)

// Status is the verdict for one territory.
type Status struct {
	Safe          [4]bool
	SafeNeighbors []string
}

// Equal reports whether two verdicts would produce the same perimeter.
func (s Status) Equal(o Status) bool { return s.Safe == o.Safe }

// Oracle holds the latest intel per territory. Intel older than MaxAge
// ticks is treated like missing intel.
type Oracle struct {
	mu     sync.RWMutex
	intel  map[string]model.TerritoryIntel
	MaxAge int
}

func NewOracle(maxAge int) *Oracle {
	return &Oracle{intel: make(map[string]model.TerritoryIntel), MaxAge: maxAge}
}

// Update stores intel, keeping the newest report for each territory.
func (o *Oracle) Update(reports ...model.TerritoryIntel) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, r := range reports {
		if cur, ok := o.intel[r.Name]; ok && cur.Tick > r.Tick {
			continue
		}
		o.intel[r.Name] = r
	}
}

func (o *Oracle) lookup(name string, now int) (model.TerritoryIntel, bool) {
	in, ok := o.intel[name]
	if !ok {
		return in, false
	}
	if o.MaxAge > 0 && now-in.Tick > o.MaxAge {
		return in, false
	}
	return in, true
}

// Check walks outward from every exit of territory up to rng territories
// deep. A direction is safe only if the walk ends in owned or friendly
// territory or dead ends before the bound; missing intel, hostiles and
// hitting the bound all make it unsafe. Directions whose walks meet share
// one verdict.
func (o *Oracle) Check(territory string, rng, now int) Status {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var st Status
	home, ok := o.lookup(territory, now)
	if !ok {
		return st
	}

	var seen [4]mapset.Set[string]
	for _, d := range model.Directions {
		next := home.Exits[d]
		if next == "" {
			st.Safe[d] = true
			continue
		}
		st.Safe[d], seen[d] = o.walk(territory, next, rng, now)
	}

	// Walks that reach the same territory describe one approach.
	for changed := true; changed; {
		changed = false
		for _, a := range model.Directions {
			for _, b := range model.Directions {
				if a >= b || seen[a].Size() == 0 || seen[b].Size() == 0 || st.Safe[a] == st.Safe[b] {
					continue
				}
				if intersects(seen[a], seen[b]) {
					st.Safe[a], st.Safe[b] = false, false
					changed = true
				}
			}
		}
	}

	for _, d := range model.Directions {
		if next := home.Exits[d]; next != "" && st.Safe[d] {
			st.SafeNeighbors = append(st.SafeNeighbors, next)
		}
	}
	slices.Sort(st.SafeNeighbors)
	st.SafeNeighbors = slices.Compact(st.SafeNeighbors)
	return st
}

// walk runs a breadth-first search from start and returns the verdict
// plus every territory it visited.
func (o *Oracle) walk(home, start string, rng, now int) (bool, mapset.Set[string]) {
	type node struct {
		name  string
		depth int
	}
	seen := mapset.New[string]()
	seen.Put(home)
	seen.Put(start)
	queue := []node{{start, 1}}
	safe := true
	for len(queue) > 0 && safe {
		cur := queue[0]
		queue = queue[1:]
		in, ok := o.lookup(cur.name, now)
		switch {
		case !ok, in.Hostile:
			safe = false
			continue
		case in.Owned, in.Friendly:
			continue
		}
		for _, d := range model.Directions {
			next := in.Exits[d]
			if next == "" || seen.Has(next) {
				continue
			}
			if cur.depth >= rng {
				safe = false
				break
			}
			seen.Put(next)
			queue = append(queue, node{next, cur.depth + 1})
		}
	}
	seen.Remove(home)
	return safe, seen
}

func intersects(a, b mapset.Set[string]) bool {
	found := false
	a.Each(func(name string) {
		if b.Has(name) {
			found = true
		}
	})
	return found
}
