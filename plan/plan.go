package plan

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/Mirroar/hivemind-sub000/model"
)

// ErrIncompatible is returned when a position is added under a category
// that cannot share its tile with a category already planned there.
var ErrIncompatible = errors.New("incompatible categories")

// Plan is the target layout of a territory: category → set of positions.
// Built by one planning pass, read-only to reconciliation.
type Plan struct {
	Center model.Pos
	sets   map[Category]mapset.Set[model.Pos]
}

func New(center model.Pos) *Plan {
	return &Plan{Center: center, sets: make(map[Category]mapset.Set[model.Pos])}
}

// Add plans pos under c.
func (p *Plan) Add(c Category, pos model.Pos) error {
	if !pos.InBounds() {
		return fmt.Errorf("plan %s at %v: out of bounds", c, pos)
	}
	for other, set := range p.sets {
		if other != c && set.Has(pos) && !Compatible(c, other) {
			return fmt.Errorf("plan %s at %v over %s: %w", c, pos, other, ErrIncompatible)
		}
	}
	set, ok := p.sets[c]
	if !ok {
		set = mapset.New[model.Pos]()
		p.sets[c] = set
	}
	set.Put(pos)
	return nil
}

func (p *Plan) Has(c Category, pos model.Pos) bool {
	set, ok := p.sets[c]
	return ok && set.Has(pos)
}

// HasAny reports whether pos is planned under any of cs.
func (p *Plan) HasAny(pos model.Pos, cs ...Category) bool {
	for _, c := range cs {
		if p.Has(c, pos) {
			return true
		}
	}
	return false
}

// Remove drops a single position from c.
func (p *Plan) Remove(c Category, pos model.Pos) {
	if set, ok := p.sets[c]; ok {
		set.Remove(pos)
	}
}

// Positions returns the positions planned for c ordered by packed index.
func (p *Plan) Positions(c Category) []model.Pos {
	set, ok := p.sets[c]
	if !ok {
		return nil
	}
	out := make([]model.Pos, 0, set.Size())
	set.Each(func(pos model.Pos) {
		out = append(out, pos)
	})
	slices.SortFunc(out, func(a, b model.Pos) int { return a.Pack() - b.Pack() })
	return out
}

func (p *Plan) Count(c Category) int {
	set, ok := p.sets[c]
	if !ok {
		return 0
	}
	return set.Size()
}

// Clear drops every position of c.
func (p *Plan) Clear(c Category) { delete(p.sets, c) }

// CategoriesAt returns every category planned at pos.
func (p *Plan) CategoriesAt(pos model.Pos) []Category {
	var out []Category
	for _, c := range All() {
		if p.Has(c, pos) {
			out = append(out, c)
		}
	}
	return out
}

// Categories returns the non-empty categories in declaration order.
func (p *Plan) Categories() []Category {
	var out []Category
	for _, c := range All() {
		if p.Count(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Equal reports whether both plans hold the same center and positions.
func (p *Plan) Equal(q *Plan) bool {
	if p == nil || q == nil {
		return p == q
	}
	if p.Center != q.Center {
		return false
	}
	for _, c := range All() {
		if !slices.Equal(p.Positions(c), q.Positions(c)) {
			return false
		}
	}
	return true
}

// Packed returns the persisted form: label → packed positions.
func (p *Plan) Packed() map[string][]int {
	out := make(map[string][]int)
	for _, c := range p.Categories() {
		ps := p.Positions(c)
		packed := make([]int, len(ps))
		for i, pos := range ps {
			packed[i] = pos.Pack()
		}
		out[c.String()] = packed
	}
	return out
}

// FromPacked rebuilds a plan from its persisted form.
func FromPacked(center model.Pos, packed map[string][]int) (*Plan, error) {
	p := New(center)
	for label, idx := range packed {
		c, ok := ParseCategory(label)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", label)
		}
		for _, i := range idx {
			if i < 0 || i >= model.Size*model.Size {
				return nil, fmt.Errorf("category %s: packed position %d out of range", label, i)
			}
			if err := p.Add(c, model.Unpack(i)); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}
