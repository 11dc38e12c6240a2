package plan

import (
	"fmt"

	"github.com/Mirroar/hivemind-sub000/model"
)

// Category is a closed set of planned structure roles. Several categories
// can share a structure type (e.g. every road.* builds a road).
type Category uint8

const (
	RoadSource Category = iota
	RoadController
	RoadMineral
	Road
	Spawn
	ContainerSource
	ContainerMineral
	LinkSource
	LinkController
	LinkCore
	Storage
	Terminal
	Extension
	Tower
	Extractor
	Lab
	Observer
	PowerSpawn
	Nuker
	Factory
	RampartRoad
	Rampart
	Parking

	numCategories
)

// Layer decides which categories may share a tile.
type Layer uint8

const (
	LayerRoad      Layer = iota // walkable, coexists with perimeter and walkable
	LayerPerimeter              // ramparts; coexist only with roads
	LayerWalkable               // containers and parking spots
	LayerSolid                  // everything else; exclusive
)

// Meta describes a category.
type Meta struct {
	Label     string
	Structure model.StructureType
	Layer     Layer
}

var metas = [numCategories]Meta{
	RoadSource:       {"road.source", model.Road, LayerRoad},
	RoadController:   {"road.controller", model.Road, LayerRoad},
	RoadMineral:      {"road.mineral", model.Road, LayerRoad},
	Road:             {"road", model.Road, LayerRoad},
	Spawn:            {"spawn", model.Spawn, LayerSolid},
	ContainerSource:  {"container.source", model.Container, LayerWalkable},
	ContainerMineral: {"container.mineral", model.Container, LayerWalkable},
	LinkSource:       {"link.source", model.Link, LayerSolid},
	LinkController:   {"link.controller", model.Link, LayerSolid},
	LinkCore:         {"link.core", model.Link, LayerSolid},
	Storage:          {"storage", model.Storage, LayerSolid},
	Terminal:         {"terminal", model.Terminal, LayerSolid},
	Extension:        {"extension.bay", model.Extension, LayerSolid},
	Tower:            {"tower", model.Tower, LayerSolid},
	Extractor:        {"extractor", model.Extractor, LayerSolid},
	Lab:              {"lab", model.Lab, LayerSolid},
	Observer:         {"observer", model.Observer, LayerSolid},
	PowerSpawn:       {"powerSpawn", model.PowerSpawn, LayerSolid},
	Nuker:            {"nuker", model.Nuker, LayerSolid},
	Factory:          {"factory", model.Factory, LayerSolid},
	RampartRoad:      {"rampart.road", model.Rampart, LayerPerimeter},
	Rampart:          {"rampart", model.Rampart, LayerPerimeter},
	Parking:          {"parking", "", LayerWalkable},
}

// All returns every category in declaration order.
func All() []Category {
	out := make([]Category, numCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

func (c Category) Meta() Meta {
	if c >= numCategories {
		return Meta{Label: fmt.Sprintf("category(%d)", uint8(c))}
	}
	return metas[c]
}

func (c Category) String() string                 { return c.Meta().Label }
func (c Category) Structure() model.StructureType { return c.Meta().Structure }
func (c Category) Layer() Layer                   { return c.Meta().Layer }

// Solid categories block movement and share their tile with nothing.
func (c Category) Solid() bool { return c.Layer() == LayerSolid }

// IsRoad reports whether c is one of the road categories.
func (c Category) IsRoad() bool { return c.Layer() == LayerRoad }

// IsPerimeter reports whether c is a rampart category.
func (c Category) IsPerimeter() bool { return c.Layer() == LayerPerimeter }

// Accepts reports whether a built structure of type t satisfies a planned
// position of category c. Perimeter tiles accept constructed walls too.
func (c Category) Accepts(t model.StructureType) bool {
	s := c.Structure()
	if s == "" {
		return false
	}
	if c.IsPerimeter() && t == model.ConstructedWall {
		return true
	}
	return s == t
}

// Compatible reports whether a and b may be planned on the same tile.
func Compatible(a, b Category) bool {
	if a == b {
		return true
	}
	la, lb := a.Layer(), b.Layer()
	if la == LayerSolid || lb == LayerSolid {
		return false
	}
	if la == LayerRoad || lb == LayerRoad {
		return true
	}
	// perimeter vs walkable, or walkable vs walkable
	return false
}

// ParseCategory returns the category with the given label.
func ParseCategory(label string) (Category, bool) {
	for i, m := range metas {
		if m.Label == label {
			return Category(i), true
		}
	}
	return 0, false
}

func (c Category) MarshalText() ([]byte, error) {
	if c >= numCategories {
		return nil, fmt.Errorf("unknown category %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, ok := ParseCategory(string(b))
	if !ok {
		return fmt.Errorf("unknown category %q", b)
	}
	*c = parsed
	return nil
}

// CategoriesFor lists the categories a structure of type t can satisfy.
func CategoriesFor(t model.StructureType) []Category {
	var out []Category
	for _, c := range All() {
		if c.Accepts(t) {
			out = append(out, c)
		}
	}
	return out
}
