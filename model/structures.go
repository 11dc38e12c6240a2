package model

// StructureType names a buildable structure kind as understood by the bridge.
type StructureType string

const (
	Road            StructureType = "road"
	Spawn           StructureType = "spawn"
	Extension       StructureType = "extension"
	Container       StructureType = "container"
	Link            StructureType = "link"
	Storage         StructureType = "storage"
	Terminal        StructureType = "terminal"
	Lab             StructureType = "lab"
	Tower           StructureType = "tower"
	Rampart         StructureType = "rampart"
	ConstructedWall StructureType = "constructedWall"
	Extractor       StructureType = "extractor"
	Observer        StructureType = "observer"
	PowerSpawn      StructureType = "powerSpawn"
	Nuker           StructureType = "nuker"
	Factory         StructureType = "factory"
	Controller      StructureType = "controller"
)

// MaxLevel is the highest development level.
const MaxLevel = 8

// quotas is the number of structures of each type allowed per development level.
var quotas = map[StructureType][MaxLevel + 1]int{
	Road:            {2500, 2500, 2500, 2500, 2500, 2500, 2500, 2500, 2500},
	Spawn:           {0, 1, 1, 1, 1, 1, 1, 2, 3},
	Extension:       {0, 0, 5, 10, 20, 30, 40, 50, 60},
	Container:       {5, 5, 5, 5, 5, 5, 5, 5, 5},
	Link:            {0, 0, 0, 0, 0, 2, 3, 4, 6},
	Storage:         {0, 0, 0, 0, 1, 1, 1, 1, 1},
	Terminal:        {0, 0, 0, 0, 0, 0, 1, 1, 1},
	Lab:             {0, 0, 0, 0, 0, 0, 3, 6, 10},
	Tower:           {0, 0, 0, 1, 1, 2, 2, 3, 6},
	Rampart:         {0, 0, 2500, 2500, 2500, 2500, 2500, 2500, 2500},
	ConstructedWall: {0, 0, 2500, 2500, 2500, 2500, 2500, 2500, 2500},
	Extractor:       {0, 0, 0, 0, 0, 0, 1, 1, 1},
	Observer:        {0, 0, 0, 0, 0, 0, 0, 0, 1},
	PowerSpawn:      {0, 0, 0, 0, 0, 0, 0, 0, 1},
	Nuker:           {0, 0, 0, 0, 0, 0, 0, 0, 1},
	Factory:         {0, 0, 0, 0, 0, 0, 0, 1, 1},
}

// Quota returns how many structures of type t may exist at level.
// Unknown types and out-of-range levels yield 0.
func Quota(t StructureType, level int) int {
	q, ok := quotas[t]
	if !ok || level < 0 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return q[level]
}

// Placed is anything occupying a tile that reconciliation compares
// against the plan: built structures and pending construction sites.
type Placed interface {
	TypeName() string
	Position() Pos
}

// Structure is a built structure reported by the bridge.
type Structure struct {
	ID      string        `json:"id"`
	Type    StructureType `json:"type"`
	X       int           `json:"x"`
	Y       int           `json:"y"`
	Hits    int           `json:"hits"`
	HitsMax int           `json:"hitsMax"`
}

func (s Structure) TypeName() string { return string(s.Type) }
func (s Structure) Position() Pos    { return Pos{X: s.X, Y: s.Y} }

// Site is a pending construction marker.
type Site struct {
	ID   string        `json:"id"`
	Type StructureType `json:"type"`
	X    int           `json:"x"`
	Y    int           `json:"y"`
}

func (s Site) TypeName() string { return string(s.Type) }
func (s Site) Position() Pos    { return Pos{X: s.X, Y: s.Y} }
