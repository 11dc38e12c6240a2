package rules

import "github.com/Mirroar/hivemind-sub000/model"

// ReconcileEnv is what rule conditions can see. Methods are callable from
// expr, e.g. `Level >= 4 && PerimeterIntact && Built("storage") > 0`.
type ReconcileEnv struct {
	Level           int
	PerimeterIntact bool
	StoredEnergy    int
	BuilderCapacity int

	built   map[model.StructureType]int
	pending map[model.StructureType]int
	planned map[model.StructureType]int
}

// Built counts live structures of type t.
func (e ReconcileEnv) Built(t string) int { return e.built[model.StructureType(t)] }

// Pending counts construction sites of type t.
func (e ReconcileEnv) Pending(t string) int { return e.pending[model.StructureType(t)] }

// Planned counts planned positions building type t.
func (e ReconcileEnv) Planned(t string) int { return e.planned[model.StructureType(t)] }

// Quota is how many structures of type t the current level allows.
func (e ReconcileEnv) Quota(t string) int { return model.Quota(model.StructureType(t), e.Level) }
