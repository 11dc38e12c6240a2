package model

// Observation is everything the bridge reports about one territory on one tick.
type Observation struct {
	Tick      int    `json:"tick"`
	Territory string `json:"territory"`
	Level     int    `json:"level"`

	Terrain    *Terrain `json:"terrain"`
	Controller *Pos     `json:"controller,omitempty"`
	Sources    []Pos    `json:"sources,omitempty"`
	Mineral    *Pos     `json:"mineral,omitempty"`

	Structures []Structure `json:"structures,omitempty"`
	Sites      []Site      `json:"sites,omitempty"`

	StoredEnergy    int `json:"storedEnergy"`
	BuilderCapacity int `json:"builderCapacity"`

	// GlobalSites counts pending construction markers across every
	// territory; the ceiling it is compared against is world-wide.
	GlobalSites int `json:"globalSites"`

	// BudgetMs is how much CPU time the scheduler grants this territory.
	// Zero means unlimited.
	BudgetMs float64 `json:"budgetMs"`

	// Intel carries cached exit adjacency for nearby territories, consumed
	// by the safety oracle.
	Intel []TerritoryIntel `json:"intel,omitempty"`
}

// TerritoryIntel is the cached exit graph and ownership of one territory.
type TerritoryIntel struct {
	Name     string               `json:"name"`
	Exits    map[Direction]string `json:"exits,omitempty"`
	Owned    bool                 `json:"owned"`
	Friendly bool                 `json:"friendly"`
	Hostile  bool                 `json:"hostile"`
	Tick     int                  `json:"tick"`
}

// StructuresOfType returns the built structures of type t.
func (o *Observation) StructuresOfType(t StructureType) []Structure {
	var out []Structure
	for _, s := range o.Structures {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}
