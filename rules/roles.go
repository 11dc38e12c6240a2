package rules

import "github.com/Mirroar/hivemind-sub000/model"

// placed is anything occupying a tile: built structures and pending sites.
type placed interface {
	TypeName() string
	Position() model.Pos
}

// countType counts items of structure type t.
func countType[T placed](items []T, t model.StructureType) int {
	n := 0
	for _, item := range items {
		if item.TypeName() == string(t) {
			n++
		}
	}
	return n
}

// byPosition groups items by the tile they occupy.
func byPosition[T placed](items []T) map[model.Pos][]T {
	out := make(map[model.Pos][]T, len(items))
	for _, item := range items {
		p := item.Position()
		out[p] = append(out[p], item)
	}
	return out
}

// countByType tallies items per structure type.
func countByType[T placed](items []T) map[model.StructureType]int {
	out := make(map[model.StructureType]int)
	for _, item := range items {
		out[model.StructureType(item.TypeName())]++
	}
	return out
}
