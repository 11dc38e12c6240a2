package rules

import (
	"github.com/expr-lang/expr/vm"

	"github.com/Mirroar/hivemind-sub000/plan"
)

// Rule gates construction of one plan category: while its condition
// holds, the reconciler places sites at the category's missing positions.
// Rules run in descending priority.
type Rule struct {
	Name         string        // human-readable identifier
	Priority     int           // higher = evaluated first
	Category     plan.Category // planned positions this rule builds
	ConditionSrc string        // expr source (preserved for serialization)
	program      *vm.Program   // compiled bytecode
}
