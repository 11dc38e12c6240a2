package rules

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"

	"github.com/Mirroar/hivemind-sub000/plan"
)

// Gate conditions shared by several categories.
const (
	gateAlways   = `true`
	gateEconomy  = `Level >= 2`
	gateInterior = `Level >= 4 && PerimeterIntact`
)

// DefaultRules returns one rule per buildable category in build order:
// resource roads, spawns, containers, towers, storage, extensions,
// terminal, links, extractor, roads, ramparts, labs, endgame structures.
func DefaultRules() []*Rule {
	specs := []struct {
		cat  plan.Category
		cond string
	}{
		{plan.RoadSource, gateAlways},
		{plan.RoadController, gateAlways},
		{plan.Spawn, gateEconomy},
		{plan.ContainerSource, gateEconomy},
		{plan.ContainerMineral, `Level >= 6`},
		{plan.Tower, gateEconomy},
		{plan.Storage, gateEconomy},
		{plan.Extension, gateEconomy},
		{plan.Terminal, gateEconomy},
		{plan.LinkCore, gateEconomy},
		{plan.LinkSource, gateEconomy},
		{plan.LinkController, gateEconomy},
		{plan.Extractor, gateEconomy},
		{plan.RoadMineral, `Level >= 3`},
		{plan.Road, `Level >= 3`},
		{plan.RampartRoad, `Level >= 3`},
		{plan.Rampart, `Level >= 4`},
		{plan.Lab, gateInterior},
		{plan.Observer, gateInterior},
		{plan.PowerSpawn, gateInterior},
		{plan.Nuker, gateInterior},
		{plan.Factory, gateInterior},
	}
	rules := make([]*Rule, 0, len(specs))
	for i, s := range specs {
		rules = append(rules, &Rule{
			Name:         "build-" + s.cat.String(),
			Priority:     1000 - 10*i,
			Category:     s.cat,
			ConditionSrc: s.cond,
		})
	}
	return rules
}

// compileRules compiles every condition against ReconcileEnv and sorts the
// rules by descending priority.
func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(ReconcileEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
