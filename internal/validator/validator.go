// Package validator decides whether a calculation graph can be evaluated and
// whether its result can be shown.
package validator

import (
	"slices"

	"github.com/aretw0/nodecalc/internal/algo"
	"github.com/aretw0/nodecalc/pkg/domain"
	"github.com/aretw0/nodecalc/pkg/graph"
)

// Rule is a single validation policy. Check returns a failing verdict and
// true when the rule fires.
type Rule interface {
	Name() string
	Check(g *graph.Graph) (domain.Verdict, bool)
}

// Validator runs the loop check followed by its value rules; the first
// failing check wins.
type Validator struct {
	rules []Rule
}

// DefaultRules is the value rule set used when none is given.
func DefaultRules() []Rule {
	return []Rule{DivisionByZero{}}
}

// New creates a validator. With no rules the default set is used.
// The loop check always runs first and cannot be replaced: a cyclic graph
// has no evaluation order for value rules to inspect.
func New(rules ...Rule) *Validator {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Validator{rules: append([]Rule{Loops{}}, rules...)}
}

// Rules lists the rule names in evaluation order.
func (v *Validator) Rules() []string {
	names := make([]string, len(v.rules))
	for i, r := range v.rules {
		names[i] = r.Name()
	}
	return names
}

// Validate computes the verdict for g. Value rules read the values left on
// the ports by the last propagation pass.
func (v *Validator) Validate(g *graph.Graph) domain.Verdict {
	for _, r := range v.rules {
		if verdict, failed := r.Check(g); failed {
			return verdict
		}
	}
	return domain.Valid()
}

// Loops fails fatally when any directed cycle exists anywhere in the graph.
type Loops struct{}

func (Loops) Name() string { return "loops" }

func (Loops) Check(g *graph.Graph) (domain.Verdict, bool) {
	offenders := algo.FindLoops(g)
	if len(offenders) == 0 {
		return domain.Verdict{}, false
	}
	return domain.Fatal(domain.MessageLoops, offenders...), true
}

// DivisionByZero warns when a division feeding the sink currently resolves
// its divisor to zero. Divisions the sink does not depend on are ignored.
type DivisionByZero struct{}

func (DivisionByZero) Name() string { return "division_by_zero" }

func (DivisionByZero) Check(g *graph.Graph) (domain.Verdict, bool) {
	var offenders []domain.NodeID
	for _, id := range algo.DependencyClosure(g, graph.OutputID) {
		n, ok := g.Node(id)
		if !ok || n.Kind != domain.KindDivision {
			continue
		}
		if g.Resolve(domain.In(id, 1)).Is(0) {
			offenders = append(offenders, id)
		}
	}
	if len(offenders) == 0 {
		return domain.Verdict{}, false
	}
	slices.Sort(offenders)
	return domain.Warning(domain.MessageDivisionByZero, offenders...), true
}
