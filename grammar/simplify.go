package grammar

import (
	"github.com/piu-lang/piu"
)

// Names of the simplification passes, as recorded in a run's history.
const (
	PassStartSymbol    = "add-new-start-symbol"
	PassNonGenerating  = "remove-non-generating"
	PassUnreachable    = "remove-unreachable"
	PassNullProduction = "remove-null-productions"
	PassUnitProduction = "remove-unit-productions"
	PassSortRules      = "sort-rules"
)

// Simplify creates a fresh run and simplifies g with it.
func Simplify(g *Grammar) (*Grammar, error) {
	return NewRun().Simplify(g)
}

// Simplify applies all simplification passes to g, resulting in an equivalent
// grammar where every non-terminal is generating and reachable, and where no
// null productions (except for the start symbol) and no unit productions occur.
//
// A grammar whose start symbol does not generate any terminal string
// collapses to an empty rule set.
func (run *Run) Simplify(g *Grammar) (*Grammar, error) {
	var err error
	tracer().Infof("simplifying grammar %s with %d rules", g.Name, g.Size())
	g = run.AddNewStartSymbol(g)
	if g, err = run.RemoveNonGenerating(g); err != nil {
		return nil, err
	}
	if g, err = run.RemoveUnreachable(g); err != nil {
		return nil, err
	}
	if g, err = run.RemoveNullProductions(g); err != nil {
		return nil, err
	}
	if g, err = run.RemoveUnitProductions(g); err != nil {
		return nil, err
	}
	// null removal may leave behind symbols without productions, unit removal
	// may leave behind symbols nobody refers to
	if g, err = run.RemoveNonGenerating(g); err != nil {
		return nil, err
	}
	if g, err = run.RemoveUnreachable(g); err != nil {
		return nil, err
	}
	g = run.SortRules(g)
	tracer().Infof("simplified grammar %s has %d rules", g.Name, g.Size())
	return g, nil
}

// AddNewStartSymbol isolates the start symbol: if it occurs on any RHS, a new
// start symbol S' is introduced, together with a rule  S' → S.
func (run *Run) AddNewStartSymbol(g *Grammar) *Grammar {
	if !g.StartUsed() {
		run.Record(PassStartSymbol, g)
		return g
	}
	name := g.start.Name + "'"
	for g.HasSymbolNamed(name) {
		name += "'"
	}
	start := piu.N(name)
	rules := make([]*Rule, 0, g.Size()+1)
	rules = append(rules, NewRule(start, g.start))
	rules = append(rules, g.rules...)
	h := New(g.Name, start, rules)
	tracer().Debugf("new start symbol %s", start)
	run.Record(PassStartSymbol, h)
	return h
}

type symset map[piu.Element]struct{}

func (set symset) contains(e piu.Element) bool {
	_, ok := set[e]
	return ok
}

// RemoveNonGenerating removes every rule which mentions a non-terminal not able
// to derive a terminal string.
func (run *Run) RemoveNonGenerating(g *Grammar) (*Grammar, error) {
	gen := symset{}
	generates := func(e piu.Element) bool {
		return e.Kind != piu.RuleRef || gen.contains(e)
	}
	err := run.Fixpoint(PassNonGenerating, g, func() bool {
		changed := false
		for _, r := range g.rules {
			if gen.contains(r.LHS) {
				continue
			}
			all := true
			for _, e := range r.RHS {
				if !generates(e) {
					all = false
					break
				}
			}
			if all {
				gen[r.LHS] = exists
				changed = true
			}
		}
		return changed
	})
	if err != nil {
		return nil, err
	}
	rules := make([]*Rule, 0, g.Size())
	for _, r := range g.rules {
		keep := gen.contains(r.LHS)
		for _, e := range r.RHS {
			keep = keep && generates(e)
		}
		if keep {
			rules = append(rules, r)
		} else {
			tracer().Debugf("dropping non-generating rule %s", r)
		}
	}
	h := g.derive(rules)
	run.Record(PassNonGenerating, h)
	return h, nil
}

// RemoveUnreachable removes every rule whose LHS cannot be reached from the
// start symbol.
func (run *Run) RemoveUnreachable(g *Grammar) (*Grammar, error) {
	reach := symset{g.start: exists}
	err := run.Fixpoint(PassUnreachable, g, func() bool {
		changed := false
		for _, r := range g.rules {
			if !reach.contains(r.LHS) {
				continue
			}
			for _, e := range r.RHS {
				if e.IsRuleRef() && !reach.contains(e) {
					reach[e] = exists
					changed = true
				}
			}
		}
		return changed
	})
	if err != nil {
		return nil, err
	}
	rules := make([]*Rule, 0, g.Size())
	for _, r := range g.rules {
		if reach.contains(r.LHS) {
			rules = append(rules, r)
		} else {
			tracer().Debugf("dropping unreachable rule %s", r)
		}
	}
	h := g.derive(rules)
	run.Record(PassUnreachable, h)
	return h, nil
}

// Nullable returns the set of non-terminals of g which derive ε.
func (run *Run) Nullable(g *Grammar) (map[piu.Element]bool, error) {
	nullable := symset{}
	err := run.Fixpoint(PassNullProduction, g, func() bool {
		changed := false
		for _, r := range g.rules {
			if nullable.contains(r.LHS) {
				continue
			}
			if r.IsEpsilon() || allNullable(r.RHS, nullable) {
				nullable[r.LHS] = exists
				changed = true
			}
		}
		return changed
	})
	if err != nil {
		return nil, err
	}
	result := make(map[piu.Element]bool, len(nullable))
	for e := range nullable {
		result[e] = true
	}
	return result, nil
}

func allNullable(rhs piu.Sequence, nullable symset) bool {
	for _, e := range rhs {
		if !e.IsRuleRef() || !nullable.contains(e) {
			return false
		}
	}
	return true
}

// RemoveNullProductions removes all epsilon-productions, except for the start
// symbol. For every rule containing k occurrences of nullable non-terminals,
// a rule is added for each non-empty subset of occurrences left out. If the
// start symbol is nullable, the grammar will contain  S → ε.
func (run *Run) RemoveNullProductions(g *Grammar) (*Grammar, error) {
	nullable, err := run.Nullable(g)
	if err != nil {
		return nil, err
	}
	omittable := symset{}
	for e := range nullable {
		if e != g.start {
			omittable[e] = exists
		}
	}
	tracer().Debugf("nullable symbols: %v", nullable)
	rules := make([]*Rule, 0, g.Size())
	for _, r := range g.rules {
		if r.IsEpsilon() {
			if r.LHS == g.start {
				rules = append(rules, r)
			}
			continue
		}
		rules = append(rules, r)
		for _, rhs := range omitNullable(r.RHS, omittable) {
			rules = append(rules, &Rule{LHS: r.LHS, RHS: rhs})
		}
	}
	if nullable[g.start] {
		rules = append(rules, NewRule(g.start, piu.Epsilon()))
	}
	h := g.derive(rules)
	run.Record(PassNullProduction, h)
	return h, nil
}

// omitNullable creates a variant of rhs for every non-empty subset of
// occurrences of nullable symbols, with these occurrences left out. Variants
// which would be empty are skipped.
func omitNullable(rhs piu.Sequence, nullable symset) []piu.Sequence {
	var occ []int
	for i, e := range rhs {
		if nullable.contains(e) {
			occ = append(occ, i)
		}
	}
	if len(occ) == 0 {
		return nil
	}
	var variants []piu.Sequence
	for mask := uint64(1); mask < uint64(1)<<uint(len(occ)); mask++ {
		omit := make(map[int]bool, len(occ))
		for bit, pos := range occ {
			if mask&(uint64(1)<<uint(bit)) != 0 {
				omit[pos] = true
			}
		}
		v := make(piu.Sequence, 0, len(rhs))
		for i, e := range rhs {
			if !omit[i] {
				v = append(v, e)
			}
		}
		if len(v) > 0 {
			variants = append(variants, v)
		}
	}
	return variants
}

// RemoveUnitProductions removes all rules of form  A → B. For every B reachable
// from A by a chain of unit productions, the non-unit rules of B are copied to
// A.
func (run *Run) RemoveUnitProductions(g *Grammar) (*Grammar, error) {
	nts := g.NonTerminals()
	closure := make(map[piu.Element]symset, len(nts))
	for _, A := range nts {
		closure[A] = symset{A: exists}
	}
	err := run.Fixpoint(PassUnitProduction, g, func() bool {
		changed := false
		for _, r := range g.rules {
			if !r.IsUnit() {
				continue
			}
			for _, units := range closure {
				if units.contains(r.LHS) && !units.contains(r.RHS[0]) {
					units[r.RHS[0]] = exists
					changed = true
				}
			}
		}
		return changed
	})
	if err != nil {
		return nil, err
	}
	rules := make([]*Rule, 0, g.Size())
	for _, r := range g.rules {
		if !r.IsUnit() {
			rules = append(rules, r)
		}
	}
	for _, A := range nts {
		for _, B := range nts { // sorted order keeps the result deterministic
			if B == A || !closure[A].contains(B) {
				continue
			}
			for _, r := range g.RulesFor(B) {
				if !r.IsUnit() {
					rules = append(rules, &Rule{LHS: A, RHS: r.RHS})
				}
			}
		}
	}
	h := g.derive(rules)
	run.Record(PassUnitProduction, h)
	return h, nil
}

// SortRules moves the alternatives of the start symbol to the front. The order
// of all other rules is preserved.
func (run *Run) SortRules(g *Grammar) *Grammar {
	h := g.derive(startFirst(g))
	run.Record(PassSortRules, h)
	return h
}

func startFirst(g *Grammar) []*Rule {
	rules := make([]*Rule, 0, g.Size())
	rules = append(rules, g.RulesFor(g.start)...)
	for _, r := range g.rules {
		if r.LHS != g.start {
			rules = append(rules, r)
		}
	}
	return rules
}
