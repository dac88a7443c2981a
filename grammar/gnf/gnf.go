/*
Package gnf converts grammars to Greibach Normal Form.

A grammar is in GNF if every alternative starts with exactly one terminal,
followed by zero or more non-terminals:

    A → a B C …
    S → ε        (only for the start symbol)

Input grammars need not be in CNF, any context-free grammar will do. The
conversion is the classical one:

(1) Non-terminals are numbered A_0 … A_n in order of first appearance.

(2) For each A_i in ascending order, leading occurrences of A_j with j < i are
expanded until every rule  A_i → A_j α  has j ≥ i. Immediate left recursion
of A_i is then removed with a fresh helper Z:

    A → A β | α      becomes      A → α | α Z,   Z → β | β Z

(3) Leading non-terminals are substituted by their alternatives, highest
index first, helpers last.

(4) Terminals at non-leading positions are replaced by wrapper
non-terminals  X → t. Wrappers producing the same terminal are merged.

Expansion and left recursion removal in step (2) must be interleaved per
symbol: expanding for all symbols first and removing left recursion afterwards
does not terminate in general.

Expansion in steps (2) and (3) multiplies alternatives, and the size of the
result may be exponential in the size of the input grammar. The total number
of alternatives is bounded by the run's size limit (see Run.SizeLimit);
exceeding it makes Convert fail with a grammar.NonConvergenceError.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package gnf

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/piu-lang/piu"
	"github.com/piu-lang/piu/grammar"
)

// tracer traces with key 'piu.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("piu.grammar")
}

// Names of the GNF passes, as recorded in a run's history.
const (
	PassIndexOrder      = "gnf-index-order"
	PassLeadingTerminal = "gnf-leading-terminal"
	PassWrapTerminals   = "gnf-wrap-terminals"
	PassMergeWrappers   = "gnf-merge-wrappers"
)

// Prefixes for synthetic non-terminals.
const (
	HelperPrefix  = "Z" // left recursion removal
	WrapperPrefix = "X" // X → t for non-leading terminals
)

// Convert converts g to Greibach Normal Form. It returns the converted grammar
// together with the ordering of non-terminals used during conversion.
// End markers are removed from the grammar. If run is nil, a fresh run will be
// used.
func Convert(run *grammar.Run, g *grammar.Grammar) (*grammar.Grammar, *Ordering, error) {
	if run == nil {
		run = grammar.NewRun()
	}
	tracer().Infof("converting grammar %s to GNF", g.Name)
	s, err := run.Simplify(g.StripEndMarkers())
	if err != nil {
		return nil, nil, err
	}
	c := newConverter(run, s)
	tracer().Debugf("ordering: %s", c.order)
	if err = c.normalizeIndexes(); err != nil {
		return nil, nil, err
	}
	run.Record(PassIndexOrder, c.grammar())
	if err = c.closeLeadingTerminals(); err != nil {
		return nil, nil, err
	}
	run.Record(PassLeadingTerminal, c.grammar())
	c.wrapTerminals()
	h := c.grammar()
	run.Record(PassWrapTerminals, h)
	if h, err = run.Simplify(h); err != nil {
		return nil, nil, err
	}
	h = mergeWrappers(run, h)
	h = run.SortRules(h)
	tracer().Infof("GNF grammar %s has %d rules", h.Name, h.Size())
	return h, c.order, nil
}

type converter struct {
	run       *grammar.Run
	g         *grammar.Grammar
	order     *Ordering
	originals int // number of non-terminals before helpers were added
	prods     map[piu.Element][]piu.Sequence
	helpers   []piu.Element
	size      int // total number of alternatives
	maxSize   int
	err       error // set if maxSize has been exceeded
}

func newConverter(run *grammar.Run, g *grammar.Grammar) *converter {
	c := &converter{
		run:     run,
		g:       g,
		order:   newOrdering(),
		prods:   make(map[piu.Element][]piu.Sequence),
		size:    g.Size(),
		maxSize: run.SizeLimit(g),
	}
	for _, r := range g.Rules() {
		c.prods[r.LHS] = append(c.prods[r.LHS], r.RHS.Clone())
		c.order.add(r.LHS)
		for _, e := range r.RHS {
			if e.IsRuleRef() {
				c.order.add(e)
			}
		}
	}
	c.originals = c.order.Len()
	return c
}

// setAlternatives replaces the alternatives of A, dropping duplicates.
func (c *converter) setAlternatives(A piu.Element, alts []piu.Sequence) {
	seen := make(map[string]bool, len(alts))
	unique := make([]piu.Sequence, 0, len(alts))
	for _, alt := range alts {
		if k := alt.Key(); !seen[k] {
			seen[k] = true
			unique = append(unique, alt)
		}
	}
	c.size += len(unique) - len(c.prods[A])
	c.prods[A] = unique
}

// substitute replaces leading non-terminals B of A's alternatives, for which
// expand(B) holds, by each of B's alternatives. It reports whether anything
// was substituted. If the grammar grows beyond its size limit, c.err is set
// and nothing is substituted.
func (c *converter) substitute(pass string, A piu.Element, expand func(B piu.Element) bool) bool {
	if c.err != nil {
		return false
	}
	changed := false
	others := c.size - len(c.prods[A])
	var alts []piu.Sequence
	for _, rhs := range c.prods[A] {
		if B := rhs[0]; B.IsRuleRef() && expand(B) {
			if others+len(alts)+len(c.prods[B]) > c.maxSize {
				tracer().Errorf("pass %s: grammar grows beyond %d rules", pass, c.maxSize)
				c.err = &grammar.NonConvergenceError{Pass: pass, Limit: c.maxSize, Size: true}
				return false
			}
			for _, beta := range c.prods[B] {
				alts = append(alts, beta.Concat(rhs[1:]))
			}
			changed = true
			continue
		}
		alts = append(alts, rhs)
	}
	if changed {
		c.setAlternatives(A, alts)
	}
	return changed
}

func (c *converter) normalizeIndexes() error {
	for i := 0; i < c.originals; i++ {
		A, _ := c.order.Symbol(i)
		err := c.run.Fixpoint(PassIndexOrder, c.g, func() bool {
			return c.substitute(PassIndexOrder, A, func(B piu.Element) bool {
				j, ok := c.order.Index(B)
				return ok && j < i
			})
		})
		if err != nil {
			return err
		}
		if c.err != nil {
			return c.err
		}
		c.removeLeftRecursion(A)
	}
	return nil
}

func (c *converter) removeLeftRecursion(A piu.Element) {
	var recursive, other []piu.Sequence
	for _, rhs := range c.prods[A] {
		if rhs[0] != A {
			other = append(other, rhs)
		} else if len(rhs) > 1 {
			recursive = append(recursive, rhs[1:].Clone())
		}
	}
	if len(recursive) == 0 {
		return
	}
	Z := c.run.Fresh(c.g, HelperPrefix)
	c.order.add(Z)
	c.helpers = append(c.helpers, Z)
	tracer().Debugf("%s removes left recursion of %s", Z, A)
	c.setAlternatives(A, withAndWithout(other, Z))
	c.setAlternatives(Z, withAndWithout(recursive, Z))
}

// withAndWithout returns every alternative as is, and with Z appended.
func withAndWithout(alts []piu.Sequence, Z piu.Element) []piu.Sequence {
	result := make([]piu.Sequence, 0, 2*len(alts))
	result = append(result, alts...)
	for _, alt := range alts {
		result = append(result, alt.Concat(piu.Seq(Z)))
	}
	return result
}

func (c *converter) closeLeadingTerminals() error {
	var order []piu.Element
	for i := c.originals - 1; i >= 0; i-- {
		A, _ := c.order.Symbol(i)
		order = append(order, A)
	}
	order = append(order, c.helpers...)
	err := c.run.Fixpoint(PassLeadingTerminal, c.g, func() bool {
		changed := false
		for _, A := range order {
			if c.substitute(PassLeadingTerminal, A, func(piu.Element) bool { return true }) {
				changed = true
			}
		}
		return changed
	})
	if err != nil {
		return err
	}
	return c.err
}

func (c *converter) wrapTerminals() {
	wrappers := make(map[piu.Element]piu.Element)
	for _, A := range c.order.Symbols() {
		alts := c.prods[A]
		if A != c.g.Start() && len(alts) == 1 && len(alts[0]) == 1 && alts[0][0].IsTerminal() {
			if _, ok := wrappers[alts[0][0]]; !ok {
				wrappers[alts[0][0]] = A
			}
		}
	}
	for _, A := range c.order.Symbols() {
		for i, rhs := range c.prods[A] {
			rhs = rhs.Clone() // may be shared with recorded snapshots
			for k := 1; k < len(rhs); k++ {
				t := rhs[k]
				if !t.IsTerminal() {
					continue
				}
				X, ok := wrappers[t]
				if !ok {
					X = c.run.Fresh(c.g, WrapperPrefix)
					wrappers[t] = X
					c.order.add(X)
					c.prods[X] = []piu.Sequence{piu.Seq(t)}
					tracer().Debugf("%s wraps terminal %s", X, t)
				}
				rhs[k] = X
			}
			c.prods[A][i] = rhs
		}
	}
}

// grammar creates a grammar from the current productions, in index order.
func (c *converter) grammar() *grammar.Grammar {
	var rules []*grammar.Rule
	for _, A := range c.order.Symbols() {
		for _, rhs := range c.prods[A] {
			rules = append(rules, &grammar.Rule{LHS: A, RHS: rhs})
		}
	}
	return c.g.WithRules(rules)
}

// mergeWrappers collapses non-terminals whose sole production is the same
// single terminal into one of them.
func mergeWrappers(run *grammar.Run, g *grammar.Grammar) *grammar.Grammar {
	first := make(map[piu.Element]piu.Element)
	rename := make(map[piu.Element]piu.Element)
	for _, A := range g.NonTerminals() {
		rules := g.RulesFor(A)
		if A == g.Start() || len(rules) != 1 {
			continue
		}
		if rhs := rules[0].RHS; len(rhs) == 1 && rhs[0].IsTerminal() {
			if W, ok := first[rhs[0]]; ok {
				rename[A] = W
				tracer().Debugf("merging %s into %s", A, W)
			} else {
				first[rhs[0]] = A
			}
		}
	}
	if len(rename) > 0 {
		var rules []*grammar.Rule
		for _, r := range g.Rules() {
			if _, merged := rename[r.LHS]; merged {
				continue
			}
			rhs := r.RHS.Clone()
			for i, e := range rhs {
				if W, ok := rename[e]; ok {
					rhs[i] = W
				}
			}
			rules = append(rules, &grammar.Rule{LHS: r.LHS, RHS: rhs})
		}
		g = g.WithRules(rules)
	}
	run.Record(PassMergeWrappers, g)
	return g
}

// Check returns an error if g is not in Greibach Normal Form.
func Check(g *grammar.Grammar) error {
	for _, r := range g.Rules() {
		if r.IsEpsilon() && r.LHS == g.Start() {
			continue
		}
		if !r.RHS[0].IsTerminal() {
			return fmt.Errorf("rule %v does not start with a terminal", r)
		}
		for _, e := range r.RHS[1:] {
			if !e.IsRuleRef() {
				return fmt.Errorf("rule %v has non-leading element %v which is not a non-terminal", r, e)
			}
		}
	}
	return nil
}
