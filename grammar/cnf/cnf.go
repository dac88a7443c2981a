/*
Package cnf converts grammars to Chomsky Normal Form.

A grammar is in CNF if every rule is of one of the forms

    A → a        (a single terminal)
    A → B C      (exactly two non-terminals)
    S → ε        (only for the start symbol)

Conversion first simplifies the grammar, then replaces terminals within longer
rules by non-terminals producing just that terminal, and factors long right
hand sides into chains of binary rules. Both kinds of helper symbols are
memoized by content, thus equal input grammars yield structurally equal
output grammars (modulo numbering of synthetic symbols).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package cnf

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/npillmayer/schuko/tracing"
	"github.com/piu-lang/piu"
	"github.com/piu-lang/piu/grammar"
)

// tracer traces with key 'piu.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("piu.grammar")
}

// PassBinarize is the name of the binarization pass in a run's history.
const PassBinarize = "cnf-binarize"

// Prefixes for synthetic non-terminals.
const (
	TerminalPrefix = "T" // A → a
	FactorPrefix   = "P" // A → B C, factored from a longer RHS
)

// Convert converts g to Chomsky Normal Form. End markers are removed from the
// grammar. If run is nil, a fresh run will be used.
func Convert(run *grammar.Run, g *grammar.Grammar) (*grammar.Grammar, error) {
	if run == nil {
		run = grammar.NewRun()
	}
	tracer().Infof("converting grammar %s to CNF", g.Name)
	s, err := run.Simplify(g.StripEndMarkers())
	if err != nil {
		return nil, err
	}
	c := newConverter(run, s)
	rules, err := c.binarize()
	if err != nil {
		return nil, err
	}
	h := s.WithRules(rules)
	run.Record(PassBinarize, h)
	if h, err = run.RemoveNonGenerating(h); err != nil {
		return nil, err
	}
	if h, err = run.RemoveUnreachable(h); err != nil {
		return nil, err
	}
	h = run.SortRules(h)
	tracer().Infof("CNF grammar %s has %d rules", h.Name, h.Size())
	return h, nil
}

type converter struct {
	run      *grammar.Run
	g        *grammar.Grammar
	singles  map[piu.Element]piu.Element // terminal → non-terminal producing it
	prefixes map[string]piu.Element      // hash of RHS prefix → non-terminal producing it
	wrappers []*grammar.Rule             // new rules  T → a
}

func newConverter(run *grammar.Run, g *grammar.Grammar) *converter {
	c := &converter{
		run:      run,
		g:        g,
		singles:  make(map[piu.Element]piu.Element),
		prefixes: make(map[string]piu.Element),
	}
	// non-terminals with a single rule may be reused as helpers
	for _, A := range g.NonTerminals() {
		rules := g.RulesFor(A)
		if A == g.Start() || len(rules) != 1 {
			continue
		}
		rhs := rules[0].RHS
		if len(rhs) == 1 && rhs[0].IsTerminal() {
			if _, ok := c.singles[rhs[0]]; !ok {
				c.singles[rhs[0]] = A
			}
		} else if len(rhs) > 1 {
			if key, err := hash(rhs); err == nil {
				if _, ok := c.prefixes[key]; !ok {
					c.prefixes[key] = A
				}
			}
		}
	}
	return c
}

// keyElement is the hashed form of an element. structhash writes names without
// escaping, so the length of every name is hashed along with it.
type keyElement struct {
	Kind piu.Kind
	Len  int
	Name string
}

func hash(seq piu.Sequence) (string, error) {
	elems := make([]keyElement, len(seq))
	for i, e := range seq {
		elems[i] = keyElement{Kind: e.Kind, Len: len(e.Name), Name: e.Name}
	}
	return structhash.Hash(elems, 1)
}

// binarize rewrites every rule to length ≤ 2. New prefix rules are queued and
// processed in turn.
func (c *converter) binarize() ([]*grammar.Rule, error) {
	queue := c.g.Rules()
	limit := c.run.Limit(c.g)
	rules := make([]*grammar.Rule, 0, len(queue))
	for i := 0; i < len(queue); i++ {
		if i >= limit {
			return nil, &grammar.NonConvergenceError{Pass: PassBinarize, Limit: limit}
		}
		r := queue[i]
		n := len(r.RHS)
		switch {
		case n == 2:
			rhs := piu.Seq(c.isolate(r.RHS[0]), c.isolate(r.RHS[1]))
			rules = append(rules, &grammar.Rule{LHS: r.LHS, RHS: rhs})
		case n > 2:
			last := c.isolate(r.RHS[n-1])
			prefix := r.RHS[:n-1].Clone()
			P, isNew, err := c.factor(prefix)
			if err != nil {
				return nil, err
			}
			if isNew {
				queue = append(queue, &grammar.Rule{LHS: P, RHS: prefix})
			}
			rules = append(rules, &grammar.Rule{LHS: r.LHS, RHS: piu.Seq(P, last)})
		default:
			rules = append(rules, r)
		}
	}
	return append(rules, c.wrappers...), nil
}

// isolate replaces a terminal by a non-terminal producing it.
func (c *converter) isolate(e piu.Element) piu.Element {
	if !e.IsTerminal() {
		return e
	}
	if A, ok := c.singles[e]; ok {
		return A
	}
	A := c.run.Fresh(c.g, TerminalPrefix)
	c.singles[e] = A
	c.wrappers = append(c.wrappers, grammar.NewRule(A, e))
	tracer().Debugf("%s isolates terminal %s", A, e)
	return A
}

// factor returns a non-terminal for a RHS prefix, creating it if necessary.
func (c *converter) factor(prefix piu.Sequence) (piu.Element, bool, error) {
	key, err := hash(prefix)
	if err != nil {
		return piu.Element{}, false, fmt.Errorf("cannot hash RHS prefix %v: %w", prefix, err)
	}
	if P, ok := c.prefixes[key]; ok {
		return P, false, nil
	}
	P := c.run.Fresh(c.g, FactorPrefix)
	c.prefixes[key] = P
	tracer().Debugf("%s factors %v", P, prefix)
	return P, true, nil
}

// Check returns an error if g is not in Chomsky Normal Form.
func Check(g *grammar.Grammar) error {
	for _, r := range g.Rules() {
		switch len(r.RHS) {
		case 1:
			if r.RHS[0].IsTerminal() || (r.IsEpsilon() && r.LHS == g.Start()) {
				continue
			}
		case 2:
			if r.RHS[0].IsRuleRef() && r.RHS[1].IsRuleRef() {
				continue
			}
		}
		return fmt.Errorf("rule %v is not in Chomsky Normal Form", r)
	}
	return nil
}
