package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/piu-lang/piu"
)

// Rule is a production  LHS → RHS. LHS is always a rule reference, RHS is a
// non-empty sequence. An epsilon-production has RHS = [ε].
type Rule struct {
	LHS piu.Element
	RHS piu.Sequence
}

// NewRule creates a rule. The RHS is canonicalized: ε-elements within a longer
// RHS are dropped, a RHS consisting of ε-elements only (or of nothing at all)
// becomes [ε].
func NewRule(lhs piu.Element, rhs ...piu.Element) *Rule {
	r := &Rule{LHS: lhs}
	for _, e := range rhs {
		if e.Kind != piu.Empty {
			r.RHS = append(r.RHS, e)
		}
	}
	if len(r.RHS) == 0 {
		r.RHS = piu.Seq(piu.Epsilon())
	}
	return r
}

// Equals compares two rules structurally.
func (r *Rule) Equals(other *Rule) bool {
	return r.LHS == other.LHS && r.RHS.Equals(other.RHS)
}

// IsUnit is a predicate: is r a unit production  A → B ?
func (r *Rule) IsUnit() bool {
	return len(r.RHS) == 1 && r.RHS[0].IsRuleRef()
}

// IsEpsilon is a predicate: is r of form  A → ε ?
func (r *Rule) IsEpsilon() bool {
	return r.RHS.IsEpsilon()
}

// Mentions is a predicate: does symbol e occur anywhere within r?
func (r *Rule) Mentions(e piu.Element) bool {
	return r.LHS == e || r.RHS.Contains(e)
}

func (r *Rule) key() string {
	return r.LHS.Key() + "\x01" + r.RHS.Key()
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s ➞ %s", r.LHS.Name, r.RHS)
}

// === Grammars ==============================================================

// Grammar is an ordered collection of rules together with a start symbol.
// Sets of terminals and non-terminals are derived from the rules.
//
// Grammars are treated as values: transformation passes never modify a
// grammar, but create a new one.
type Grammar struct {
	Name         string
	start        piu.Element
	rules        []*Rule
	nonterminals *treeset.Set // every LHS and every rule reference in a RHS
	terminals    *treeset.Set // every terminal in a RHS
}

// New creates a grammar from a start symbol and a list of rules. Duplicate
// rules are removed, keeping the first occurrence.
func New(name string, start piu.Element, rules []*Rule) *Grammar {
	g := &Grammar{
		Name:  name,
		start: start,
		rules: make([]*Rule, 0, len(rules)),
	}
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		k := r.key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = exists
		g.rules = append(g.rules, r)
	}
	g.detectSymbols()
	return g
}

var exists = struct{}{}

// elementComparator orders grammar symbols, see piu.Element.Compare.
func elementComparator(a, b interface{}) int {
	return a.(piu.Element).Compare(b.(piu.Element))
}

func (g *Grammar) detectSymbols() {
	g.nonterminals = treeset.NewWith(elementComparator)
	g.terminals = treeset.NewWith(elementComparator)
	for _, r := range g.rules {
		g.nonterminals.Add(r.LHS)
		for _, e := range r.RHS {
			switch e.Kind {
			case piu.Terminal:
				g.terminals.Add(e)
			case piu.RuleRef:
				g.nonterminals.Add(e)
			}
		}
	}
}

// derive creates a new grammar with the same name and start symbol as g.
func (g *Grammar) derive(rules []*Rule) *Grammar {
	return New(g.Name, g.start, rules)
}

// WithRules creates a grammar with g's name and start symbol, but different
// rules.
func (g *Grammar) WithRules(rules []*Rule) *Grammar {
	return g.derive(rules)
}

// WithStart creates a copy of g with a different start symbol.
func (g *Grammar) WithStart(start piu.Element) *Grammar {
	return New(g.Name, start, g.rules)
}

// Start returns the start symbol.
func (g *Grammar) Start() piu.Element {
	return g.start
}

// Size returns the number of rules.
func (g *Grammar) Size() int {
	return len(g.rules)
}

// Rule returns rule no. i.
func (g *Grammar) Rule(i int) *Rule {
	return g.rules[i]
}

// Rules returns a copy of the rule list.
func (g *Grammar) Rules() []*Rule {
	rules := make([]*Rule, len(g.rules))
	copy(rules, g.rules)
	return rules
}

// RulesFor returns all the rules with LHS lhs, in grammar order.
func (g *Grammar) RulesFor(lhs piu.Element) []*Rule {
	var rules []*Rule
	for _, r := range g.rules {
		if r.LHS == lhs {
			rules = append(rules, r)
		}
	}
	return rules
}

// Productions returns a map from every non-terminal to the right hand sides of
// its rules.
func (g *Grammar) Productions() map[piu.Element][]piu.Sequence {
	prods := make(map[piu.Element][]piu.Sequence)
	for _, r := range g.rules {
		prods[r.LHS] = append(prods[r.LHS], r.RHS)
	}
	return prods
}

// NonTerminals returns all non-terminals in sorted order.
func (g *Grammar) NonTerminals() []piu.Element {
	return elements(g.nonterminals)
}

// Terminals returns all terminals in sorted order.
func (g *Grammar) Terminals() []piu.Element {
	return elements(g.terminals)
}

// IsNonTerminal is a predicate: does e occur as a non-terminal in g?
func (g *Grammar) IsNonTerminal(e piu.Element) bool {
	return g.nonterminals.Contains(e)
}

// HasSymbolNamed is a predicate: is there a non-terminal or terminal with
// name n?
func (g *Grammar) HasSymbolNamed(n string) bool {
	return g.nonterminals.Contains(piu.N(n)) || g.terminals.Contains(piu.T(n))
}

// Contains is a predicate: does g contain a rule structurally equal to r?
func (g *Grammar) Contains(r *Rule) bool {
	for _, rule := range g.rules {
		if rule.Equals(r) {
			return true
		}
	}
	return false
}

// StartUsed is a predicate: does the start symbol occur on any RHS?
func (g *Grammar) StartUsed() bool {
	for _, r := range g.rules {
		if r.RHS.Contains(g.start) {
			return true
		}
	}
	return false
}

// HasEndMarkers is a predicate: is there an End element on any RHS?
func (g *Grammar) HasEndMarkers() bool {
	for _, r := range g.rules {
		if r.RHS.Contains(piu.EOF()) {
			return true
		}
	}
	return false
}

// StripEndMarkers returns a grammar without End elements. A RHS consisting of
// an End marker only becomes [ε].
func (g *Grammar) StripEndMarkers() *Grammar {
	if !g.HasEndMarkers() {
		return g
	}
	rules := make([]*Rule, 0, len(g.rules))
	for _, r := range g.rules {
		var rhs piu.Sequence
		for _, e := range r.RHS {
			if !e.IsEnd() {
				rhs = append(rhs, e)
			}
		}
		rules = append(rules, NewRule(r.LHS, rhs...))
	}
	return g.derive(rules)
}

func elements(set *treeset.Set) []piu.Element {
	values := set.Values()
	elems := make([]piu.Element, len(values))
	for i, v := range values {
		elems[i] = v.(piu.Element)
	}
	return elems
}

// --- Import and export -----------------------------------------------------

// Mapping is the external representation of a grammar: a map from
// non-terminal names to their ordered alternatives.
type Mapping map[string][]piu.Sequence

// FromMapping creates a grammar from a mapping and the name of the start
// symbol. Rules of the start symbol come first, the others follow in order of
// their LHS names.
func FromMapping(name string, m Mapping, start string) *Grammar {
	lhss := make([]string, 0, len(m))
	for lhs := range m {
		if lhs != start {
			lhss = append(lhss, lhs)
		}
	}
	sort.Strings(lhss)
	if _, ok := m[start]; ok {
		lhss = append([]string{start}, lhss...)
	}
	var rules []*Rule
	for _, lhs := range lhss {
		for _, alt := range m[lhs] {
			rules = append(rules, NewRule(piu.N(lhs), alt...))
		}
	}
	return New(name, piu.N(start), rules)
}

// Export returns the mapping representation of g. Alternatives keep their
// grammar order.
func (g *Grammar) Export() Mapping {
	m := make(Mapping)
	for _, r := range g.rules {
		m[r.LHS.Name] = append(m[r.LHS.Name], r.RHS.Clone())
	}
	return m
}

// --- Debugging -------------------------------------------------------------

// Dump is a debugging helper: it writes the rules of g to the tracer.
func (g *Grammar) Dump() {
	tracer().Debugf("--- grammar %s, start %s ---------------", g.Name, g.start)
	for i, r := range g.rules {
		tracer().Debugf("%3d: %s", i, r)
	}
	tracer().Debugf("-------------------------------------------")
}

// String lists the alternatives of every non-terminal on a line of its own,
// start symbol first.
func (g *Grammar) String() string {
	var b strings.Builder
	var order []piu.Element
	alts := make(map[piu.Element][]string)
	for _, r := range g.rules {
		if _, ok := alts[r.LHS]; !ok {
			order = append(order, r.LHS)
		}
		alts[r.LHS] = append(alts[r.LHS], r.RHS.String())
	}
	for _, lhs := range order {
		b.WriteString(lhs.Name)
		b.WriteString(" ➞ ")
		b.WriteString(strings.Join(alts[lhs], " | "))
		b.WriteString("\n")
	}
	return b.String()
}
