package grammar

import (
	"errors"

	"github.com/piu-lang/piu"
)

// Builder is a helper type to construct grammars, in the style of
//
//    b := grammar.NewBuilder("G")
//    b.LHS("S").N("A").T("a").EOF()   // S → A a $
//    b.LHS("A").Epsilon()             // A → ε
//    g, err := b.Grammar()
//
// The first LHS symbol will be the start symbol, unless clients call
// StartWith(…).
type Builder struct {
	name  string
	start string
	rules []*Rule
}

// NewBuilder creates a builder for a grammar with a name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// StartWith sets the start symbol explicitly.
func (b *Builder) StartWith(nonterm string) *Builder {
	b.start = nonterm
	return b
}

// RuleBuilder collects the RHS of a single rule. Create one with
// Builder.LHS(…).
type RuleBuilder struct {
	b   *Builder
	lhs piu.Element
	rhs piu.Sequence
}

// LHS starts a new rule for non-terminal nonterm.
func (b *Builder) LHS(nonterm string) *RuleBuilder {
	if b.start == "" {
		b.start = nonterm
	}
	return &RuleBuilder{b: b, lhs: piu.N(nonterm)}
}

// N appends a non-terminal to the RHS.
func (rb *RuleBuilder) N(nonterm string) *RuleBuilder {
	rb.rhs = append(rb.rhs, piu.N(nonterm))
	return rb
}

// T appends a terminal to the RHS.
func (rb *RuleBuilder) T(terminal string) *RuleBuilder {
	rb.rhs = append(rb.rhs, piu.T(terminal))
	return rb
}

// Elem appends an arbitrary element to the RHS.
func (rb *RuleBuilder) Elem(e piu.Element) *RuleBuilder {
	rb.rhs = append(rb.rhs, e)
	return rb
}

// End closes the rule and adds it to the grammar. A rule without any RHS
// symbols becomes an epsilon-production.
func (rb *RuleBuilder) End() *Builder {
	rb.b.rules = append(rb.b.rules, NewRule(rb.lhs, rb.rhs...))
	return rb.b
}

// EOF appends the end-of-input marker and closes the rule.
func (rb *RuleBuilder) EOF() *Builder {
	rb.rhs = append(rb.rhs, piu.EOF())
	return rb.End()
}

// Epsilon adds an epsilon-production  LHS → ε  and closes the rule.
func (rb *RuleBuilder) Epsilon() *Builder {
	rb.rhs = piu.Seq(piu.Epsilon())
	return rb.End()
}

// ErrEmptyGrammar is returned by the builder if no rules have been added.
var ErrEmptyGrammar = errors.New("grammar has no rules")

// Grammar returns the grammar built so far.
func (b *Builder) Grammar() (*Grammar, error) {
	if len(b.rules) == 0 {
		return nil, ErrEmptyGrammar
	}
	g := New(b.name, piu.N(b.start), b.rules)
	tracer().Debugf("built grammar %s with %d rules", g.Name, g.Size())
	return g, nil
}
