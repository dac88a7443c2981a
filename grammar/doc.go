/*
Package grammar implements context-free grammars and the simplification
passes on them.

Building a Grammar

Grammars are specified using a grammar builder object. Clients add
rules, consisting of non-terminal symbols and terminals. Grammars may contain
epsilon-productions.

Example:

    b := grammar.NewBuilder("G")
    b.LHS("S").T("a").N("A").N("B").EOF()  // S  ->  a A B $
    b.LHS("A").T("a").N("A").End()         // A  ->  a A
    b.LHS("A").T("a").End()                // A  ->  a
    b.LHS("B").T("b").End()                // B  ->  b
    b.LHS("B").Epsilon()                   // B  ->  ε
    g, err := b.Grammar()

The first left hand side symbol becomes the start symbol. Alternatively,
grammars may be created from a Mapping of non-terminal names to their
alternatives, see FromMapping.

Runs

Every transformation pass is executed in the context of a Run. A Run owns the
counter for synthetic symbol names, an optional history of grammar snapshots
and an iteration limit for fixpoint computations. Runs are never shared
between independent conversions, thus generated names cannot collide.

    run := grammar.NewRun(grammar.WithHistory())
    s, err := run.Simplify(g)
    for _, snap := range run.History() {
        snap.Grammar.Dump()
    }

Simplification

Simplify applies, in this order: start symbol isolation, removal of
non-generating symbols, removal of unreachable symbols, removal of null
productions, removal of unit productions, a final pruning of symbols which
became useless, and sorting of the rules (start alternatives first).

Removing null productions from a rule with k occurrences of nullable symbols
creates up to 2^k-1 new rules. This is inherent to the transformation.

Sub-packages cnf and gnf build on this package to convert grammars to Chomsky
and Greibach Normal Form.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'piu.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("piu.grammar")
}
