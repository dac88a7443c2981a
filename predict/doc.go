/*
Package predict implements an incremental recognizer driven by a grammar in
Greibach Normal Form.

A Predictor consumes its input one token at a time. It keeps a set of stacks,
each holding the symbols still expected by one viable derivation of the input
consumed so far. As every GNF alternative starts with a terminal, a stack
whose top is a non-terminal may be expanded immediately, until every top is a
terminal or the end-of-input marker. Matching a token thus discards the stacks
which do not expect it and pops the others.

Ambiguity is not resolved: all distinct stacks are kept. Memory consumption
is therefore proportional to the ambiguity of the grammar for the input seen
so far.

    g, _, err := gnf.Convert(nil, myGrammar)
    p, err := predict.New(g)
    outcome, err := p.AddChar("a")
    next := p.AllowedNextChars()

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package predict

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'piu.predict'.
func tracer() tracing.Trace {
	return tracing.Select("piu.predict")
}
