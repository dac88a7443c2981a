/*
Package prepl/main provides an interactive command line tool (P.REPL) to
experiment with grammar normalization and incremental prediction.

P.REPL reads a grammar (in the notation of package bnf, or a default
expression grammar), converts it to Greibach Normal Form and feeds lines of
input into a predictor, one token at a time. After every line it reports
whether the input is accepted so far and which tokens may follow.

    prepl -grammar expr.bnf -trace Debug -history

Commands start with a colon: ':reset' forgets the input consumed so far,
':stacks' shows the predictor's stacks, ':grammar' prints the GNF grammar and
':quit' ends the session.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'piu.predict'
func tracer() tracing.Trace {
	return tracing.Select("piu.predict")
}
