/*
Package bnf reads grammars in a BNF-like notation.

    # comment
    S -> "a" A B $ | "b" B "a" $ ;
    A -> "a" A | "a"
    B -> 'b' | ε

Identifiers denote non-terminals, quoted strings (single or double quotes)
denote terminals. '$' is the end-of-input marker, 'ε' or '%empty' the empty
word; an alternative without any symbols is empty as well. Arrows may be
written as '->', '::=', ':', '→' or '➞', and rules may be terminated by ';'.
The left hand side of the first rule is the start symbol.

The notation is compatible with the output of Grammar.String(), thus grammars
may be written and read back, unless a terminal contains both kinds of quotes.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package bnf

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/piu-lang/piu"
	"github.com/piu-lang/piu/grammar"
	"github.com/timtadh/lexmachine"
)

// tracer traces with key 'piu.bnf'.
func tracer() tracing.Trace {
	return tracing.Select("piu.bnf")
}

// SyntaxError is returned for malformed grammar sources.
type SyntaxError struct {
	Line, Column int
	Msg          string
	Err          error // scanner error, if any
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Parse reads a grammar from src.
func Parse(name, src string) (*grammar.Grammar, error) {
	toks, err := scan(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, b: grammar.NewBuilder(name)}
	for !p.atEnd() {
		if err = p.rule(); err != nil {
			tracer().Errorf("%v", err)
			return nil, err
		}
	}
	g, err := p.b.Grammar()
	if err != nil {
		return nil, err
	}
	tracer().Infof("read grammar %s with %d rules", g.Name, g.Size())
	return g, nil
}

// MustParse is like Parse, but panics on errors. It simplifies the
// initialization of global grammars and tests.
func MustParse(name, src string) *grammar.Grammar {
	g, err := Parse(name, src)
	if err != nil {
		panic(err)
	}
	return g
}

type parser struct {
	toks []*lexmachine.Token
	pos  int
	b    *grammar.Builder
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.toks)
}

func (p *parser) peek(k int) (*lexmachine.Token, bool) {
	if p.pos+k >= len(p.toks) {
		return nil, false
	}
	return p.toks[p.pos+k], true
}

func (p *parser) is(k int, typ int) bool {
	t, ok := p.peek(k)
	return ok && t.Type == typ
}

func (p *parser) errorf(format string, args ...interface{}) error {
	e := &SyntaxError{Msg: fmt.Sprintf(format, args...)}
	if t, ok := p.peek(0); ok {
		e.Line, e.Column = t.StartLine, t.StartColumn
	} else if len(p.toks) > 0 {
		last := p.toks[len(p.toks)-1]
		e.Line, e.Column = last.EndLine, last.EndColumn+1
	}
	return e
}

// rule parses  IDENT ARROW alternative { BAR alternative } [ SEMI ]
func (p *parser) rule() error {
	if !p.is(0, IDENT) {
		t, _ := p.peek(0)
		return p.errorf("expected non-terminal, found %s %q", tokenName(t.Type), t.Lexeme)
	}
	lhs := string(p.toks[p.pos].Lexeme)
	p.pos++
	if !p.is(0, ARROW) {
		return p.errorf("expected arrow after %s", lhs)
	}
	p.pos++
	for {
		p.alternative(p.b.LHS(lhs))
		if !p.is(0, BAR) {
			break
		}
		p.pos++
	}
	if p.is(0, SEMI) {
		p.pos++
	} else if !p.atEnd() && !p.startsRule() {
		t, _ := p.peek(0)
		return p.errorf("unexpected %s %q in rule for %s", tokenName(t.Type), t.Lexeme, lhs)
	}
	return nil
}

// startsRule is a predicate: do the next tokens start a new rule?
func (p *parser) startsRule() bool {
	return p.is(0, IDENT) && p.is(1, ARROW)
}

// alternative parses a possibly empty sequence of symbols. It stops in front
// of the next rule, if that is not terminated by ';'.
func (p *parser) alternative(rb *grammar.RuleBuilder) {
	for !p.atEnd() && !p.startsRule() {
		t := p.toks[p.pos]
		switch t.Type {
		case IDENT:
			rb.N(string(t.Lexeme))
		case STRING:
			rb.T(unquote(string(t.Lexeme)))
		case EPS:
			rb.Elem(piu.Epsilon())
		case END:
			rb.Elem(piu.EOF())
		default:
			rb.End()
			return
		}
		p.pos++
	}
	rb.End()
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}
