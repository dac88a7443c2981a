package bnf

import (
	"fmt"
	"sync"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Token types of the grammar notation.
const (
	IDENT int = iota + 1 // non-terminal
	STRING               // quoted terminal
	ARROW                // -> ::= : → ➞
	BAR                  // |
	SEMI                 // ;
	EPS                  // ε %empty
	END                  // $
)

var tokenNames = map[int]string{
	IDENT:  "identifier",
	STRING: "string",
	ARROW:  "arrow",
	BAR:    "'|'",
	SEMI:   "';'",
	EPS:    "ε",
	END:    "$",
}

func tokenName(t int) string {
	if n, ok := tokenNames[t]; ok {
		return n
	}
	return fmt.Sprintf("token(%d)", t)
}

var lexer *lexmachine.Lexer
var lexerErr error
var initOnce sync.Once // monitors one-time compilation of the DFA

func initLexer() (*lexmachine.Lexer, error) {
	initOnce.Do(func() {
		lexer = lexmachine.NewLexer()
		lexer.Add([]byte(`#[^\n]*`), skip)
		lexer.Add([]byte(`( |\t|\n|\r)+`), skip)
		lexer.Add([]byte(`"[^"]*"`), makeToken(STRING))
		lexer.Add([]byte(`'[^']*'`), makeToken(STRING))
		lexer.Add([]byte(`([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_|')*`), makeToken(IDENT))
		lexer.Add([]byte(`\-\>|\:\:\=|\:|→|➞`), makeToken(ARROW))
		lexer.Add([]byte(`\|`), makeToken(BAR))
		lexer.Add([]byte(`\;`), makeToken(SEMI))
		lexer.Add([]byte(`ε|\%empty`), makeToken(EPS))
		lexer.Add([]byte(`\$`), makeToken(END))
		if lexerErr = lexer.Compile(); lexerErr != nil {
			tracer().Errorf("error compiling DFA: %v", lexerErr)
		}
	})
	return lexer, lexerErr
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

// scan splits the input into tokens. The first character which does not start
// a token results in a SyntaxError.
func scan(src string) ([]*lexmachine.Token, error) {
	lx, err := initLexer()
	if err != nil {
		return nil, err
	}
	scanner, err := lx.Scanner([]byte(src))
	if err != nil {
		return nil, err
	}
	var toks []*lexmachine.Token
	for tok, err, eof := scanner.Next(); !eof; tok, err, eof = scanner.Next() {
		if err != nil {
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				return nil, &SyntaxError{
					Line:   ui.StartLine,
					Column: ui.StartColumn,
					Msg:    fmt.Sprintf("unexpected input %q", ui.Text),
					Err:    err,
				}
			}
			return nil, fmt.Errorf("scanning grammar: %w", err)
		}
		t := tok.(*lexmachine.Token)
		tracer().Debugf("token %s %q at %d:%d", tokenName(t.Type), t.Lexeme, t.StartLine, t.StartColumn)
		toks = append(toks, t)
	}
	return toks, nil
}
