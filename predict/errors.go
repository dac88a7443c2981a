package predict

import (
	"fmt"
	"strings"

	"github.com/piu-lang/piu/grammar"
)

// GrammarFormatError is returned by New if a grammar is not in Greibach Normal
// Form.
type GrammarFormatError struct {
	Rule   *grammar.Rule
	Reason string
}

func (e *GrammarFormatError) Error() string {
	return fmt.Sprintf("rule %v is not in Greibach Normal Form: %s", e.Rule, e.Reason)
}

// RejectedError is returned by AddChar if no viable derivation accepts a
// token. The predictor will not accept any input after that.
type RejectedError struct {
	Char     string   // the offending token
	Position int      // number of tokens consumed before Char
	Expected []string // tokens which would have been accepted
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("unexpected %q at position %d, expected one of [%s]",
		e.Char, e.Position, strings.Join(e.Expected, " "))
}
