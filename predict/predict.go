package predict

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/piu-lang/piu"
	"github.com/piu-lang/piu/grammar"
)

// EndOfInput is the default token which matches the end-of-input marker.
const EndOfInput = "$"

// Outcome is the result of consuming a token.
type Outcome int8

// Outcomes of AddChar.
const (
	Pending   Outcome = iota // input is a viable prefix, but may not end here
	Accepting                // input may end here
	Rejected                 // no derivation accepts the input
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Accepting:
		return "accepting"
	case Rejected:
		return "rejected"
	}
	return "<unknown>"
}

// stack holds the symbols expected by a derivation, top of stack last.
type stack []piu.Element

func (st stack) top() piu.Element {
	return st[len(st)-1]
}

func (st stack) key() string {
	return piu.Sequence(st).Key()
}

// push returns a new stack with the symbols of alt pushed in reverse order,
// so that alt[0] is on top.
func (st stack) push(alt piu.Sequence) stack {
	s := make(stack, 0, len(st)+len(alt))
	s = append(s, st...)
	for i := len(alt) - 1; i >= 0; i-- {
		s = append(s, alt[i])
	}
	return s
}

// stackset collects stacks, dropping structural duplicates.
type stackset struct {
	stacks []stack
	seen   map[string]struct{}
}

func newStackSet() *stackset {
	return &stackset{seen: make(map[string]struct{})}
}

func (set *stackset) add(st stack) bool {
	k := st.key()
	if _, ok := set.seen[k]; ok {
		return false
	}
	set.seen[k] = struct{}{}
	set.stacks = append(set.stacks, st)
	return true
}

// Predictor is an incremental recognizer for a grammar in GNF.
// A Predictor is not safe for concurrent use.
type Predictor struct {
	g        *grammar.Grammar
	prods    map[piu.Element][]piu.Sequence
	initial  []stack
	stacks   []stack
	consumed []string
	rejected *RejectedError
	eoi      string
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithEndOfInput sets the token which matches the end-of-input marker.
// Default is EndOfInput.
func WithEndOfInput(token string) Option {
	return func(p *Predictor) {
		p.eoi = token
	}
}

// New creates a predictor for a grammar in Greibach Normal Form. Every
// alternative of the start symbol is terminated by an end-of-input marker,
// if it does not already end with one. The start symbol may have an
// ε-alternative.
//
// If g is not in GNF, a GrammarFormatError is returned.
func New(g *grammar.Grammar, opts ...Option) (*Predictor, error) {
	p := &Predictor{
		g:     g,
		prods: make(map[piu.Element][]piu.Sequence),
		eoi:   EndOfInput,
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, r := range g.Rules() {
		alt, err := checkRule(g, r)
		if err != nil {
			tracer().Errorf("%v", err)
			return nil, err
		}
		p.prods[r.LHS] = append(p.prods[r.LHS], alt)
	}
	start := newStackSet()
	for _, alt := range p.prods[g.Start()] {
		if len(alt) == 0 || !alt[len(alt)-1].IsEnd() {
			alt = alt.Concat(piu.Seq(piu.EOF()))
		}
		start.add(stack{}.push(alt))
	}
	p.initial = start.stacks
	p.Reset()
	tracer().Debugf("predictor for grammar %s has %d initial stacks", g.Name, len(p.initial))
	return p, nil
}

// checkRule returns the RHS of r without ε-elements, or an error if r is not
// in GNF.
func checkRule(g *grammar.Grammar, r *grammar.Rule) (piu.Sequence, error) {
	var alt piu.Sequence
	for _, e := range r.RHS {
		if !e.IsEmpty() {
			alt = append(alt, e)
		}
	}
	if len(alt) == 0 || (len(alt) == 1 && alt[0].IsEnd()) {
		if r.LHS != g.Start() {
			return nil, &GrammarFormatError{Rule: r, Reason: "only the start symbol may derive ε"}
		}
		return alt, nil
	}
	if !alt[0].IsTerminal() {
		return nil, &GrammarFormatError{Rule: r, Reason: "must start with a terminal"}
	}
	for i, e := range alt[1:] {
		switch {
		case e.IsTerminal():
			return nil, &GrammarFormatError{Rule: r, Reason: "terminal at non-leading position"}
		case e.IsEnd() && i+2 != len(alt):
			return nil, &GrammarFormatError{Rule: r, Reason: "end marker must be last"}
		}
	}
	return alt, nil
}

// Reset puts the predictor back into its initial state.
func (p *Predictor) Reset() {
	p.stacks = make([]stack, len(p.initial))
	copy(p.stacks, p.initial)
	p.consumed = nil
	p.rejected = nil
}

func (p *Predictor) matches(e piu.Element, c string) bool {
	return (e.IsTerminal() && e.Name == c) || (e.IsEnd() && c == p.eoi)
}

// AddChar consumes token c. If no derivation accepts c, Rejected is returned
// together with a RejectedError. The predictor is dead after a rejection and
// will reject any further input until it is reset.
func (p *Predictor) AddChar(c string) (Outcome, error) {
	if p.rejected != nil {
		return Rejected, p.rejected
	}
	next := newStackSet()
	for _, st := range p.stacks {
		if len(st) == 0 || !p.matches(st.top(), c) {
			continue
		}
		p.expand(st[:len(st)-1], next)
	}
	if len(next.stacks) == 0 {
		p.rejected = &RejectedError{
			Char:     c,
			Position: len(p.consumed),
			Expected: p.AllowedNextChars(),
		}
		p.stacks = nil
		tracer().Infof("%v", p.rejected)
		return Rejected, p.rejected
	}
	p.stacks = next.stacks
	p.consumed = append(p.consumed, c)
	tracer().Debugf("consumed %q, %d stacks alive", c, len(p.stacks))
	if p.IsAccepting() {
		return Accepting, nil
	}
	return Pending, nil
}

// expand replaces a non-terminal on top of st by each of its alternatives,
// until the top of every resulting stack is a terminal, an end marker or
// nothing at all.
func (p *Predictor) expand(st stack, into *stackset) {
	work := []stack{st}
	for len(work) > 0 {
		st := work[len(work)-1]
		work = work[:len(work)-1]
		if len(st) == 0 || !st.top().IsRuleRef() {
			into.add(st)
			continue
		}
		rest := st[:len(st)-1]
		for _, alt := range p.prods[st.top()] {
			work = append(work, rest.push(alt))
		}
	}
}

// AllowedNextChars returns the tokens which would be accepted next, in sorted
// order. If the input may end here, the result contains the end-of-input token.
func (p *Predictor) AllowedNextChars() []string {
	set := treeset.NewWith(utils.StringComparator)
	for _, st := range p.stacks {
		if len(st) == 0 {
			continue
		}
		if top := st.top(); top.IsTerminal() {
			set.Add(top.Name)
		} else if top.IsEnd() {
			set.Add(p.eoi)
		}
	}
	chars := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		chars = append(chars, v.(string))
	}
	return chars
}

// IsAccepting is a predicate: may the input end here? This is the case if
// some derivation has either consumed all of its symbols or expects nothing
// but the end of input.
func (p *Predictor) IsAccepting() bool {
	for _, st := range p.stacks {
		if len(st) == 0 || (len(st) == 1 && st[0].IsEnd()) {
			return true
		}
	}
	return false
}

// IsComplete is a predicate: has some derivation consumed all of its symbols,
// including the end-of-input marker?
func (p *Predictor) IsComplete() bool {
	for _, st := range p.stacks {
		if len(st) == 0 {
			return true
		}
	}
	return false
}

// IsDead is a predicate: has the predictor rejected its input?
func (p *Predictor) IsDead() bool {
	return p.rejected != nil
}

// Stacks returns the live stacks, each one front (next expected symbol) first.
func (p *Predictor) Stacks() []piu.Sequence {
	seqs := make([]piu.Sequence, len(p.stacks))
	for i, st := range p.stacks {
		seq := make(piu.Sequence, len(st))
		for j := range st {
			seq[j] = st[len(st)-1-j]
		}
		seqs[i] = seq
	}
	return seqs
}

// Consumed returns the tokens consumed so far.
func (p *Predictor) Consumed() []string {
	c := make([]string, len(p.consumed))
	copy(c, p.consumed)
	return c
}

// Dump is a debugging helper: it writes the live stacks to the tracer.
func (p *Predictor) Dump() {
	tracer().Debugf("--- predictor for %s, consumed %v ---", p.g.Name, p.consumed)
	for i, seq := range p.Stacks() {
		tracer().Debugf("%3d: [%v]", i, seq)
	}
	tracer().Debugf("-------------------------------------------")
}
