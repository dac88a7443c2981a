package piu

import (
	"strings"
)

// --- Grammar elements ------------------------------------------------------

// Kind is the variant tag of an Element.
type Kind int8

// Element kinds. The order of the constants defines the primary sort order of
// elements.
const (
	Terminal Kind = iota // literal input symbol
	RuleRef              // reference to a non-terminal
	Empty                // the empty word ε
	End                  // end-of-input marker
)

func (k Kind) String() string {
	switch k {
	case Terminal:
		return "terminal"
	case RuleRef:
		return "rule-ref"
	case Empty:
		return "empty"
	case End:
		return "end"
	}
	return "<unknown>"
}

// Element is a symbol of a grammar rule. It is a tagged variant: Kind tells
// which variant it is, Name is the terminal's value or the non-terminal's name.
// Empty and End elements carry no name.
//
// Elements are comparable values, two elements are equal if and only if
// kind and name are equal. Elements may therefore be used as map keys.
type Element struct {
	Kind Kind
	Name string
}

// T creates a terminal element.
func T(name string) Element {
	return Element{Kind: Terminal, Name: name}
}

// N creates a rule reference, i.e. a non-terminal element.
func N(name string) Element {
	return Element{Kind: RuleRef, Name: name}
}

// Epsilon returns the element for the empty word.
func Epsilon() Element {
	return Element{Kind: Empty}
}

// EOF returns the end-of-input marker.
func EOF() Element {
	return Element{Kind: End}
}

// IsTerminal is a predicate.
func (e Element) IsTerminal() bool {
	return e.Kind == Terminal
}

// IsRuleRef is a predicate: is e a non-terminal?
func (e Element) IsRuleRef() bool {
	return e.Kind == RuleRef
}

// IsEmpty is a predicate: is e the empty word?
func (e Element) IsEmpty() bool {
	return e.Kind == Empty
}

// IsEnd is a predicate: is e the end-of-input marker?
func (e Element) IsEnd() bool {
	return e.Kind == End
}

// Compare is a total order on elements, by kind first and name second.
// It returns -1, 0 or +1.
func (e Element) Compare(other Element) int {
	if e.Kind != other.Kind {
		if e.Kind < other.Kind {
			return -1
		}
		return 1
	}
	return strings.Compare(e.Name, other.Name)
}

// Key returns a canonical string for e, suitable for hashing.
func (e Element) Key() string {
	var b strings.Builder
	e.writeKey(&b)
	return b.String()
}

func (e Element) writeKey(b *strings.Builder) {
	b.WriteByte(byte('0' + e.Kind))
	b.WriteString(e.Name)
	b.WriteByte(0)
}

func (e Element) String() string {
	switch e.Kind {
	case Terminal:
		if strings.Contains(e.Name, "\"") {
			return "'" + e.Name + "'"
		}
		return "\"" + e.Name + "\""
	case RuleRef:
		return e.Name
	case Empty:
		return "ε"
	case End:
		return "$"
	}
	return "<?>"
}

// --- Sequences -------------------------------------------------------------

// Sequence is an ordered run of elements, e.g. the right hand side of a rule.
type Sequence []Element

// Seq is a small helper to create a sequence.
func Seq(elems ...Element) Sequence {
	return Sequence(elems)
}

// Equals compares two sequences structurally.
func (s Sequence) Equals(other Sequence) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Compare orders sequences lexicographically by their elements.
func (s Sequence) Compare(other Sequence) int {
	for i := 0; i < len(s) && i < len(other); i++ {
		if c := s[i].Compare(other[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(s) < len(other):
		return -1
	case len(s) > len(other):
		return 1
	}
	return 0
}

// Key returns a canonical string for s. Two sequences have the same key if and
// only if they are structurally equal.
func (s Sequence) Key() string {
	var b strings.Builder
	for _, e := range s {
		e.writeKey(&b)
	}
	return b.String()
}

// Clone returns a copy of s which does not share storage with s.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	c := make(Sequence, len(s))
	copy(c, s)
	return c
}

// Concat returns a new sequence s ++ other.
func (s Sequence) Concat(other Sequence) Sequence {
	c := make(Sequence, 0, len(s)+len(other))
	c = append(c, s...)
	return append(c, other...)
}

// Contains is a predicate: does e occur in s?
func (s Sequence) Contains(e Element) bool {
	for _, x := range s {
		if x == e {
			return true
		}
	}
	return false
}

// IsEpsilon is a predicate: is s exactly [ε]?
func (s Sequence) IsEpsilon() bool {
	return len(s) == 1 && s[0].Kind == Empty
}

func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}
