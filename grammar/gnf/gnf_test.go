package gnf

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/piu-lang/piu"
	"github.com/piu-lang/piu/grammar"
	"github.com/piu-lang/piu/grammar/cnf"
)

func build(t *testing.T, b *grammar.Builder) *grammar.Grammar {
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

// S → S S | ( S ) | ε
func parens(t *testing.T) *grammar.Grammar {
	b := grammar.NewBuilder("Parens")
	b.LHS("S").N("S").N("S").End()
	b.LHS("S").T("(").N("S").T(")").End()
	b.LHS("S").Epsilon()
	return build(t, b)
}

func expr(t *testing.T) *grammar.Grammar {
	b := grammar.NewBuilder("Expr")
	b.LHS("E").N("E").T("+").N("T").End()
	b.LHS("E").N("T").End()
	b.LHS("T").N("T").T("*").N("F").End()
	b.LHS("T").N("F").End()
	b.LHS("F").T("(").N("E").T(")").End()
	b.LHS("F").T("x").End()
	return build(t, b)
}

// accepts recognizes word with a grammar in GNF.
func accepts(g *grammar.Grammar, word []string) bool {
	if len(word) == 0 {
		return g.Contains(grammar.NewRule(g.Start(), piu.Epsilon()))
	}
	prods := g.Productions()
	stacks := []piu.Sequence{piu.Seq(g.Start())}
	for _, w := range word {
		seen := make(map[string]bool)
		var next []piu.Sequence
		for _, st := range stacks {
			if len(st) == 0 {
				continue
			}
			for _, rhs := range prods[st[0]] {
				if rhs[0] != piu.T(w) {
					continue
				}
				s := rhs[1:].Concat(st[1:])
				if k := s.Key(); !seen[k] {
					seen[k] = true
					next = append(next, s)
				}
			}
		}
		stacks = next
	}
	for _, st := range stacks {
		if len(st) == 0 {
			return true
		}
	}
	return false
}

// language enumerates all words of g up to length n, by leftmost derivation
// on the simplified grammar.
func language(t *testing.T, g *grammar.Grammar, n int) map[string]bool {
	s, err := grammar.Simplify(g.StripEndMarkers())
	if err != nil {
		t.Fatal(err)
	}
	prods := s.Productions()
	words := make(map[string]bool)
	seen := make(map[string]bool)
	queue := []piu.Sequence{piu.Seq(s.Start())}
	for len(queue) > 0 {
		form := queue[0]
		queue = queue[1:]
		i := -1
		for k, e := range form {
			if e.IsRuleRef() {
				i = k
				break
			}
		}
		if i < 0 {
			words[join(form)] = true
			continue
		}
		for _, rhs := range prods[form[i]] {
			next := form[:i].Concat(rhs).Concat(form[i+1:])
			if len(next) > n {
				continue
			}
			if k := next.Key(); !seen[k] {
				seen[k] = true
				queue = append(queue, next)
			}
		}
	}
	return words
}

func join(form piu.Sequence) string {
	var b strings.Builder
	for _, e := range form {
		if e.IsTerminal() {
			b.WriteString(e.Name)
		}
	}
	return b.String()
}

// allWords calls f for every word over alphabet up to length n.
func allWords(alphabet []string, n int, f func([]string)) {
	var rec func(prefix []string)
	rec = func(prefix []string) {
		f(prefix)
		if len(prefix) == n {
			return
		}
		for _, a := range alphabet {
			rec(append(prefix[:len(prefix):len(prefix)], a))
		}
	}
	rec(nil)
}

func sameLanguage(t *testing.T, g, h *grammar.Grammar, alphabet []string, n int) {
	words := language(t, g, n)
	allWords(alphabet, n, func(w []string) {
		if accepts(h, w) != words[strings.Join(w, "")] {
			t.Errorf("GNF grammar %s disagrees with original for %q", h.Name, strings.Join(w, ""))
		}
	})
}

func convert(t *testing.T, g *grammar.Grammar) (*grammar.Grammar, *Ordering) {
	h, order, err := Convert(nil, g)
	if err != nil {
		t.Fatal(err)
	}
	h.Dump()
	if err = Check(h); err != nil {
		t.Fatalf("%v in\n%s", err, h)
	}
	return h, order
}

func TestParensGNF(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	g := parens(t)
	h, _ := convert(t, g)
	sameLanguage(t, g, h, []string{"(", ")"}, 6)
}

func TestParensCNFToGNF(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	run := grammar.NewRun()
	g := parens(t)
	c, err := cnf.Convert(run, g)
	if err != nil {
		t.Fatal(err)
	}
	h, _, err := Convert(run, c)
	if err != nil {
		t.Fatal(err)
	}
	if err = Check(h); err != nil {
		t.Fatal(err)
	}
	sameLanguage(t, g, h, []string{"(", ")"}, 6)
}

func TestExprGNF(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	g := expr(t)
	h, order := convert(t, g)
	sameLanguage(t, g, h, []string{"x", "+", "*", "(", ")"}, 5)
	if A, _ := order.Symbol(0); A != piu.N("E'") {
		t.Errorf("Expected new start symbol E' to have index 0, is %v", A)
	}
	if i, ok := order.Index(piu.N("E")); !ok || i != 1 {
		t.Errorf("Expected E to have index 1, has %d", i)
	}
	if len(order.Symbols()) != order.Len() || order.Len() <= 4 {
		t.Errorf("Expected helpers to be appended to ordering %s", order)
	}
}

func TestIndirectLeftRecursion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	b := grammar.NewBuilder("G")
	b.LHS("A").N("B").T("a").End() // A → B a
	b.LHS("A").T("b").End()        // A → b
	b.LHS("B").N("A").T("c").End() // B → A c
	b.LHS("B").T("d").End()        // B → d
	g := build(t, b)
	h, _ := convert(t, g)
	sameLanguage(t, g, h, []string{"a", "b", "c", "d"}, 6)
}

func TestHiddenLeftRecursion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	b := grammar.NewBuilder("G")
	b.LHS("S").N("A").N("S").T("b").End() // S → A S b
	b.LHS("S").T("a").End()               // S → a
	b.LHS("A").Epsilon()                  // A → ε
	b.LHS("A").T("c").End()               // A → c
	g := build(t, b)
	h, _ := convert(t, g)
	sameLanguage(t, g, h, []string{"a", "b", "c"}, 6)
}

func TestWorkedExample(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	b := grammar.NewBuilder("G")
	b.LHS("S").T("a").N("A").N("B").EOF() // S → a A B $
	b.LHS("A").T("a").N("A").End()        // A → a A
	b.LHS("A").T("a").End()               // A → a
	b.LHS("B").T("b").N("B").End()        // B → b B
	b.LHS("B").T("b").End()               // B → b
	g := build(t, b)
	h, _ := convert(t, g)
	if h.Size() != 5 || !h.Contains(grammar.NewRule(piu.N("S"), piu.T("a"), piu.N("A"), piu.N("B"))) {
		t.Errorf("Expected grammar already in GNF to be unchanged, have\n%s", h)
	}
}

func TestMergeWrappers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	b := grammar.NewBuilder("G")
	b.LHS("S").T("a").N("B").N("C").End() // S → a B C
	b.LHS("B").T("b").End()               // B → b
	b.LHS("C").T("b").End()               // C → b
	g := build(t, b)
	h, _ := convert(t, g)
	if h.IsNonTerminal(piu.N("C")) {
		t.Errorf("Expected C to be merged into B, have\n%s", h)
	}
	if !h.Contains(grammar.NewRule(piu.N("S"), piu.T("a"), piu.N("B"), piu.N("B"))) {
		t.Errorf("Expected rule S → a B B, have\n%s", h)
	}
}

// chain creates A1 → A2 a | A2 b, …, Ak → a | b. A1 has 2^k alternatives in GNF.
func chain(t *testing.T, k int) *grammar.Grammar {
	b := grammar.NewBuilder("Chain")
	for i := 1; i < k; i++ {
		A, next := "A"+strconv.Itoa(i), "A"+strconv.Itoa(i+1)
		b.LHS(A).N(next).T("a").End()
		b.LHS(A).N(next).T("b").End()
	}
	b.LHS("A" + strconv.Itoa(k)).T("a").End()
	b.LHS("A" + strconv.Itoa(k)).T("b").End()
	return build(t, b)
}

func TestSizeLimit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	h, _ := convert(t, chain(t, 12))
	if n := len(h.RulesFor(piu.N("A1"))); n != 1<<12 {
		t.Errorf("Expected A1 to have %d alternatives, has %d", 1<<12, n)
	}
	if !accepts(h, strings.Split("abbaabbaabba", "")) {
		t.Errorf("Expected GNF of chain grammar to accept abbaabbaabba")
	}
	run := grammar.NewRun(grammar.WithIterationLimit(4))
	g := chain(t, 12)
	_, _, err := Convert(run, g)
	var nce *grammar.NonConvergenceError
	if !errors.As(err, &nce) {
		t.Fatalf("Expected NonConvergenceError, got %v", err)
	}
	if !nce.Size || nce.Pass != PassLeadingTerminal || nce.Limit != run.SizeLimit(g) {
		t.Errorf("Expected size limit of %d rules to be exceeded in %s, error is %v",
			run.SizeLimit(g), PassLeadingTerminal, err)
	}
}

func TestGNFHistory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	run := grammar.NewRun(grammar.WithHistory())
	if _, _, err := Convert(run, expr(t)); err != nil {
		t.Fatal(err)
	}
	passes := make(map[string]bool)
	for _, snap := range run.History() {
		passes[snap.Pass] = true
	}
	for _, p := range []string{PassIndexOrder, PassLeadingTerminal, PassWrapTerminals, PassMergeWrappers} {
		if !passes[p] {
			t.Errorf("Expected a snapshot of pass %s", p)
		}
	}
}

func TestCheck(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	b := grammar.NewBuilder("G")
	b.LHS("S").T("a").T("b").End()
	if Check(build(t, b)) == nil {
		t.Errorf("Expected S → a b to violate GNF")
	}
	b = grammar.NewBuilder("G")
	b.LHS("S").N("A").End()
	b.LHS("A").T("a").End()
	if Check(build(t, b)) == nil {
		t.Errorf("Expected S → A to violate GNF")
	}
}
