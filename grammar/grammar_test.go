package grammar

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/piu-lang/piu"
)

func TestBuilder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	b := NewBuilder("G")
	b.LHS("S").T("a").N("A").N("B").EOF() // S → a A B $
	b.LHS("A").T("a").N("A").End()        // A → a A
	b.LHS("A").T("a").End()               // A → a
	b.LHS("B").Epsilon()                  // B → ε
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	g.Dump()
	if g.Start() != piu.N("S") {
		t.Errorf("Expected start symbol to be S, is %v", g.Start())
	}
	if g.Size() != 4 {
		t.Errorf("Expected grammar to have 4 rules, has %d", g.Size())
	}
	if !g.Rule(3).IsEpsilon() {
		t.Errorf("Expected rule 3 to be an epsilon-production, is %v", g.Rule(3))
	}
	if !g.HasEndMarkers() {
		t.Errorf("Expected grammar to contain an end marker")
	}
	if len(g.Terminals()) != 1 || len(g.NonTerminals()) != 3 {
		t.Errorf("Expected 1 terminal and 3 non-terminals, have %v and %v",
			g.Terminals(), g.NonTerminals())
	}
}

func TestEmptyBuilder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	_, err := NewBuilder("G").Grammar()
	if !errors.Is(err, ErrEmptyGrammar) {
		t.Errorf("Expected empty builder to fail, error is %v", err)
	}
}

func TestRuleCanonicalization(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	r := NewRule(piu.N("A"), piu.T("a"), piu.Epsilon(), piu.N("B"))
	if !r.RHS.Equals(piu.Seq(piu.T("a"), piu.N("B"))) {
		t.Errorf("Expected ε to be dropped from RHS, is %v", r.RHS)
	}
	r = NewRule(piu.N("A"))
	if !r.IsEpsilon() {
		t.Errorf("Expected empty RHS to become [ε], is %v", r.RHS)
	}
}

func TestDuplicateRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	b := NewBuilder("G")
	b.LHS("C").T("c").End()
	b.LHS("C").T("c").End()
	g, _ := b.Grammar()
	if g.Size() != 1 {
		t.Errorf("Expected duplicate rule to be removed, have %d rules", g.Size())
	}
}

func TestMappingRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	m := Mapping{
		"S": {piu.Seq(piu.T("a"), piu.N("A")), piu.Seq(piu.T("b"))},
		"A": {piu.Seq(piu.T("a"), piu.N("A")), piu.Seq(piu.T("a"))},
	}
	g := FromMapping("G", m, "S")
	if g.Rule(0).LHS != piu.N("S") {
		t.Errorf("Expected start rules to come first, first rule is %v", g.Rule(0))
	}
	exp := g.Export()
	if len(exp) != 2 {
		t.Fatalf("Expected 2 non-terminals in export, have %d", len(exp))
	}
	for lhs, alts := range m {
		if len(exp[lhs]) != len(alts) {
			t.Fatalf("Expected %d alternatives for %s, have %d", len(alts), lhs, len(exp[lhs]))
		}
		for i, alt := range alts {
			if !exp[lhs][i].Equals(alt) {
				t.Errorf("Expected alternative %d of %s to be %v, is %v", i, lhs, alt, exp[lhs][i])
			}
		}
	}
}

func TestStripEndMarkers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	b := NewBuilder("G")
	b.LHS("S").T("a").EOF()
	b.LHS("S").EOF()
	g, _ := b.Grammar()
	h := g.StripEndMarkers()
	if h.HasEndMarkers() {
		t.Errorf("Expected end markers to be removed")
	}
	if !h.Contains(NewRule(piu.N("S"), piu.Epsilon())) {
		t.Errorf("Expected S → $ to become S → ε")
	}
	if !g.HasEndMarkers() {
		t.Errorf("Expected original grammar to be unchanged")
	}
}

func TestFreshNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	b := NewBuilder("G")
	b.LHS("S").N("X1").End()
	b.LHS("X1").T("X2").End()
	g, _ := b.Grammar()
	run := NewRun()
	x := run.Fresh(g, "X")
	if x.Name != "X3" {
		t.Errorf("Expected fresh symbol to skip X1 and X2, is %s", x.Name)
	}
	y := run.Fresh(g, "X")
	if x == y {
		t.Errorf("Expected fresh symbols to differ, both are %s", x.Name)
	}
	other := NewRun()
	if z := other.Fresh(g, "X"); z.Name != "X3" {
		t.Errorf("Expected independent run to start its own counter, got %s", z.Name)
	}
}

func TestNonConvergence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	b := NewBuilder("G")
	b.LHS("S").T("s").End()
	g, _ := b.Grammar()
	run := NewRun(WithIterationLimit(2))
	n := 0
	err := run.Fixpoint("endless", g, func() bool {
		n++
		return true
	})
	var nce *NonConvergenceError
	if !errors.As(err, &nce) {
		t.Fatalf("Expected NonConvergenceError, got %v", err)
	}
	if nce.Limit != n || n != run.Limit(g) {
		t.Errorf("Expected %d iterations, made %d (error says %d)", run.Limit(g), n, nce.Limit)
	}
}
