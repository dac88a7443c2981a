package piu

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestElementOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	ordered := []Element{T("a"), T("b"), N("A"), N("B"), Epsilon(), EOF()}
	for i := 0; i < len(ordered)-1; i++ {
		if ordered[i].Compare(ordered[i+1]) >= 0 {
			t.Errorf("Expected %v < %v", ordered[i], ordered[i+1])
		}
		if ordered[i+1].Compare(ordered[i]) <= 0 {
			t.Errorf("Expected %v > %v", ordered[i+1], ordered[i])
		}
	}
	if T("a") == N("a") || T("a").Key() == N("a").Key() {
		t.Errorf("Expected terminal and non-terminal of same name to differ")
	}
	if T("a") != T("a") || T("a").Compare(T("a")) != 0 {
		t.Errorf("Expected elements to be equal by value")
	}
}

func TestSequence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "piu.grammar")
	defer teardown()
	//
	s := Seq(T("a"), N("A"))
	c := s.Clone()
	c[0] = T("b")
	if s[0] != T("a") {
		t.Errorf("Expected clone not to share storage")
	}
	if !s.Concat(Seq(EOF())).Equals(Seq(T("a"), N("A"), EOF())) {
		t.Errorf("Expected concatenation to be  a A $")
	}
	if s.Key() == Seq(T("a")).Concat(Seq(N("A"), EOF())).Key() {
		t.Errorf("Expected different sequences to have different keys")
	}
	if s.Compare(Seq(T("a"))) <= 0 || Seq(T("a")).Compare(s) >= 0 {
		t.Errorf("Expected proper prefix to sort first")
	}
	if !Seq(Epsilon()).IsEpsilon() || s.IsEpsilon() {
		t.Errorf("Expected only [ε] to be epsilon")
	}
	if !s.Contains(N("A")) || s.Contains(T("A")) {
		t.Errorf("Expected Contains to respect kinds")
	}
	if str := Seq(T("a"), N("A"), Epsilon(), EOF()).String(); str != `"a" A ε $` {
		t.Errorf("Unexpected string representation %s", str)
	}
	if str := Seq(T(`say "hi"`), T("it's")).String(); str != `'say "hi"' "it's"` {
		t.Errorf("Expected terminals with double quotes in single quotes, have %s", str)
	}
}
