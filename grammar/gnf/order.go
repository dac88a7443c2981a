package gnf

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/maps/treebidimap"
	"github.com/emirpasic/gods/utils"
	"github.com/piu-lang/piu"
)

// Ordering assigns an index to every non-terminal the converter works on.
// Original non-terminals are numbered in the order they are first encountered
// in the rule list, synthetic ones are appended when created.
type Ordering struct {
	bimap *treebidimap.Map // piu.Element ↔ int
}

func newOrdering() *Ordering {
	return &Ordering{
		bimap: treebidimap.NewWith(func(a, b interface{}) int {
			return a.(piu.Element).Compare(b.(piu.Element))
		}, utils.IntComparator),
	}
}

// add appends A, if not already present, and returns its index.
func (o *Ordering) add(A piu.Element) int {
	if i, ok := o.Index(A); ok {
		return i
	}
	i := o.bimap.Size()
	o.bimap.Put(A, i)
	return i
}

// Index returns the index of non-terminal A.
func (o *Ordering) Index(A piu.Element) (int, bool) {
	if v, ok := o.bimap.Get(A); ok {
		return v.(int), true
	}
	return -1, false
}

// Symbol returns the non-terminal with index i.
func (o *Ordering) Symbol(i int) (piu.Element, bool) {
	if k, ok := o.bimap.GetKey(i); ok {
		return k.(piu.Element), true
	}
	return piu.Element{}, false
}

// Len returns the number of indexed non-terminals.
func (o *Ordering) Len() int {
	return o.bimap.Size()
}

// Symbols returns the non-terminals in index order.
func (o *Ordering) Symbols() []piu.Element {
	syms := make([]piu.Element, 0, o.Len())
	for i := 0; i < o.Len(); i++ {
		A, _ := o.Symbol(i)
		syms = append(syms, A)
	}
	return syms
}

func (o *Ordering) String() string {
	var b strings.Builder
	for i, A := range o.Symbols() {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%d:%s", i, A.Name)
	}
	return b.String()
}
