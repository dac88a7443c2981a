package grammar

import (
	"fmt"
	"strconv"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/piu-lang/piu"
)

// Run holds the state of a single pipeline run: the counter for synthetic
// symbol names, an optional history of grammar snapshots and the iteration
// limit for fixpoint computations.
//
// A Run is not safe for concurrent use. Independent conversions should use
// independent runs.
type Run struct {
	counter int
	history *arraylist.List // of Snapshot, nil if no history requested
	factor  int
}

// Snapshot is a grammar as it resulted from a named pass.
type Snapshot struct {
	Pass    string
	Grammar *Grammar
}

// Option configures a Run.
type Option func(*Run)

// DefaultIterationFactor is the default factor for iteration limits, see
// WithIterationLimit.
const DefaultIterationFactor = 64

// WithHistory tells a run to record a snapshot after every pass.
func WithHistory() Option {
	return func(run *Run) {
		run.history = arraylist.New()
	}
}

// WithIterationLimit sets the factor for the iteration limit of fixpoint
// computations. A fixpoint over grammar G may take at most
//
//    factor × (|rules| + |symbols| + 1)
//
// rounds, otherwise the pass fails with a NonConvergenceError.
func WithIterationLimit(factor int) Option {
	return func(run *Run) {
		if factor > 0 {
			run.factor = factor
		}
	}
}

// NewRun creates a run.
func NewRun(opts ...Option) *Run {
	run := &Run{factor: DefaultIterationFactor}
	for _, opt := range opts {
		opt(run)
	}
	return run
}

// Fresh creates a synthetic non-terminal, not yet present in g. Names are built
// from a prefix and the run's counter, which increases monotonically.
func (run *Run) Fresh(g *Grammar, prefix string) piu.Element {
	for {
		run.counter++
		name := prefix + strconv.Itoa(run.counter)
		if g == nil || !g.HasSymbolNamed(name) {
			tracer().Debugf("new synthetic symbol %s", name)
			return piu.N(name)
		}
	}
}

// Limit returns the iteration limit for fixpoint computations on g.
func (run *Run) Limit(g *Grammar) int {
	n := 1
	if g != nil {
		n += g.Size() + g.nonterminals.Size() + g.terminals.Size()
	}
	return run.factor * n
}

// SizeLimit returns the number of rules a pass may produce from g,
// factor × Limit(g). Passes which multiply rules, like the expansion of leading
// non-terminals in GNF conversion, fail with a NonConvergenceError beyond it.
func (run *Run) SizeLimit(g *Grammar) int {
	return run.factor * run.Limit(g)
}

// Fixpoint calls step until it reports that nothing changed. If this does not
// happen within the iteration limit for g, a NonConvergenceError is returned.
func (run *Run) Fixpoint(pass string, g *Grammar, step func() bool) error {
	limit := run.Limit(g)
	for i := 0; i < limit; i++ {
		if !step() {
			return nil
		}
	}
	tracer().Errorf("pass %s did not converge within %d iterations", pass, limit)
	return &NonConvergenceError{Pass: pass, Limit: limit}
}

// Record appends a snapshot of g to the history, if the run has been
// created with WithHistory().
func (run *Run) Record(pass string, g *Grammar) {
	tracer().Debugf("pass %s done, %d rules", pass, g.Size())
	if run.history == nil {
		return
	}
	run.history.Add(Snapshot{Pass: pass, Grammar: g})
}

// History returns the recorded snapshots in pass order.
func (run *Run) History() []Snapshot {
	if run.history == nil {
		return nil
	}
	snaps := make([]Snapshot, 0, run.history.Size())
	it := run.history.Iterator()
	for it.Next() {
		snaps = append(snaps, it.Value().(Snapshot))
	}
	return snaps
}

// NonConvergenceError is returned if a fixpoint computation exceeds its
// iteration limit, or if a pass exceeds its size limit.
type NonConvergenceError struct {
	Pass  string
	Limit int
	Size  bool // Limit is a number of rules, not of iterations
}

func (e *NonConvergenceError) Error() string {
	if e.Size {
		return fmt.Sprintf("pass %s exceeded the limit of %d rules", e.Pass, e.Limit)
	}
	return fmt.Sprintf("pass %s did not converge within %d iterations", e.Pass, e.Limit)
}
