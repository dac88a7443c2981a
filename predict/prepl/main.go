package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strings"
	"unicode"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/piu-lang/piu/grammar"
	"github.com/piu-lang/piu/grammar/bnf"
	"github.com/piu-lang/piu/grammar/cnf"
	"github.com/piu-lang/piu/grammar/gnf"
	"github.com/piu-lang/piu/predict"
)

// We provide a simple expression grammar as a default.
const exprGrammar = `
Expr   -> Expr "+" Term | Term
Term   -> Term "*" Factor | Factor
Factor -> "(" Expr ")" | "x" | "y"
`

var traceKeys = []string{"piu.grammar", "piu.bnf", "piu.predict"}

// main() starts an interactive CLI ("P.REPL"), where users may enter input for
// a grammar. The grammar is converted to Greibach Normal Form and drives a
// predictor, which reports after every line whether the input may end there
// and which tokens may come next.
func main() {
	// set up logging
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	gfile := flag.String("grammar", "", "Grammar file in BNF notation")
	history := flag.Bool("history", false, "Print the grammar after every pass")
	words := flag.Bool("words", false, "Tokens are separated by white space (default: every character is a token)")
	flag.Parse()
	setTraceLevel(tracing.LevelInfo)       // will set the correct level later
	pterm.Info.Println("Welcome to PREPL") // colored welcome message
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// set up grammar and predictor
	g, err := loadGrammar(*gfile)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	setTraceLevel(traceLevel(*tlevel)) // now set the user supplied level
	g.Dump()                           // only visible in debug mode
	h, order, err := normalize(g, *history)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	printGrammar("GNF of "+h.Name, h)
	p, err := predict.New(h)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	//
	// set up REPL
	repl, err := readline.New("prepl> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	intp := &Intp{
		g:     h,
		order: order,
		p:     p,
		repl:  repl,
		words: *words,
	}
	input := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if input != "" {
		tracer().Infof("Input argument is \"%s\"", input)
		intp.Eval(input)
	}
	tracer().Infof("Quit with <ctrl>D or :quit") // inform user how to stop the CLI
	intp.REPL()                                  // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func loadGrammar(filename string) (*grammar.Grammar, error) {
	if filename == "" {
		return bnf.Parse("Expr", exprGrammar)
	}
	src, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to read grammar file: %w", err)
	}
	return bnf.Parse(filename, string(src))
}

// normalize converts g to GNF. If history is set, the grammar is printed as it
// results from every pass.
func normalize(g *grammar.Grammar, history bool) (*grammar.Grammar, *gnf.Ordering, error) {
	var opts []grammar.Option
	if history {
		opts = append(opts, grammar.WithHistory())
	}
	run := grammar.NewRun(opts...)
	c, err := cnf.Convert(run, g)
	if err != nil {
		return nil, nil, err
	}
	h, order, err := gnf.Convert(run, c)
	if err != nil {
		return nil, nil, err
	}
	for i, snap := range run.History() {
		printGrammar(fmt.Sprintf("%2d: %s", i, snap.Pass), snap.Grammar)
	}
	return h, order, nil
}

// Intp is our interpreter object
type Intp struct {
	g     *grammar.Grammar
	order *gnf.Ordering
	p     *predict.Predictor
	repl  *readline.Instance
	words bool
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if quit := intp.Eval(line); quit {
			break
		}
	}
	println("Good bye!")
}

// Eval executes a command or feeds a line of input to the predictor. It
// returns true if the user wants to quit.
func (intp *Intp) Eval(line string) bool {
	switch line {
	case ":quit":
		return true
	case ":reset":
		intp.p.Reset()
		pterm.Info.Println("input reset")
		return false
	case ":stacks":
		printStacks(intp.p)
		return false
	case ":grammar":
		printGrammar(intp.g.Name, intp.g)
		pterm.Info.Println("ordering: " + intp.order.String())
		return false
	}
	for _, tok := range tokenize(line, intp.words) {
		outcome, err := intp.p.AddChar(tok)
		if err != nil {
			pterm.Error.Println(err.Error())
			pterm.Info.Println("use :reset to start over")
			return false
		}
		tracer().Debugf("%q: %v", tok, outcome)
	}
	intp.p.Dump()
	pterm.Info.Printf("%s  [%s]  next: %s\n", strings.Join(intp.p.Consumed(), " "),
		status(intp.p), strings.Join(intp.p.AllowedNextChars(), " "))
	return false
}

func status(p *predict.Predictor) string {
	switch {
	case p.IsComplete():
		return "complete"
	case p.IsAccepting():
		return predict.Accepting.String()
	}
	return predict.Pending.String()
}

// tokenize splits a line into tokens: either at white space, or into single
// characters, ignoring white space.
func tokenize(line string, words bool) []string {
	if words {
		return strings.Fields(line)
	}
	var toks []string
	for _, r := range line {
		if !unicode.IsSpace(r) {
			toks = append(toks, string(r))
		}
	}
	return toks
}

func printGrammar(title string, g *grammar.Grammar) {
	pterm.Println(title)
	pterm.DefaultTree.WithRoot(grammarTree(g)).Render()
}

// grammarTree creates a tree with a node for every non-terminal and its
// alternatives as children.
func grammarTree(g *grammar.Grammar) pterm.TreeNode {
	var order []string
	alts := make(map[string][]string)
	for _, r := range g.Rules() {
		if _, ok := alts[r.LHS.Name]; !ok {
			order = append(order, r.LHS.Name)
		}
		alts[r.LHS.Name] = append(alts[r.LHS.Name], r.RHS.String())
	}
	ll := pterm.LeveledList{}
	for _, lhs := range order {
		ll = append(ll, pterm.LeveledListItem{Level: 0, Text: lhs})
		for _, alt := range alts[lhs] {
			ll = append(ll, pterm.LeveledListItem{Level: 1, Text: alt})
		}
	}
	tracer().Debugf("|ll| = %d", len(ll))
	return pterm.NewTreeFromLeveledList(ll)
}

func printStacks(p *predict.Predictor) {
	ll := pterm.LeveledList{}
	for _, seq := range p.Stacks() {
		ll = append(ll, pterm.LeveledListItem{Level: 0, Text: "[" + seq.String() + "]"})
	}
	pterm.Println(fmt.Sprintf("%d stacks after %q", len(ll), strings.Join(p.Consumed(), "")))
	pterm.DefaultTree.WithRoot(pterm.NewTreeFromLeveledList(ll)).Render()
}

func setTraceLevel(level tracing.TraceLevel) {
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
}

func traceLevel(l string) tracing.TraceLevel {
	return tracing.TraceLevelFromString(l)
}
