// Package repl implements the interactive fact validation mode: facts
// can be asserted, retracted and stacked as what-if assertions, and
// queries re-run against the changed state without touching the source
// file.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/andrijajovanovic98/expert-system/pkg/expert"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/config"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/engine"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/export"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/history"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/parser"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/trace"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

// assertion is one what-if frame on the temporary stack.
type assertion struct {
	add    []string
	remove []string
}

// REPL drives one interactive session over a loaded system.
type REPL struct {
	sys       *expert.System
	store     history.Store // optional
	out       io.Writer
	opts      config.Options
	source    string
	sessionID string
	temp      []assertion
}

// New creates a session. If store is non-nil the session and every
// query result are recorded in it.
func New(sys *expert.System, store history.Store, source string, out io.Writer, opts config.Options) *REPL {
	r := &REPL{
		sys:       sys,
		store:     store,
		out:       out,
		opts:      opts,
		source:    source,
		sessionID: history.NewSessionID(),
	}
	if store != nil {
		_ = store.SaveSession(context.Background(), history.Session{
			ID:           r.sessionID,
			StartedAt:    time.Now(),
			Source:       source,
			InitialFacts: strings.Join(sys.CurrentFacts(), ""),
		})
	}
	return r
}

// Run reads commands until EOF or quit.
func (r *REPL) Run(in io.Reader) error {
	sep := strings.Repeat("=", 70)
	fmt.Fprintln(r.out, sep)
	fmt.Fprintln(r.out, headerStyle.Render("INTERACTIVE FACT VALIDATION MODE"))
	fmt.Fprintln(r.out, sep)
	fmt.Fprintf(r.out, "Loaded %d rule(s) from %s\n", len(r.sys.Rules), r.source)
	r.printFacts()
	r.printHelp()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out, "\nExiting interactive mode.")
			break
		}
		if !r.Handle(strings.TrimSpace(scanner.Text())) {
			break
		}
	}
	return scanner.Err()
}

// Handle executes one command line. It returns false when the session
// should end.
func (r *REPL) Handle(line string) bool {
	if line == "" {
		return true
	}
	cmd := strings.ToLower(line)
	switch {
	case cmd == "quit" || cmd == "exit" || cmd == "q":
		fmt.Fprintln(r.out, "Exiting interactive mode.")
		return false
	case cmd == "help":
		r.printHelp()
	case cmd == "facts":
		r.printFacts()
	case cmd == "rules":
		fmt.Fprintf(r.out, "\nLoaded %d rule(s):\n%s", len(r.sys.Rules), parser.FormatRuleList(r.sys.Rules))
	case cmd == "reset":
		r.sys.ResetFacts()
		r.temp = nil
		fmt.Fprintln(r.out, "Reset to original facts.")
		r.printFacts()
	case cmd == "pop":
		r.pop()
	case cmd == "temp":
		r.printTemp()
	case cmd == "clear_temp":
		r.temp = nil
		fmt.Fprintln(r.out, "Cleared temporary assertions.")
	case cmd == "history":
		r.printHistory()
	case strings.HasPrefix(cmd, "push"):
		r.push(strings.TrimSpace(line[len("push"):]))
	case strings.HasPrefix(cmd, "suggest"):
		r.suggest(strings.TrimSpace(line[len("suggest"):]))
	case strings.HasPrefix(cmd, "export"):
		r.export(strings.Fields(line)[1:])
	case strings.HasPrefix(line, "+"):
		r.addFacts(line[1:])
	case strings.HasPrefix(line, "-"):
		r.removeFacts(line[1:])
	case strings.HasPrefix(line, "?"):
		r.query(line[1:])
	default:
		fmt.Fprintf(r.out, "Unknown command: %s\nType 'help' for available commands.\n", line)
	}
	return true
}

func (r *REPL) printHelp() {
	fmt.Fprint(r.out, `
Interactive Mode Commands:
  +A, +B, ...     - Set fact(s) to TRUE (persist)
  -A, -B, ...     - Remove fact(s) from current facts (persist)
  ?A, ?B, ...     - Query fact(s) using current facts + what-if stack
  facts           - Show current facts
  rules           - Show loaded rules
  reset           - Reset to original initial facts
  push +A / -A    - Push a temporary assertion (what-if)
  pop             - Pop last temporary assertion
  temp            - Show temporary assertions stack
  clear_temp      - Clear temporary assertions
  suggest A       - Try single-fact additions to make A TRUE
  export dot <f>  - Export justification graph as DOT file
  export json <f> - Export justification graph as JSON file
  history         - Show recent recorded sessions
  help            - Show this help
  quit, exit      - Exit interactive mode
`)
}

func (r *REPL) printFacts() {
	facts := r.sys.CurrentFacts()
	if len(facts) == 0 {
		fmt.Fprintln(r.out, "Currently TRUE facts: (none)")
		return
	}
	fmt.Fprintf(r.out, "Currently TRUE facts: %s\n", strings.Join(facts, ", "))
}

func (r *REPL) addFacts(s string) {
	added := r.eachFact(s, func(f string) error { return r.sys.AddInitialFact(f) })
	if len(added) > 0 {
		fmt.Fprintf(r.out, "Added fact(s): %s\n", strings.Join(added, ", "))
		r.printFacts()
	}
}

func (r *REPL) removeFacts(s string) {
	removed := r.eachFact(s, func(f string) error { return r.sys.RemoveInitialFact(f) })
	if len(removed) > 0 {
		fmt.Fprintf(r.out, "Removed fact(s): %s\n", strings.Join(removed, ", "))
		r.printFacts()
	}
}

// eachFact applies fn to every fact letter in s, reporting invalid
// ones, and returns the letters that were accepted.
func (r *REPL) eachFact(s string, fn func(string) error) []string {
	var ok []string
	for _, f := range factRun(s) {
		if err := fn(f); err != nil {
			fmt.Fprintf(r.out, "Invalid fact: %s\n", f)
			continue
		}
		ok = append(ok, f)
	}
	if len(ok) == 0 {
		fmt.Fprintln(r.out, "No valid facts given.")
	}
	return ok
}

func (r *REPL) query(s string) {
	facts := factRun(s)
	if len(facts) == 0 {
		fmt.Fprintln(r.out, "No queries specified.")
		return
	}

	eng := r.sys.Session(r.effectiveFacts())
	sep := strings.Repeat("=", 70)
	fmt.Fprintf(r.out, "%s\nQUERY RESULTS\n%s\n", sep, sep)
	for _, f := range facts {
		v, err := eng.Resolve(f)
		if err != nil {
			fmt.Fprintf(r.out, "%s: %v\n", f, err)
			continue
		}
		fmt.Fprintf(r.out, "%s: %s %s\n", f, trace.Marker(v, r.opts.Color), v)
		r.record(f, v)
	}
	for _, c := range eng.Cycles() {
		fmt.Fprintf(r.out, "note: circular dependency %s\n", c)
	}
}

func (r *REPL) record(fact string, v engine.TruthValue) {
	if r.store == nil {
		return
	}
	_ = r.store.SaveResult(context.Background(), history.Result{
		SessionID: r.sessionID,
		Fact:      fact,
		Value:     v.String(),
		AskedAt:   time.Now(),
	})
}

func (r *REPL) push(arg string) {
	if arg == "" {
		fmt.Fprintln(r.out, "Usage: push +A or push -A (use + to add, - to remove)")
		return
	}
	var a assertion
	switch arg[0] {
	case '+':
		a.add = factRun(arg[1:])
	case '-':
		a.remove = factRun(arg[1:])
	default:
		fmt.Fprintln(r.out, "Push must start with + or -")
		return
	}
	if len(a.add) == 0 && len(a.remove) == 0 {
		fmt.Fprintln(r.out, "No valid facts given.")
		return
	}
	r.temp = append(r.temp, a)
	fmt.Fprintf(r.out, "Pushed temporary assertion: +%s -%s\n",
		strings.Join(a.add, ""), strings.Join(a.remove, ""))
}

func (r *REPL) pop() {
	if len(r.temp) == 0 {
		fmt.Fprintln(r.out, "No temporary assertions to pop.")
		return
	}
	a := r.temp[len(r.temp)-1]
	r.temp = r.temp[:len(r.temp)-1]
	fmt.Fprintf(r.out, "Popped: +%s -%s\n", strings.Join(a.add, ""), strings.Join(a.remove, ""))
}

func (r *REPL) printTemp() {
	if len(r.temp) == 0 {
		fmt.Fprintln(r.out, "Temporary stack is empty.")
		return
	}
	fmt.Fprintln(r.out, "Temporary assertions (last is top):")
	for i, a := range r.temp {
		fmt.Fprintf(r.out, "  %d. +%s -%s\n", i+1, strings.Join(a.add, ""), strings.Join(a.remove, ""))
	}
}

// effectiveFacts is the persisted fact set with the what-if stack
// applied in order.
func (r *REPL) effectiveFacts() []string {
	eff := make(map[string]bool)
	for _, f := range r.sys.CurrentFacts() {
		eff[f] = true
	}
	for _, a := range r.temp {
		for _, f := range a.add {
			eff[f] = true
		}
		for _, f := range a.remove {
			delete(eff, f)
		}
	}
	out := make([]string, 0, len(eff))
	for f := range eff {
		out = append(out, f)
	}
	return out
}

func (r *REPL) suggest(arg string) {
	targets := factRun(arg)
	if len(targets) != 1 {
		fmt.Fprintln(r.out, "Usage: suggest A")
		return
	}
	target := targets[0]

	base := r.effectiveFacts()
	if v, err := r.sys.Session(base).Resolve(target); err == nil && v == engine.True {
		fmt.Fprintf(r.out, "%s is already TRUE with current facts.\n", target)
		return
	}

	inBase := make(map[string]bool, len(base))
	for _, f := range base {
		inBase[f] = true
	}
	var suggestions []string
	for _, cand := range r.sys.Graph.Facts() {
		if cand == target || inBase[cand] {
			continue
		}
		if len(suggestions) >= r.opts.SuggestLimit {
			break
		}
		v, err := r.sys.Session(append(append([]string(nil), base...), cand)).Resolve(target)
		if err == nil && v == engine.True {
			suggestions = append(suggestions, cand)
		}
	}
	if len(suggestions) == 0 {
		fmt.Fprintf(r.out, "No single-fact suggestion found to make %s TRUE.\n", target)
		return
	}
	fmt.Fprintf(r.out, "Asserting any of these would make %s TRUE: %s\n",
		target, strings.Join(suggestions, ", "))
}

func (r *REPL) export(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(r.out, "Usage: export dot <filename> or export json <filename>")
		return
	}
	format, filename := strings.ToLower(args[0]), args[1]
	if format != "dot" && format != "json" {
		fmt.Fprintln(r.out, `Format must be "dot" or "json"`)
		return
	}

	eng := r.sys.Session(r.effectiveFacts())
	j := export.Build(r.sys.Graph, eng, r.sys.Graph.Facts())

	f, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(r.out, "Export failed: %v\n", err)
		return
	}
	defer f.Close()

	if format == "dot" {
		err = j.WriteDOT(f)
	} else {
		err = j.WriteJSON(f)
	}
	if err != nil {
		fmt.Fprintf(r.out, "Export failed: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Graph exported to %s (%s format)\n", filename, strings.ToUpper(format))
	if format == "dot" {
		fmt.Fprintf(r.out, "  Visualize with: dot -Tpng %s -o graph.png\n", filename)
	}
}

func (r *REPL) printHistory() {
	if r.store == nil {
		fmt.Fprintln(r.out, "No history store configured (use -db).")
		return
	}
	sessions, err := r.store.RecentSessions(context.Background(), 10)
	if err != nil {
		fmt.Fprintf(r.out, "History unavailable: %v\n", err)
		return
	}
	if len(sessions) == 0 {
		fmt.Fprintln(r.out, "No recorded sessions.")
		return
	}
	for _, s := range sessions {
		results, _ := r.store.SessionResults(context.Background(), s.ID)
		fmt.Fprintf(r.out, "%s  %s  facts=%s  queries=%d\n",
			s.StartedAt.Format("2006-01-02 15:04:05"), s.Source, orNone(s.InitialFacts), len(results))
		for _, res := range results {
			fmt.Fprintf(r.out, "    %s = %s\n", res.Fact, res.Value)
		}
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// factRun extracts single uppercase fact letters from user input,
// tolerating commas, spaces and lowercase.
func factRun(s string) []string {
	var out []string
	for _, ch := range strings.ToUpper(s) {
		switch {
		case ch >= 'A' && ch <= 'Z':
			out = append(out, string(ch))
		case ch == ',' || ch == ' ' || ch == '\t':
		}
	}
	return out
}
