package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/andrijajovanovic98/expert-system/internal/repl"
	"github.com/andrijajovanovic98/expert-system/pkg/expert"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/config"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/experr"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/export"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/history"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/history/sqlite"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/stats"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/trace"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Optional YAML options file")
		traceFlag   = flag.Bool("trace", false, "Show reasoning trace for each query")
		statsFlag   = flag.Bool("stats", false, "Print rule base statistics and exit")
		interactive = flag.Bool("interactive", false, "Enter interactive fact validation mode after queries")
		dbPath      = flag.String("db", "", "SQLite file for query history (optional)")
		exportDOT   = flag.String("export-dot", "", "Write justification graph as DOT to file")
		exportJSON  = flag.String("export-json", "", "Write justification graph as JSON to file")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <input-file>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	inputPath := flag.Arg(0)

	opts := config.Default()
	if *configPath != "" {
		var err error
		opts, err = config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	if *noColor {
		opts.Color = false
	}
	if *traceFlag {
		opts.Trace = true
	}
	if *dbPath != "" {
		opts.HistoryDB = *dbPath
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		log.Fatal(err)
	}

	sys, err := expert.Load(string(data))
	if err != nil {
		log.Fatalf("%s: %v", inputPath, err)
	}

	if *statsFlag {
		stats.New(sys.Rules, sys.Graph, sys.InitialFacts).Analyze().WriteText(os.Stdout)
		return
	}

	ctx := context.Background()
	var store history.Store
	if opts.HistoryDB != "" {
		store, err = sqlite.Open(ctx, opts.HistoryDB)
		if err != nil {
			log.Fatal(err)
		}
		defer store.Close()
	}

	if len(sys.Queries) == 0 && !*interactive {
		log.Fatalf("%s: %v", inputPath, experr.ErrNoQueries)
	}

	fmt.Println(sys.Summary())
	if len(sys.Queries) > 0 {
		fmt.Printf("Queries: %s\n\n", strings.Join(sys.Queries, ", "))
		runQueries(sys, store, inputPath, opts)
	}

	if *exportDOT != "" {
		writeExport(sys, *exportDOT, "dot")
	}
	if *exportJSON != "" {
		writeExport(sys, *exportJSON, "json")
	}

	if *interactive {
		r := repl.New(sys, store, inputPath, os.Stdout, opts)
		if err := r.Run(os.Stdin); err != nil {
			log.Fatal(err)
		}
	}
}

func runQueries(sys *expert.System, store history.Store, source string, opts config.Options) {
	var sessionID string
	if store != nil {
		sessionID = history.NewSessionID()
		_ = store.SaveSession(context.Background(), history.Session{
			ID:           sessionID,
			StartedAt:    time.Now(),
			Source:       source,
			InitialFacts: strings.Join(sys.InitialFacts, ""),
		})
	}

	results := sys.ResolveAll()

	exitCode := 0
	for _, q := range sys.Queries {
		res := results[q]
		if res.Err != nil {
			fmt.Printf("%s: error: %v\n", q, res.Err)
			exitCode = 1
			continue
		}
		fmt.Printf("%s: %s %s\n", q, trace.Marker(res.Value, opts.Color), res.Value)
		if store != nil {
			_ = store.SaveResult(context.Background(), history.Result{
				SessionID: sessionID,
				Fact:      q,
				Value:     res.Value.String(),
				AskedAt:   time.Now(),
			})
		}
		if opts.Trace {
			explainQuery(sys, q, opts)
		}
	}

	for _, c := range sys.Engine().Cycles() {
		fmt.Printf("note: circular dependency %s\n", c)
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func explainQuery(sys *expert.System, fact string, opts config.Options) {
	ex, err := trace.New(sys.Graph, sys.Engine()).Explain(fact)
	if err != nil {
		fmt.Printf("  trace unavailable: %v\n", err)
		return
	}
	ex.Render(os.Stdout, opts.Color)
	fmt.Println()
}

func writeExport(sys *expert.System, filename, format string) {
	queries := sys.Queries
	if len(queries) == 0 {
		queries = sys.Graph.Facts()
	}
	j := export.Build(sys.Graph, sys.Engine(), queries)

	f, err := os.Create(filename)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	if format == "dot" {
		err = j.WriteDOT(f)
	} else {
		err = j.WriteJSON(f)
	}
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Justification graph written to %s\n", filename)
}
