// expert-analytics prints structural statistics about a rule file:
// operator usage, rule complexity, inference depth and fact
// dependencies.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/andrijajovanovic98/expert-system/pkg/expert"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/stats"
)

func main() {
	var (
		input    = flag.String("input", "", "Path to rule file (required)")
		asJSON   = flag.Bool("json", false, "Emit the report as JSON")
		jsonPath = flag.String("out", "", "Write report to file instead of stdout")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("--input required")
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatal(err)
	}
	sys, err := expert.Load(string(data))
	if err != nil {
		log.Fatalf("%s: %v", *input, err)
	}

	report := stats.New(sys.Rules, sys.Graph, sys.InitialFacts).Analyze()

	out := os.Stdout
	if *jsonPath != "" {
		f, err := os.Create(*jsonPath)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatal(err)
		}
		return
	}
	report.WriteText(out)
}
