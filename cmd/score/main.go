// Command score evaluates one alert snapshot from a JSON file (or stdin)
// and prints the score breakdown. No database or network involved; the
// frequency signals default to zero.
//
// Usage: score -input alert.json [-tenant tenant-1] [-pretty]
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/exeosec/riskd/internal/cli"
	"github.com/exeosec/riskd/internal/logging"
	"github.com/exeosec/riskd/internal/model"
	"github.com/exeosec/riskd/internal/scoring"
)

func run(args []string) error {
	parsed, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}

	var data []byte
	if parsed.InputPath == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(parsed.InputPath)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var snap model.AlertSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decoding alert snapshot: %w", err)
	}
	snap.Severity = model.NormalizeSeverity(string(snap.Severity))
	if parsed.Tenant != "" {
		snap.ClientID = parsed.Tenant
	}

	scorer, err := scoring.NewRiskScorer(scoring.DefaultConfig(), logging.NewStdoutLogger("score"))
	if err != nil {
		return err
	}

	breakdown := scorer.Score(&snap, model.ScoreSignals{Now: time.Now().UTC()})

	enc := json.NewEncoder(os.Stdout)
	if parsed.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(breakdown)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
