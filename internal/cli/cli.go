package cli

import (
	"flag"
	"fmt"
	"strings"
)

// CLIArgs control a single one-shot scoring run from the command line.
type CLIArgs struct {
	// InputPath is the alert snapshot JSON file to score; "-" means stdin.
	InputPath string

	// Tenant overrides the snapshot's client id, when set.
	Tenant string

	// Pretty enables indented JSON output.
	Pretty bool

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by
// passing arbitrary slices. The function is deterministic and does not read
// os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("riskd-score", flag.ContinueOnError)
	var (
		input  = fs.String("input", "", "Alert snapshot JSON file to score, or - for stdin (required)")
		tenant = fs.String("tenant", "", "Tenant id override for the snapshot")
		pretty = fs.Bool("pretty", false, "Indent the JSON output")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(nil)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if strings.TrimSpace(*input) == "" {
		return nil, fmt.Errorf("missing required -input argument")
	}

	return &CLIArgs{
		InputPath: *input,
		Tenant:    *tenant,
		Pretty:    *pretty,
		RawArgs:   args,
	}, nil
}
