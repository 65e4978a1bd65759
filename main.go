package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/exeosec/riskd/internal/logging"
	"github.com/exeosec/riskd/internal/model"
	"github.com/exeosec/riskd/internal/scoring"
)

// Demo: score one alert and print the breakdown.
func main() {
	scorer, err := scoring.NewRiskScorer(scoring.DefaultConfig(), logging.NewStdoutLogger("demo"))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	alert := &model.AlertSnapshot{
		Severity:        model.SeverityHigh,
		AlertType:       "data_exfiltration",
		Tags:            []string{"apt", "anomaly"},
		SourceIP:        "203.0.113.9",
		DestinationIP:   "192.168.1.10",
		DestinationPort: 3389,
		Protocol:        "tcp",
		Description:     "Large outbound transfer flagged as suspicious",
		RawPayloadSize:  2048,
		DetectedAt:      time.Now().UTC().Add(-10 * time.Minute),
		ClientID:        "demo-tenant",
		ClientName:      "Demo Financial Corp",
	}

	breakdown := scorer.Score(alert, model.ScoreSignals{
		RecentSameSourceCount: 7,
		Tenant30dCount:        120,
		Now:                   time.Now().UTC(),
	})

	out, err := json.MarshalIndent(breakdown, "", "  ")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("%s\n", out)
}
