package interfaces

import (
	"github.com/exeosec/riskd/internal/model"
)

// Scorer is the minimal cross-package contract for computing a risk score
// for one alert. Implementations receive an immutable snapshot plus the
// externally-supplied signals (frequency counts, optional ML score, and an
// injected "now") and return a breakdown. A Scorer performs no I/O, never
// reads the wall clock, and never fails: internal computation errors are
// folded into a degraded fallback breakdown.
//
// Note: this interface intentionally references model.ScoreBreakdown so
// callers and implementations agree on the canonical result type.
type Scorer interface {
	// Score computes the 0-10 risk score and its component breakdown.
	// Safe for concurrent use.
	Score(alert *model.AlertSnapshot, sig model.ScoreSignals) *model.ScoreBreakdown

	// Version returns the scoring algorithm version embedded in results.
	Version() string
}
