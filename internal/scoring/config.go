package scoring

// Config holds the few runtime knobs of the scorer. The lookup tables are
// deliberately NOT here: they are part of the algorithm's definition and
// changing them is a versioned algorithm change, not configuration.
type Config struct {
	// ScoringVersion is embedded in every breakdown for auditability.
	ScoringVersion string
}

// DefaultConfig returns a Config with development defaults.
func DefaultConfig() *Config {
	return &Config{
		ScoringVersion: "v1.0.0",
	}
}
