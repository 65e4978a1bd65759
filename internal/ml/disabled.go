package ml

import "context"

// Disabled is the model for deployments without a trained artifact: it
// declines every prediction, which makes the scorer fall back to its
// neutral ML component and reduce confidence accordingly.
type Disabled struct{}

func (Disabled) Predict(context.Context, []float64) (float64, bool, error) {
	return 0, false, nil
}

func (Disabled) Close() error { return nil }
