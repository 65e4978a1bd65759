package interfaces

import "context"

// Model is the capability abstraction over an external risk-prediction
// model. The pipeline calls it synchronously with a bounded context; a
// deployment without a trained artifact plugs in a disabled implementation
// and the scorer falls back to its neutral ML component.
type Model interface {
	// Predict returns a risk score in [0,10] for one feature vector.
	// ok=false means the model declined to answer (disabled, not loaded);
	// callers treat that the same as an error: use the neutral fallback.
	Predict(ctx context.Context, features []float64) (score float64, ok bool, err error)

	// Close releases any resources held by the model.
	Close() error
}
