package ml

import (
	"context"
	"fmt"
	"sync"

	"github.com/exeosec/riskd/internal/interfaces"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig configures the ONNX-backed risk regressor.
type ONNXConfig struct {
	// ModelPath is the .onnx artifact exported from the training pipeline.
	ModelPath string

	// LibraryPath optionally points at the onnxruntime shared library when
	// it is not on the default search path.
	LibraryPath string

	// Input/output tensor names; defaults match the exported model.
	InputName  string
	OutputName string
}

// ONNXModel wraps an onnxruntime session behind interfaces.Model.
// Sessions are not safe for concurrent Run calls, so predictions are
// serialized with a mutex; the arithmetic is microseconds either way.
type ONNXModel struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	logger  interfaces.Logger
}

// NewONNXModel initializes the onnxruntime environment (once per process)
// and loads the model session.
func NewONNXModel(cfg ONNXConfig, logger interfaces.Logger) (*ONNXModel, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("ml: model path is required")
	}
	if logger == nil {
		logger = interfaces.NewTestLogger(false)
	}
	if cfg.InputName == "" {
		cfg.InputName = "features"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "risk_score"
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("ml: initialize onnxruntime: %w", err)
		}
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("ml: session options: %w", err)
	}
	defer options.Destroy()

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("ml: load model %s: %w", cfg.ModelPath, err)
	}

	l := logger.With(interfaces.Field{Key: "component", Value: "onnx-model"})
	l.Info("loaded ONNX risk model", interfaces.Field{Key: "path", Value: cfg.ModelPath})

	return &ONNXModel{session: session, logger: l}, nil
}

// Predict runs one [1,FeatureCount] inference and clamps the result to
// [0,10]. The context is checked before running; an inference in flight is
// not interruptible.
func (m *ONNXModel) Predict(ctx context.Context, features []float64) (float64, bool, error) {
	if len(features) != FeatureCount {
		return 0, false, fmt.Errorf("ml: expected %d features, got %d", FeatureCount, len(features))
	}
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	data := make([]float32, len(features))
	for i, f := range features {
		data[i] = float32(f)
	}

	input, err := ort.NewTensor(ort.NewShape(1, FeatureCount), data)
	if err != nil {
		return 0, false, fmt.Errorf("ml: input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		return 0, false, fmt.Errorf("ml: output tensor: %w", err)
	}
	defer output.Destroy()

	m.mu.Lock()
	err = m.session.Run([]ort.Value{input}, []ort.Value{output})
	m.mu.Unlock()
	if err != nil {
		return 0, false, fmt.Errorf("ml: run inference: %w", err)
	}

	out := output.GetData()
	if len(out) == 0 {
		return 0, false, fmt.Errorf("ml: empty model output")
	}

	score := float64(out[0])
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score, true, nil
}

// Close destroys the session. The process-wide onnxruntime environment is
// left initialized; other model instances may still be using it.
func (m *ONNXModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
	return nil
}
