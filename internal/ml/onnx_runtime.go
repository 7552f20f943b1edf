package ml

import (
	onnxruntime "github.com/yalue/onnxruntime_go"

	"machina/pkg/errors"
)

// ONNXModel wraps an ONNX Runtime session for classifier inference.
// The session is created once at startup and is stateless per call: no
// internal randomness, identical input vectors always yield identical
// outputs. Safe for concurrent Predict calls.
type ONNXModel struct {
	session     *onnxruntime.DynamicAdvancedSession
	numFeatures int
	numClasses  int
}

// LoadONNXModel loads the classifier artifact from file. Any failure is an
// ArtifactLoadError and must abort process startup.
func LoadONNXModel(modelPath string, numFeatures, numClasses int) (*ONNXModel, error) {
	// Initialize ONNX runtime environment (only once)
	err := onnxruntime.InitializeEnvironment()
	if err != nil {
		return nil, &errors.ArtifactLoadError{Path: modelPath, Err: errors.Wrap(err, "failed to initialize ONNX runtime")}
	}

	options, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, &errors.ArtifactLoadError{Path: modelPath, Err: errors.Wrap(err, "failed to create session options")}
	}
	defer options.Destroy()

	// Dynamic session allows runtime tensor creation.
	// Input: "input" (scaled feature vector)
	// Outputs: "output" (predicted class index), "probabilities" (class probabilities)
	session, err := onnxruntime.NewDynamicAdvancedSession(modelPath,
		[]string{"input"}, []string{"output", "probabilities"}, options)
	if err != nil {
		return nil, &errors.ArtifactLoadError{Path: modelPath, Err: err}
	}

	return &ONNXModel{
		session:     session,
		numFeatures: numFeatures,
		numClasses:  numClasses,
	}, nil
}

// Predict runs one inference pass over a transformed feature vector.
// Returns the argmax class index and the full probability vector in class
// index order. Fails with InferenceError if the vector length does not match
// the fitted model's input dimensionality.
func (m *ONNXModel) Predict(features []float64) (int, []float64, error) {
	if m.session == nil {
		return 0, nil, errors.New("model session is nil")
	}
	if len(features) != m.numFeatures {
		return 0, nil, &errors.InferenceError{Got: len(features), Want: m.numFeatures}
	}

	// Input tensor: shape [1, num_features]
	inputShape := onnxruntime.NewShape(1, int64(len(features)))
	inputTensor, err := onnxruntime.NewTensor(inputShape, features)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to create input tensor")
	}
	defer inputTensor.Destroy()

	// Output 1: predicted class (int64, shape [1])
	classOutput := make([]int64, 1)
	classShape := onnxruntime.NewShape(1)
	classTensor, err := onnxruntime.NewTensor(classShape, classOutput)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to create class output tensor")
	}
	defer classTensor.Destroy()

	// Output 2: probabilities (float64, shape [1, num_classes])
	probabilitiesOutput := make([]float64, m.numClasses)
	probShape := onnxruntime.NewShape(1, int64(m.numClasses))
	probTensor, err := onnxruntime.NewTensor(probShape, probabilitiesOutput)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to create probabilities output tensor")
	}
	defer probTensor.Destroy()

	inputs := []onnxruntime.Value{inputTensor}
	outputs := []onnxruntime.Value{classTensor, probTensor}
	if err := m.session.Run(inputs, outputs); err != nil {
		return 0, nil, errors.Wrap(err, "inference failed")
	}

	probabilities := make([]float64, m.numClasses)
	copy(probabilities, probabilitiesOutput)

	return int(classOutput[0]), probabilities, nil
}

// Destroy cleans up the ONNX session
func (m *ONNXModel) Destroy() {
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
}
