package efficiency

import (
	"machina/internal/domain/efficiency"
	"machina/internal/ml"
	"machina/internal/ml/preprocess"
	"machina/pkg/errors"
)

// Classifier couples the fitted preprocessing transform with the trained
// ONNX model. Both artifacts are loaded exactly once at construction and
// shared read-only across concurrent requests.
type Classifier struct {
	transform *preprocess.Transform
	model     *ml.ONNXModel
}

// NewClassifier loads both trained artifacts. Either failure is fatal for
// process startup; there is no partial-service mode and no retry.
func NewClassifier(modelPath, scalerPath string) (*Classifier, error) {
	transform, err := preprocess.Load(scalerPath)
	if err != nil {
		return nil, err
	}

	model, err := ml.LoadONNXModel(modelPath, transform.NumFeatures(), efficiency.NumClasses)
	if err != nil {
		return nil, err
	}

	return &Classifier{
		transform: transform,
		model:     model,
	}, nil
}

// NumFeatures returns the model input dimensionality
func (c *Classifier) NumFeatures() int {
	return c.transform.NumFeatures()
}

// Classify applies the stored transform to a validated feature record and
// runs model inference. Returns the raw class index and the probability
// vector in class index order.
func (c *Classifier) Classify(record *efficiency.FeatureRecord) (int, []float64, error) {
	if c.model == nil {
		return 0, nil, errors.New("classifier model is not loaded")
	}

	vector, err := c.transform.Apply(record)
	if err != nil {
		return 0, nil, err
	}

	return c.model.Predict(vector)
}

// Close cleans up the classifier resources
func (c *Classifier) Close() {
	if c.model != nil {
		c.model.Destroy()
		c.model = nil
	}
}
