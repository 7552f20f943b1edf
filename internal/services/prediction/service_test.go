package prediction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"machina/internal/domain/efficiency"
	"machina/pkg/errors"
)

// stubPredictor returns a fixed classification, or a fixed error
type stubPredictor struct {
	index int
	probs []float64
	err   error
	calls int
}

func (s *stubPredictor) Classify(record *efficiency.FeatureRecord) (int, []float64, error) {
	s.calls++
	if s.err != nil {
		return 0, nil, s.err
	}
	probs := make([]float64, len(s.probs))
	copy(probs, s.probs)
	return s.index, probs, nil
}

// memoryCache is an in-process Cache for tests
type memoryCache struct {
	entries map[string]*efficiency.Prediction
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*efficiency.Prediction)}
}

func (c *memoryCache) GetPrediction(ctx context.Context, key string) (*efficiency.Prediction, bool) {
	p, ok := c.entries[key]
	return p, ok
}

func (c *memoryCache) SetPrediction(ctx context.Context, key string, p *efficiency.Prediction) {
	c.entries[key] = p
}

func newTestService(p Predictor, cache Cache) *Service {
	return NewService(Deps{Predictor: p, Cache: cache})
}

func TestService_Predict(t *testing.T) {
	predictor := &stubPredictor{index: 2, probs: []float64{0.1, 0.15, 0.75}}
	service := newTestService(predictor, nil)

	result, err := service.Predict(context.Background(), "req-1", validBody())
	require.NoError(t, err)

	assert.Equal(t, efficiency.ClassMedium, result.Label)
	assert.Equal(t, 2, result.LabelIndex)
	assert.InDelta(t, 0.75, result.Probabilities[efficiency.ClassMedium], 1e-9)

	// predicted label carries the maximum probability
	for _, p := range result.Probabilities {
		assert.LessOrEqual(t, p, result.Probabilities[result.Label])
	}
}

func TestService_Deterministic(t *testing.T) {
	predictor := &stubPredictor{index: 0, probs: []float64{0.8123456, 0.09, 0.0976544}}
	service := newTestService(predictor, nil)

	first, err := service.Predict(context.Background(), "req-1", validBody())
	require.NoError(t, err)

	second, err := service.Predict(context.Background(), "req-2", validBody())
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical input must yield identical prediction")
}

func TestService_LabelIndexConsistency(t *testing.T) {
	for index, label := range efficiency.Labels() {
		probs := []float64{0.1, 0.1, 0.1}
		probs[index] = 0.8

		predictor := &stubPredictor{index: index, probs: probs}
		service := newTestService(predictor, nil)

		result, err := service.Predict(context.Background(), "req", validBody())
		require.NoError(t, err)

		assert.Equal(t, label, result.Label)
		assert.Equal(t, index, result.LabelIndex)
	}
}

func TestService_SchemaErrorSkipsPredictor(t *testing.T) {
	predictor := &stubPredictor{index: 0, probs: []float64{1, 0, 0}}
	service := newTestService(predictor, nil)

	body := validBody()
	delete(body, "Temperature_C")

	_, err := service.Predict(context.Background(), "req", body)
	require.Error(t, err)

	var schemaErr *errors.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "Temperature_C", schemaErr.Field)
	assert.Zero(t, predictor.calls, "invalid input must not reach the model")
}

func TestService_PropagatesTransformError(t *testing.T) {
	predictor := &stubPredictor{err: &errors.TransformError{Field: "Operation_Mode", Value: "Hibernating"}}
	service := newTestService(predictor, nil)

	_, err := service.Predict(context.Background(), "req", validBody())
	require.Error(t, err)
	assert.True(t, errors.IsCallerFault(err))
}

func TestService_PropagatesInferenceError(t *testing.T) {
	predictor := &stubPredictor{err: &errors.InferenceError{Got: 5, Want: 10}}
	service := newTestService(predictor, nil)

	_, err := service.Predict(context.Background(), "req", validBody())
	require.Error(t, err)

	var inferenceErr *errors.InferenceError
	require.ErrorAs(t, err, &inferenceErr)
	assert.False(t, errors.IsCallerFault(err))
}

func TestService_FormatErrorOnBadIndex(t *testing.T) {
	predictor := &stubPredictor{index: 7, probs: []float64{0.1, 0.2, 0.7}}
	service := newTestService(predictor, nil)

	_, err := service.Predict(context.Background(), "req", validBody())
	require.Error(t, err)

	var formatErr *errors.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, 7, formatErr.Index)
}

func TestService_CacheHit(t *testing.T) {
	predictor := &stubPredictor{index: 1, probs: []float64{0.2, 0.7, 0.1}}
	cache := newMemoryCache()
	service := newTestService(predictor, cache)

	first, err := service.Predict(context.Background(), "req-1", validBody())
	require.NoError(t, err)
	assert.Equal(t, 1, predictor.calls)

	second, err := service.Predict(context.Background(), "req-2", validBody())
	require.NoError(t, err)
	assert.Equal(t, 1, predictor.calls, "second identical request must be served from cache")
	assert.Equal(t, first, second)
}

func TestService_CacheKeyedByFeatures(t *testing.T) {
	predictor := &stubPredictor{index: 1, probs: []float64{0.2, 0.7, 0.1}}
	cache := newMemoryCache()
	service := newTestService(predictor, cache)

	_, err := service.Predict(context.Background(), "req-1", validBody())
	require.NoError(t, err)

	changed := validBody()
	changed["Temperature_C"] = 99.9
	_, err = service.Predict(context.Background(), "req-2", changed)
	require.NoError(t, err)

	assert.Equal(t, 2, predictor.calls, "different features must not share a cache entry")
}
