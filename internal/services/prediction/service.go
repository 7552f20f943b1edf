package prediction

import (
	"context"
	"time"

	"machina/internal/domain/efficiency"
	"machina/internal/metrics"
	"machina/pkg/errors"
	"machina/pkg/logger"
)

// Predictor produces a raw class index and probability distribution from a
// validated feature record
type Predictor interface {
	Classify(record *efficiency.FeatureRecord) (int, []float64, error)
}

// Cache stores finished predictions keyed by canonical feature record.
// Safe to use because the pipeline is deterministic: identical input always
// yields an identical prediction.
type Cache interface {
	GetPrediction(ctx context.Context, key string) (*efficiency.Prediction, bool)
	SetPrediction(ctx context.Context, key string, prediction *efficiency.Prediction)
}

// EventPublisher publishes finished predictions for downstream consumers
type EventPublisher interface {
	PublishPrediction(ctx context.Context, record *efficiency.PredictionRecord) error
}

// Deps contains the service dependencies. Cache, History and Events are
// optional collaborators; with all of them nil the service is the bare
// inference pipeline.
type Deps struct {
	Predictor Predictor
	Cache     Cache
	History   efficiency.Repository
	Events    EventPublisher
	Log       *logger.Logger
}

// Service runs the inference pipeline: normalize → transform → classify →
// format. Each request is a single stateless pass; the service holds no
// per-request state and is safe for arbitrarily many concurrent callers.
type Service struct {
	predictor Predictor
	cache     Cache
	history   efficiency.Repository
	events    EventPublisher
	log       *logger.Logger
}

// NewService creates the prediction service
func NewService(deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.Get()
	}
	return &Service{
		predictor: deps.Predictor,
		cache:     deps.Cache,
		history:   deps.History,
		events:    deps.Events,
		log:       log.With("component", "prediction_service"),
	}
}

// Predict executes one inference pass over a raw request body. All pipeline
// errors are returned to the caller boundary for mapping; none of them may
// crash the serving worker. History writes and event publishing are best
// effort and never fail the request.
func (s *Service) Predict(ctx context.Context, requestID string, raw map[string]interface{}) (*efficiency.Prediction, error) {
	start := time.Now()

	record, err := Normalize(raw)
	if err != nil {
		metrics.RecordPipelineError(metrics.StageSchema)
		return nil, err
	}

	key := record.Canonical()
	if s.cache != nil {
		if cached, ok := s.cache.GetPrediction(ctx, key); ok {
			metrics.RecordCacheLookup(true)
			metrics.RecordPrediction(cached.Label.String(), time.Since(start), nil)
			return cached, nil
		}
		metrics.RecordCacheLookup(false)
	}

	index, probabilities, err := s.predictor.Classify(record)
	if err != nil {
		stage := metrics.StageInference
		if errors.IsCallerFault(err) {
			stage = metrics.StageTransform
		}
		metrics.RecordPipelineError(stage)
		metrics.RecordPrediction("", time.Since(start), err)
		return nil, err
	}

	prediction, err := Format(index, probabilities)
	if err != nil {
		metrics.RecordPipelineError(metrics.StageFormat)
		metrics.RecordPrediction("", time.Since(start), err)
		return nil, err
	}

	latency := time.Since(start)
	metrics.RecordPrediction(prediction.Label.String(), latency, nil)

	if s.cache != nil {
		s.cache.SetPrediction(ctx, key, prediction)
	}

	if s.history != nil || s.events != nil {
		stored := buildRecord(requestID, record, prediction, latency)
		if s.history != nil {
			if err := s.history.Store(ctx, stored); err != nil {
				s.log.Warnf("Failed to store prediction %s: %v", requestID, err)
			}
		}
		if s.events != nil {
			if err := s.events.PublishPrediction(ctx, stored); err != nil {
				s.log.Warnf("Failed to publish prediction %s: %v", requestID, err)
			}
		}
	}

	return prediction, nil
}

// buildRecord flattens a finished prediction for persistence and events
func buildRecord(requestID string, record *efficiency.FeatureRecord, prediction *efficiency.Prediction, latency time.Duration) *efficiency.PredictionRecord {
	return &efficiency.PredictionRecord{
		RequestID:        requestID,
		Timestamp:        time.Now().UTC(),
		OperationMode:    record.OperationMode,
		Temperature:      record.Temperature,
		Vibration:        record.Vibration,
		PowerConsumption: record.PowerConsumption,
		NetworkLatency:   record.NetworkLatency,
		PacketLoss:       record.PacketLoss,
		DefectRate:       record.DefectRate,
		ProductionSpeed:  record.ProductionSpeed,
		MaintenanceScore: record.MaintenanceScore,
		ErrorRate:        record.ErrorRate,
		Label:            prediction.Label.String(),
		LabelIndex:       int32(prediction.LabelIndex),
		ProbHigh:         prediction.Probabilities[efficiency.ClassHigh],
		ProbLow:          prediction.Probabilities[efficiency.ClassLow],
		ProbMedium:       prediction.Probabilities[efficiency.ClassMedium],
		LatencyMs:        float64(latency.Microseconds()) / 1000.0,
	}
}
