package predict

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"machina/internal/metrics"
	"machina/internal/services/prediction"
	"machina/pkg/errors"
	"machina/pkg/logger"
)

// Response is the prediction payload returned to the caller
type Response struct {
	PredictedLabel string             `json:"predicted_label"`
	LabelIndex     int                `json:"label_index"`
	Probabilities  map[string]float64 `json:"probabilities"`
}

// ErrorResponse is the structured error payload. Kind distinguishes caller
// faults from server faults.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the error class, message and the offending field when
// one exists
type ErrorDetail struct {
	Kind      string `json:"kind"` // bad_request | rate_limited | internal
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Handler serves the prediction endpoint
type Handler struct {
	service *prediction.Service
	limiter *rate.Limiter // nil disables rate limiting
	tracker errors.Tracker
	log     *logger.Logger
}

// New creates a new prediction handler.
// requestsPerMinute <= 0 disables rate limiting.
func New(service *prediction.Service, requestsPerMinute int, tracker errors.Tracker, log *logger.Logger) *Handler {
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		burst := requestsPerMinute / 10
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
	}

	return &Handler{
		service: service,
		limiter: limiter,
		tracker: tracker,
		log:     log.With("component", "predict_handler"),
	}
}

// HandlePredict serves POST /predict: one synchronous pass through the
// inference pipeline. Per-request errors never crash the worker; they are
// mapped to a structured error response here at the pipeline boundary.
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, ErrorDetail{
			Kind:    "bad_request",
			Message: "method not allowed, use POST",
		})
		return
	}

	if h.limiter != nil && !h.limiter.Allow() {
		metrics.RateLimited.Inc()
		writeError(w, http.StatusTooManyRequests, ErrorDetail{
			Kind:    "rate_limited",
			Message: errors.ErrRateLimited.Error(),
		})
		return
	}

	requestID := uuid.NewString()

	var raw map[string]interface{}
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, ErrorDetail{
			Kind:      "bad_request",
			Message:   "invalid JSON body",
			RequestID: requestID,
		})
		return
	}

	result, err := h.service.Predict(r.Context(), requestID, raw)
	if err != nil {
		h.writePipelineError(w, r, requestID, err)
		return
	}

	probabilities := make(map[string]float64, len(result.Probabilities))
	for class, p := range result.Probabilities {
		probabilities[class.String()] = p
	}

	writeJSON(w, http.StatusOK, Response{
		PredictedLabel: result.Label.String(),
		LabelIndex:     result.LabelIndex,
		Probabilities:  probabilities,
	})
}

// writePipelineError maps pipeline errors to HTTP: caller faults get 400
// with the offending field; server faults get 500 and are reported to the
// error tracker.
func (h *Handler) writePipelineError(w http.ResponseWriter, r *http.Request, requestID string, err error) {
	if errors.IsCallerFault(err) {
		writeError(w, http.StatusBadRequest, ErrorDetail{
			Kind:      "bad_request",
			Message:   err.Error(),
			Field:     errors.FieldOf(err),
			RequestID: requestID,
		})
		return
	}

	h.log.Errorf("Prediction %s failed: %v", requestID, err)
	if h.tracker != nil {
		h.tracker.CaptureError(r.Context(), err, map[string]string{
			"component":  "predict_handler",
			"request_id": requestID,
		})
	}

	writeError(w, http.StatusInternalServerError, ErrorDetail{
		Kind:      "internal",
		Message:   "prediction failed",
		RequestID: requestID,
	})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
	metrics.RecordHTTPRequest("/predict", strconv.Itoa(code))
}

func writeError(w http.ResponseWriter, code int, detail ErrorDetail) {
	writeJSON(w, code, ErrorResponse{Error: detail})
}
