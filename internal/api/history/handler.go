package history

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"machina/internal/domain/efficiency"
	"machina/pkg/logger"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Handler serves the prediction audit log
type Handler struct {
	repo efficiency.Repository
	log  *logger.Logger
}

// New creates a new history handler
func New(repo efficiency.Repository, log *logger.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With("component", "history_handler"),
	}
}

// Response is the audit log payload
type Response struct {
	Count       int                           `json:"count"`
	Predictions []efficiency.PredictionRecord `json:"predictions"`
}

// HandlePredictions serves GET /predictions. With ?since=RFC3339 it returns
// every prediction recorded since that time; otherwise the most recent
// ?limit= rows (default 100, capped at 1000). Newest first either way.
func (h *Handler) HandlePredictions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed, use GET")
		return
	}

	var (
		records []efficiency.PredictionRecord
		err     error
	)

	if sinceParam := r.URL.Query().Get("since"); sinceParam != "" {
		since, parseErr := time.Parse(time.RFC3339, sinceParam)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "since must be an RFC3339 timestamp")
			return
		}
		records, err = h.repo.GetHistory(r.Context(), since)
	} else {
		limit := defaultLimit
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, parseErr := strconv.Atoi(limitParam)
			if parseErr != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = parsed
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		records, err = h.repo.GetRecent(r.Context(), limit)
	}

	if err != nil {
		h.log.Errorf("Failed to read prediction history: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read prediction history")
		return
	}

	if records == nil {
		records = []efficiency.PredictionRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(Response{
		Count:       len(records),
		Predictions: records,
	})
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
