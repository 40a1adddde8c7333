package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driving"
	"github.com/custodia-labs/pagecluster/internal/logger"
)

// errorResponse is the body of a failed request. Result carries the runs
// that succeeded when clustering failed part way.
type errorResponse struct {
	Error  string                `json:"error"`
	Result *driving.IngestResult `json:"result,omitempty"`
}

func (s *Server) handleLogEvent(w http.ResponseWriter, r *http.Request) {
	var event domain.BrowseEvent
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&event); err != nil {
		writeError(w, fmt.Errorf("%w: decoding event: %w", domain.ErrInvalidInput, err), nil)
		return
	}
	event.ID = ""

	result, err := s.ingest.LogEvent(r.Context(), event)
	if err != nil {
		logger.Error(err, "log event %s", event.URL)
		writeError(w, err, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAllEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.clusters.Events(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleEventBuckets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.BucketQuery{RunID: q.Get("run")}

	var err error
	if v := q.Get("from"); v != "" {
		if query.From, err = time.Parse(time.RFC3339, v); err != nil {
			writeError(w, fmt.Errorf("%w: from: %w", domain.ErrInvalidInput, err), nil)
			return
		}
	}
	if v := q.Get("to"); v != "" {
		if query.To, err = time.Parse(time.RFC3339, v); err != nil {
			writeError(w, fmt.Errorf("%w: to: %w", domain.ErrInvalidInput, err), nil)
			return
		}
	}
	if v := q.Get("interval"); v != "" {
		if query.Interval, err = time.ParseDuration(v); err != nil {
			writeError(w, fmt.Errorf("%w: interval: %w", domain.ErrInvalidInput, err), nil)
			return
		}
	}

	buckets, err := s.clusters.EventBuckets(r.Context(), query)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	clusters, err := s.clusters.Clusters(r.Context(), r.URL.Query().Get("run"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, clusters)
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clusterID := q.Get("cluster_id")
	if clusterID == "" {
		writeError(w, fmt.Errorf("%w: cluster_id is required", domain.ErrInvalidInput), nil)
		return
	}
	pages, err := s.clusters.Members(r.Context(), clusterID, q.Get("run"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.clusters.Runs(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error, result *driving.IngestResult) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Result: result})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
