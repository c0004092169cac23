package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/alexanderramin/mediantree/internal/lognormal"
	"github.com/alexanderramin/mediantree/internal/repository"
	"github.com/alexanderramin/mediantree/internal/rollup"
	"github.com/alexanderramin/mediantree/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

type snapshotResponse struct {
	Name          string        `json:"name"`
	CreatedAt     time.Time     `json:"created_at"`
	LastUpdatedAt time.Time     `json:"last_updated_at"`
	Graph         *domain.Graph `json:"graph"`
}

type summaryResponse struct {
	Name          string    `json:"name"`
	NodeCount     int       `json:"node_count"`
	EffortHours   float64   `json:"effort_hours"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

type mutationResponse struct {
	Node    *domain.Node      `json:"node,omitempty"`
	Project *snapshotResponse `json:"project,omitempty"`
	Graph   *domain.Graph     `json:"graph,omitempty"`
	Changed []string          `json:"changed"`
	Skipped []string          `json:"skipped,omitempty"`
	Anomaly string            `json:"anomaly,omitempty"`
}

func toSnapshot(s *domain.Snapshot) *snapshotResponse {
	return &snapshotResponse{
		Name:          s.Name,
		CreatedAt:     s.CreatedAt,
		LastUpdatedAt: s.LastUpdatedAt,
		Graph:         s.Graph,
	}
}

func toMutation(node *domain.Node, mr *service.MutationResult) *mutationResponse {
	out := &mutationResponse{Node: node, Changed: mr.Changed, Skipped: mr.Skipped}
	if out.Changed == nil {
		out.Changed = []string{}
	}
	if mr.Snapshot != nil {
		out.Project = toSnapshot(mr.Snapshot)
	} else {
		out.Graph = mr.Graph
	}
	if mr.Anomaly != nil {
		out.Anomaly = mr.Anomaly.Error()
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service and engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, rollup.ErrNodeNotFound),
		errors.Is(err, rollup.ErrEdgeNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrProjectExists),
		errors.Is(err, rollup.ErrStructuralAnomaly),
		errors.Is(err, rollup.ErrAlreadyParented):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrAmbiguousRef),
		errors.Is(err, lognormal.ErrInvalidInput),
		errors.Is(err, rollup.ErrInvalidHours),
		errors.Is(err, rollup.ErrNotEditable):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger().ErrorContext(r.Context(), "http_error", "path", r.URL.Path, "error", err.Error())
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(service.ErrInvalidInput, err)
	}
	return nil
}
