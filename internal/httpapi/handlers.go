package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/alexanderramin/mediantree/internal/service"
	"github.com/gorilla/mux"
)

// getEstimate handles GET /estimate?hours=H[&p=P...][&at=T].
func (s *Server) getEstimate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	hours, err := parseFloatParam(q.Get("hours"), "hours")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var levels []float64
	for _, raw := range q["p"] {
		p, err := parseFloatParam(raw, "p")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		levels = append(levels, p)
	}

	report, err := s.Estimates.Estimate(r.Context(), hours, levels...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := struct {
		*service.EstimateReport
		Certainty *float64 `json:"certainty,omitempty"`
	}{EstimateReport: report}
	if raw := q.Get("at"); raw != "" {
		at, err := parseFloatParam(raw, "at")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		c, err := s.Estimates.CertaintyAt(r.Context(), hours, at)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Certainty = &c
	}
	writeJSON(w, http.StatusOK, resp)
}

// postRecompute handles POST /recompute. The graph is not stored.
func (s *Server) postRecompute(w http.ResponseWriter, r *http.Request) {
	var g domain.Graph
	if err := decodeBody(r, &g); err != nil {
		s.writeError(w, r, err)
		return
	}
	mr, err := s.Estimates.Recompute(r.Context(), &g)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMutation(nil, mr))
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.Projects.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]summaryResponse, 0, len(list))
	for _, p := range list {
		out = append(out, summaryResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.Projects.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSnapshot(snap))
}

func (s *Server) latestProject(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Projects.Latest(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshot(snap))
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Projects.Get(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshot(snap))
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.Projects.Delete(r.Context(), mux.Vars(r)["name"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addTask(w http.ResponseWriter, r *http.Request) {
	var in service.AddTaskInput
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	node, mr, err := s.Tasks.Add(r.Context(), mux.Vars(r)["name"], in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMutation(node, mr))
}

func (s *Server) setHours(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hours *float64 `json:"hours"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Hours == nil {
		s.writeError(w, r, fmt.Errorf("%w: hours is required", service.ErrInvalidInput))
		return
	}
	vars := mux.Vars(r)
	mr, err := s.Tasks.SetHours(r.Context(), vars["name"], vars["id"], *req.Hours)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMutation(nil, mr))
}

func (s *Server) removeNode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mr, err := s.Tasks.Remove(r.Context(), vars["name"], vars["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMutation(nil, mr))
}

func (s *Server) link(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Parent string `json:"parent"`
		Child  string `json:"child"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	mr, err := s.Tasks.Link(r.Context(), mux.Vars(r)["name"], req.Parent, req.Child)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMutation(nil, mr))
}

func (s *Server) unlink(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mr, err := s.Tasks.Unlink(r.Context(), vars["name"], vars["parent"], vars["child"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMutation(nil, mr))
}

func parseFloatParam(raw, name string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", service.ErrInvalidInput, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", service.ErrInvalidInput, name, raw)
	}
	return v, nil
}
