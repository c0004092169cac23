package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up all routes for the application.
func RegisterRoutes(router *mux.Router, s *Server) {
	router.HandleFunc("/estimate", s.getEstimate).Methods(http.MethodGet)
	router.HandleFunc("/recompute", s.postRecompute).Methods(http.MethodPost)

	router.HandleFunc("/projects", s.listProjects).Methods(http.MethodGet)
	router.HandleFunc("/projects", s.createProject).Methods(http.MethodPost)
	router.HandleFunc("/projects/latest", s.latestProject).Methods(http.MethodGet)
	router.HandleFunc("/projects/{name}", s.getProject).Methods(http.MethodGet)
	router.HandleFunc("/projects/{name}", s.deleteProject).Methods(http.MethodDelete)

	router.HandleFunc("/projects/{name}/tasks", s.addTask).Methods(http.MethodPost)
	router.HandleFunc("/projects/{name}/nodes/{id}/hours", s.setHours).Methods(http.MethodPut)
	router.HandleFunc("/projects/{name}/nodes/{id}", s.removeNode).Methods(http.MethodDelete)
	router.HandleFunc("/projects/{name}/edges", s.link).Methods(http.MethodPost)
	router.HandleFunc("/projects/{name}/edges/{parent}/{child}", s.unlink).Methods(http.MethodDelete)
}
