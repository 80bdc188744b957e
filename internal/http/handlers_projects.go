package http

import (
	"net/http"

	"tempo/internal/auth"
	"tempo/internal/core"
	"tempo/internal/services"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	projects, err := s.entities.ListProjects(r.Context(), id.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if projects == nil {
		projects = []core.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req struct {
		Name       string  `json:"name"`
		HourlyRate float64 `json:"hourlyRate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	project, err := s.entities.CreateProject(r.Context(), id.ID, req.Name, req.HourlyRate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var patch services.ProjectPatch
	if err := decodeJSON(r, &patch); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	project, err := s.entities.UpdateProject(r.Context(), id.ID, r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	deleted, err := s.entities.DeleteProject(r.Context(), id.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}
