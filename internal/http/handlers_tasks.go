package http

import (
	"net/http"

	"tempo/internal/auth"
	"tempo/internal/core"
	"tempo/internal/services"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	tasks, err := s.entities.ListTasks(r.Context(), id.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []core.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req struct {
		Name      string `json:"name"`
		ProjectID string `json:"projectId"`
		ClientID  string `json:"clientId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	task, err := s.entities.CreateTask(r.Context(), id.ID, req.Name, req.ProjectID, req.ClientID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var patch services.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	task, err := s.entities.UpdateTask(r.Context(), id.ID, r.PathValue("id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	deleted, err := s.entities.DeleteTask(r.Context(), id.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

func (s *Server) handleTimerStart(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	state, err := s.timer.Start(r.Context(), id.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleTimerStop(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	state, err := s.timer.Stop(r.Context(), id.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
