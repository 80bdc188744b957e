package http

import (
	"net/http"

	"tempo/internal/auth"
	"tempo/internal/core"
)

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	clients, err := s.entities.ListClients(r.Context(), id.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if clients == nil {
		clients = []core.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	client, err := s.entities.CreateClient(r.Context(), id.ID, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	deleted, err := s.entities.DeleteClient(r.Context(), id.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}
