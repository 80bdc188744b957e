package http

import (
	"net/http"

	"tempo/internal/auth"
	"tempo/internal/core"
	"tempo/internal/store"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	q := r.URL.Query()
	filter := core.Filter{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		ClientID:  q.Get("clientId"),
		ProjectID: q.Get("projectId"),
	}

	summary, err := s.summary.Summarize(r.Context(), id.ID, filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleActivity serves the feed the worker maintains, newest first.
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	feed, err := store.Load[core.Activity](r.Context(), s.store, id.ID, store.Activity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if feed == nil {
		feed = []core.Activity{}
	}
	writeJSON(w, http.StatusOK, feed)
}
