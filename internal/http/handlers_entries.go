package http

import (
	"net/http"
	"time"

	"tempo/internal/auth"
	"tempo/internal/core"
	"tempo/internal/services"
)

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	q := r.URL.Query()
	filter := services.EntryFilter{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		TaskID:    q.Get("taskId"),
	}

	entries, err := s.entities.ListEntries(r.Context(), id.ID, filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.TimeEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	var req struct {
		TaskID    string     `json:"taskId"`
		StartTime time.Time  `json:"startTime"`
		EndTime   *time.Time `json:"endTime"`
		Duration  int64      `json:"duration"`
	}
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	// Closed entries may omit duration; derive it from the interval.
	if req.Duration == 0 && req.EndTime != nil && req.EndTime.After(req.StartTime) {
		req.Duration = int64(req.EndTime.Sub(req.StartTime) / time.Second)
	}

	entry, err := s.entities.CreateEntry(r.Context(), id.ID, services.NewEntry{
		TaskID:    req.TaskID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Duration:  req.Duration,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
