package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tempo/internal/auth"
	"tempo/internal/core"
	"tempo/internal/log"
	"tempo/internal/services"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Message string `json:"message"`
}

// writeError maps domain errors to status codes. Internal details stay in the
// logs; the body carries only the sentinel text.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, auth.ErrNoSession):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrTimerRunning),
		errors.Is(err, services.ErrTimerStopped),
		isValidationError(err):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		writeJSON(w, status, errorBody{Message: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Message: trimWrap(err).Error()})
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrNegativeRate) ||
		errors.Is(err, core.ErrEmptyTaskID) ||
		errors.Is(err, core.ErrZeroStartTime) ||
		errors.Is(err, core.ErrEndBeforeStart) ||
		errors.Is(err, core.ErrNegativeSeconds)
}

// trimWrap walks to the innermost error so the client sees the sentinel
// message, not the wrapping chain.
func trimWrap(err error) error {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return err
		}
		err = inner
	}
}

// decodeJSON reads a request body into v with a size cap.
func decodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// badRequest reports a malformed body or parameter straight to the client.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Message: msg})
}

// clientIP extracts the caller's address, considering proxies.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
