package handlers

import (
	"encoding/json"
	"errors"
	"hos-trip-service/internal/domain"
	"hos-trip-service/internal/platform/obs"
	"hos-trip-service/internal/ports"
	"log"
	"net/http"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: req_id=%s method=%s path=%s err=%v", obs.RequestID(r.Context()), r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps a service or repository error to its HTTP status.
// Messages of unexpected errors are logged, not returned.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s failed: req_id=%s err=%v", op, obs.RequestID(r.Context()), err)
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeError(w, r, status, msg)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ports.ErrLocationNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrLocationUnresolvable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrUnsplittableLeg):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
