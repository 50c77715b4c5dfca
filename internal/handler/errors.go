package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/webmatic/api/internal/repository"
	"github.com/webmatic/api/internal/validation"
)

// Client-visible messages.
const (
	msgInternal    = "Une erreur interne est survenue. Veuillez réessayer plus tard."
	msgRateLimited = "Rate limit exceeded. Please try again later."
	msgInvalidJSON = "Le corps de la requête n'est pas un JSON valide."
	msgInvalidHost = "Invalid host header"
	msgTooLarge    = "Le corps de la requête est trop volumineux."
	msgCORS        = "Disallowed CORS origin or method"
)

var (
	errInvalidJSON  = errors.New("invalid json body")
	errInvalidHost  = errors.New("host not allowed")
	errCORSRejected = errors.New("cors preflight rejected")
)

// rateLimitError is returned for a request denied by the limiter.
type rateLimitError struct {
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string { return "rate limit exceeded" }

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string `json:"error"`
	Detail    any    `json:"detail"`
	Timestamp string `json:"timestamp,omitempty"`
}

// endpoint is a handler whose failures are translated by writeError.
type endpoint func(w http.ResponseWriter, r *http.Request) error

// handle adapts an endpoint to http.HandlerFunc.
func handle(fn endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			writeError(w, r, err)
		}
	}
}

// writeError is the single place where errors become responses. Validation
// and rate-limit outcomes are shown to the client; anything else is logged
// and replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	var rlErr *rateLimitError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation_failed", Detail: verr.Fields})
	case errors.As(err, &rlErr):
		w.Header().Set("Retry-After", retryAfterSeconds(rlErr.retryAfter))
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate_limit_exceeded", Detail: msgRateLimited})
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "payload_too_large", Detail: msgTooLarge})
	case errors.Is(err, errInvalidJSON):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_json", Detail: msgInvalidJSON})
	case errors.Is(err, errCORSRejected):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "cors_rejected", Detail: msgCORS})
	case errors.Is(err, errInvalidHost):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_host", Detail: msgInvalidHost})
	case errors.Is(err, repository.ErrPersistence):
		slog.Error("persistence failure", "error", err, "method", r.Method, "path", r.URL.Path)
		writeInternal(w)
	default:
		slog.Error("unhandled error", "error", err, "method", r.Method, "path", r.URL.Path)
		writeInternal(w)
	}
}

func writeInternal(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Error:     "internal_error",
		Detail:    msgInternal,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Seconds())
	if d > time.Duration(secs)*time.Second {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
