package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"givetrack/internal/core"
	"givetrack/internal/log"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are sent; an encode failure means the client went away.
	_ = json.NewEncoder(w).Encode(v)
}

// writeError responds with {"error": msg} and logs server-side failures
// under op.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg, op string, err error) {
	if status >= http.StatusInternalServerError && err != nil {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), msg, err, op, nil)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeBody reads a JSON payload. Missing fields keep their zero value and
// a field of the wrong JSON type is skipped while the others are kept; only
// a body that is not JSON at all yields the zero payload. Shape is not validated.
func decodeBody[T any](r *http.Request) T {
	var v T
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&v)
	if err == nil {
		return v
	}

	logger := log.FromContext(r.Context())
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		logger.DebugContext(r.Context(), "Skipping mistyped request field",
			"field", typeErr.Field, log.FieldError, err.Error())
		return v
	}

	logger.DebugContext(r.Context(), "Ignoring undecodable request body", log.FieldError, err.Error())
	var zero T
	return zero
}

// statusFor maps the service error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrDuplicateEmail), errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrMissingField):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
