package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
)

// envelope is the uniform JSON response shape for every endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// respondJSON writes a JSON envelope with the given status code.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
	}
}

// respondData writes a success envelope.
func (h *Handler) respondData(w http.ResponseWriter, status int, data any) {
	h.respondJSON(w, status, envelope{Success: true, Data: data})
}

// respondMessage writes a success envelope carrying only a message.
func (h *Handler) respondMessage(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, envelope{Success: true, Message: msg})
}

// respondError writes an error envelope.
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, envelope{Success: false, Error: message})
}

// respondDomainError maps domain errors to HTTP status codes. Session
// lookups that miss map to 404, document load failures and invalid
// operations to 400, everything else to an opaque 500.
func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, document.ErrSessionNotFound) {
		h.respondError(w, http.StatusNotFound, "document session not found")
		return
	}
	var loadErr *document.LoadError
	if errors.As(err, &loadErr) {
		h.respondError(w, http.StatusBadRequest, loadErr.Error())
		return
	}
	var invalidErr *document.InvalidOperationError
	if errors.As(err, &invalidErr) {
		h.respondError(w, http.StatusBadRequest, invalidErr.Error())
		return
	}
	var depErr *document.DependencyUnavailableError
	if errors.As(err, &depErr) {
		h.respondError(w, http.StatusServiceUnavailable, depErr.Error())
		return
	}
	h.logger.Error("request failed", "error", err)
	h.respondError(w, http.StatusInternalServerError, "internal error")
}

// readJSON decodes the request body into v and validates it against
// its struct tags. Unknown fields are rejected.
func (h *Handler) readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return h.validate.Struct(v)
}

// pathParam extracts a named path parameter from the request URL.
// Uses Go 1.22+ PathValue.
func (h *Handler) pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}

// pathIndex extracts a path parameter as a non-negative integer.
func (h *Handler) pathIndex(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(h.pathParam(r, name))
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + name + " path parameter")
	}
	return n, nil
}

// queryInt parses an integer query parameter, returning def when the
// parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + name + " query parameter")
	}
	return n, nil
}

// queryFloat parses a float query parameter, returning def when the
// parameter is absent.
func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("invalid " + name + " query parameter")
	}
	return f, nil
}
