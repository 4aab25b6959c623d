package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jharmon/tripfolio/internal/domain"
)

// errorResponse is the envelope for every failed request.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError maps a service error onto the HTTP status taxonomy:
// validation → 400, not found → 404, anything else → 500 with a generic
// message so internal details never reach the client.
//
// notFoundMessage names what was being looked up — the handler is the layer
// that knows (e.g. "travel plan not found").
func writeError(w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: unwrapMessage(err)})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFoundMessage})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "server error"})
	}
}

// writeBadRequest rejects a request before it reaches the service layer
// (e.g. missing or malformed body).
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "validation error: traveler name is required" → "traveler name is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if idx := strings.Index(msg, "validation error: "); idx >= 0 {
		return msg[idx+len("validation error: "):]
	}
	return msg
}

// decodeBody decodes the JSON request body into dst.
// A missing or syntactically invalid body yields a client-facing error.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

// timeLayouts are the accepted date formats, most to least specific. The
// browser client sends RFC 3339 timestamps, datetime-local values without a
// zone, or bare dates from date pickers.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTime parses s against the accepted layouts. Zoneless values are read
// as UTC.
func parseTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseOptionalTime converts an optional date string into *time.Time.
// Nil or empty input yields nil; a malformed value yields an error naming the field.
func parseOptionalTime(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, errors.New("invalid " + field)
	}
	return &t, nil
}
