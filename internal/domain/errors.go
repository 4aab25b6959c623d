package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// record does not exist for the requesting owner. An id that exists but
// belongs to another user is reported identically — callers can never
// distinguish "missing" from "not yours".
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, malformed email, removing
// the last traveler from a plan).
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")
