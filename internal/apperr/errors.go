package apperr

import "errors"

// ErrValidation is returned when a required field is missing or malformed (HTTP 400).
var ErrValidation = errors.New("validation error")

// ErrNotFound indicates that the tracking record does not exist (HTTP 404).
var ErrNotFound = errors.New("not found")

// ErrUnauthorized covers a missing, unknown or unverifiable bearer token (HTTP 401).
var ErrUnauthorized = errors.New("unauthorized")

// ErrSessionExpired is returned for a token whose session has passed expires_at (HTTP 401).
var ErrSessionExpired = errors.New("session expired")

// ErrInvalidCredentials is returned by login on a username/password mismatch (HTTP 401).
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrRateLimited is returned when a client exceeds the login attempt budget (HTTP 429).
var ErrRateLimited = errors.New("too many requests")
