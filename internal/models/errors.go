package models

import "errors"

// Error constants for session operations
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidToken    = errors.New("invalid session token")
	ErrSessionExpired  = errors.New("session expired")
)

// ErrorResponse is the JSON body of every failed portal call
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse carries per-field validation messages
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// MessageResponse carries a user-facing message
type MessageResponse struct {
	Message string `json:"message"`
}
