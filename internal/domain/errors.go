package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found (or is not owned
	// by the caller - the two are deliberately indistinguishable)
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input, rejected before any
	// external call
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// UnsupportedMediaError indicates extraction cannot proceed for the
	// declared media type
	UnsupportedMediaError struct {
		MediaType string
	}
)

// Error implementations
func (e *NotFoundError) Error() string         { return e.Message }
func (e *ValidationError) Error() string       { return e.Message }
func (e *UnauthorizedError) Error() string     { return e.Message }
func (e *UnsupportedMediaError) Error() string { return "unsupported media type: " + e.MediaType }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int         { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int       { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int     { return http.StatusUnauthorized }
func (e *UnsupportedMediaError) StatusCode() int { return http.StatusUnsupportedMediaType }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrExternalService marks failures of the embedding, extraction/vision,
	// or generation model calls. Ingestion treats it as fatal for the whole
	// document; chat retrieval recovers with an empty context; chat
	// generation treats it as fatal for the turn.
	ErrExternalService = errors.New("external service failure")

	// ErrPersistence marks store read/write failures. Surfaced to the
	// caller, never retried automatically.
	ErrPersistence = errors.New("persistence failure")
)

// Is allows errors.Is() to match typed errors against their sentinels
func (e *NotFoundError) Is(target error) bool         { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool       { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool     { return target == ErrUnauthorized }
func (e *UnsupportedMediaError) Is(target error) bool { return target == ErrUnsupportedMedia }

// ConflictError represents a resource conflict with details about the
// existing resource. Implements HTTPError.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (document, chat)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
