package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already in progress")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUpstream     = errors.New("upstream request failed")
)

// ConflictError represents an operation that cannot start because another one
// holds the same resource (an upload into the same folder, a second sync, ...).
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // folder, sync, analysis
	ResourceID   string
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

// UpstreamError is returned when one of the external backends answers with a
// non-success status. Transport failures are wrapped with ErrUpstream instead.
type UpstreamError struct {
	Backend   string // "storage" or "analysis"
	Operation string // e.g. "root_structure", "save_analyze_document"
	Status    int
	Body      string
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Backend, e.Operation, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Backend, e.Operation, e.Status, e.Body)
}

// StatusCode implements the HTTPError interface
func (e *UpstreamError) StatusCode() int {
	return http.StatusBadGateway
}

// Is matches ErrUpstream, and ErrNotFound when the backend answered 404.
func (e *UpstreamError) Is(target error) bool {
	if target == ErrUpstream {
		return true
	}
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// FollowUpError reports that an operation succeeded but a step chained after
// it (mark processed, tree refresh) failed. Handlers surface it as a warning.
type FollowUpError struct {
	Operation string
	Step      string
	Err       error
}

// Error implements the error interface
func (e *FollowUpError) Error() string {
	return fmt.Sprintf("%s succeeded but %s failed: %v", e.Operation, e.Step, e.Err)
}

// Unwrap returns the follow-up failure
func (e *FollowUpError) Unwrap() error {
	return e.Err
}
