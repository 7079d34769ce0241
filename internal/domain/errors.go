// Package domain defines domain-specific errors.
// These errors represent business logic failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrTrackNotFound is returned when a requested track cannot be found.
	ErrTrackNotFound = errors.New("track not found")

	// ErrPlaylistNotFound is returned when a requested playlist cannot be found.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrPodcastNotFound is returned when a requested podcast cannot be found.
	ErrPodcastNotFound = errors.New("podcast not found")

	// ErrEpisodeNotFound is returned when a requested episode cannot be found.
	ErrEpisodeNotFound = errors.New("episode not found")

	// ErrInvalidFilePath is returned when a file path is empty or not usable.
	ErrInvalidFilePath = errors.New("invalid file path")

	// ErrInvalidFeedURL is returned when a feed URL is empty or not an absolute http(s) URL.
	ErrInvalidFeedURL = errors.New("invalid feed url")

	// ErrInvalidID is returned when an identifier argument is empty.
	ErrInvalidID = errors.New("invalid id")

	// ErrNoData is returned by fetchers when a request produced no usable body
	// (timeout, non-200 status, connection failure).
	ErrNoData = errors.New("no data")

	// ErrNoCover is returned when no cover source produced an image.
	ErrNoCover = errors.New("no cover available")

	// ErrFeedParse is returned when a feed document cannot be parsed.
	ErrFeedParse = errors.New("feed could not be parsed")

	// ErrNotInitialized is returned when an operation is attempted on an uninitialized component.
	ErrNotInitialized = errors.New("component not initialized")
)

// FetchError represents a network fetch that did not yield data.
type FetchError struct {
	URL        string // Requested URL
	StatusCode int    // Terminal HTTP status (0 if no response)
	Err        error  // Underlying error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch '%s' failed: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch '%s' failed: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is makes every FetchError match ErrNoData.
func (e *FetchError) Is(target error) bool {
	return target == ErrNoData
}

// NewFetchError creates a new FetchError.
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// RepositoryError represents an error from a repository.
// This wraps persistence layer errors with additional context.
type RepositoryError struct {
	Op      string // Operation that failed (e.g., "save", "load")
	Type    string // Repository type (e.g., "tracks", "playlists", "podcasts")
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *RepositoryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("repository %s.%s failed: %s: %v", e.Type, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("repository %s.%s failed: %s", e.Type, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NewRepositoryError creates a new RepositoryError.
func NewRepositoryError(op, repoType, message string, err error) *RepositoryError {
	return &RepositoryError{
		Op:      op,
		Type:    repoType,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a caller-input error detected before any I/O.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   any    // Value that failed validation
	Message string // Error message
	Err     error  // Sentinel describing the class of failure
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap returns the sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
		Err:     err,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "LibraryService", "PodcastService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s.%s failed: %s: %v", e.Service, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
