package jobboard

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized means the token is missing, expired or revoked.
	ErrUnauthorized = errors.New("login required")
	// ErrNotFound means the addressed record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyApplied is returned when applying to the same job twice.
	ErrAlreadyApplied = errors.New("you have already applied to this job")
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Path    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// Is maps status codes and known messages onto the package sentinels so
// callers can use errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrAlreadyApplied:
		return e.Status == http.StatusBadRequest &&
			strings.Contains(strings.ToLower(e.Message), "already applied")
	}
	return false
}

// Message extracts the most useful human-readable text from err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
