package controller

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a name lookup that matched no resource.
var ErrNotFound = errors.New("resource not found")

// ErrCacheMiss marks a lookup cache miss. Callers fall back to the API.
var ErrCacheMiss = errors.New("lookup cache miss")

// APIError is a non-2xx response from the controller API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("controller API returned status %d: %s", e.StatusCode, e.Body)
}
