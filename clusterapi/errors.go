package clusterapi

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the cluster management API.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("cluster api: status %d: %s", e.StatusCode, e.Body)
}

// IsAPIError extracts an *APIError from an error chain.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
