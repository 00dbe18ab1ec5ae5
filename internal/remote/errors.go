package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches an APIError with status 404.
var ErrNotFound = errors.New("resource not found")

// APIError is returned for non-2xx responses.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API returned status %d", e.Status)
	}
	return fmt.Sprintf("API returned status %d: %s", e.Status, e.Message)
}

// Is makes errors.Is(err, ErrNotFound) true for 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// errorBody is the error payload of the Meelo API.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}
