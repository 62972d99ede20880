package api

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx answer from the billing API. Message carries
// the server's human-readable text verbatim so pages can surface it
// unchanged.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// ErrInvalidCredentials is a 401 from the login endpoint: wrong phone
// or password. It never touches the resident session, unlike a 401
// from a resource call.
var ErrInvalidCredentials = errors.New("invalid credentials")
