package auth

import "fmt"

// AuthError represents authentication/authorization errors
type AuthError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// NewAuthError creates a new AuthError
func NewAuthError(errorType, message string, code int) *AuthError {
	return &AuthError{
		Type:    errorType,
		Message: message,
		Code:    code,
	}
}

// Predefined auth errors. ErrSessionInvalid is raised before dispatch
// when no usable session exists, so pages can tell it apart from a
// network failure. ErrMissingToken is its narrower cousin: validation
// passed but no bearer could be read. ErrUnauthorized is the server
// declaring the session dead with a 401.
var (
	ErrMissingToken   = &AuthError{"MISSING_TOKEN", "Authorization token required", 401}
	ErrSessionInvalid = &AuthError{"SESSION_INVALID", "Session is missing or expired", 401}
	ErrUnauthorized   = &AuthError{"UNAUTHORIZED", "Server rejected the session", 401}
)
