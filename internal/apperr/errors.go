package apperr

// ValidationError reports a request missing or malforming a required field.
type ValidationError struct {
	msg string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg}
}

func (e *ValidationError) Error() string {
	return e.msg
}

// ConflictError reports an identity that already exists in the directory.
type ConflictError struct {
	msg string
}

func NewConflictError(msg string) *ConflictError {
	return &ConflictError{msg}
}

func (e *ConflictError) Error() string {
	return e.msg
}

// AuthorizationError reports a missing or mismatched admin secret.
type AuthorizationError struct {
	msg string
}

func NewAuthorizationError(msg string) *AuthorizationError {
	return &AuthorizationError{msg}
}

func (e *AuthorizationError) Error() string {
	return e.msg
}
