package filecrud

import "errors"

var (
	// ErrValidation is returned when a required field is missing or invalid,
	// or the upload is of a disallowed type or size.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when no resource has the given identifier.
	ErrNotFound = errors.New("not found")
	// ErrUpstream is returned when a blob store or metadata store call fails.
	ErrUpstream = errors.New("upstream store error")
	// ErrInternal is returned for anything unanticipated.
	ErrInternal = errors.New("internal error")
)

// OperationalError carries a message that is safe to return to clients.
type OperationalError struct {
	Message string
	Err     error
}

// Operational wraps err with a client-visible message.
func Operational(err error, message string) *OperationalError {
	return &OperationalError{Message: message, Err: err}
}

func (e *OperationalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *OperationalError) Unwrap() error {
	return e.Err
}
