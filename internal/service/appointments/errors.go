package appointments

// ValidationError reports missing or malformed input. Its message is safe to
// show to the client.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

func validationError(msg string) error {
	return NewValidationError(msg)
}

// ConflictError reports a request that would break a booking invariant.
type ConflictError struct {
	msg string
}

func (e *ConflictError) Error() string {
	return e.msg
}

func NewConflictError(msg string) *ConflictError {
	return &ConflictError{msg: msg}
}

func conflictError(msg string) error {
	return NewConflictError(msg)
}

type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string {
	return e.msg
}

func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{msg: msg}
}

func notFoundError(msg string) error {
	return NewNotFoundError(msg)
}

const (
	msgFieldsRequired   = "all fields required"
	msgInvalidDate      = "invalid or past date"
	msgClientBooked     = "client already booked that date"
	msgFullyBooked      = "mechanic fully booked"
	msgMechanicNotFound = "mechanic not found"
	msgApptNotFound     = "appointment not found"
	msgInvalidID        = "invalid appointment id"
	msgUnknownIntent    = "unknown action"

	msgNoDate       = "No date provided"
	msgBadDate      = "Invalid date format"
	msgUpcomingDate = "Please select an upcoming date"
)
