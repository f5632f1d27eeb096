package patient

import (
	"errors"
	"strings"
)

var ErrPatientNotFound = errors.New("patient not found")

// ValidationError carries one message per violated merge precondition.
// Nothing has been mutated when it is returned.
type ValidationError struct {
	Messages []string
}

func (e ValidationError) Error() string {
	return "merge validation failed: " + strings.Join(e.Messages, "; ")
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// PersistenceError wraps a storage failure that forced the merge
// transaction to roll back.
type PersistenceError struct {
	cause error
}

func (e PersistenceError) Error() string {
	return "merge persistence failed: " + e.cause.Error()
}

func (e PersistenceError) Unwrap() error {
	return e.cause
}

func IsPersistenceError(err error) bool {
	var pe PersistenceError
	return errors.As(err, &pe)
}

// NotificationError wraps a listener failure during pre-commit dispatch.
// The transaction has rolled back exactly as for a persistence failure.
type NotificationError struct {
	cause error
}

func (e NotificationError) Error() string {
	return "merge notification failed: " + e.cause.Error()
}

func (e NotificationError) Unwrap() error {
	return e.cause
}

func IsNotificationError(err error) bool {
	var ne NotificationError
	return errors.As(err, &ne)
}
