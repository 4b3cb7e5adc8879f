package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested row is absent or soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrEndOfStream is returned by RegistrationStream.Next after the final row.
	ErrEndOfStream = errors.New("end of stream")
)

// DuplicateRegistrationError reports a second registration attempt for
// the same (event, email). It is terminal: raised both from the
// pre-check and from the store's unique-constraint violation, and never
// retried.
type DuplicateRegistrationError struct {
	EventID int64
	Email   string
}

func NewDuplicateRegistrationError(eventID int64, email string) *DuplicateRegistrationError {
	return &DuplicateRegistrationError{EventID: eventID, Email: email}
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("registration for %s already exists on event %d", e.Email, e.EventID)
}
