package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RegistrationStore defines persistence operations for registrations.
type RegistrationStore interface {
	Create(ctx context.Context, params CreateRegistrationParams) (Registration, error)
	GetByID(ctx context.Context, id int64) (Registration, error)
	GetByEventAndEmail(ctx context.Context, eventID int64, email string) (Registration, error)
	List(ctx context.Context, eventID int64, filter RegistrationFilter, cursor *Cursor, pageSize int) ([]Registration, error)
	Count(ctx context.Context, eventID int64, filter RegistrationFilter) (int64, error)
	SoftDelete(ctx context.Context, id int64) error
	Stream(ctx context.Context, eventID int64) (RegistrationStream, error)
}

// Registration represents one person registered to an event.
type Registration struct {
	ID           int64
	EventID      int64
	Name         string
	Phone        string
	Email        string
	Source       string
	RegisteredAt time.Time
	DeletedAt    *time.Time
}

// CreateRegistrationParams contains parameters to create a registration.
// RequestID is an optional idempotency key; uuid.Nil means none, and a
// repeated (event, request) pair returns the original row instead of
// inserting a second one.
type CreateRegistrationParams struct {
	EventID   int64
	Name      string
	Phone     string
	Email     string
	Source    string
	RequestID uuid.UUID
}

// RegistrationFilter is the fixed registration predicate set: a
// substring match on email or registrant name.
type RegistrationFilter struct {
	Query string
}

// RegistrationStream is a forward-only pull iterator over the
// registrations of one event, ordered by (registered_at, id) ascending.
//
// Next returns ErrEndOfStream after the final row. The stream is not
// restartable: after a failure or a consumer abort, a fresh Stream call
// starts the scan over. Close releases the underlying store cursor and
// is safe to call more than once.
type RegistrationStream interface {
	Next(ctx context.Context) (Registration, error)
	Close()
}
