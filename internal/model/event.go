package model

import (
	"context"
	"time"
)

// EventStore defines persistence operations for events.
type EventStore interface {
	Create(ctx context.Context, params CreateEventParams) (Event, error)
	GetByID(ctx context.Context, id int64) (Event, error)
	Update(ctx context.Context, id int64, patch EventPatch) (Event, error)
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, filter EventFilter, ordering Ordering, cursor *Cursor, pageSize int) ([]Event, error)
	Count(ctx context.Context, filter EventFilter) (int64, error)
	CountByCreator(ctx context.Context, creatorID int64) (int64, error)
}

// Event represents a stored event entity.
type Event struct {
	ID          int64
	Name        string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	CreatedBy   int64
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// CreateEventParams contains parameters to create an event.
type CreateEventParams struct {
	Name        string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	CreatedBy   int64
}

// EventPatch contains optional fields for an update. Nil fields are
// left unchanged.
type EventPatch struct {
	Name        *string
	Description *string
	Location    *string
	StartTime   *time.Time
	EndTime     *time.Time
}

// EventFilter is the fixed set of indexed event predicates. Zero values
// mean no restriction. Each field corresponds to an index the store
// maintains; arbitrary filter composition is not supported.
type EventFilter struct {
	From      *time.Time
	To        *time.Time
	Query     string
	CreatedBy *int64
}
