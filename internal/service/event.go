package service

import (
	"context"
	"fmt"

	"github.com/avray/eventreg-server/internal/cache"
	"github.com/avray/eventreg-server/internal/logger"
	"github.com/avray/eventreg-server/internal/model"
)

type Event struct {
	store  model.EventStore
	counts *cache.Counts
	logger *logger.Logger
}

func NewEvent(store model.EventStore, counts *cache.Counts, logger *logger.Logger) *Event {
	return &Event{
		store:  store,
		counts: counts,
		logger: logger,
	}
}

// ListEventsParams describes one page request. Cursor and the total
// count are mutually exclusive: a cursorless request is the semantic
// first page and carries a real total, a cursor request reports
// model.TotalCountUnknown instead of paying a scan per page.
type ListEventsParams struct {
	Filter   model.EventFilter
	Ordering model.Ordering
	Cursor   string
	PageSize int
}

func (s *Event) ListEvents(ctx context.Context, params ListEventsParams) (model.Page[model.Event], error) {
	pageSize := model.NormalizePageSize(params.PageSize)
	ordering := params.Ordering
	if ordering == "" {
		ordering = model.OrderAsc
	}

	cursor, err := model.DecodeCursor(params.Cursor)
	if err != nil {
		return model.Page[model.Event]{}, fmt.Errorf("failed to decode cursor: %w", err)
	}

	items, err := s.store.List(ctx, params.Filter, ordering, cursor, pageSize)
	if err != nil {
		return model.Page[model.Event]{}, fmt.Errorf("failed to list events: %w", err)
	}

	total := model.TotalCountUnknown
	if cursor == nil {
		total, err = s.countEvents(ctx, params.Filter)
		if err != nil {
			return model.Page[model.Event]{}, fmt.Errorf("failed to count events: %w", err)
		}
	}

	return buildPage(items, total, pageSize, func(last model.Event) model.Cursor {
		return model.Cursor{SortValue: last.StartTime, LastID: last.ID}
	}), nil
}

func (s *Event) GetEvent(ctx context.Context, id int64) (model.Event, error) {
	event, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Event{}, fmt.Errorf("failed to get event by id: %w", err)
	}
	return event, nil
}

func (s *Event) CreateEvent(ctx context.Context, params model.CreateEventParams) (model.Event, error) {
	event, err := s.store.Create(ctx, params)
	if err != nil {
		return model.Event{}, fmt.Errorf("failed to create event: %w", err)
	}

	s.counts.InvalidateScope(cache.EventListScope)
	s.logger.Info("event created", "event_id", event.ID, "created_by", event.CreatedBy)

	return event, nil
}

func (s *Event) UpdateEvent(ctx context.Context, id int64, patch model.EventPatch) (model.Event, error) {
	event, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return model.Event{}, fmt.Errorf("failed to update event: %w", err)
	}

	// A moved start time can shift the event across date-range filters,
	// so cached filtered totals are dropped as well.
	s.counts.InvalidateScope(cache.EventListScope)

	return event, nil
}

// DeleteEvent soft-deletes the event; the store cascades to its
// registrations, so both the event listing scope and the event's
// registration scope lose their cached counts.
func (s *Event) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to soft delete event: %w", err)
	}

	s.counts.InvalidateScope(cache.EventListScope)
	s.counts.InvalidateScope(cache.RegistrationScope(id))
	s.logger.Info("event deleted", "event_id", id)

	return nil
}

// CountEventsByCreator is deliberately uncached: callers use it to
// enforce creation limits, so it must reflect the latest committed state.
func (s *Event) CountEventsByCreator(ctx context.Context, creatorID int64) (int64, error) {
	count, err := s.store.CountByCreator(ctx, creatorID)
	if err != nil {
		return 0, fmt.Errorf("failed to count events by creator: %w", err)
	}
	return count, nil
}

// countEvents serves first-page totals, from cache when warm. A failed
// scan is never cached.
func (s *Event) countEvents(ctx context.Context, filter model.EventFilter) (int64, error) {
	key := cache.EventListKey(filter)
	if count, ok := s.counts.Get(key); ok {
		return count, nil
	}

	count, err := s.store.Count(ctx, filter)
	if err != nil {
		return 0, err
	}

	s.counts.Set(key, count)
	return count, nil
}
