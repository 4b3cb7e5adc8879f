package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/avray/eventreg-server/internal/cache"
	"github.com/avray/eventreg-server/internal/logger"
	"github.com/avray/eventreg-server/internal/model"
)

type Registration struct {
	store  model.RegistrationStore
	events model.EventStore
	counts *cache.Counts
	logger *logger.Logger
}

func NewRegistration(
	store model.RegistrationStore,
	events model.EventStore,
	counts *cache.Counts,
	logger *logger.Logger,
) *Registration {
	return &Registration{
		store:  store,
		events: events,
		counts: counts,
		logger: logger,
	}
}

// CreateRegistration registers an email for an event, at most once.
//
// The pre-check rejects the common duplicate cheaply; the store's
// unique constraint is the authoritative guard. When a concurrent
// writer commits the same (event, email) between the two steps, the
// constraint violation is translated into the same
// *model.DuplicateRegistrationError the pre-check would have produced.
// Duplicates are terminal and never retried. On success the event's
// cached registration counts are invalidated synchronously.
func (s *Registration) CreateRegistration(ctx context.Context, params model.CreateRegistrationParams) (model.Registration, error) {
	if _, err := s.events.GetByID(ctx, params.EventID); err != nil {
		return model.Registration{}, fmt.Errorf("failed to get event: %w", err)
	}

	_, err := s.store.GetByEventAndEmail(ctx, params.EventID, params.Email)
	if err == nil {
		return model.Registration{}, model.NewDuplicateRegistrationError(params.EventID, params.Email)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.Registration{}, fmt.Errorf("failed to check existing registration: %w", err)
	}

	reg, err := s.store.Create(ctx, params)
	if err != nil {
		var dup *model.DuplicateRegistrationError
		if errors.As(err, &dup) {
			// Lost the race to a concurrent writer.
			return model.Registration{}, dup
		}
		return model.Registration{}, fmt.Errorf("failed to create registration: %w", err)
	}

	s.counts.InvalidateScope(cache.RegistrationScope(params.EventID))
	s.logger.Info("registration created", "registration_id", reg.ID, "event_id", reg.EventID)

	return reg, nil
}

// IsEmailRegistered reports whether a live registration exists for
// (event, email).
func (s *Registration) IsEmailRegistered(ctx context.Context, eventID int64, email string) (bool, error) {
	_, err := s.store.GetByEventAndEmail(ctx, eventID, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to get registration: %w", err)
}

// ListRegistrationsParams describes one page request over an event's
// registrations, ordered by (registered_at, id) ascending.
type ListRegistrationsParams struct {
	EventID  int64
	Filter   model.RegistrationFilter
	Cursor   string
	PageSize int
}

func (s *Registration) ListRegistrations(ctx context.Context, params ListRegistrationsParams) (model.Page[model.Registration], error) {
	pageSize := model.NormalizePageSize(params.PageSize)

	cursor, err := model.DecodeCursor(params.Cursor)
	if err != nil {
		return model.Page[model.Registration]{}, fmt.Errorf("failed to decode cursor: %w", err)
	}

	items, err := s.store.List(ctx, params.EventID, params.Filter, cursor, pageSize)
	if err != nil {
		return model.Page[model.Registration]{}, fmt.Errorf("failed to list registrations: %w", err)
	}

	total := model.TotalCountUnknown
	if cursor == nil {
		total, err = s.countRegistrations(ctx, params.EventID, params.Filter)
		if err != nil {
			return model.Page[model.Registration]{}, fmt.Errorf("failed to count registrations: %w", err)
		}
	}

	return buildPage(items, total, pageSize, func(last model.Registration) model.Cursor {
		return model.Cursor{SortValue: last.RegisteredAt, LastID: last.ID}
	}), nil
}

// CountRegistrations returns the number of live registrations of an
// event, from cache when warm.
func (s *Registration) CountRegistrations(ctx context.Context, eventID int64) (int64, error) {
	return s.countRegistrations(ctx, eventID, model.RegistrationFilter{})
}

// DeleteRegistration soft-deletes one registration and invalidates the
// owning event's cached counts.
func (s *Registration) DeleteRegistration(ctx context.Context, id int64) error {
	reg, err := s.store.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get registration: %w", err)
	}

	if err := s.store.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to soft delete registration: %w", err)
	}

	s.counts.InvalidateScope(cache.RegistrationScope(reg.EventID))
	s.logger.Info("registration deleted", "registration_id", id, "event_id", reg.EventID)

	return nil
}

func (s *Registration) countRegistrations(ctx context.Context, eventID int64, filter model.RegistrationFilter) (int64, error) {
	key := cache.RegistrationKey(eventID, filter)
	if count, ok := s.counts.Get(key); ok {
		return count, nil
	}

	count, err := s.store.Count(ctx, eventID, filter)
	if err != nil {
		// Never cache a count observed during a failed scan.
		return 0, err
	}

	s.counts.Set(key, count)
	return count, nil
}
