package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/avray/eventreg-server/internal/model"
)

var _ model.EventStore = (*EventRepository)(nil)

type EventRepository struct {
	db *Connection
}

func NewEventRepository(db *Connection) *EventRepository {
	return &EventRepository{
		db: db,
	}
}

const eventColumns = `id, name, description, location, start_time, end_time, created_by, created_at, deleted_at`

func (r *EventRepository) Create(ctx context.Context, params model.CreateEventParams) (model.Event, error) {
	query := `
		INSERT INTO events (name, description, location, start_time, end_time, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + eventColumns

	var event model.Event
	err := r.db.QueryRow(ctx, query,
		params.Name, params.Description, params.Location,
		params.StartTime.UTC(), params.EndTime.UTC(), params.CreatedBy,
	).Scan(
		&event.ID, &event.Name, &event.Description, &event.Location,
		&event.StartTime, &event.EndTime, &event.CreatedBy, &event.CreatedAt, &event.DeletedAt,
	)
	if err != nil {
		return model.Event{}, err
	}

	return event, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1 AND deleted_at IS NULL`

	var event model.Event
	err := r.db.QueryRow(ctx, query, id).Scan(
		&event.ID, &event.Name, &event.Description, &event.Location,
		&event.StartTime, &event.EndTime, &event.CreatedBy, &event.CreatedAt, &event.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Event{}, model.ErrNotFound
		}
		return model.Event{}, err
	}

	return event, nil
}

func (r *EventRepository) Update(ctx context.Context, id int64, patch model.EventPatch) (model.Event, error) {
	query := `
		UPDATE events SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			location = COALESCE($4, location),
			start_time = COALESCE($5, start_time),
			end_time = COALESCE($6, end_time)
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + eventColumns

	start := patch.StartTime
	if start != nil {
		utc := start.UTC()
		start = &utc
	}
	end := patch.EndTime
	if end != nil {
		utc := end.UTC()
		end = &utc
	}

	var event model.Event
	err := r.db.QueryRow(ctx, query, id, patch.Name, patch.Description, patch.Location, start, end).Scan(
		&event.ID, &event.Name, &event.Description, &event.Location,
		&event.StartTime, &event.EndTime, &event.CreatedBy, &event.CreatedAt, &event.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Event{}, model.ErrNotFound
		}
		return model.Event{}, err
	}

	return event, nil
}

// SoftDelete marks the event deleted and cascades to its live
// registrations in the same transaction.
func (r *EventRepository) SoftDelete(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `UPDATE events SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `UPDATE registrations SET deleted_at = NOW() WHERE event_id = $1 AND deleted_at IS NULL`, id); err != nil {
		return fmt.Errorf("failed to cascade to registrations: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *EventRepository) List(ctx context.Context, filter model.EventFilter, ordering model.Ordering, cursor *model.Cursor, pageSize int) ([]model.Event, error) {
	query, args := eventListQuery(filter, ordering, cursor, pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var event model.Event
		err := rows.Scan(
			&event.ID, &event.Name, &event.Description, &event.Location,
			&event.StartTime, &event.EndTime, &event.CreatedBy, &event.CreatedAt, &event.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *EventRepository) Count(ctx context.Context, filter model.EventFilter) (int64, error) {
	where, args := eventFilterPredicates(filter)
	query := `SELECT COUNT(*) FROM events WHERE ` + strings.Join(where, " AND ")

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *EventRepository) CountByCreator(ctx context.Context, creatorID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM events WHERE created_by = $1 AND deleted_at IS NULL`

	var count int64
	if err := r.db.QueryRow(ctx, query, creatorID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// eventFilterPredicates translates the fixed filter set into WHERE
// clauses. Soft-deleted rows are excluded here, at the store level, so
// no caller can forget the predicate.
func eventFilterPredicates(filter model.EventFilter) ([]string, []any) {
	where := []string{"deleted_at IS NULL"}
	var args []any

	if filter.From != nil {
		args = append(args, filter.From.UTC())
		where = append(where, fmt.Sprintf("start_time >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, filter.To.UTC())
		where = append(where, fmt.Sprintf("start_time <= $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		where = append(where, fmt.Sprintf("created_by = $%d", len(args)))
	}

	return where, args
}

// eventListQuery builds one keyset page scan. The cursor becomes a row
// comparison on (start_time, id), which Postgres satisfies with an
// index seek on events_start_time_id_idx, so page cost does not depend
// on how many rows precede the page.
func eventListQuery(filter model.EventFilter, ordering model.Ordering, cursor *model.Cursor, pageSize int) (string, []any) {
	where, args := eventFilterPredicates(filter)

	cmp, dir := ">", "ASC"
	if ordering == model.OrderDesc {
		cmp, dir = "<", "DESC"
	}

	if cursor != nil {
		args = append(args, cursor.SortValue.UTC(), cursor.LastID)
		where = append(where, fmt.Sprintf("(start_time, id) %s ($%d, $%d)", cmp, len(args)-1, len(args)))
	}

	args = append(args, pageSize)
	query := fmt.Sprintf(`
		SELECT `+eventColumns+`
		FROM events
		WHERE %s
		ORDER BY start_time %s, id %s
		LIMIT $%d`, strings.Join(where, " AND "), dir, dir, len(args))

	return query, args
}
