package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avray/eventreg-server/internal/model"
)

var _ model.RegistrationStore = (*RegistrationRepository)(nil)

// Postgres error code and index behind the duplicate guard. The unique
// index is the authoritative check; the service-level lookup is only a
// fast path.
const (
	uniqueViolationCode  = "23505"
	eventEmailConstraint = "registrations_event_email_key"
)

type RegistrationRepository struct {
	db *Connection
}

func NewRegistrationRepository(db *Connection) *RegistrationRepository {
	return &RegistrationRepository{
		db: db,
	}
}

const registrationColumns = `id, event_id, name, phone, email, source, registered_at, deleted_at`

// Create inserts a registration. A repeated request_id returns the
// previously created live row instead of inserting again; a live
// duplicate (event_id, email) surfaces as
// *model.DuplicateRegistrationError, both when another writer committed
// first and when the caller raced itself. A retried request_id whose
// row was soft-deleted since returns model.ErrNotFound, never the
// deleted row.
func (r *RegistrationRepository) Create(ctx context.Context, params model.CreateRegistrationParams) (model.Registration, error) {
	query := `
		WITH ins AS (
			INSERT INTO registrations (event_id, name, phone, email, source, request_id)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6::uuid, '00000000-0000-0000-0000-000000000000'))
			ON CONFLICT (event_id, request_id) WHERE request_id IS NOT NULL DO NOTHING
			RETURNING ` + registrationColumns + `
		)
		SELECT ` + registrationColumns + `
		FROM ins
		UNION ALL
		SELECT r.id, r.event_id, r.name, r.phone, r.email, r.source, r.registered_at, r.deleted_at
		FROM registrations r
		WHERE NOT EXISTS (SELECT 1 FROM ins)
		  AND r.event_id = $1 AND r.request_id = NULLIF($6::uuid, '00000000-0000-0000-0000-000000000000')
		  AND r.deleted_at IS NULL
		LIMIT 1`

	var reg model.Registration
	err := r.db.QueryRow(ctx, query,
		params.EventID, params.Name, params.Phone, params.Email, params.Source, params.RequestID,
	).Scan(
		&reg.ID, &reg.EventID, &reg.Name, &reg.Phone, &reg.Email, &reg.Source,
		&reg.RegisteredAt, &reg.DeletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == eventEmailConstraint {
			return model.Registration{}, model.NewDuplicateRegistrationError(params.EventID, params.Email)
		}
		// Empty result means the keyed insert was skipped but the
		// fallback saw nothing: either a concurrent writer with the
		// same request_id committed after our snapshot was taken, or
		// the original row has been soft-deleted. A fresh statement
		// gets a new snapshot and settles which.
		if errors.Is(err, pgx.ErrNoRows) && params.RequestID != uuid.Nil {
			return r.getByRequestID(ctx, params.EventID, params.RequestID)
		}
		return model.Registration{}, err
	}

	return reg, nil
}

func (r *RegistrationRepository) getByRequestID(ctx context.Context, eventID int64, requestID uuid.UUID) (model.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND request_id = $2 AND deleted_at IS NULL`

	var reg model.Registration
	err := r.db.QueryRow(ctx, query, eventID, requestID).Scan(
		&reg.ID, &reg.EventID, &reg.Name, &reg.Phone, &reg.Email, &reg.Source,
		&reg.RegisteredAt, &reg.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Registration{}, model.ErrNotFound
		}
		return model.Registration{}, err
	}

	return reg, nil
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id int64) (model.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE id = $1 AND deleted_at IS NULL`

	var reg model.Registration
	err := r.db.QueryRow(ctx, query, id).Scan(
		&reg.ID, &reg.EventID, &reg.Name, &reg.Phone, &reg.Email, &reg.Source,
		&reg.RegisteredAt, &reg.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Registration{}, model.ErrNotFound
		}
		return model.Registration{}, err
	}

	return reg, nil
}

func (r *RegistrationRepository) GetByEventAndEmail(ctx context.Context, eventID int64, email string) (model.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND email = $2 AND deleted_at IS NULL`

	var reg model.Registration
	err := r.db.QueryRow(ctx, query, eventID, email).Scan(
		&reg.ID, &reg.EventID, &reg.Name, &reg.Phone, &reg.Email, &reg.Source,
		&reg.RegisteredAt, &reg.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Registration{}, model.ErrNotFound
		}
		return model.Registration{}, err
	}

	return reg, nil
}

func (r *RegistrationRepository) List(ctx context.Context, eventID int64, filter model.RegistrationFilter, cursor *model.Cursor, pageSize int) ([]model.Registration, error) {
	query, args := registrationListQuery(eventID, filter, cursor, pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.Name, &reg.Phone, &reg.Email, &reg.Source,
			&reg.RegisteredAt, &reg.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return regs, nil
}

func (r *RegistrationRepository) Count(ctx context.Context, eventID int64, filter model.RegistrationFilter) (int64, error) {
	where, args := registrationFilterPredicates(eventID, filter)
	query := `SELECT COUNT(*) FROM registrations WHERE ` + strings.Join(where, " AND ")

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *RegistrationRepository) SoftDelete(ctx context.Context, id int64) error {
	const query = `UPDATE registrations SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func registrationFilterPredicates(eventID int64, filter model.RegistrationFilter) ([]string, []any) {
	where := []string{"deleted_at IS NULL"}
	args := []any{eventID}
	where = append(where, "event_id = $1")

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where = append(where, fmt.Sprintf("(email ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
	}

	return where, args
}

// registrationListQuery builds one keyset page scan ordered by
// (registered_at, id) ascending, seeking past the cursor with a row
// comparison served by registrations_event_registered_at_id_idx.
func registrationListQuery(eventID int64, filter model.RegistrationFilter, cursor *model.Cursor, pageSize int) (string, []any) {
	where, args := registrationFilterPredicates(eventID, filter)

	if cursor != nil {
		args = append(args, cursor.SortValue.UTC(), cursor.LastID)
		where = append(where, fmt.Sprintf("(registered_at, id) > ($%d, $%d)", len(args)-1, len(args)))
	}

	args = append(args, pageSize)
	query := fmt.Sprintf(`
		SELECT `+registrationColumns+`
		FROM registrations
		WHERE %s
		ORDER BY registered_at, id
		LIMIT $%d`, strings.Join(where, " AND "), len(args))

	return query, args
}
