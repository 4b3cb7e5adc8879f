package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avray/eventreg-server/internal/model"
)

// Stream opens a forward-only scan over the event's live registrations
// in (registered_at, id) order. Rows are pulled from the server as the
// consumer advances, so memory stays bounded regardless of result size.
// The stream holds a dedicated pool connection until Close.
func (r *RegistrationRepository) Stream(ctx context.Context, eventID int64) (model.RegistrationStream, error) {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND deleted_at IS NULL
		ORDER BY registered_at, id`

	rows, err := conn.Query(ctx, query, eventID)
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}

	return &registrationStream{conn: conn, rows: rows}, nil
}

type registrationStream struct {
	conn   *pgxpool.Conn
	rows   pgx.Rows
	closed bool
	err    error
}

var _ model.RegistrationStream = (*registrationStream)(nil)

// Next yields the next registration. Any failure, cancellation
// included, closes the stream; it cannot be resumed afterwards, and the
// failure is sticky: every later Next returns the same error, never a
// normal end.
func (s *registrationStream) Next(ctx context.Context) (model.Registration, error) {
	if s.closed {
		if s.err != nil {
			return model.Registration{}, s.err
		}
		return model.Registration{}, model.ErrEndOfStream
	}

	if err := ctx.Err(); err != nil {
		return model.Registration{}, s.fail(fmt.Errorf("stream cancelled: %w", err))
	}

	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return model.Registration{}, s.fail(fmt.Errorf("failed to advance stream: %w", err))
		}
		s.Close()
		return model.Registration{}, model.ErrEndOfStream
	}

	var reg model.Registration
	err := s.rows.Scan(
		&reg.ID, &reg.EventID, &reg.Name, &reg.Phone, &reg.Email, &reg.Source,
		&reg.RegisteredAt, &reg.DeletedAt,
	)
	if err != nil {
		return model.Registration{}, s.fail(fmt.Errorf("failed to scan stream row: %w", err))
	}

	return reg, nil
}

func (s *registrationStream) fail(err error) error {
	s.Close()
	s.err = err
	return err
}

func (s *registrationStream) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.rows.Close()
	s.conn.Release()
}
