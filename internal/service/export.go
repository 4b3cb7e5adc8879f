package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/avray/eventreg-server/internal/logger"
	"github.com/avray/eventreg-server/internal/model"
)

type Export struct {
	store   model.RegistrationStore
	events  model.EventStore
	storage model.Storage
	logger  *logger.Logger
}

func NewExport(
	store model.RegistrationStore,
	events model.EventStore,
	storage model.Storage,
	logger *logger.Logger,
) *Export {
	return &Export{
		store:   store,
		events:  events,
		storage: storage,
		logger:  logger,
	}
}

var csvHeader = []string{"id", "event_id", "name", "phone", "email", "source", "registered_at"}

// StreamRegistrations opens a pull-based stream over the event's live
// registrations in (registered_at, id) order. The caller owns the
// stream and must Close it; a stream aborted mid-way cannot resume, a
// fresh call starts the scan over.
func (s *Export) StreamRegistrations(ctx context.Context, eventID int64) (model.RegistrationStream, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	stream, err := s.store.Stream(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to open registration stream: %w", err)
	}

	return stream, nil
}

// WriteCSV drains the event's registration stream into w row by row,
// so memory use stays constant regardless of how many rows the event
// has. Returns the number of data rows written.
func (s *Export) WriteCSV(ctx context.Context, eventID int64, w io.Writer) (int64, error) {
	stream, err := s.StreamRegistrations(ctx, eventID)
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	var written int64
	for {
		reg, err := stream.Next(ctx)
		if errors.Is(err, model.ErrEndOfStream) {
			break
		}
		if err != nil {
			return written, fmt.Errorf("failed to advance export stream: %w", err)
		}

		row := []string{
			strconv.FormatInt(reg.ID, 10),
			strconv.FormatInt(reg.EventID, 10),
			reg.Name,
			reg.Phone,
			reg.Email,
			reg.Source,
			reg.RegisteredAt.UTC().Format(time.RFC3339Nano),
		}
		if err := cw.Write(row); err != nil {
			return written, fmt.Errorf("failed to write row: %w", err)
		}
		written++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("failed to flush export: %w", err)
	}

	return written, nil
}

// Archive streams the event's registrations as CSV into object storage
// through a pipe, without materializing the file, and returns the
// object key.
func (s *Export) Archive(ctx context.Context, eventID int64) (string, error) {
	key := s.archiveKey(eventID)

	pr, pw := io.Pipe()
	go func() {
		_, err := s.WriteCSV(ctx, eventID, pw)
		pw.CloseWithError(err)
	}()
	// Unblocks the writer goroutine if the upload fails before draining
	// the pipe.
	defer pr.Close()

	if err := s.storage.Upload(ctx, key, pr); err != nil {
		return "", fmt.Errorf("failed to upload export: %w", err)
	}

	s.logger.Info("registrations archived", "event_id", eventID, "key", key)
	return key, nil
}

func (s *Export) archiveKey(eventID int64) string {
	return fmt.Sprintf("event-%d/registrations-%s.csv", eventID, uuid.New().String())
}
