package service

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/avray/eventreg-server/internal/model"
)

// MockEventStore mocks the EventStore interface
type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) Create(ctx context.Context, params model.CreateEventParams) (model.Event, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Event), args.Error(1)
}

func (m *MockEventStore) GetByID(ctx context.Context, id int64) (model.Event, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Event), args.Error(1)
}

func (m *MockEventStore) Update(ctx context.Context, id int64, patch model.EventPatch) (model.Event, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(model.Event), args.Error(1)
}

func (m *MockEventStore) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventStore) List(ctx context.Context, filter model.EventFilter, ordering model.Ordering, cursor *model.Cursor, pageSize int) ([]model.Event, error) {
	args := m.Called(ctx, filter, ordering, cursor, pageSize)
	return args.Get(0).([]model.Event), args.Error(1)
}

func (m *MockEventStore) Count(ctx context.Context, filter model.EventFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEventStore) CountByCreator(ctx context.Context, creatorID int64) (int64, error) {
	args := m.Called(ctx, creatorID)
	return args.Get(0).(int64), args.Error(1)
}

// MockRegistrationStore mocks the RegistrationStore interface
type MockRegistrationStore struct {
	mock.Mock
}

func (m *MockRegistrationStore) Create(ctx context.Context, params model.CreateRegistrationParams) (model.Registration, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Registration), args.Error(1)
}

func (m *MockRegistrationStore) GetByID(ctx context.Context, id int64) (model.Registration, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Registration), args.Error(1)
}

func (m *MockRegistrationStore) GetByEventAndEmail(ctx context.Context, eventID int64, email string) (model.Registration, error) {
	args := m.Called(ctx, eventID, email)
	return args.Get(0).(model.Registration), args.Error(1)
}

func (m *MockRegistrationStore) List(ctx context.Context, eventID int64, filter model.RegistrationFilter, cursor *model.Cursor, pageSize int) ([]model.Registration, error) {
	args := m.Called(ctx, eventID, filter, cursor, pageSize)
	return args.Get(0).([]model.Registration), args.Error(1)
}

func (m *MockRegistrationStore) Count(ctx context.Context, eventID int64, filter model.RegistrationFilter) (int64, error) {
	args := m.Called(ctx, eventID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRegistrationStore) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRegistrationStore) Stream(ctx context.Context, eventID int64) (model.RegistrationStream, error) {
	args := m.Called(ctx, eventID)
	if stream, ok := args.Get(0).(model.RegistrationStream); ok {
		return stream, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockStorage mocks the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
