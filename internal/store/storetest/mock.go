package storetest

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"calendar-api/internal/store"
)

// MockDatabase implements store.Database for testing.
type MockDatabase struct {
	mock.Mock
}

func (m *MockDatabase) Collection(name string) store.Collection {
	args := m.Called(name)
	return args.Get(0).(store.Collection)
}

func (m *MockDatabase) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDatabase) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockCollection implements store.Collection for testing.
type MockCollection struct {
	mock.Mock
}

func (m *MockCollection) Find(ctx context.Context, filter store.Filter) ([]store.Document, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Document), args.Error(1)
}

func (m *MockCollection) FindOne(ctx context.Context, filter store.Filter) (mo.Option[store.Document], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return mo.None[store.Document](), args.Error(1)
	}
	return args.Get(0).(mo.Option[store.Document]), args.Error(1)
}

func (m *MockCollection) InsertOne(ctx context.Context, doc store.Document) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

func (m *MockCollection) InsertMany(ctx context.Context, docs []store.Document) ([]string, error) {
	args := m.Called(ctx, docs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCollection) UpdateByID(ctx context.Context, id string, set store.Document) error {
	return m.Called(ctx, id, set).Error(0)
}

func (m *MockCollection) DeleteByID(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCollection) DeleteAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var (
	_ store.Database   = (*MockDatabase)(nil)
	_ store.Collection = (*MockCollection)(nil)
)
