package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pantry/internal/model"
)

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Load(ctx context.Context) []model.Item {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return []model.Item{}
	}
	return args.Get(0).([]model.Item)
}

func (m *MockItemRepository) Save(ctx context.Context, items []model.Item) {
	m.Called(ctx, items)
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStore) Put(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockBlobStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
