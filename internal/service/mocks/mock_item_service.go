package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pantry/internal/model"
	"pantry/internal/service"
	"pantry/internal/stats"
)

type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) Add(ctx context.Context, item model.Item) []model.Item {
	args := m.Called(ctx, item)
	return args.Get(0).([]model.Item)
}

func (m *MockItemService) AddBatch(ctx context.Context, items []model.Item) []model.Item {
	args := m.Called(ctx, items)
	return args.Get(0).([]model.Item)
}

func (m *MockItemService) Update(ctx context.Context, item model.Item) ([]model.Item, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemService) Delete(ctx context.Context, id string) ([]model.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemService) Consume(ctx context.Context, item model.Item) ([]model.Item, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemService) Create(ctx context.Context, in service.ItemInput) (*model.Item, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemService) Import(ctx context.Context, text string) ([]model.Item, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemService) Get(ctx context.Context, id string) (*model.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemService) List(ctx context.Context, q service.ListQuery) ([]service.ItemView, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ItemView), args.Error(1)
}

func (m *MockItemService) Dashboard(ctx context.Context) stats.DerivedStats {
	args := m.Called(ctx)
	return args.Get(0).(stats.DerivedStats)
}

func (m *MockItemService) StartSession(ctx context.Context) service.SessionResult {
	args := m.Called(ctx)
	return args.Get(0).(service.SessionResult)
}
