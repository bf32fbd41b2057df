package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pantry/internal/notify"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Supported() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockNotifier) Permission() notify.Permission {
	args := m.Called()
	return args.Get(0).(notify.Permission)
}

func (m *MockNotifier) RequestPermission(ctx context.Context) (notify.Permission, error) {
	args := m.Called(ctx)
	return args.Get(0).(notify.Permission), args.Error(1)
}

func (m *MockNotifier) Show(ctx context.Context, n notify.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
