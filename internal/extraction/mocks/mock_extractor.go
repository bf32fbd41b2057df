package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pantry/internal/model"
)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, text string) ([]model.ItemDraft, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ItemDraft), args.Error(1)
}
