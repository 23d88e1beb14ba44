package mocks

import (
	"context"

	"docflow/internal/audit"

	"github.com/stretchr/testify/mock"
)

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Record(ctx context.Context, ev audit.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}
