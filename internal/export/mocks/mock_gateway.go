package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Export(ctx context.Context, documentID, documentPath string) (string, error) {
	args := m.Called(ctx, documentID, documentPath)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) FetchArtifact(ctx context.Context, documentID string) ([]byte, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
