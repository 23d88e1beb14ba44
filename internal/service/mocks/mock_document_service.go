package mocks

import (
	"context"

	"docflow/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Create(ctx context.Context, templateName string, variables map[string]string) (*model.Document, error) {
	args := m.Called(ctx, templateName, variables)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Sign(ctx context.Context, id, signerID, signerName string) bool {
	args := m.Called(ctx, id, signerID, signerName)
	return args.Bool(0)
}

func (m *MockDocumentService) Finalize(ctx context.Context, id string) bool {
	args := m.Called(ctx, id)
	return args.Bool(0)
}

func (m *MockDocumentService) ResolvePath(ctx context.Context, id string) string {
	args := m.Called(ctx, id)
	return args.String(0)
}

func (m *MockDocumentService) List(ctx context.Context) ([]model.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}
