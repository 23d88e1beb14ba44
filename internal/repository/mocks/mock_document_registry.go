package mocks

import (
	"context"

	"docflow/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockDocumentRegistry struct {
	mock.Mock
}

func (m *MockDocumentRegistry) Insert(ctx context.Context, doc *model.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRegistry) FindByID(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRegistry) Update(ctx context.Context, id string, fn func(*model.Document) error) error {
	args := m.Called(ctx, id, fn)
	return args.Error(0)
}

func (m *MockDocumentRegistry) List(ctx context.Context) ([]model.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}
