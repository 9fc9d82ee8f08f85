package replication

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ckoon-infopro/rxdb-backend/internal/storage"
)

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*storage.Document, error) {
	args := m.Called(ctx, id)
	if doc := args.Get(0); doc != nil {
		return doc.(*storage.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentStore) Upsert(ctx context.Context, doc *storage.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentStore) ScanAfter(ctx context.Context, updatedAt int64, id string, limit int) ([]*storage.Document, error) {
	args := m.Called(ctx, updatedAt, id, limit)
	if docs := args.Get(0); docs != nil {
		return docs.([]*storage.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentStore) ScanAll(ctx context.Context, limit int) ([]*storage.Document, error) {
	args := m.Called(ctx, limit)
	if docs := args.Get(0); docs != nil {
		return docs.([]*storage.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentStore) Latest(ctx context.Context) (*storage.Document, error) {
	args := m.Called(ctx)
	if doc := args.Get(0); doc != nil {
		return doc.(*storage.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentStore) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishChanges(ctx context.Context, batchId string, docs []*storage.Document) {
	m.Called(ctx, batchId, docs)
}
