// Package memory provides an in-process DocumentStore backed by a map.
// It is the default backend and the one the engine tests run against.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ckoon-infopro/rxdb-backend/internal/storage/types"
	"github.com/ckoon-infopro/rxdb-backend/pkg/model"
)

type Store struct {
	mu   sync.RWMutex
	docs map[string]*types.Document
}

func New() *Store {
	return &Store{
		docs: make(map[string]*types.Document),
	}
}

func (s *Store) Get(ctx context.Context, id string) (*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return types.CloneDocument(doc), nil
}

func (s *Store) Upsert(ctx context.Context, doc *types.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[doc.Id] = types.CloneDocument(doc)
	return nil
}

func (s *Store) ScanAfter(ctx context.Context, updatedAt int64, id string, limit int) ([]*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.Document
	for _, doc := range s.docs {
		if types.Less(updatedAt, id, doc.UpdatedAt, doc.Id) {
			out = append(out, types.CloneDocument(doc))
		}
	}
	sortDocs(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ScanAll(ctx context.Context, limit int) ([]*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, types.CloneDocument(doc))
	}
	sortDocs(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Latest(ctx context.Context) (*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *types.Document
	for _, doc := range s.docs {
		if latest == nil || types.Less(latest.UpdatedAt, latest.Id, doc.UpdatedAt, doc.Id) {
			latest = doc
		}
	}
	if latest == nil {
		return nil, model.ErrEmptyStore
	}
	return types.CloneDocument(latest), nil
}

func (s *Store) Close(ctx context.Context) error {
	return nil
}

func sortDocs(docs []*types.Document) {
	sort.Slice(docs, func(i, j int) bool {
		return types.Less(docs[i].UpdatedAt, docs[i].Id, docs[j].UpdatedAt, docs[j].Id)
	})
}
