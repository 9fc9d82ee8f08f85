// Package replication implements the checkpoint-based pull/push
// protocol engine: cursor-stable pull pagination, per-document
// optimistic conflict detection on push, and checkpoint derivation.
package replication

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ckoon-infopro/rxdb-backend/internal/storage"
	"github.com/ckoon-infopro/rxdb-backend/pkg/model"
)

const (
	DefaultPullLimit = 10
	MaxPullLimit     = 1000
)

// ChangeRow is one client-proposed document mutation plus the master
// state the client last observed for it.
type ChangeRow struct {
	NewDocumentState   map[string]interface{} `json:"newDocumentState"`
	AssumedMasterState map[string]interface{} `json:"assumedMasterState,omitempty"`
}

// ChangePublisher receives the documents applied by a push. Delivery
// is best-effort; the engine never fails a push over it.
type ChangePublisher interface {
	PublishChanges(ctx context.Context, batchId string, docs []*storage.Document)
}

// CheckpointCache is an advisory cache for the latest checkpoint
// token. Misses and errors fall through to the store.
type CheckpointCache interface {
	GetToken(ctx context.Context) (string, bool)
	SetToken(ctx context.Context, token string)
}

type Service struct {
	store     storage.DocumentStore
	locks     *keyedLocks
	publisher ChangePublisher
	cache     CheckpointCache

	// lastStamp guards batch timestamps against clock granularity:
	// two batches on this server never share an updatedAt.
	lastStamp atomic.Int64

	// cacheMu serializes checkpoint cache writes so a push that
	// finishes late can never regress the cached token below a
	// position already written through.
	cacheMu   sync.Mutex
	cacheHead Checkpoint

	now func() int64
}

type Option func(*Service)

// WithPublisher wires a change publisher for applied pushes.
func WithPublisher(p ChangePublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithCheckpointCache wires an advisory checkpoint cache.
func WithCheckpointCache(c CheckpointCache) Option {
	return func(s *Service) { s.cache = c }
}

func withClock(now func() int64) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store storage.DocumentStore, opts ...Option) *Service {
	s := &Service{
		store: store,
		locks: newKeyedLocks(),
		now:   func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pull returns the next page of documents changed after the checkpoint,
// ordered by (updatedAt, id), and the checkpoint following that page.
// An empty page returns the input checkpoint unchanged, so pulling at
// the head of the store is idempotent.
func (s *Service) Pull(ctx context.Context, cp Checkpoint, limit int) ([]*storage.Document, Checkpoint, error) {
	if limit <= 0 {
		limit = DefaultPullLimit
	}
	if limit > MaxPullLimit {
		limit = MaxPullLimit
	}

	var (
		docs []*storage.Document
		err  error
	)
	if cp.IsZero() {
		docs, err = s.store.ScanAll(ctx, limit)
	} else {
		docs, err = s.store.ScanAfter(ctx, cp.LastUpdatedAt, cp.LastDocId, limit)
	}
	if err != nil {
		return nil, cp, fmt.Errorf("pull scan: %w", err)
	}

	next := cp
	if len(docs) > 0 {
		last := docs[len(docs)-1]
		next = Checkpoint{LastUpdatedAt: last.UpdatedAt, LastDocId: last.Id}
	}
	return docs, next, nil
}

// Push applies the non-conflicting change rows and returns the
// conflicts: for each rejected row, the server's current state of the
// document (empty when the client assumed a state that no longer
// exists). Malformed rows are reported as error entries and never
// abort the rest of the batch. All applied rows share one
// server-assigned timestamp.
func (s *Service) Push(ctx context.Context, rows []ChangeRow) ([]map[string]interface{}, error) {
	conflicts := make([]map[string]interface{}, 0)
	applied := make([]*storage.Document, 0, len(rows))
	batchStamp := s.nextBatchStamp()

	for _, row := range rows {
		docId, ok := changeRowId(row.NewDocumentState)
		if !ok {
			log.Printf("[Replication] Rejecting malformed change row: %v", row.NewDocumentState)
			conflicts = append(conflicts, errorEntry(model.ErrMalformedChange.Error(), row.NewDocumentState))
			continue
		}

		entry, doc, err := s.pushOne(ctx, docId, row, batchStamp)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			conflicts = append(conflicts, entry)
		}
		if doc != nil {
			applied = append(applied, doc)
		}
	}

	if len(applied) > 0 {
		last := applied[len(applied)-1]
		for _, doc := range applied {
			if doc.Id > last.Id {
				last = doc
			}
		}
		s.cacheToken(ctx, Checkpoint{LastUpdatedAt: last.UpdatedAt, LastDocId: last.Id})

		if s.publisher != nil {
			s.publisher.PublishChanges(ctx, uuid.NewString(), applied)
		}
	}
	return conflicts, nil
}

// pushOne runs the read-decide-write sequence for a single row under
// the per-document lock. It returns a conflict entry, the applied
// document, or a store failure.
func (s *Service) pushOne(ctx context.Context, docId string, row ChangeRow, stamp int64) (map[string]interface{}, *storage.Document, error) {
	unlock := s.locks.Lock(docId)
	defer unlock()

	current, err := s.store.Get(ctx, docId)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, nil, fmt.Errorf("push read %s: %w", docId, err)
	}

	if Conflicts(current, row.AssumedMasterState) {
		log.Printf("[Replication] Conflict for document %s", docId)
		return conflictEntry(current), nil, nil
	}

	doc := &storage.Document{
		Id:        docId,
		UpdatedAt: stamp,
		Data:      stripProtocolFields(row.NewDocumentState),
	}
	if err := s.store.Upsert(ctx, doc); err != nil {
		return nil, nil, fmt.Errorf("push write %s: %w", docId, err)
	}
	return nil, doc, nil
}

// CurrentCheckpoint returns the token for the most recently written
// document, or the sentinel token on an empty store.
func (s *Service) CurrentCheckpoint(ctx context.Context) (string, error) {
	if s.cache != nil {
		if token, ok := s.cache.GetToken(ctx); ok {
			return token, nil
		}
	}

	latest, err := s.store.Latest(ctx)
	if errors.Is(err, model.ErrEmptyStore) {
		return Checkpoint{}.Encode(), nil
	}
	if err != nil {
		return "", fmt.Errorf("current checkpoint: %w", err)
	}

	cp := Checkpoint{LastUpdatedAt: latest.UpdatedAt, LastDocId: latest.Id}
	s.cacheToken(ctx, cp)
	return cp.Encode(), nil
}

// cacheToken writes a checkpoint through to the advisory cache,
// advancing only: a token is never replaced by an older (updatedAt, id)
// position, so checkpoint reads reflect every write that completed
// before them regardless of how concurrent pushes interleave.
func (s *Service) cacheToken(ctx context.Context, cp Checkpoint) {
	if s.cache == nil {
		return
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if !s.cacheHead.Before(cp) {
		return
	}
	s.cacheHead = cp
	s.cache.SetToken(ctx, cp.Encode())
}

// nextBatchStamp returns a timestamp strictly greater than any stamp
// this server has handed out, even within one clock millisecond.
func (s *Service) nextBatchStamp() int64 {
	for {
		last := s.lastStamp.Load()
		stamp := s.now()
		if stamp <= last {
			stamp = last + 1
		}
		if s.lastStamp.CompareAndSwap(last, stamp) {
			return stamp
		}
	}
}

func changeRowId(state map[string]interface{}) (string, bool) {
	if state == nil {
		return "", false
	}
	id, ok := state["id"].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func errorEntry(message string, state map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"error":   message,
		"details": fmt.Sprintf("%v", state),
	}
}

// conflictEntry is the server's current full state: payload plus the
// injected id and updatedAt. When the document does not exist (the
// client assumed a state that was never there or has gone), the entry
// is empty.
func conflictEntry(current *storage.Document) map[string]interface{} {
	entry := make(map[string]interface{})
	if current != nil {
		for k, v := range current.Data {
			entry[k] = v
		}
		entry["id"] = current.Id
		entry["updatedAt"] = current.UpdatedAt
	}
	return entry
}

// stripProtocolFields isolates the application payload from a proposed
// document state by dropping the reserved replication keys.
func stripProtocolFields(state map[string]interface{}) map[string]interface{} {
	data := make(map[string]interface{}, len(state))
	for k, v := range state {
		switch k {
		case "id", "updatedAt", "_rev", "_attachments":
		default:
			data[k] = v
		}
	}
	return data
}
