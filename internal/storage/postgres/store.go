// Package postgres provides a DocumentStore backed by PostgreSQL,
// storing payloads in a jsonb column.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/ckoon-infopro/rxdb-backend/internal/storage/types"
	"github.com/ckoon-infopro/rxdb-backend/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	updated_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_updated_at_id ON documents (updated_at, id);
`

type Store struct {
	db *sqlx.DB
}

// row mirrors the documents table; data stays raw until decoded.
type row struct {
	Id        string          `db:"id"`
	Data      json.RawMessage `db:"data"`
	UpdatedAt int64           `db:"updated_at"`
}

func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection. Used by tests.
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id string) (*types.Document, error) {
	var r row
	err := s.db.GetContext(ctx, &r,
		`SELECT id, data, updated_at FROM documents WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return r.toDocument()
}

func (s *Store) Upsert(ctx context.Context, doc *types.Document) error {
	data, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.Id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, data, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		doc.Id, data, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.Id, err)
	}
	return nil
}

func (s *Store) ScanAfter(ctx context.Context, updatedAt int64, id string, limit int) ([]*types.Document, error) {
	var rows []row
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, data, updated_at FROM documents
		 WHERE updated_at > $1 OR (updated_at = $1 AND id > $2)
		 ORDER BY updated_at ASC, id ASC
		 LIMIT $3`, updatedAt, id, limit)
	if err != nil {
		return nil, fmt.Errorf("scan after checkpoint: %w", err)
	}
	return toDocuments(rows)
}

func (s *Store) ScanAll(ctx context.Context, limit int) ([]*types.Document, error) {
	var rows []row
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, data, updated_at FROM documents
		 ORDER BY updated_at ASC, id ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("scan all: %w", err)
	}
	return toDocuments(rows)
}

func (s *Store) Latest(ctx context.Context) (*types.Document, error) {
	var r row
	err := s.db.GetContext(ctx, &r,
		`SELECT id, data, updated_at FROM documents
		 ORDER BY updated_at DESC, id DESC
		 LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrEmptyStore
	}
	if err != nil {
		return nil, fmt.Errorf("latest document: %w", err)
	}
	return r.toDocument()
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

func (r *row) toDocument() (*types.Document, error) {
	var data map[string]interface{}
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &data); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", r.Id, err)
		}
	}
	return &types.Document{Id: r.Id, UpdatedAt: r.UpdatedAt, Data: data}, nil
}

func toDocuments(rows []row) ([]*types.Document, error) {
	docs := make([]*types.Document, 0, len(rows))
	for i := range rows {
		doc, err := rows[i].toDocument()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
