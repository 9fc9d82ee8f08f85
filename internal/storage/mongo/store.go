// Package mongo provides a DocumentStore backed by MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ckoon-infopro/rxdb-backend/internal/storage/types"
	"github.com/ckoon-infopro/rxdb-backend/pkg/model"
)

type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func Open(ctx context.Context, uri string, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{
		client: client,
		coll:   client.Database(dbName).Collection("documents"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	// Compound index matching the replication scan order.
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*types.Document, error) {
	var doc types.Document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return &doc, nil
}

func (s *Store) Upsert(ctx context.Context, doc *types.Document) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": doc.Id},
		doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.Id, err)
	}
	return nil
}

func (s *Store) ScanAfter(ctx context.Context, updatedAt int64, id string, limit int) ([]*types.Document, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"updated_at": bson.M{"$gt": updatedAt}},
		bson.M{"updated_at": updatedAt, "_id": bson.M{"$gt": id}},
	}}
	return s.scan(ctx, filter, limit)
}

func (s *Store) ScanAll(ctx context.Context, limit int) ([]*types.Document, error) {
	return s.scan(ctx, bson.M{}, limit)
}

func (s *Store) scan(ctx context.Context, filter bson.M, limit int) ([]*types.Document, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	defer cur.Close(ctx)

	docs := make([]*types.Document, 0)
	for cur.Next(ctx) {
		var doc types.Document
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		docs = append(docs, &doc)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	return docs, nil
}

func (s *Store) Latest(ctx context.Context) (*types.Document, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}})

	var doc types.Document
	err := s.coll.FindOne(ctx, bson.M{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrEmptyStore
	}
	if err != nil {
		return nil, fmt.Errorf("latest document: %w", err)
	}
	return &doc, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
