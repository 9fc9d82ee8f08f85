// Package events publishes document change events to NATS JetStream
// for downstream consumers (webhook workers, indexers). Delivery is
// best-effort fan-out; replication correctness never depends on it.
package events

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/zeebo/blake3"

	"github.com/ckoon-infopro/rxdb-backend/internal/storage"
)

const (
	streamName    = "DOCUMENTS"
	subjectPrefix = "documents.changes."
)

// ChangeEvent is the message emitted for each document applied by a push.
type ChangeEvent struct {
	// EventId is a deterministic hash of (docId, updatedAt) so
	// consumers can dedupe redeliveries.
	EventId   string                 `json:"eventId"`
	BatchId   string                 `json:"batchId"`
	DocId     string                 `json:"docId"`
	UpdatedAt int64                  `json:"updatedAt"`
	Data      map[string]interface{} `json:"data"`
}

// NatsPublisher implements replication.ChangePublisher on JetStream.
type NatsPublisher struct {
	js jetstream.JetStream
}

func NewNatsPublisher(ctx context.Context, nc *nats.Conn) (*NatsPublisher, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	// Ensure the stream exists. In production streams should be managed
	// by migration tooling; this keeps development self-contained.
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{subjectPrefix + ">"},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return &NatsPublisher{js: js}, nil
}

// PublishChanges emits one event per applied document. Each publish is
// retried briefly with exponential backoff; failures are logged and
// dropped so a bus outage never fails the push that produced them.
func (p *NatsPublisher) PublishChanges(ctx context.Context, batchId string, docs []*storage.Document) {
	for _, doc := range docs {
		event := ChangeEvent{
			EventId:   EventId(doc.Id, doc.UpdatedAt),
			BatchId:   batchId,
			DocId:     doc.Id,
			UpdatedAt: doc.UpdatedAt,
			Data:      doc.Data,
		}
		if err := p.publish(ctx, event); err != nil {
			log.Printf("[Events] Dropping change event for %s: %v", doc.Id, err)
		}
	}
}

func (p *NatsPublisher) publish(ctx context.Context, event ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	subject := subjectPrefix + event.DocId

	policy := backoff.WithContext(backoff.WithMaxRetries(
		backoff.NewExponentialBackOff(backoff.WithInitialInterval(50*time.Millisecond)), 3), ctx)

	return backoff.Retry(func() error {
		_, err := p.js.Publish(ctx, subject, payload,
			jetstream.WithMsgID(event.EventId))
		return err
	}, policy)
}

// EventId derives the deterministic event id for a document write.
func EventId(docId string, updatedAt int64) string {
	hash := blake3.Sum256([]byte(fmt.Sprintf("%s:%d", docId, updatedAt)))
	return hex.EncodeToString(hash[:16])
}
