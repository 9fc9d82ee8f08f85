package services

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/nats-io/nats.go"

	"github.com/ckoon-infopro/rxdb-backend/internal/api"
	"github.com/ckoon-infopro/rxdb-backend/internal/cache"
	"github.com/ckoon-infopro/rxdb-backend/internal/config"
	"github.com/ckoon-infopro/rxdb-backend/internal/events"
	"github.com/ckoon-infopro/rxdb-backend/internal/replication"
	"github.com/ckoon-infopro/rxdb-backend/internal/storage"
)

// Manager wires the document store, the optional cache and event bus,
// the replication engine and the HTTP server, and owns their shutdown.
type Manager struct {
	cfg *config.Config

	store      storage.DocumentStore
	engine     *replication.Service
	httpServer *http.Server
	natsConn   *nats.Conn
	redisCache *cache.CheckpointCache
}

func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg}
}

// Start initializes all components and begins serving HTTP.
func (m *Manager) Start(ctx context.Context) error {
	store, err := storage.Open(ctx, m.cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	m.store = store
	log.Printf("[Services] Storage backend: %s", m.cfg.Storage.Backend)

	opts := make([]replication.Option, 0, 2)

	if m.cfg.Cache.RedisAddr != "" {
		m.redisCache = cache.NewCheckpointCache(redis.NewClient(&redis.Options{
			Addr: m.cfg.Cache.RedisAddr,
		}))
		opts = append(opts, replication.WithCheckpointCache(m.redisCache))
		log.Printf("[Services] Checkpoint cache: redis at %s", m.cfg.Cache.RedisAddr)
	}

	if m.cfg.Events.NatsURL != "" {
		nc, err := nats.Connect(m.cfg.Events.NatsURL)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		m.natsConn = nc

		publisher, err := events.NewNatsPublisher(ctx, nc)
		if err != nil {
			return fmt.Errorf("create publisher: %w", err)
		}
		opts = append(opts, replication.WithPublisher(publisher))
		log.Printf("[Services] Change events: nats at %s", m.cfg.Events.NatsURL)
	}

	m.engine = replication.NewService(store, opts...)

	m.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", m.cfg.API.Port),
		Handler: api.NewServer(m.engine),
	}

	go func() {
		log.Printf("[Services] API listening on %s", m.httpServer.Addr)
		if err := m.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Services] API server failed: %v", err)
		}
	}()

	return nil
}
