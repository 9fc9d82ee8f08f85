package services

import (
	"context"
	"log"
)

func (m *Manager) Shutdown(ctx context.Context) {
	if m.httpServer != nil {
		log.Println("Stopping API server...")
		if err := m.httpServer.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down API server: %v", err)
		}
	}

	if m.natsConn != nil {
		log.Println("Closing NATS connection...")
		m.natsConn.Close()
	}

	if m.redisCache != nil {
		if err := m.redisCache.Close(); err != nil {
			log.Printf("Error closing checkpoint cache: %v", err)
		}
	}

	if m.store != nil {
		if err := m.store.Close(ctx); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}
}
