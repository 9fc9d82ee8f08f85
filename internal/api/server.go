package api

import (
	"net/http"

	"github.com/ckoon-infopro/rxdb-backend/internal/replication"
	"github.com/ckoon-infopro/rxdb-backend/internal/storage"
)

type Server struct {
	engine *replication.Service
	mux    *http.ServeMux
}

func NewServer(engine *replication.Service) *Server {
	s := &Server{
		engine: engine,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Replication Operations
	s.mux.HandleFunc("GET /api/replicate/pull", s.handlePull)
	s.mux.HandleFunc("POST /api/replicate/push", s.handlePush)
	s.mux.HandleFunc("GET /api/replicate/checkpoint", s.handleCheckpoint)

	// Health Check
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// flattenDocument renders a stored document as the wire shape: the
// payload with id and updatedAt injected.
func flattenDocument(doc *storage.Document) Document {
	if doc == nil {
		return nil
	}
	flat := make(Document, len(doc.Data)+2)
	for k, v := range doc.Data {
		flat[k] = v
	}
	flat["id"] = doc.Id
	flat["updatedAt"] = doc.UpdatedAt
	return flat
}
