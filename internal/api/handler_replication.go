package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ckoon-infopro/rxdb-backend/internal/replication"
)

func (s *Server) handlePull(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Checkpoint parts are optional and tolerant of garbage: a client
	// with no (or a broken) checkpoint starts an initial sync.
	cp := replication.CheckpointFromParts(q.Get("updatedAt"), q.Get("id"))

	limit := 0
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	docs, next, err := s.engine.Pull(r.Context(), cp, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := PullResponse{
		Documents:  make([]Document, len(docs)),
		Checkpoint: next.Encode(),
	}
	for i, doc := range docs {
		resp.Documents[i] = flattenDocument(doc)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	var req PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conflicts, err := s.engine.Push(r.Context(), req.ChangeRows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conflicts)
}

func (s *Server) handleCheckpoint(w http.ResponseWriter, r *http.Request) {
	token, err := s.engine.CurrentCheckpoint(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(CheckpointResponse{Checkpoint: token})
}
