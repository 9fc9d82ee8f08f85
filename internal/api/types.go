package api

import (
	"github.com/ckoon-infopro/rxdb-backend/internal/replication"
)

// Document is the user facing document shape, a JSON object.
//
//	"id" field is reserved for the document ID.
//	"updatedAt" field is reserved for the server write timestamp.
type Document map[string]interface{}

type PullResponse struct {
	Documents  []Document `json:"documents"`
	Checkpoint string     `json:"checkpoint"`
}

type PushRequest struct {
	ChangeRows []replication.ChangeRow `json:"changeRows"`
}

type CheckpointResponse struct {
	Checkpoint string `json:"checkpoint"`
}
