package storage

import (
	"github.com/ckoon-infopro/rxdb-backend/internal/storage/types"
)

// Re-exported so most callers only import this package.
type (
	Document      = types.Document
	DocumentStore = types.DocumentStore
)
