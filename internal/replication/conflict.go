package replication

import (
	"strconv"

	"github.com/ckoon-infopro/rxdb-backend/internal/storage"
)

// Conflicts decides whether a proposed change must be rejected, given
// the server's current document (nil if absent) and the master state
// the client assumed (nil if the client believed the document was new).
//
// The check is a pure optimistic-concurrency comparison of version
// stamps; document content is never diffed. A missing or unparsable
// assumed updatedAt never equals a stored one.
func Conflicts(current *storage.Document, assumed map[string]interface{}) bool {
	switch {
	case current == nil && assumed == nil:
		// Genuine first write.
		return false
	case current == nil || assumed == nil:
		// Client assumed a state that is not there, or assumed new
		// when the document exists.
		return true
	}

	assumedAt, ok := timestampValue(assumed["updatedAt"])
	return !ok || assumedAt != current.UpdatedAt
}

// timestampValue extracts an updatedAt stamp from a decoded JSON
// value. Clients send it as a number or a numeric string.
func timestampValue(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	case string:
		ts, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, false
		}
		return ts, true
	default:
		return 0, false
	}
}
