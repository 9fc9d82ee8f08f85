package replication

import (
	"strconv"
	"strings"
)

// Checkpoint marks the last (updatedAt, id) position a client has
// observed. The zero value is the sentinel meaning "beginning of time".
type Checkpoint struct {
	LastUpdatedAt int64
	LastDocId     string
}

// IsZero reports whether the checkpoint is the sentinel.
func (c Checkpoint) IsZero() bool {
	return c.LastUpdatedAt == 0 && c.LastDocId == ""
}

// Before reports whether c orders strictly before other under the
// replication order: primary key updatedAt, tiebreak id.
func (c Checkpoint) Before(other Checkpoint) bool {
	if c.LastUpdatedAt != other.LastUpdatedAt {
		return c.LastUpdatedAt < other.LastUpdatedAt
	}
	return c.LastDocId < other.LastDocId
}

// Encode renders the checkpoint as the wire token "<updatedAt>_<docId>".
func (c Checkpoint) Encode() string {
	return strconv.FormatInt(c.LastUpdatedAt, 10) + "_" + c.LastDocId
}

// DecodeCheckpoint parses a wire token. It never fails: a missing or
// malformed token decodes to the sentinel, so stale or garbage
// checkpoints from clients simply restart the sync from the beginning.
func DecodeCheckpoint(token string) Checkpoint {
	if token == "" {
		return Checkpoint{}
	}

	ts := token
	id := ""
	if idx := strings.IndexByte(token, '_'); idx >= 0 {
		ts = token[:idx]
		id = token[idx+1:]
	}

	updatedAt, err := strconv.ParseInt(ts, 10, 64)
	if err != nil || updatedAt < 0 {
		return Checkpoint{}
	}
	return Checkpoint{LastUpdatedAt: updatedAt, LastDocId: id}
}

// CheckpointFromParts builds a checkpoint from the separate query
// parameters clients send on pull. Both parts are optional and
// tolerant of garbage, like DecodeCheckpoint.
func CheckpointFromParts(updatedAt string, docId string) Checkpoint {
	cp := Checkpoint{LastDocId: docId}
	if updatedAt == "" {
		return cp
	}
	ts, err := strconv.ParseInt(updatedAt, 10, 64)
	if err != nil || ts < 0 {
		return Checkpoint{LastDocId: docId}
	}
	cp.LastUpdatedAt = ts
	return cp
}
