package replication

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckpoint_Encode(t *testing.T) {
	assert.Equal(t, "0_", Checkpoint{}.Encode())
	assert.Equal(t, "1200_doc-7", Checkpoint{LastUpdatedAt: 1200, LastDocId: "doc-7"}.Encode())
}

func TestDecodeCheckpoint(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected Checkpoint
	}{
		{"Empty", "", Checkpoint{}},
		{"Sentinel", "0_", Checkpoint{}},
		{"Valid", "1200_doc-7", Checkpoint{LastUpdatedAt: 1200, LastDocId: "doc-7"}},
		{"IdWithUnderscore", "55_a_b", Checkpoint{LastUpdatedAt: 55, LastDocId: "a_b"}},
		{"TimestampOnly", "123", Checkpoint{LastUpdatedAt: 123}},
		{"Garbage", "not-a-checkpoint", Checkpoint{}},
		{"GarbageTimestamp", "abc_doc-1", Checkpoint{}},
		{"NegativeTimestamp", "-5_doc-1", Checkpoint{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DecodeCheckpoint(tc.token))
		})
	}
}

func TestCheckpoint_Before(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Checkpoint
		before bool
	}{
		{"SentinelBeforeAny", Checkpoint{}, Checkpoint{LastUpdatedAt: 1}, true},
		{"OlderTimestamp", Checkpoint{LastUpdatedAt: 100, LastDocId: "z"}, Checkpoint{LastUpdatedAt: 200, LastDocId: "a"}, true},
		{"IdTiebreak", Checkpoint{LastUpdatedAt: 100, LastDocId: "a"}, Checkpoint{LastUpdatedAt: 100, LastDocId: "b"}, true},
		{"Equal", Checkpoint{LastUpdatedAt: 100, LastDocId: "a"}, Checkpoint{LastUpdatedAt: 100, LastDocId: "a"}, false},
		{"NewerTimestamp", Checkpoint{LastUpdatedAt: 200, LastDocId: "a"}, Checkpoint{LastUpdatedAt: 100, LastDocId: "z"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.before, tc.a.Before(tc.b))
		})
	}
}

func TestDecodeCheckpoint_RoundTrip(t *testing.T) {
	cp := Checkpoint{LastUpdatedAt: 987654321, LastDocId: "user_42"}
	assert.Equal(t, cp, DecodeCheckpoint(cp.Encode()))
}

func TestCheckpointFromParts(t *testing.T) {
	tests := []struct {
		name      string
		updatedAt string
		docId     string
		expected  Checkpoint
	}{
		{"Empty", "", "", Checkpoint{}},
		{"Both", "100", "doc-1", Checkpoint{LastUpdatedAt: 100, LastDocId: "doc-1"}},
		{"TimestampOnly", "100", "", Checkpoint{LastUpdatedAt: 100}},
		{"GarbageTimestampKeepsId", "abc", "doc-1", Checkpoint{LastDocId: "doc-1"}},
		{"NegativeTimestamp", "-1", "doc-1", Checkpoint{LastDocId: "doc-1"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CheckpointFromParts(tc.updatedAt, tc.docId))
		})
	}
}
