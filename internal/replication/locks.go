package replication

import (
	"hash/fnv"
	"sync"
)

const lockShards = 256

// keyedLocks is a partitioned lock table serializing the
// read-decide-write sequence per document id. Pushes on ids that hash
// to different shards proceed fully in parallel.
type keyedLocks struct {
	shards [lockShards]sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{}
}

func (l *keyedLocks) Lock(id string) func() {
	shard := &l.shards[shardIndex(id)]
	shard.Lock()
	return shard.Unlock
}

func shardIndex(id string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(id))
	return h.Sum32() % lockShards
}
