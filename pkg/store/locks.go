package store

import (
	"hash/fnv"
	"sync"
)

// keyLocks is a sharded registry of per-key mutexes. Every read-modify-
// write sequence on a key must run under that key's lock or a concurrent
// writer can silently drop the intermediate state (lost update). Shards
// bound the map sizes; locks are never removed, which is acceptable for
// the key cardinality of a single deployment.
type keyLocks struct {
	shards [lockShards]struct {
		mu sync.Mutex
		m  map[string]*sync.Mutex
	}
}

const lockShards = 64

var locks keyLocks

func (kl *keyLocks) get(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	s := &kl.shards[h.Sum32()%lockShards]
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = make(map[string]*sync.Mutex)
	}
	if l, ok := s.m[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.m[key] = l
	return l
}

// WithKeyLock runs fn while holding the serialization point for key. It
// admits one in-flight read-modify-write per key; callers composing a
// multi-key batch lock the key whose invariant the batch protects.
func WithKeyLock(key string, fn func() error) error {
	l := locks.get(key)
	l.Lock()
	defer l.Unlock()
	return fn()
}
