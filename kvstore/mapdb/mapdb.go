// Package mapdb provides a map implementation of a key value store.
// It offers a lightweight drop-in replacement of kvstore.KVStore for tests or for side stores
// that do not need to survive the process.
package mapdb

import (
	"github.com/roboware/serialkit/kvstore"
	"github.com/roboware/serialkit/runtime/syncutils"

	"go.uber.org/atomic"
)

// mapDB is a simple implementation of KVStore using a map.
type mapDB struct {
	syncutils.RWMutex
	m      *syncedKVMap
	realm  []byte
	closed *atomic.Bool
}

// NewMapDB creates a kvstore.KVStore implementation purely based on a go map.
func NewMapDB() kvstore.KVStore {
	return &mapDB{
		m:      &syncedKVMap{m: make(map[string][]byte)},
		closed: atomic.NewBool(false),
	}
}

func (s *mapDB) WithRealm(realm kvstore.Realm) (kvstore.KVStore, error) {
	if s.closed.Load() {
		return nil, kvstore.ErrStoreClosed
	}

	return &mapDB{
		m:      s.m, // use the same underlying map
		realm:  kvstore.ConcatBytes(realm),
		closed: s.closed,
	}, nil
}

func (s *mapDB) Realm() kvstore.Realm {
	return kvstore.ConcatBytes(s.realm)
}

// Iterate iterates over all keys and values with the provided prefix. You can pass kvstore.EmptyPrefix to iterate over all keys and values.
func (s *mapDB) Iterate(prefix kvstore.KeyPrefix, consumerFunc kvstore.IteratorKeyValueConsumerFunc) error {
	if s.closed.Load() {
		return kvstore.ErrStoreClosed
	}

	s.m.iterate(s.realm, prefix, consumerFunc)

	return nil
}

// IterateKeys iterates over all keys with the provided prefix. You can pass kvstore.EmptyPrefix to iterate over all keys.
func (s *mapDB) IterateKeys(prefix kvstore.KeyPrefix, consumerFunc kvstore.IteratorKeyConsumerFunc) error {
	if s.closed.Load() {
		return kvstore.ErrStoreClosed
	}

	s.m.iterateKeys(s.realm, prefix, consumerFunc)

	return nil
}

func (s *mapDB) Clear() error {
	if s.closed.Load() {
		return kvstore.ErrStoreClosed
	}

	s.Lock()
	defer s.Unlock()

	s.m.deletePrefix(s.realm)

	return nil
}

func (s *mapDB) Get(key kvstore.Key) (kvstore.Value, error) {
	if s.closed.Load() {
		return nil, kvstore.ErrStoreClosed
	}

	s.RLock()
	defer s.RUnlock()

	value, contains := s.m.get(kvstore.ConcatBytes(s.realm, key))
	if !contains {
		return nil, kvstore.ErrKeyNotFound
	}

	return value, nil
}

func (s *mapDB) Set(key kvstore.Key, value kvstore.Value) error {
	if s.closed.Load() {
		return kvstore.ErrStoreClosed
	}

	s.Lock()
	defer s.Unlock()

	s.m.set(kvstore.ConcatBytes(s.realm, key), value)

	return nil
}

func (s *mapDB) Has(key kvstore.Key) (bool, error) {
	if s.closed.Load() {
		return false, kvstore.ErrStoreClosed
	}

	s.RLock()
	defer s.RUnlock()

	return s.m.has(kvstore.ConcatBytes(s.realm, key)), nil
}

func (s *mapDB) Delete(key kvstore.Key) error {
	if s.closed.Load() {
		return kvstore.ErrStoreClosed
	}

	s.Lock()
	defer s.Unlock()

	s.m.delete(kvstore.ConcatBytes(s.realm, key))

	return nil
}

func (s *mapDB) DeletePrefix(prefix kvstore.KeyPrefix) error {
	if s.closed.Load() {
		return kvstore.ErrStoreClosed
	}

	s.Lock()
	defer s.Unlock()

	s.m.deletePrefix(kvstore.ConcatBytes(s.realm, prefix))

	return nil
}

func (s *mapDB) Flush() error {
	if s.closed.Load() {
		return kvstore.ErrStoreClosed
	}

	return nil
}

func (s *mapDB) Close() error {
	s.closed.Store(true)

	return nil
}

var _ kvstore.KVStore = &mapDB{}
