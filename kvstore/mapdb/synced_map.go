package mapdb

import (
	"sort"
	"strings"

	"github.com/roboware/serialkit/kvstore"
	"github.com/roboware/serialkit/runtime/syncutils"
)

type syncedKVMap struct {
	syncutils.RWMutex
	m map[string][]byte
}

func (s *syncedKVMap) has(key []byte) bool {
	s.RLock()
	defer s.RUnlock()
	_, ok := s.m[string(key)]

	return ok
}

func (s *syncedKVMap) get(key []byte) ([]byte, bool) {
	s.RLock()
	defer s.RUnlock()
	value, ok := s.m[string(key)]
	if !ok {
		return nil, false
	}

	// always copy the value
	return kvstore.ConcatBytes(value), true
}

func (s *syncedKVMap) set(key, value []byte) {
	s.Lock()
	defer s.Unlock()

	// always copy the value
	s.m[string(key)] = kvstore.ConcatBytes(value)
}

func (s *syncedKVMap) delete(key []byte) {
	s.Lock()
	defer s.Unlock()
	delete(s.m, string(key))
}

func (s *syncedKVMap) deletePrefix(keyPrefix []byte) {
	s.Lock()
	defer s.Unlock()
	prefix := string(keyPrefix)
	for key := range s.m {
		if strings.HasPrefix(key, prefix) {
			delete(s.m, key)
		}
	}
}

// snapshot returns the sorted keys with the given prefix together with copies of their values.
func (s *syncedKVMap) snapshot(realm []byte, keyPrefix []byte) ([]string, map[string][]byte) {
	s.RLock()
	defer s.RUnlock()

	prefix := string(kvstore.ConcatBytes(realm, keyPrefix))
	keys := make([]string, 0)
	copiedElements := make(map[string][]byte)
	for key, value := range s.m {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
			copiedElements[key] = kvstore.ConcatBytes(value)
		}
	}
	sort.Strings(keys)

	return keys, copiedElements
}

func (s *syncedKVMap) iterate(realm []byte, keyPrefix []byte, consume func(key, value []byte) bool) {
	keys, copiedElements := s.snapshot(realm, keyPrefix)

	// iterate through found elements
	for _, key := range keys {
		if !consume([]byte(key)[len(realm):], copiedElements[key]) {
			break
		}
	}
}

func (s *syncedKVMap) iterateKeys(realm []byte, keyPrefix []byte, consume func(key []byte) bool) {
	keys, _ := s.snapshot(realm, keyPrefix)

	for _, key := range keys {
		if !consume([]byte(key)[len(realm):]) {
			break
		}
	}
}
