// Package kvstore defines the key-value store used as a side store for spilled payloads.
package kvstore

import "github.com/roboware/serialkit/ierrors"

var (
	// ErrKeyNotFound is returned when an op. doesn't find the given key.
	ErrKeyNotFound = ierrors.New("key not found")
	// ErrStoreClosed is returned when an op accesses the kvstore but it was already closed.
	ErrStoreClosed = ierrors.New("trying to access closed kvstore")
)

type Realm = []byte
type KeyPrefix = []byte
type Key = []byte
type Value = []byte

// EmptyPrefix is the prefix that matches every key.
var EmptyPrefix = KeyPrefix{}

// IteratorKeyValueConsumerFunc is a consumer function for an iterating function which iterates over keys and values.
// They key must not be prefixed with the realm.
// Returning false from this function indicates to abort the iteration.
type IteratorKeyValueConsumerFunc func(key Key, value Value) bool

// IteratorKeyConsumerFunc is a consumer function for an iterating function which iterates only over keys.
// They key must not be prefixed with the realm.
// Returning false from this function indicates to abort the iteration.
type IteratorKeyConsumerFunc func(key Key) bool

// KVStore persists, deletes and retrieves data.
type KVStore interface {
	// WithRealm is a factory method for using the same underlying storage with a different realm.
	WithRealm(realm Realm) (KVStore, error)

	// Realm returns the configured realm.
	Realm() Realm

	// Iterate iterates over all keys and values with the provided prefix in ascending key order.
	Iterate(prefix KeyPrefix, kvConsumerFunc IteratorKeyValueConsumerFunc) error

	// IterateKeys iterates over all keys with the provided prefix in ascending key order.
	IterateKeys(prefix KeyPrefix, consumerFunc IteratorKeyConsumerFunc) error

	// Clear clears the realm.
	Clear() error

	// Get gets the given key or an error wrapping ErrKeyNotFound if it doesn't exist.
	Get(key Key) (value Value, err error)

	// Set sets the given key and value.
	Set(key Key, value Value) error

	// Has checks whether the given key exists.
	Has(key Key) (bool, error)

	// Delete deletes the entry for the given key.
	Delete(key Key) error

	// DeletePrefix deletes all the entries matching the given key prefix.
	DeletePrefix(prefix KeyPrefix) error

	// Flush persists all outstanding write operations to disc.
	Flush() error

	// Close closes the database file handles.
	Close() error
}

// ConcatBytes returns a new slice holding all the given slices one after another.
func ConcatBytes(params ...[]byte) []byte {
	length := 0
	for _, param := range params {
		length += len(param)
	}

	result := make([]byte, 0, length)
	for _, param := range params {
		result = append(result, param...)
	}

	return result
}
