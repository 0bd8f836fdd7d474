// Package badger implements kvstore.KVStore on top of BadgerDB.
package badger

import (
	"os"

	"github.com/dgraph-io/badger/v2"
	"go.uber.org/atomic"

	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/kvstore"
)

// badgerStore implements the KVStore interface around a BadgerDB instance.
type badgerStore struct {
	instance *badger.DB
	closed   *atomic.Bool
	dbPrefix []byte
}

// New creates a new KVStore with the underlying BadgerDB.
func New(db *badger.DB) kvstore.KVStore {
	return &badgerStore{
		instance: db,
		closed:   atomic.NewBool(false),
	}
}

// CreateDB opens a BadgerDB in the given directory, creating the directory if needed.
// An empty directory opens an in-memory database.
func CreateDB(directory string, optionalOptions ...badger.Options) (*badger.DB, error) {
	var opts badger.Options

	switch {
	case len(optionalOptions) > 0:
		opts = optionalOptions[0]
	case directory == "":
		opts = badger.DefaultOptions("").WithInMemory(true)
	default:
		if err := os.MkdirAll(directory, 0o700); err != nil {
			return nil, ierrors.Wrapf(err, "could not create directory %s", directory)
		}

		opts = badger.DefaultOptions(directory)
		opts.SyncWrites = true
		opts.NumVersionsToKeep = 1
		opts.CompactL0OnClose = true
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, ierrors.Wrap(err, "could not open new DB")
	}

	return db, nil
}

func (s *badgerStore) WithRealm(realm kvstore.Realm) (kvstore.KVStore, error) {
	if s.closed.Load() {
		return nil, kvstore.ErrStoreClosed
	}

	return &badgerStore{
		instance: s.instance,
		closed:   s.closed,
		dbPrefix: kvstore.ConcatBytes(realm),
	}, nil
}

func (s *badgerStore) Realm() []byte {
	return kvstore.ConcatBytes(s.dbPrefix)
}

// builds a key usable for the badger instance using the realm and the given prefix.
func (s *badgerStore) buildKeyPrefix(prefix kvstore.KeyPrefix) kvstore.KeyPrefix {
	return kvstore.ConcatBytes(s.dbPrefix, prefix)
}

// Iterate iterates over all keys and values with the provided prefix. You can pass kvstore.EmptyPrefix to iterate over all keys and values.
func (s *badgerStore) Iterate(prefix kvstore.KeyPrefix, consumerFunc kvstore.IteratorKeyValueConsumerFunc) error {
	if s.closed.Load() {
		return kvstore.ErrStoreClosed
	}

	return s.instance.View(func(txn *badger.Txn) error {
		keyPrefix := s.buildKeyPrefix(prefix)

		iteratorOptions := badger.DefaultIteratorOptions
		iteratorOptions.Prefix = keyPrefix
		iteratorOptions.PrefetchValues = true

		it := txn.NewIterator(iteratorOptions)
		defer it.Close()

		for it.Seek(keyPrefix); it.ValidForPrefix(keyPrefix); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return ierrors.Wrap(err, "failed to copy value")
			}

			if !consumerFunc(item.KeyCopy(nil)[len(s.dbPrefix):], value) {
				break
			}
		}

		return nil
	})
}

// IterateKeys iterates over all keys with the provided prefix. You can pass kvstore.EmptyPrefix to iterate over all keys.
func (s *badgerStore) IterateKeys(prefix kvstore.KeyPrefix, consumerFunc kvstore.IteratorKeyConsumerFunc) error {
	if s.closed.Load() {
		return kvstore.ErrStoreClosed
	}

	return s.instance.View(func(txn *badger.Txn) error {
		keyPrefix := s.buildKeyPrefix(prefix)

		iteratorOptions := badger.DefaultIteratorOptions
		iteratorOptions.Prefix = keyPrefix
		iteratorOptions.PrefetchValues = false

		it := txn.NewIterator(iteratorOptions)
		defer it.Close()

		for it.Seek(keyPrefix); it.ValidForPrefix(keyPrefix); it.Next() {
			if !consumerFunc(it.Item().KeyCopy(nil)[len(s.dbPrefix):]) {
				break
			}
		}

		return nil
	})
}

func (s *badgerStore) Clear() error {
	return s.DeletePrefix(kvstore.EmptyPrefix)
}

func (s *badgerStore) Get(key kvstore.Key) (kvstore.Value, error) {
	if s.closed.Load() {
		return nil, kvstore.ErrStoreClosed
	}

	var value []byte
	err := s.instance.View(func(txn *badger.Txn) error {
		item, err := txn.Get(kvstore.ConcatBytes(s.dbPrefix, key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)

		return err
	})
	if err != nil {
		if ierrors.Is(err, badger.ErrKeyNotFound) {
			return nil, kvstore.ErrKeyNotFound
		}

		return nil, ierrors.Wrap(err, "failed to get value")
	}

	return value, nil
}

func (s *badgerStore) Set(key kvstore.Key, value kvstore.Value) error {
	if s.closed.Load() {
		return kvstore.ErrStoreClosed
	}

	return s.instance.Update(func(txn *badger.Txn) error {
		return txn.Set(kvstore.ConcatBytes(s.dbPrefix, key), value)
	})
}

func (s *badgerStore) Has(key kvstore.Key) (bool, error) {
	if s.closed.Load() {
		return false, kvstore.ErrStoreClosed
	}

	err := s.instance.View(func(txn *badger.Txn) error {
		_, err := txn.Get(kvstore.ConcatBytes(s.dbPrefix, key))

		return err
	})
	if err != nil {
		if ierrors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (s *badgerStore) Delete(key kvstore.Key) error {
	if s.closed.Load() {
		return kvstore.ErrStoreClosed
	}

	err := s.instance.Update(func(txn *badger.Txn) error {
		return txn.Delete(kvstore.ConcatBytes(s.dbPrefix, key))
	})
	if err != nil && ierrors.Is(err, badger.ErrKeyNotFound) {
		return kvstore.ErrKeyNotFound
	}

	return err
}

func (s *badgerStore) DeletePrefix(prefix kvstore.KeyPrefix) error {
	if s.closed.Load() {
		return kvstore.ErrStoreClosed
	}

	return s.instance.Update(func(txn *badger.Txn) error {
		iteratorOptions := badger.DefaultIteratorOptions
		iteratorOptions.Prefix = s.buildKeyPrefix(prefix)
		iteratorOptions.PrefetchValues = false

		it := txn.NewIterator(iteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			if err := txn.Delete(key); err != nil {
				return ierrors.Wrap(err, "failed to delete key")
			}
		}

		return nil
	})
}

func (s *badgerStore) Flush() error {
	if s.closed.Load() {
		return kvstore.ErrStoreClosed
	}

	return s.instance.Sync()
}

func (s *badgerStore) Close() error {
	if s.closed.Swap(true) {
		// was already closed
		return nil
	}

	return s.instance.Close()
}

var _ kvstore.KVStore = &badgerStore{}
