package extstore

import (
	"os"
	"path/filepath"

	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/kvstore"
	"github.com/roboware/serialkit/runtime/ioutils"
	"github.com/roboware/serialkit/serializer/stream"
)

// Backend stores the side files of spilled payloads under absolute paths.
type Backend interface {
	// Create creates or replaces the entry at path. The entry is durable once the stream is closed.
	Create(path string) (stream.StreamCloser, error)
	// Open opens the entry at path for reading. Missing entries yield ErrMissingExternalFile.
	Open(path string) (stream.StreamCloser, error)
	// Exists reports whether an entry exists at path.
	Exists(path string) (bool, error)
	// Remove deletes the entry at path. Removing a missing entry is not an error.
	Remove(path string) error
}

// FileBackend stores side files on the local filesystem.
type FileBackend struct {
	filePerm os.FileMode
	dirPerm  os.FileMode
}

// NewFileBackend creates a FileBackend.
func NewFileBackend() *FileBackend {
	return &FileBackend{
		filePerm: 0o644,
		dirPerm:  0o755,
	}
}

// Create creates the file at path, including missing parent directories.
func (b *FileBackend) Create(path string) (stream.StreamCloser, error) {
	if err := ioutils.CreateDirectory(filepath.Dir(path), b.dirPerm); err != nil {
		return nil, ierrors.Wrapf(err, "failed to create directory for %s", path)
	}

	return stream.CreateFile(path, b.filePerm)
}

// Open opens the file at path for reading.
func (b *FileBackend) Open(path string) (stream.StreamCloser, error) {
	file, err := stream.OpenFile(path)
	if err != nil {
		if ierrors.Is(err, os.ErrNotExist) {
			return nil, ierrors.Wrapf(ErrMissingExternalFile, "file %s", path)
		}

		return nil, err
	}

	return file, nil
}

// Exists reports whether a file exists at path.
func (b *FileBackend) Exists(path string) (bool, error) {
	exists, isDir, err := ioutils.PathExists(path)
	if err != nil {
		return false, err
	}

	return exists && !isDir, nil
}

// Remove deletes the file at path.
func (b *FileBackend) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return ierrors.Wrapf(err, "failed to remove %s", path)
	}

	return nil
}

// KVBackend stores side files as entries of a key-value store, keyed by their absolute path.
type KVBackend struct {
	store kvstore.KVStore
}

// NewKVBackend creates a KVBackend on top of the given store.
func NewKVBackend(store kvstore.KVStore) *KVBackend {
	return &KVBackend{store: store}
}

// Create returns an in-memory stream that is stored under path when flushed or closed.
func (b *KVBackend) Create(path string) (stream.StreamCloser, error) {
	return &kvEntry{
		ByteBuffer: stream.NewByteBuffer(),
		store:      b.store,
		key:        []byte(path),
		writable:   true,
	}, nil
}

// Open returns a stream over a copy of the entry stored under path.
func (b *KVBackend) Open(path string) (stream.StreamCloser, error) {
	value, err := b.store.Get([]byte(path))
	if err != nil {
		if ierrors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, ierrors.Wrapf(ErrMissingExternalFile, "key %s", path)
		}

		return nil, ierrors.Wrapf(err, "failed to get %s", path)
	}

	return &kvEntry{
		ByteBuffer: stream.NewByteBufferFromBytes(value),
		store:      b.store,
		key:        []byte(path),
	}, nil
}

// Exists reports whether an entry is stored under path.
func (b *KVBackend) Exists(path string) (bool, error) {
	return b.store.Has([]byte(path))
}

// Remove deletes the entry stored under path.
func (b *KVBackend) Remove(path string) error {
	if err := b.store.Delete([]byte(path)); err != nil && !ierrors.Is(err, kvstore.ErrKeyNotFound) {
		return ierrors.Wrapf(err, "failed to remove %s", path)
	}

	return nil
}

type kvEntry struct {
	*stream.ByteBuffer

	store    kvstore.KVStore
	key      kvstore.Key
	writable bool
	closed   bool
}

func (e *kvEntry) Flush() error {
	if !e.writable {
		return nil
	}

	content, err := e.Bytes()
	if err != nil {
		return err
	}

	if err = e.store.Set(e.key, content); err != nil {
		return ierrors.Wrapf(err, "failed to store %s", e.key)
	}

	return nil
}

func (e *kvEntry) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	return e.Flush()
}

var (
	_ Backend = &FileBackend{}
	_ Backend = &KVBackend{}
)
