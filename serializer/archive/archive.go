// Package archive implements the versioned, polymorphic binary archive format.
//
// An archive is a sequence of records on a stream. Primitive values are written in little-endian
// byte order with fixed width. Objects are written as
//
//	[uint32 name length][class name][uint8 version][fields]
//
// where the fields are produced by the class itself. A null object is a single uint32 0xFFFFFFFF
// in place of the name length. The class name is resolved through a Registry when reading.
package archive

import (
	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/logger"
	"github.com/roboware/serialkit/runtime/options"
	"github.com/roboware/serialkit/serializer/stream"
)

// Archive reads and writes values and objects on a stream it does not own.
// The first error is latched: every following operation returns it without touching the stream.
// An Archive must not be used by more than one goroutine at a time.
type Archive struct {
	stream   stream.Stream
	registry *Registry
	logger   *logger.Logger
	err      error
}

// WithLogger sets the logger used by the archive.
func WithLogger(log *logger.Logger) options.Option[Archive] {
	return func(a *Archive) {
		a.logger = log
	}
}

// New creates an archive on top of the given stream that resolves classes through the registry.
func New(s stream.Stream, registry *Registry, opts ...options.Option[Archive]) *Archive {
	return options.Apply(&Archive{
		stream:   s,
		registry: registry,
	}, opts, func(a *Archive) {
		if a.logger == nil {
			a.logger = logger.NewNopLogger()
		}
		if a.registry == nil {
			a.registry = DefaultRegistry
		}
	})
}

// Err returns the latched error of the archive.
func (a *Archive) Err() error {
	return a.err
}

// Stream returns the underlying stream.
func (a *Archive) Stream() stream.Stream {
	return a.stream
}

// Registry returns the registry used to resolve classes.
func (a *Archive) Registry() *Registry {
	return a.registry
}

// Logger returns the logger of the archive.
func (a *Archive) Logger() *logger.Logger {
	return a.logger
}

// Available returns the amount of bytes left in the stream.
// Unlike the read operations it does not fail at the end of the stream.
func (a *Archive) Available() (int64, error) {
	if a.err != nil {
		return 0, a.err
	}

	remaining, err := stream.Remaining(a.stream)
	if err != nil {
		return 0, a.fail(err)
	}

	return remaining, nil
}

// Flush flushes the underlying stream if it buffers writes.
func (a *Archive) Flush() error {
	if a.err != nil {
		return a.err
	}

	if err := stream.Flush(a.stream); err != nil {
		return a.fail(ierrors.Wrap(err, "failed to flush archive"))
	}

	return nil
}

func (a *Archive) fail(err error) error {
	if a.err == nil {
		a.err = err
	}

	return a.err
}

// Marshal writes a single object record into a new byte slice.
func Marshal(registry *Registry, obj Serializable) ([]byte, error) {
	buffer := stream.NewByteBuffer()
	if err := New(buffer, registry).WriteObject(obj); err != nil {
		return nil, err
	}

	return buffer.Bytes()
}

// Unmarshal reads a single object record from data.
func Unmarshal(registry *Registry, data []byte) (Serializable, error) {
	return New(stream.NewByteBufferFromBytes(data), registry).ReadObject()
}
