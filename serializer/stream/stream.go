// Package stream provides the seekable byte streams the archive reads from and writes to, together with
// little-endian helpers for fixed-width values and length-prefixed byte slices.
package stream

import (
	"io"

	"github.com/roboware/serialkit/ierrors"
)

// ErrEndOfStream is returned when a read needs more bytes than the stream still holds.
var ErrEndOfStream = ierrors.New("end of stream")

// Stream is a linear, seekable byte sink and source.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker

	// Size returns the total amount of bytes held by the stream.
	Size() (int64, error)
}

// StreamCloser is a Stream that holds resources which need to be released.
type StreamCloser interface {
	Stream
	io.Closer
}

// Flusher is implemented by streams that buffer writes. A successful Flush makes all
// previously written bytes durable in the underlying storage.
type Flusher interface {
	Flush() error
}

// Truncater is implemented by streams that can be cut to a given size.
type Truncater interface {
	Truncate(size int64) error
}

// Offset returns the current offset of the seeker.
func Offset(seeker io.Seeker) (int64, error) {
	return seeker.Seek(0, io.SeekCurrent)
}

// Skip moves the offset of the seeker by the given amount of bytes.
func Skip(seeker io.Seeker, bytesToSkip int64) (int64, error) {
	return seeker.Seek(bytesToSkip, io.SeekCurrent)
}

// GoTo moves the seeker to the given absolute offset.
func GoTo(seeker io.Seeker, offset int64) (int64, error) {
	return seeker.Seek(offset, io.SeekStart)
}

// Remaining returns the amount of bytes between the current offset and the end of the stream.
// It is the only query that reports the end of the data without failing.
func Remaining(s Stream) (int64, error) {
	offset, err := Offset(s)
	if err != nil {
		return 0, ierrors.Wrap(err, "failed to get offset")
	}

	size, err := s.Size()
	if err != nil {
		return 0, ierrors.Wrap(err, "failed to get size")
	}

	if offset >= size {
		return 0, nil
	}

	return size - offset, nil
}

// Flush flushes the stream if it buffers writes.
func Flush(s any) error {
	if flusher, ok := s.(Flusher); ok {
		return flusher.Flush()
	}

	return nil
}
