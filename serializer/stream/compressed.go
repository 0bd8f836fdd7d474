package stream

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/roboware/serialkit/ierrors"
)

// Compression selects the codec of a Compressed stream.
type Compression uint8

const (
	// CompressionNone stores bytes as they are.
	CompressionNone Compression = iota
	// CompressionGzip stores bytes as a gzip member.
	CompressionGzip
	// CompressionZstd stores bytes as a zstd frame.
	CompressionZstd
)

// ErrUnknownCompression is returned for unknown compression names or values.
var ErrUnknownCompression = ierrors.New("unknown compression")

// ParseCompression parses the name of a compression codec ("none", "gzip" or "zstd").
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	default:
		return CompressionNone, ierrors.Wrapf(ErrUnknownCompression, "name %q", name)
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Compressed is a StreamCloser that keeps the decompressed content in memory and stores it
// compressed in the inner stream on Flush and Close.
type Compressed struct {
	*ByteBuffer

	inner       StreamCloser
	compression Compression
	dirty       bool
	closed      bool
}

// Wrap decorates inner with the given compression. Existing content of inner is decompressed.
// CompressionNone returns inner unchanged.
func Wrap(inner StreamCloser, compression Compression) (StreamCloser, error) {
	if compression == CompressionNone {
		return inner, nil
	}

	return NewCompressed(inner, compression)
}

// NewCompressed creates a Compressed stream on top of inner.
func NewCompressed(inner StreamCloser, compression Compression) (*Compressed, error) {
	if compression != CompressionGzip && compression != CompressionZstd {
		return nil, ierrors.Wrapf(ErrUnknownCompression, "value %d", compression)
	}

	c := &Compressed{
		ByteBuffer:  NewByteBuffer(),
		inner:       inner,
		compression: compression,
	}

	if err := c.inflate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Write writes to the decompressed content.
func (c *Compressed) Write(p []byte) (int, error) {
	if c.closed {
		return 0, ierrors.New("write on closed stream")
	}

	n, err := c.ByteBuffer.Write(p)
	if n > 0 {
		c.dirty = true
	}

	return n, err
}

// Truncate truncates the decompressed content.
func (c *Compressed) Truncate(size int64) error {
	c.dirty = true

	return c.ByteBuffer.Truncate(size)
}

// Flush stores the compressed content in the inner stream if it was modified.
func (c *Compressed) Flush() error {
	if !c.dirty {
		return Flush(c.inner)
	}

	if err := c.deflate(); err != nil {
		return err
	}
	c.dirty = false

	return Flush(c.inner)
}

// Close flushes the content and closes the inner stream.
func (c *Compressed) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	return ierrors.Join(c.Flush(), c.inner.Close())
}

func (c *Compressed) inflate() error {
	size, err := c.inner.Size()
	if err != nil {
		return ierrors.Wrap(err, "failed to get size of inner stream")
	}
	if size == 0 {
		return nil
	}

	if _, err = GoTo(c.inner, 0); err != nil {
		return ierrors.Wrap(err, "failed to rewind inner stream")
	}

	var reader io.Reader
	switch c.compression {
	case CompressionGzip:
		gzipReader, err := gzip.NewReader(c.inner)
		if err != nil {
			return ierrors.Wrap(err, "failed to open gzip reader")
		}
		defer gzipReader.Close()

		reader = gzipReader
	case CompressionZstd:
		zstdReader, err := zstd.NewReader(c.inner)
		if err != nil {
			return ierrors.Wrap(err, "failed to open zstd reader")
		}
		defer zstdReader.Close()

		reader = zstdReader
	}

	if _, err = io.Copy(c.ByteBuffer.buf, reader); err != nil {
		return ierrors.Wrapf(err, "failed to decompress %s stream", c.compression)
	}

	return nil
}

func (c *Compressed) deflate() error {
	content, err := c.ByteBuffer.Bytes()
	if err != nil {
		return err
	}

	var compressed bytes.Buffer
	switch c.compression {
	case CompressionGzip:
		gzipWriter := gzip.NewWriter(&compressed)
		if _, err = gzipWriter.Write(content); err != nil {
			return ierrors.Wrap(err, "failed to compress gzip stream")
		}
		if err = gzipWriter.Close(); err != nil {
			return ierrors.Wrap(err, "failed to finish gzip stream")
		}
	case CompressionZstd:
		zstdWriter, err := zstd.NewWriter(&compressed)
		if err != nil {
			return ierrors.Wrap(err, "failed to create zstd writer")
		}
		if _, err = zstdWriter.Write(content); err != nil {
			return ierrors.Wrap(err, "failed to compress zstd stream")
		}
		if err = zstdWriter.Close(); err != nil {
			return ierrors.Wrap(err, "failed to finish zstd stream")
		}
	}

	if _, err = GoTo(c.inner, 0); err != nil {
		return ierrors.Wrap(err, "failed to rewind inner stream")
	}

	truncater, ok := c.inner.(Truncater)
	if !ok {
		return ierrors.New("inner stream can not be truncated")
	}
	if err = truncater.Truncate(0); err != nil {
		return ierrors.Wrap(err, "failed to truncate inner stream")
	}

	if _, err = c.inner.Write(compressed.Bytes()); err != nil {
		return ierrors.Wrap(err, "failed to write compressed stream")
	}

	return nil
}
