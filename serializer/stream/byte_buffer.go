// Adapted (rename and added methods) from https://github.com/orcaman/writerseeker.
//
// The MIT License (MIT)
//
// Copyright (c) 2017 Or Hiltch
// Copyright (c) 2017 icza (https://stackoverflow.com/users/1705598/icza)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package stream

import (
	"bytes"
	"io"

	"github.com/roboware/serialkit/ierrors"
)

// ByteBuffer is an in-memory Stream implementation.
type ByteBuffer struct {
	buf *bytes.Buffer
	pos int
}

// NewByteBuffer creates an empty ByteBuffer with an optional initial capacity.
func NewByteBuffer(initialCapacity ...int) *ByteBuffer {
	var capacity int
	if len(initialCapacity) > 0 {
		capacity = initialCapacity[0]
	}

	return &ByteBuffer{
		buf: bytes.NewBuffer(make([]byte, 0, capacity)),
	}
}

// NewByteBufferFromBytes creates a ByteBuffer that holds a copy of data and is positioned at its start.
func NewByteBufferFromBytes(data []byte) *ByteBuffer {
	return &ByteBuffer{
		buf: bytes.NewBuffer(append(make([]byte, 0, len(data)), data...)),
	}
}

// Write writes to the buffer of this ByteBuffer instance.
func (w *ByteBuffer) Write(p []byte) (n int, err error) {
	// If the offset is past the end of the buffer, grow the buffer with null bytes.
	if extra := w.pos - w.buf.Len(); extra > 0 {
		if _, err := w.buf.Write(make([]byte, extra)); err != nil {
			return n, err
		}
	}

	// If the offset isn't at the end of the buffer, write as much as we can.
	if w.pos < w.buf.Len() {
		n = copy(w.buf.Bytes()[w.pos:], p)
		p = p[n:]
	}

	// If there are remaining bytes, append them to the buffer.
	if len(p) > 0 {
		var bn int
		bn, err = w.buf.Write(p)
		n += bn
	}

	w.pos += n

	return n, err
}

// Read reads from the current offset of this ByteBuffer instance.
func (w *ByteBuffer) Read(p []byte) (n int, err error) {
	if w.pos >= w.buf.Len() {
		if len(p) == 0 {
			return 0, nil
		}

		return 0, io.EOF
	}

	n = copy(p, w.buf.Bytes()[w.pos:])
	w.pos += n

	return n, nil
}

// Seek seeks in the buffer of this ByteBuffer instance.
func (w *ByteBuffer) Seek(offset int64, whence int) (int64, error) {
	newPos, offs := 0, int(offset)

	switch whence {
	case io.SeekStart:
		newPos = offs
	case io.SeekCurrent:
		newPos = w.pos + offs
	case io.SeekEnd:
		newPos = w.buf.Len() + offs
	default:
		return 0, ierrors.Errorf("invalid whence %d", whence)
	}

	if newPos < 0 {
		return 0, ierrors.New("negative result pos")
	}
	w.pos = newPos

	return int64(newPos), nil
}

// Size returns the amount of bytes held by the buffer.
func (w *ByteBuffer) Size() (int64, error) {
	return int64(w.buf.Len()), nil
}

// Truncate changes the size of the buffer. Growing the buffer pads it with null bytes.
// The offset is not modified.
func (w *ByteBuffer) Truncate(size int64) error {
	if size < 0 {
		return ierrors.New("negative size")
	}

	if extra := int(size) - w.buf.Len(); extra > 0 {
		_, err := w.buf.Write(make([]byte, extra))

		return err
	}

	w.buf.Truncate(int(size))

	return nil
}

// Close is a no-op that makes ByteBuffer a StreamCloser.
func (w *ByteBuffer) Close() error {
	return nil
}

// Bytes returns the content of the buffer.
func (w *ByteBuffer) Bytes() ([]byte, error) {
	return w.buf.Bytes(), nil
}
