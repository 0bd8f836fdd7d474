package stream

import (
	"bufio"
	"os"

	"github.com/roboware/serialkit/ierrors"
)

// File is a file backed Stream with buffered writes.
// Written bytes are durable after Flush or Close returned without an error.
type File struct {
	file     *os.File
	writer   *bufio.Writer
	writable bool
}

// CreateFile creates or truncates the named file and opens it for reading and writing.
func CreateFile(path string, perm os.FileMode) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return nil, ierrors.Wrapf(err, "failed to create file %s", path)
	}

	return newFile(f, true), nil
}

// OpenFile opens the named file for reading.
// The returned error matches os.ErrNotExist if the file is missing.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ierrors.Wrapf(err, "failed to open file %s", path)
	}

	return newFile(f, false), nil
}

func newFile(f *os.File, writable bool) *File {
	return &File{
		file:     f,
		writer:   bufio.NewWriter(f),
		writable: writable,
	}
}

// Name returns the name of the file as presented to CreateFile or OpenFile.
func (f *File) Name() string {
	return f.file.Name()
}

// Write buffers p and writes it to the file once the buffer is full.
func (f *File) Write(p []byte) (int, error) {
	return f.writer.Write(p)
}

// Read reads from the current offset of the file.
func (f *File) Read(p []byte) (int, error) {
	if err := f.Flush(); err != nil {
		return 0, err
	}

	return f.file.Read(p)
}

// Seek sets the offset for the next Read or Write.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if err := f.Flush(); err != nil {
		return 0, err
	}

	return f.file.Seek(offset, whence)
}

// Size returns the size of the file including buffered bytes.
func (f *File) Size() (int64, error) {
	if err := f.Flush(); err != nil {
		return 0, err
	}

	info, err := f.file.Stat()
	if err != nil {
		return 0, ierrors.Wrap(err, "failed to stat file")
	}

	return info.Size(), nil
}

// Truncate changes the size of the file.
func (f *File) Truncate(size int64) error {
	if err := f.Flush(); err != nil {
		return err
	}

	return f.file.Truncate(size)
}

// Flush writes all buffered bytes to the file.
func (f *File) Flush() error {
	if f.writer.Buffered() == 0 {
		return nil
	}

	if err := f.writer.Flush(); err != nil {
		return ierrors.Wrap(err, "failed to flush file")
	}

	return nil
}

// Close flushes the buffered bytes, syncs written data to disk and closes the file.
func (f *File) Close() error {
	flushErr := f.Flush()

	var syncErr error
	if flushErr == nil && f.writable {
		syncErr = f.file.Sync()
	}

	return ierrors.Join(flushErr, syncErr, f.file.Close())
}
