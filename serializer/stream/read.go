package stream

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/roboware/serialkit/ierrors"
)

// Read reads a generic basic type from the reader.
func Read[T Primitive](reader io.Reader) (result T, err error) {
	if err = binary.Read(reader, binary.LittleEndian, &result); err != nil {
		return result, endOfStream(err, binary.Size(result))
	}

	return result, nil
}

// ReadSlice reads count values of a generic basic type from the reader.
func ReadSlice[T Primitive](reader io.Reader, count int) ([]T, error) {
	if count < 0 {
		return nil, ierrors.Errorf("invalid element count %d", count)
	}
	if count == 0 {
		return []T{}, nil
	}

	var zero T
	if err := ensureAvailable(reader, int64(count)*int64(binary.Size(zero))); err != nil {
		return nil, err
	}

	result := make([]T, count)
	if err := binary.Read(reader, binary.LittleEndian, result); err != nil {
		return nil, endOfStream(err, count*binary.Size(zero))
	}

	return result, nil
}

// ReadBytes reads exactly length bytes from the reader.
func ReadBytes(reader io.Reader, length int) ([]byte, error) {
	if length < 0 {
		return nil, ierrors.Errorf("invalid length %d", length)
	}
	if length == 0 {
		return []byte{}, nil
	}

	if err := ensureAvailable(reader, int64(length)); err != nil {
		return nil, err
	}

	var buffer bytes.Buffer
	if _, err := io.CopyN(&buffer, reader, int64(length)); err != nil {
		return nil, endOfStream(err, length)
	}

	return buffer.Bytes(), nil
}

// ReadBytesWithSize reads a byte slice from the reader where lenType specifies the serialization length prefix type.
func ReadBytesWithSize(reader io.Reader, lenType LengthPrefixType) ([]byte, error) {
	size, err := ReadSize(reader, lenType)
	if err != nil {
		return nil, ierrors.Wrap(err, "failed to read bytes size")
	}

	return ReadBytes(reader, size)
}

// ReadSize reads a length prefix of the given type.
func ReadSize(reader io.Reader, lenType LengthPrefixType) (int, error) {
	switch lenType {
	case LengthPrefixTypeAsByte:
		result, err := Read[uint8](reader)

		return int(result), err
	case LengthPrefixTypeAsUint16:
		result, err := Read[uint16](reader)

		return int(result), err
	case LengthPrefixTypeAsUint32:
		result, err := Read[uint32](reader)

		return int(result), err
	case LengthPrefixTypeAsUint64:
		result, err := Read[uint64](reader)

		return int(result), err
	default:
		panic(fmt.Sprintf("unknown length prefix type %v", lenType))
	}
}

// ensureAvailable fails early if the reader is a Stream that holds less than the requested amount of bytes.
// That way corrupted length prefixes never lead to huge allocations.
func ensureAvailable(reader io.Reader, length int64) error {
	s, ok := reader.(Stream)
	if !ok {
		return nil
	}

	remaining, err := Remaining(s)
	if err != nil {
		return err
	}

	if remaining < length {
		return ierrors.Wrapf(ErrEndOfStream, "need %d bytes but only %d are left", length, remaining)
	}

	return nil
}

func endOfStream(err error, needed int) error {
	if ierrors.Is(err, io.EOF) || ierrors.Is(err, io.ErrUnexpectedEOF) {
		return ierrors.Wrapf(ErrEndOfStream, "failed to read %d bytes", needed)
	}

	return ierrors.Wrap(err, "failed to read from stream")
}

// ReadFull fills buf completely from the reader.
func ReadFull(reader io.Reader, buf []byte) error {
	if _, err := io.ReadFull(reader, buf); err != nil {
		return endOfStream(err, len(buf))
	}

	return nil
}
