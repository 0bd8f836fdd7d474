package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/roboware/serialkit/ierrors"
)

// Write writes one of the Primitive basic types to the writer.
func Write[T Primitive](writer io.Writer, value T) error {
	return binary.Write(writer, binary.LittleEndian, value)
}

// WriteSlice writes the given values to the writer without a length prefix.
func WriteSlice[T Primitive](writer io.Writer, values []T) error {
	if len(values) == 0 {
		return nil
	}

	return binary.Write(writer, binary.LittleEndian, values)
}

// WriteBytes writes the given bytes without a length prefix.
func WriteBytes(writer io.Writer, bytes []byte) error {
	if _, err := writer.Write(bytes); err != nil {
		return ierrors.Wrap(err, "failed to write bytes")
	}

	return nil
}

// WriteBytesWithSize writes bytes to the writer where lenType specifies the serialization length prefix type.
func WriteBytesWithSize(writer io.Writer, bytes []byte, lenType LengthPrefixType) error {
	if err := WriteSize(writer, len(bytes), lenType); err != nil {
		return ierrors.Wrap(err, "failed to write bytes length")
	}

	return WriteBytes(writer, bytes)
}

// WriteSize writes the given length as the given length prefix type.
func WriteSize(writer io.Writer, l int, lenType LengthPrefixType) error {
	switch lenType {
	case LengthPrefixTypeAsByte:
		if l > math.MaxUint8 {
			return ierrors.Errorf("unable to serialize length: length %d is out of range (0-%d)", l, math.MaxUint8)
		}

		return Write(writer, uint8(l))

	case LengthPrefixTypeAsUint16:
		if l > math.MaxUint16 {
			return ierrors.Errorf("unable to serialize length: length %d is out of range (0-%d)", l, math.MaxUint16)
		}

		return Write(writer, uint16(l))

	case LengthPrefixTypeAsUint32:
		if uint64(l) > math.MaxUint32 {
			return ierrors.Errorf("unable to serialize length: length %d is out of range (0-%d)", l, uint64(math.MaxUint32))
		}

		return Write(writer, uint32(l))

	case LengthPrefixTypeAsUint64:
		return Write(writer, uint64(l))

	default:
		panic(fmt.Sprintf("unknown length prefix type %v", lenType))
	}
}
