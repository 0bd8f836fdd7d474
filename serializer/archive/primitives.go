package archive

import (
	"math"
	"time"

	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/serializer/stream"
)

// Write writes a fixed-width value.
func Write[T stream.Primitive](a *Archive, value T) error {
	if a.err != nil {
		return a.err
	}

	if err := stream.Write(a.stream, value); err != nil {
		return a.fail(ierrors.Wrapf(err, "failed to write %T", value))
	}

	return nil
}

// Read reads a fixed-width value into target.
func Read[T stream.Primitive](a *Archive, target *T) error {
	if a.err != nil {
		return a.err
	}

	value, err := stream.Read[T](a.stream)
	if err != nil {
		return a.fail(ierrors.Wrapf(err, "failed to read %T", value))
	}
	*target = value

	return nil
}

// WriteSlice writes a uint32 element count followed by the values.
func WriteSlice[T stream.Primitive](a *Archive, values []T) error {
	if err := a.writeLength(len(values)); err != nil {
		return err
	}

	if err := stream.WriteSlice(a.stream, values); err != nil {
		return a.fail(ierrors.Wrapf(err, "failed to write %d elements", len(values)))
	}

	return nil
}

// ReadSlice reads a slice written by WriteSlice into target.
func ReadSlice[T stream.Primitive](a *Archive, target *[]T) error {
	count, err := a.readLength()
	if err != nil {
		return err
	}

	values, err := stream.ReadSlice[T](a.stream, count)
	if err != nil {
		return a.fail(ierrors.Wrapf(err, "failed to read %d elements", count))
	}
	*target = values

	return nil
}

// WriteBuffer writes a uint32 length followed by the bytes. Nil and empty buffers are written alike.
func (a *Archive) WriteBuffer(data []byte) error {
	if a.err != nil {
		return a.err
	}

	if err := stream.WriteBytesWithSize(a.stream, data, stream.LengthPrefixTypeAsUint32); err != nil {
		return a.fail(ierrors.Wrap(err, "failed to write buffer"))
	}

	return nil
}

// ReadBuffer reads a buffer written by WriteBuffer into target.
func (a *Archive) ReadBuffer(target *[]byte) error {
	if a.err != nil {
		return a.err
	}

	data, err := stream.ReadBytesWithSize(a.stream, stream.LengthPrefixTypeAsUint32)
	if err != nil {
		return a.fail(ierrors.Wrap(err, "failed to read buffer"))
	}
	*target = data

	return nil
}

// WriteString writes a UTF-8 string with a uint32 length prefix.
func (a *Archive) WriteString(value string) error {
	return a.WriteBuffer([]byte(value))
}

// ReadString reads a string written by WriteString into target.
func (a *Archive) ReadString(target *string) error {
	var data []byte
	if err := a.ReadBuffer(&data); err != nil {
		return err
	}
	*target = string(data)

	return nil
}

// zeroTime marks the zero time.Time, which has no Unix nanosecond representation.
const zeroTime = math.MinInt64

var (
	minTime = time.Unix(0, math.MinInt64+1)
	maxTime = time.Unix(0, math.MaxInt64)
)

// WriteTime writes a timestamp as int64 nanoseconds since the Unix epoch. Only times between
// 1677-09-21 and 2262-04-11 can be written, the zero time is written as math.MinInt64.
func (a *Archive) WriteTime(value time.Time) error {
	if value.IsZero() {
		return Write(a, int64(zeroTime))
	}

	if value.Before(minTime) || value.After(maxTime) {
		if a.err != nil {
			return a.err
		}

		return a.fail(ierrors.Wrapf(ErrTimeOutOfRange, "%s", value))
	}

	return Write(a, value.UnixNano())
}

// ReadTime reads a timestamp written by WriteTime into target. The result is in UTC.
func (a *Archive) ReadTime(target *time.Time) error {
	var nanos int64
	if err := Read(a, &nanos); err != nil {
		return err
	}

	if nanos == zeroTime {
		*target = time.Time{}
	} else {
		*target = time.Unix(0, nanos).UTC()
	}

	return nil
}

func (a *Archive) writeLength(length int) error {
	if a.err != nil {
		return a.err
	}

	if err := stream.WriteSize(a.stream, length, stream.LengthPrefixTypeAsUint32); err != nil {
		return a.fail(err)
	}

	return nil
}

func (a *Archive) readLength() (int, error) {
	if a.err != nil {
		return 0, a.err
	}

	length, err := stream.ReadSize(a.stream, stream.LengthPrefixTypeAsUint32)
	if err != nil {
		return 0, a.fail(ierrors.Wrap(err, "failed to read length"))
	}

	return length, nil
}

// WriteArray writes the values without a count. The reader has to know the number of elements.
func WriteArray[T stream.Primitive](a *Archive, values []T) error {
	if a.err != nil {
		return a.err
	}

	if err := stream.WriteSlice(a.stream, values); err != nil {
		return a.fail(ierrors.Wrapf(err, "failed to write %d elements", len(values)))
	}

	return nil
}

// ReadArray reads count values written by WriteArray into target.
func ReadArray[T stream.Primitive](a *Archive, target *[]T, count int) error {
	if a.err != nil {
		return a.err
	}

	values, err := stream.ReadSlice[T](a.stream, count)
	if err != nil {
		return a.fail(ierrors.Wrapf(err, "failed to read %d elements", count))
	}
	*target = values

	return nil
}
