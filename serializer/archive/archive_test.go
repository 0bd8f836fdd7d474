package archive_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roboware/serialkit/serializer/archive"
	"github.com/roboware/serialkit/serializer/stream"
)

func TestArchive_Primitives(t *testing.T) {
	buffer := stream.NewByteBuffer()
	writer := archive.New(buffer, newTestRegistry())

	timestamp := time.Date(2021, 3, 4, 5, 6, 7, 8, time.UTC)

	require.NoError(t, archive.Write(writer, true))
	require.NoError(t, archive.Write(writer, int8(-8)))
	require.NoError(t, archive.Write(writer, uint16(0xBEEF)))
	require.NoError(t, archive.Write(writer, int32(math.MinInt32)))
	require.NoError(t, archive.Write(writer, uint64(math.MaxUint64)))
	require.NoError(t, archive.Write(writer, float32(1.5)))
	require.NoError(t, archive.Write(writer, math.Pi))
	require.NoError(t, archive.WriteSlice(writer, []float32{1, 2, 3}))
	require.NoError(t, archive.WriteSlice[uint8](writer, nil))
	require.NoError(t, writer.WriteBuffer([]byte{9, 8, 7}))
	require.NoError(t, writer.WriteBuffer(nil))
	require.NoError(t, writer.WriteString("sensor"))
	require.NoError(t, writer.WriteTime(timestamp))
	require.NoError(t, writer.WriteTime(time.Time{}))

	reader := archive.New(stream.NewByteBufferFromBytes(mustBytes(t, buffer)), newTestRegistry())

	var (
		b     bool
		i8    int8
		u16   uint16
		i32   int32
		u64   uint64
		f32   float32
		f64   float64
		fs    []float32
		empty []uint8
		buf   []byte
		nobuf []byte
		s     string
		ts    time.Time
		zero  time.Time
	)
	require.NoError(t, archive.Read(reader, &b))
	require.NoError(t, archive.Read(reader, &i8))
	require.NoError(t, archive.Read(reader, &u16))
	require.NoError(t, archive.Read(reader, &i32))
	require.NoError(t, archive.Read(reader, &u64))
	require.NoError(t, archive.Read(reader, &f32))
	require.NoError(t, archive.Read(reader, &f64))
	require.NoError(t, archive.ReadSlice(reader, &fs))
	require.NoError(t, archive.ReadSlice(reader, &empty))
	require.NoError(t, reader.ReadBuffer(&buf))
	require.NoError(t, reader.ReadBuffer(&nobuf))
	require.NoError(t, reader.ReadString(&s))
	require.NoError(t, reader.ReadTime(&ts))
	require.NoError(t, reader.ReadTime(&zero))

	require.True(t, b)
	require.Equal(t, int8(-8), i8)
	require.Equal(t, uint16(0xBEEF), u16)
	require.Equal(t, int32(math.MinInt32), i32)
	require.Equal(t, uint64(math.MaxUint64), u64)
	require.Equal(t, float32(1.5), f32)
	require.Equal(t, math.Pi, f64)
	require.Equal(t, []float32{1, 2, 3}, fs)
	require.Empty(t, empty)
	require.Equal(t, []byte{9, 8, 7}, buf)
	require.Empty(t, nobuf)
	require.Equal(t, "sensor", s)
	require.Equal(t, timestamp, ts)
	require.True(t, zero.IsZero())

	available, err := reader.Available()
	require.NoError(t, err)
	require.Zero(t, available)
}

func TestArchive_WireFormat(t *testing.T) {
	data, err := archive.Marshal(newTestRegistry(), &foo{Value: 123})
	require.NoError(t, err)

	require.Equal(t, []byte{0x03, 0x00, 0x00, 0x00, 'F', 'o', 'o', 0x00, 0x7B, 0x00}, data)

	obj, err := archive.Unmarshal(newTestRegistry(), data)
	require.NoError(t, err)
	require.Equal(t, &foo{Value: 123}, obj)
}

func TestArchive_Null(t *testing.T) {
	registry := newTestRegistry()

	for _, obj := range []archive.Serializable{nil, (*foo)(nil)} {
		data, err := archive.Marshal(registry, obj)
		require.NoError(t, err)
		require.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, data)

		result, err := archive.Unmarshal(registry, data)
		require.NoError(t, err)
		require.Nil(t, result)
	}
}

func TestArchive_NestedObjects(t *testing.T) {
	registry := newTestRegistry()

	original := &pair{
		Left:  &label{Name: "floor", Weight: 0.5},
		Right: (*foo)(nil),
	}

	data, err := archive.Marshal(registry, original)
	require.NoError(t, err)

	obj, err := archive.Unmarshal(registry, data)
	require.NoError(t, err)

	result, ok := obj.(*pair)
	require.True(t, ok)
	require.Equal(t, &label{Name: "floor", Weight: 0.5}, result.Left)
	require.Nil(t, result.Right)
}

func TestArchive_AliasingIsDuplicated(t *testing.T) {
	registry := newTestRegistry()

	shared := &foo{Value: 7}
	data, err := archive.Marshal(registry, &pair{Left: shared, Right: shared})
	require.NoError(t, err)

	obj, err := archive.Unmarshal(registry, data)
	require.NoError(t, err)

	result := obj.(*pair)
	require.Equal(t, result.Left, result.Right)
	require.NotSame(t, result.Left, result.Right)
}

func TestArchive_UnknownClass(t *testing.T) {
	data, err := archive.Marshal(newTestRegistry(), &label{Name: "wall", Weight: 2})
	require.NoError(t, err)

	registry := archive.NewRegistry()
	registry.MustRegister("Foo", func() archive.Serializable { return new(foo) })

	reader := archive.New(stream.NewByteBufferFromBytes(data), registry)
	_, err = reader.ReadObject()
	require.ErrorIs(t, err, archive.ErrUnknownClass)
	require.ErrorIs(t, reader.Err(), archive.ErrUnknownClass)

	// the registry is left untouched
	require.Equal(t, []string{"Foo"}, registry.Classes())
}

func TestArchive_UnknownClass_CorruptNameLength(t *testing.T) {
	registry := newTestRegistry()

	// claims a name far longer than the buffer
	_, err := archive.Unmarshal(registry, []byte{0x00, 0x00, 0x01, 0x00, 'F', 'o', 'o'})
	require.ErrorIs(t, err, archive.ErrInvalidClassName)

	// plausible length but the name is cut off
	_, err = archive.Unmarshal(registry, []byte{0x10, 0x00, 0x00, 0x00, 'F', 'o', 'o'})
	require.ErrorIs(t, err, stream.ErrEndOfStream)

	_, err = archive.Unmarshal(registry, []byte{0x00, 0x00, 0x00, 0x00})
	require.ErrorIs(t, err, archive.ErrInvalidClassName)
}

func TestArchive_UnsupportedVersion(t *testing.T) {
	data := []byte{0x03, 0x00, 0x00, 0x00, 'F', 'o', 'o', 0x01, 0x7B, 0x00}

	_, err := archive.Unmarshal(newTestRegistry(), data)
	require.ErrorIs(t, err, archive.ErrUnsupportedVersion)
	require.ErrorContains(t, err, "class Foo")
}

func TestArchive_OldVersion(t *testing.T) {
	buffer := stream.NewByteBuffer()
	writer := archive.New(buffer, newTestRegistry())

	// a label as written by version 0
	require.NoError(t, writer.WriteString("Label"))
	require.NoError(t, archive.Write(writer, uint8(0)))
	require.NoError(t, writer.WriteString("door"))

	result, err := archive.ReadAs[*label](archive.New(stream.NewByteBufferFromBytes(mustBytes(t, buffer)), newTestRegistry()))
	require.NoError(t, err)
	require.Equal(t, &label{Name: "door", Weight: 1}, result)
}

func TestArchive_Truncated(t *testing.T) {
	data, err := archive.Marshal(newTestRegistry(), &foo{Value: 123})
	require.NoError(t, err)

	for cut := 1; cut < len(data); cut++ {
		_, err = archive.Unmarshal(newTestRegistry(), data[:cut])
		require.ErrorIs(t, err, stream.ErrEndOfStream, "cut at %d", cut)
	}
}

func TestArchive_Time(t *testing.T) {
	buffer := stream.NewByteBuffer()
	writer := archive.New(buffer, newTestRegistry())

	epoch := time.Unix(0, 0).UTC()
	require.NoError(t, writer.WriteTime(epoch))
	require.NoError(t, writer.WriteTime(time.Time{}))

	data := mustBytes(t, buffer)
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0}, data[:8])
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0x80}, data[8:])

	reader := archive.New(stream.NewByteBufferFromBytes(data), newTestRegistry())

	var decodedEpoch, zero time.Time
	require.NoError(t, reader.ReadTime(&decodedEpoch))
	require.NoError(t, reader.ReadTime(&zero))
	require.Equal(t, epoch, decodedEpoch)
	require.False(t, decodedEpoch.IsZero())
	require.True(t, zero.IsZero())

	for _, outOfRange := range []time.Time{
		time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		failing := archive.New(stream.NewByteBuffer(), newTestRegistry())
		err := failing.WriteTime(outOfRange)
		require.ErrorIs(t, err, archive.ErrTimeOutOfRange)
		require.Equal(t, err, failing.Err())
	}
}

func TestArchive_ErrorIsLatched(t *testing.T) {
	reader := archive.New(stream.NewByteBufferFromBytes([]byte{0x01}), newTestRegistry())

	var value uint32
	err := archive.Read(reader, &value)
	require.ErrorIs(t, err, stream.ErrEndOfStream)

	var small uint8
	require.Equal(t, err, archive.Read(reader, &small))
	require.Zero(t, small)
	require.Equal(t, err, reader.WriteString("ignored"))
	require.Equal(t, err, reader.Err())

	_, availableErr := reader.Available()
	require.Equal(t, err, availableErr)
}

func TestArchive_ReadInto(t *testing.T) {
	registry := newTestRegistry()

	data, err := archive.Marshal(registry, &foo{Value: 5})
	require.NoError(t, err)

	target := &foo{Value: 1}
	require.NoError(t, archive.New(stream.NewByteBufferFromBytes(data), registry).ReadInto(target))
	require.Equal(t, int16(5), target.Value)

	err = archive.New(stream.NewByteBufferFromBytes(data), registry).ReadInto(&label{})
	require.ErrorIs(t, err, archive.ErrTypeMismatch)

	null, err := archive.Marshal(registry, nil)
	require.NoError(t, err)
	err = archive.New(stream.NewByteBufferFromBytes(null), registry).ReadInto(target)
	require.ErrorIs(t, err, archive.ErrUnexpectedNull)
}

func TestArchive_ReadAs(t *testing.T) {
	registry := newTestRegistry()

	data, err := archive.Marshal(registry, &foo{Value: 5})
	require.NoError(t, err)

	result, err := archive.ReadAs[*foo](archive.New(stream.NewByteBufferFromBytes(data), registry))
	require.NoError(t, err)
	require.Equal(t, int16(5), result.Value)

	_, err = archive.ReadAs[*label](archive.New(stream.NewByteBufferFromBytes(data), registry))
	require.ErrorIs(t, err, archive.ErrTypeMismatch)
}

func TestArchive_ReadObjectOf(t *testing.T) {
	registry := newTestRegistry()

	data, err := archive.Marshal(registry, &label{Name: "x", Weight: 3})
	require.NoError(t, err)

	obj, err := archive.New(stream.NewByteBufferFromBytes(data), registry).ReadObjectOf("Base")
	require.NoError(t, err)
	require.IsType(t, &label{}, obj)

	data, err = archive.Marshal(registry, &pair{})
	require.NoError(t, err)

	_, err = archive.New(stream.NewByteBufferFromBytes(data), registry).ReadObjectOf("Base")
	require.ErrorIs(t, err, archive.ErrTypeMismatch)
}

func TestArchive_Collections(t *testing.T) {
	registry := newTestRegistry()
	buffer := stream.NewByteBuffer()

	require.NoError(t, archive.WriteObjects(archive.New(buffer, registry), []*foo{{Value: 1}, nil, {Value: 3}}))

	objects, err := archive.New(stream.NewByteBufferFromBytes(mustBytes(t, buffer)), registry).ReadObjects()
	require.NoError(t, err)
	require.Equal(t, []archive.Serializable{&foo{Value: 1}, nil, &foo{Value: 3}}, objects)

	typed, err := archive.ReadObjectsAs[*foo](archive.New(stream.NewByteBufferFromBytes(mustBytes(t, buffer)), registry))
	require.NoError(t, err)
	require.Equal(t, []*foo{{Value: 1}, nil, {Value: 3}}, typed)

	// a count that can not fit into the stream is rejected before allocating
	_, err = archive.New(stream.NewByteBufferFromBytes([]byte{0xFF, 0xFF, 0xFF, 0x7F}), registry).ReadObjects()
	require.ErrorIs(t, err, stream.ErrEndOfStream)
}

func TestArchive_ForEachObject(t *testing.T) {
	registry := newTestRegistry()
	buffer := stream.NewByteBuffer()

	writer := archive.New(buffer, registry)
	require.NoError(t, writer.WriteObject(&foo{Value: 1}))
	require.NoError(t, writer.WriteObject(nil))
	require.NoError(t, writer.WriteObject(&label{Name: "a", Weight: 2}))

	var classes []string
	err := archive.New(stream.NewByteBufferFromBytes(mustBytes(t, buffer)), registry).ForEachObject(func(obj archive.Serializable) error {
		if obj == nil {
			classes = append(classes, "<nil>")

			return nil
		}

		name, err := registry.NameOf(obj)
		require.NoError(t, err)
		classes = append(classes, name)

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Foo", "<nil>", "Label"}, classes)
}

func TestArchive_WriteUnregistered(t *testing.T) {
	writer := archive.New(stream.NewByteBuffer(), archive.NewRegistry())

	require.ErrorIs(t, writer.WriteObject(&foo{}), archive.ErrUnknownClass)
	require.ErrorIs(t, writer.Err(), archive.ErrUnknownClass)
}

func mustBytes(t *testing.T, buffer *stream.ByteBuffer) []byte {
	t.Helper()

	data, err := buffer.Bytes()
	require.NoError(t, err)

	return data
}
