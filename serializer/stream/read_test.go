package stream_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roboware/serialkit/serializer/stream"
)

func TestRead(t *testing.T) {
	buffer := bytes.NewReader([]byte{42, 0, 0, 0, 0, 0, 0, 0})

	result, err := stream.Read[uint64](buffer)

	require.NoError(t, err)
	require.EqualValues(t, 42, result)
}

func TestRead_NamedType(t *testing.T) {
	type level int16

	result, err := stream.Read[level](bytes.NewReader([]byte{0xFE, 0xFF}))
	require.NoError(t, err)
	require.Equal(t, level(-2), result)
}

func TestRead_EndOfStream(t *testing.T) {
	_, err := stream.Read[uint32](bytes.NewReader([]byte{1, 2}))
	require.ErrorIs(t, err, stream.ErrEndOfStream)

	_, err = stream.Read[uint8](stream.NewByteBuffer())
	require.ErrorIs(t, err, stream.ErrEndOfStream)
}

func TestReadSlice(t *testing.T) {
	buffer := bytes.NewReader([]byte{0x00, 0x00, 0x80, 0x3F, 0x00, 0x00, 0x00, 0x40})

	result, err := stream.ReadSlice[float32](buffer, 2)
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2}, result)

	empty, err := stream.ReadSlice[float32](buffer, 0)
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = stream.ReadSlice[float32](buffer, -1)
	require.Error(t, err)
}

func TestReadBytes(t *testing.T) {
	initialBytes := []byte{1, 2, 3, 4, 5}
	buffer := bytes.NewReader(initialBytes)

	readBytes, err := stream.ReadBytes(buffer, 5)
	require.NoError(t, err)
	require.EqualValues(t, initialBytes, readBytes)
}

func TestReadBytes_LengthExceedsStream(t *testing.T) {
	buffer := stream.NewByteBufferFromBytes([]byte{1, 2, 3})

	_, err := stream.ReadBytes(buffer, 1<<30)
	require.ErrorIs(t, err, stream.ErrEndOfStream)

	// nothing was consumed by the rejected read
	offset, err := stream.Offset(buffer)
	require.NoError(t, err)
	require.EqualValues(t, 0, offset)
}

func TestReadBytesWithSize(t *testing.T) {
	initialBytes := []byte{5, 0, 1, 2, 3, 4, 5}
	buffer := bytes.NewReader(initialBytes)

	readBytes, err := stream.ReadBytesWithSize(buffer, stream.LengthPrefixTypeAsUint16)
	require.NoError(t, err)

	require.EqualValues(t, []byte{1, 2, 3, 4, 5}, readBytes)
}

func TestReadFull(t *testing.T) {
	buf := make([]byte, 3)
	require.NoError(t, stream.ReadFull(bytes.NewReader([]byte{7, 8, 9, 10}), buf))
	require.Equal(t, []byte{7, 8, 9}, buf)

	require.ErrorIs(t, stream.ReadFull(bytes.NewReader([]byte{7}), buf), stream.ErrEndOfStream)
}
