package stream_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roboware/serialkit/serializer/stream"
)

func TestWrite(t *testing.T) {
	buffer := stream.NewByteBuffer()

	require.NoError(t, stream.Write[uint64](buffer, 42))
	require.NoError(t, stream.Write(buffer, true))
	require.NoError(t, stream.Write[int16](buffer, -2))

	result, err := buffer.Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte{42, 0, 0, 0, 0, 0, 0, 0, 1, 0xFE, 0xFF}, result)
}

func TestWriteSlice(t *testing.T) {
	var buffer bytes.Buffer

	require.NoError(t, stream.WriteSlice(&buffer, []uint16{1, 0x0203}))
	require.NoError(t, stream.WriteSlice[uint16](&buffer, nil))
	require.Equal(t, []byte{1, 0, 3, 2}, buffer.Bytes())
}

func TestWriteBytes(t *testing.T) {
	buffer := stream.NewByteBuffer()

	require.NoError(t, stream.WriteBytes(buffer, []byte{1, 2, 3, 4, 5}))

	result, err := buffer.Bytes()
	require.NoError(t, err)
	require.EqualValues(t, []byte{1, 2, 3, 4, 5}, result)
}

func TestWriteBytesWithSize(t *testing.T) {
	buffer := stream.NewByteBuffer()

	require.NoError(t, stream.WriteBytesWithSize(buffer, []byte{1, 2, 3, 4, 5}, stream.LengthPrefixTypeAsUint32))

	result, err := buffer.Bytes()
	require.NoError(t, err)
	require.EqualValues(t, []byte{5, 0, 0, 0, 1, 2, 3, 4, 5}, result)
}

func TestWriteSize_OutOfRange(t *testing.T) {
	buffer := stream.NewByteBuffer()

	require.Error(t, stream.WriteSize(buffer, math.MaxUint8+1, stream.LengthPrefixTypeAsByte))
	require.Error(t, stream.WriteSize(buffer, math.MaxUint16+1, stream.LengthPrefixTypeAsUint16))
	require.NoError(t, stream.WriteSize(buffer, math.MaxUint16, stream.LengthPrefixTypeAsUint16))
}
