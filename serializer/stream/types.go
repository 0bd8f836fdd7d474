package stream

// Primitive is the set of fixed-width values that can be read and written in little-endian byte order.
type Primitive interface {
	~bool | ~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// LengthPrefixType defines the type of the value denoting the length of a byte slice or collection.
type LengthPrefixType byte

const (
	// LengthPrefixTypeAsByte defines a length to be denoted by a byte.
	LengthPrefixTypeAsByte LengthPrefixType = iota
	// LengthPrefixTypeAsUint16 defines a length to be denoted by an uint16.
	LengthPrefixTypeAsUint16
	// LengthPrefixTypeAsUint32 defines a length to be denoted by an uint32.
	LengthPrefixTypeAsUint32
	// LengthPrefixTypeAsUint64 defines a length to be denoted by an uint64.
	LengthPrefixTypeAsUint64
)
