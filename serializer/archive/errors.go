package archive

import "github.com/roboware/serialkit/ierrors"

var (
	// ErrUnknownClass is returned when an archive names a class that is not registered.
	ErrUnknownClass = ierrors.New("unknown class")
	// ErrUnsupportedVersion is returned when a record was written by a newer version of its class.
	ErrUnsupportedVersion = ierrors.New("unsupported version")
	// ErrDuplicateClass is returned when a registration conflicts with an existing class.
	ErrDuplicateClass = ierrors.New("duplicate class")
	// ErrInvalidClassName is returned for empty or oversized class names.
	ErrInvalidClassName = ierrors.New("invalid class name")
	// ErrTypeMismatch is returned when a record holds a class other than the one requested.
	ErrTypeMismatch = ierrors.New("type mismatch")
	// ErrUnexpectedNull is returned when a null record is read into an existing object.
	ErrUnexpectedNull = ierrors.New("unexpected null object")
	// ErrTimeOutOfRange is returned for timestamps that do not fit into int64 Unix nanoseconds.
	ErrTimeOutOfRange = ierrors.New("time out of range")
	// ErrNotSerializable is returned when a factory does not produce a usable object.
	ErrNotSerializable = ierrors.New("not serializable")
)
