package archive

import (
	"fmt"

	"github.com/roboware/serialkit/ierrors"
)

// Serializable is implemented by every class that can be written to and read from an Archive.
//
// SerializeTo writes the fields of the current version. SerializeFrom receives the version
// stored in front of the fields and has to understand every version up to SerializeVersion,
// filling fields that did not exist in older versions with defaults or values derived from
// the stored ones.
type Serializable interface {
	// SerializeVersion returns the version written by SerializeTo.
	SerializeVersion() uint8
	// SerializeTo writes the fields of the object.
	SerializeTo(a *Archive) error
	// SerializeFrom reads the fields of the object as written by the given version.
	SerializeFrom(a *Archive, version uint8) error
}

// UnsupportedVersion returns the error for a stored version the object does not understand.
// It is meant for the default arm of the version switch in SerializeFrom.
func UnsupportedVersion(a *Archive, obj Serializable, version uint8) error {
	className := fmt.Sprintf("%T", obj)
	if a != nil && a.registry != nil {
		if name, err := a.registry.NameOf(obj); err == nil {
			className = name
		}
	}

	return ierrors.Wrapf(ErrUnsupportedVersion, "class %s: stored version %d, supported up to %d", className, version, obj.SerializeVersion())
}
