package archive

import (
	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/serializer/stream"
)

// nullTag takes the place of the class name length for nil objects.
const nullTag uint32 = 0xFFFFFFFF

// WriteObject writes the class name, the version and the fields of obj.
// A nil obj, including a typed nil pointer, is written as a null record.
func (a *Archive) WriteObject(obj Serializable) error {
	if a.err != nil {
		return a.err
	}

	if isNil(obj) {
		return Write(a, nullTag)
	}

	name, err := a.registry.NameOf(obj)
	if err != nil {
		return a.fail(err)
	}

	if err = a.WriteString(name); err != nil {
		return err
	}
	if err = Write(a, obj.SerializeVersion()); err != nil {
		return err
	}

	if err = obj.SerializeTo(a); err != nil {
		return a.fail(ierrors.Wrapf(err, "failed to serialize %s", name))
	}

	return nil
}

// WriteObjects writes a uint32 count followed by one record per object.
func WriteObjects[T Serializable](a *Archive, objects []T) error {
	if err := a.writeLength(len(objects)); err != nil {
		return err
	}

	for _, obj := range objects {
		if err := a.WriteObject(obj); err != nil {
			return err
		}
	}

	return nil
}

// ReadObject reads a record and returns a new instance of the stored class.
// A null record yields nil without an error.
func (a *Archive) ReadObject() (Serializable, error) {
	descriptor, err := a.readHeader()
	if err != nil || descriptor == nil {
		return nil, err
	}

	return a.readNew(descriptor)
}

// ReadObjectOf reads a record whose class has to derive from base.
func (a *Archive) ReadObjectOf(base string) (Serializable, error) {
	descriptor, err := a.readHeader()
	if err != nil || descriptor == nil {
		return nil, err
	}

	if !a.registry.DerivesFrom(descriptor.Name, base) {
		return nil, a.fail(ierrors.Wrapf(ErrTypeMismatch, "class %s does not derive from %s", descriptor.Name, base))
	}

	return a.readNew(descriptor)
}

// ReadInto reads a record into the existing object dst. The stored class has to be the class of dst.
func (a *Archive) ReadInto(dst Serializable) error {
	expected, err := a.registry.NameOf(dst)
	if err != nil {
		return a.fail(err)
	}

	descriptor, err := a.readHeader()
	if err != nil {
		return err
	}
	if descriptor == nil {
		return a.fail(ierrors.Wrapf(ErrUnexpectedNull, "expected %s", expected))
	}
	if descriptor.Name != expected {
		return a.fail(ierrors.Wrapf(ErrTypeMismatch, "expected %s, got %s", expected, descriptor.Name))
	}

	return a.readBody(descriptor.Name, dst)
}

// ReadAs reads a record and returns it as T. A null record yields the zero value of T.
func ReadAs[T Serializable](a *Archive) (T, error) {
	var zero T

	obj, err := a.ReadObject()
	if err != nil || obj == nil {
		return zero, err
	}

	typed, ok := obj.(T)
	if !ok {
		return zero, a.fail(ierrors.Wrapf(ErrTypeMismatch, "expected %T, got %T", zero, obj))
	}

	return typed, nil
}

// ReadObjects reads a collection written by WriteObjects. Null records are kept as nil entries.
func (a *Archive) ReadObjects() ([]Serializable, error) {
	count, err := a.readCount()
	if err != nil {
		return nil, err
	}

	objects := make([]Serializable, 0, count)
	for i := 0; i < count; i++ {
		obj, err := a.ReadObject()
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}

	return objects, nil
}

// ReadObjectsAs reads a collection written by WriteObjects where every entry has to be a T or null.
func ReadObjectsAs[T Serializable](a *Archive) ([]T, error) {
	count, err := a.readCount()
	if err != nil {
		return nil, err
	}

	objects := make([]T, 0, count)
	for i := 0; i < count; i++ {
		obj, err := ReadAs[T](a)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}

	return objects, nil
}

// ForEachObject reads records until the end of the stream and passes each one to consumer.
func (a *Archive) ForEachObject(consumer func(obj Serializable) error) error {
	for {
		available, err := a.Available()
		if err != nil {
			return err
		}
		if available == 0 {
			return nil
		}

		obj, err := a.ReadObject()
		if err != nil {
			return err
		}

		if err = consumer(obj); err != nil {
			return err
		}
	}
}

// readHeader reads the class name of the next record. It returns nil for a null record.
func (a *Archive) readHeader() (*ClassDescriptor, error) {
	if a.err != nil {
		return nil, a.err
	}

	var nameLength uint32
	if err := Read(a, &nameLength); err != nil {
		return nil, err
	}
	if nameLength == nullTag {
		return nil, nil
	}
	if nameLength == 0 || nameLength > MaxClassNameLength {
		return nil, a.fail(ierrors.Wrapf(ErrInvalidClassName, "class name length %d", nameLength))
	}

	name, err := stream.ReadBytes(a.stream, int(nameLength))
	if err != nil {
		return nil, a.fail(ierrors.Wrap(err, "failed to read class name"))
	}

	descriptor, err := a.registry.Resolve(string(name))
	if err != nil {
		a.logger.Debugw("unknown class in archive", "class", string(name))

		return nil, a.fail(err)
	}

	return descriptor, nil
}

func (a *Archive) readNew(descriptor *ClassDescriptor) (Serializable, error) {
	obj := descriptor.New()
	if isNil(obj) {
		return nil, a.fail(ierrors.Wrapf(ErrNotSerializable, "factory of class %s returned nil", descriptor.Name))
	}

	if err := a.readBody(descriptor.Name, obj); err != nil {
		return nil, err
	}

	return obj, nil
}

func (a *Archive) readBody(name string, obj Serializable) error {
	var version uint8
	if err := Read(a, &version); err != nil {
		return err
	}

	if version > obj.SerializeVersion() {
		return a.fail(UnsupportedVersion(a, obj, version))
	}

	if err := obj.SerializeFrom(a, version); err != nil {
		return a.fail(ierrors.Wrapf(err, "failed to deserialize %s version %d", name, version))
	}

	return nil
}

// readCount reads a collection size and rejects sizes that can not fit into the rest of the stream.
func (a *Archive) readCount() (int, error) {
	count, err := a.readLength()
	if err != nil {
		return 0, err
	}

	available, err := a.Available()
	if err != nil {
		return 0, err
	}

	// every record takes at least the four bytes of its name length
	if int64(count)*4 > available {
		return 0, a.fail(ierrors.Wrapf(stream.ErrEndOfStream, "%d records do not fit into %d bytes", count, available))
	}

	return count, nil
}
