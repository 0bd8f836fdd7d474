package obs

import (
	"fmt"
	"reflect"

	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/serializer/archive"
	"github.com/roboware/serialkit/serializer/extstore"
)

// SensoryFrame groups the observations taken at roughly the same time.
type SensoryFrame struct {
	Observations []Observation
}

// Insert appends an observation to the frame.
func (f *SensoryFrame) Insert(o Observation) {
	f.Observations = append(f.Observations, o)
}

// ConvertToExternalStorage spills the payloads of all observations. The i-th observation uses
// the base name baseName + "_<i>".
func (f *SensoryFrame) ConvertToExternalStorage(c *extstore.Controller, baseName string) error {
	for i, o := range f.Observations {
		if err := o.ConvertToExternalStorage(c, fmt.Sprintf("%s_%d", baseName, i)); err != nil {
			return ierrors.Wrapf(err, "observation %d", i)
		}
	}

	return nil
}

// Load loads the payloads of all observations.
func (f *SensoryFrame) Load(c *extstore.Controller) error {
	for i, o := range f.Observations {
		if err := o.Load(c); err != nil {
			return ierrors.Wrapf(err, "observation %d", i)
		}
	}

	return nil
}

// Unload drops the in-memory copies of the spilled payloads of all observations.
func (f *SensoryFrame) Unload() {
	for _, o := range f.Observations {
		o.Unload()
	}
}

// ExternalPaths returns the side files of all observations.
func (f *SensoryFrame) ExternalPaths() []string {
	var paths []string
	for _, o := range f.Observations {
		paths = append(paths, o.ExternalPaths()...)
	}

	return paths
}

func (f *SensoryFrame) SerializeVersion() uint8 { return 0 }

func (f *SensoryFrame) SerializeTo(a *archive.Archive) error {
	if err := archive.Write(a, uint32(len(f.Observations))); err != nil {
		return err
	}

	for i, o := range f.Observations {
		if isNilObservation(o) {
			return ierrors.Wrapf(archive.ErrUnexpectedNull, "observation %d", i)
		}
		if err := a.WriteObject(o); err != nil {
			return err
		}
	}

	return nil
}

func (f *SensoryFrame) SerializeFrom(a *archive.Archive, version uint8) error {
	if version != 0 {
		return archive.UnsupportedVersion(a, f, version)
	}

	var count uint32
	if err := archive.Read(a, &count); err != nil {
		return err
	}

	f.Observations = nil
	for i := uint32(0); i < count; i++ {
		obj, err := a.ReadObjectOf(ObservationClass)
		if err != nil {
			return err
		}
		if obj == nil {
			return ierrors.Wrapf(archive.ErrUnexpectedNull, "observation %d", i)
		}

		o, ok := obj.(Observation)
		if !ok {
			return ierrors.Wrapf(archive.ErrTypeMismatch, "%T is not an observation", obj)
		}
		f.Observations = append(f.Observations, o)
	}

	return nil
}

func isNilObservation(o Observation) bool {
	if o == nil {
		return true
	}

	v := reflect.ValueOf(o)

	return v.Kind() == reflect.Pointer && v.IsNil()
}

var _ extstore.Externalizable = &SensoryFrame{}
