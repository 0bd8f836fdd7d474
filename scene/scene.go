// Package scene contains persisted objects of 3D scenes.
package scene

import (
	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/serializer/archive"
)

// Class names written to archives.
const (
	RenderizableClass       = "Renderizable"
	PointCloudColouredClass = "PointCloudColoured"
	SceneClass              = "Scene"
)

// Renderizable is an object that can be drawn.
type Renderizable interface {
	archive.Serializable

	Name() string
	IsVisible() bool
}

// Renderer draws renderizable objects.
type Renderer interface {
	Render(obj Renderizable) error
}

// Scene is an ordered collection of renderizable objects.
type Scene struct {
	Objects []Renderizable
}

// Insert appends an object to the scene.
func (s *Scene) Insert(obj Renderizable) {
	s.Objects = append(s.Objects, obj)
}

// ByName returns the first object with the given name.
func (s *Scene) ByName(name string) (Renderizable, bool) {
	for _, obj := range s.Objects {
		if obj.Name() == name {
			return obj, true
		}
	}

	return nil, false
}

// Render passes every visible object to r.
func (s *Scene) Render(r Renderer) error {
	for _, obj := range s.Objects {
		if !obj.IsVisible() {
			continue
		}

		if err := r.Render(obj); err != nil {
			return ierrors.Wrapf(err, "failed to render %s", obj.Name())
		}
	}

	return nil
}

func (s *Scene) SerializeVersion() uint8 { return 0 }

func (s *Scene) SerializeTo(a *archive.Archive) error {
	if err := archive.Write(a, uint32(len(s.Objects))); err != nil {
		return err
	}

	for _, obj := range s.Objects {
		if err := a.WriteObject(obj); err != nil {
			return err
		}
	}

	return nil
}

func (s *Scene) SerializeFrom(a *archive.Archive, version uint8) error {
	if version != 0 {
		return archive.UnsupportedVersion(a, s, version)
	}

	var count uint32
	if err := archive.Read(a, &count); err != nil {
		return err
	}

	s.Objects = nil
	for i := uint32(0); i < count; i++ {
		obj, err := a.ReadObjectOf(RenderizableClass)
		if err != nil {
			return err
		}
		if obj == nil {
			continue
		}

		renderizable, ok := obj.(Renderizable)
		if !ok {
			return ierrors.Wrapf(archive.ErrTypeMismatch, "%T is not renderizable", obj)
		}
		s.Objects = append(s.Objects, renderizable)
	}

	return nil
}

// RegisterClasses registers all scene classes.
func RegisterClasses(r *archive.Registry) error {
	if err := r.Register(PointCloudColouredClass, func() archive.Serializable { return NewPointCloudColoured() }, archive.WithBaseName(RenderizableClass)); err != nil {
		return ierrors.Wrapf(err, "failed to register %s", PointCloudColouredClass)
	}

	if err := r.Register(SceneClass, func() archive.Serializable { return new(Scene) }); err != nil {
		return ierrors.Wrapf(err, "failed to register %s", SceneClass)
	}

	return nil
}
