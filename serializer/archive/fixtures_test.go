package archive_test

import (
	"github.com/roboware/serialkit/serializer/archive"
)

type foo struct {
	Value int16
}

func (f *foo) SerializeVersion() uint8 { return 0 }

func (f *foo) SerializeTo(a *archive.Archive) error {
	return archive.Write(a, f.Value)
}

func (f *foo) SerializeFrom(a *archive.Archive, version uint8) error {
	switch version {
	case 0:
		return archive.Read(a, &f.Value)
	default:
		return archive.UnsupportedVersion(a, f, version)
	}
}

// label went from a single name (v0) to a name plus a weight (v1).
type label struct {
	Name   string
	Weight float32
}

func (l *label) SerializeVersion() uint8 { return 1 }

func (l *label) SerializeTo(a *archive.Archive) error {
	if err := a.WriteString(l.Name); err != nil {
		return err
	}

	return archive.Write(a, l.Weight)
}

func (l *label) SerializeFrom(a *archive.Archive, version uint8) error {
	switch version {
	case 0, 1:
		if err := a.ReadString(&l.Name); err != nil {
			return err
		}

		if version == 0 {
			l.Weight = 1

			return nil
		}

		return archive.Read(a, &l.Weight)
	default:
		return archive.UnsupportedVersion(a, l, version)
	}
}

// pair holds two polymorphic children.
type pair struct {
	Left  archive.Serializable
	Right archive.Serializable
}

func (p *pair) SerializeVersion() uint8 { return 0 }

func (p *pair) SerializeTo(a *archive.Archive) error {
	if err := a.WriteObject(p.Left); err != nil {
		return err
	}

	return a.WriteObject(p.Right)
}

func (p *pair) SerializeFrom(a *archive.Archive, version uint8) (err error) {
	if version != 0 {
		return archive.UnsupportedVersion(a, p, version)
	}

	if p.Left, err = a.ReadObject(); err != nil {
		return err
	}
	p.Right, err = a.ReadObject()

	return err
}

func newTestRegistry() *archive.Registry {
	registry := archive.NewRegistry()
	registry.MustRegister("Foo", func() archive.Serializable { return new(foo) }, archive.WithBaseName("Base"))
	registry.MustRegister("Label", func() archive.Serializable { return new(label) }, archive.WithBaseName("Foo"))
	registry.MustRegister("Pair", func() archive.Serializable { return new(pair) })

	return registry
}
