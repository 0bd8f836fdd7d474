package extstore

import (
	"github.com/google/uuid"

	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/serializer/archive"
)

// Codec writes and reads the value of a Payload.
type Codec[T any] struct {
	Write func(a *archive.Archive, value T) error
	Read  func(a *archive.Archive) (T, error)
}

// Payload is a value that is either embedded in the archive of its owner or spilled to a side file.
//
// A spilled payload keeps the relative path of its side file. Load reads the side file into memory
// without leaving the spilled mode and Unload drops the in-memory copy again.
type Payload[T any] struct {
	codec   Codec[T]
	value   T
	spilled bool
	loaded  bool
	path    string
}

// NewPayload creates an embedded payload holding value.
func NewPayload[T any](codec Codec[T], value T) *Payload[T] {
	return &Payload[T]{
		codec: codec,
		value: value,
	}
}

// Value returns the in-memory value. For a spilled payload that is not loaded this is the zero value.
func (p *Payload[T]) Value() T {
	return p.value
}

// Set replaces the value and turns the payload back into an embedded one.
// The side file of a previously spilled payload is left untouched.
func (p *Payload[T]) Set(value T) {
	p.value = value
	p.spilled = false
	p.loaded = false
	p.path = ""
}

// IsSpilled reports whether the payload is stored in a side file.
func (p *Payload[T]) IsSpilled() bool {
	return p.spilled
}

// IsLoaded reports whether the value is available in memory.
func (p *Payload[T]) IsLoaded() bool {
	return !p.spilled || p.loaded
}

// Path returns the relative path of the side file or an empty string for embedded payloads.
func (p *Payload[T]) Path() string {
	return p.path
}

// ConvertToExternalStorage writes the value to the side file at path and drops the in-memory copy.
// An empty path generates a unique file name.
func (p *Payload[T]) ConvertToExternalStorage(c *Controller, path string) error {
	if p.spilled {
		return ierrors.Wrapf(ErrAlreadySpilled, "stored at %s", p.path)
	}

	if path == "" {
		path = uuid.NewString() + ".bin"
	}

	if err := c.write(path, func(a *archive.Archive) error {
		return p.codec.Write(a, p.value)
	}); err != nil {
		return err
	}

	var zero T
	p.value = zero
	p.path = path
	p.spilled = true
	p.loaded = false

	return nil
}

// Load reads the side file of a spilled payload into memory. It is a no-op for embedded or loaded payloads.
func (p *Payload[T]) Load(c *Controller) error {
	if !p.spilled || p.loaded {
		return nil
	}

	return c.read(p.path, func(a *archive.Archive) error {
		value, err := p.codec.Read(a)
		if err != nil {
			return err
		}

		p.value = value
		p.loaded = true

		return nil
	})
}

// Unload drops the in-memory copy of a spilled payload. Unload is a no-op for embedded payloads:
// their value is the only copy and clearing it would lose data. Spill first to free the memory.
func (p *Payload[T]) Unload() {
	if !p.spilled {
		return
	}

	var zero T
	p.value = zero
	p.loaded = false
}

// WriteDescriptor writes the storage mode and, for spilled payloads, the relative path.
func (p *Payload[T]) WriteDescriptor(a *archive.Archive) error {
	if err := archive.Write(a, p.spilled); err != nil {
		return err
	}

	if !p.spilled {
		return nil
	}

	return a.WriteString(p.path)
}

// ReadDescriptor reads a descriptor written by WriteDescriptor. A spilled payload is not loaded.
func (p *Payload[T]) ReadDescriptor(a *archive.Archive) error {
	var spilled bool
	if err := archive.Read(a, &spilled); err != nil {
		return err
	}

	var path string
	if spilled {
		if err := a.ReadString(&path); err != nil {
			return err
		}
	}

	var zero T
	p.value = zero
	p.spilled = spilled
	p.loaded = false
	p.path = path

	return nil
}

// WriteTo writes the descriptor followed by the value if the payload is embedded.
func (p *Payload[T]) WriteTo(a *archive.Archive) error {
	if err := p.WriteDescriptor(a); err != nil {
		return err
	}

	if p.spilled {
		return nil
	}

	return p.codec.Write(a, p.value)
}

// ReadFrom reads a payload written by WriteTo.
func (p *Payload[T]) ReadFrom(a *archive.Archive) error {
	if err := p.ReadDescriptor(a); err != nil {
		return err
	}

	if p.spilled {
		return nil
	}

	value, err := p.codec.Read(a)
	if err != nil {
		return err
	}
	p.value = value

	return nil
}

// MarkSpilled switches the payload to the spilled mode for the side file at path without writing it.
// It is used when reading layouts that store the descriptor apart from the value.
func (p *Payload[T]) MarkSpilled(path string) {
	var zero T
	p.value = zero
	p.spilled = true
	p.loaded = false
	p.path = path
}
