package obs

import (
	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/serializer/archive"
	"github.com/roboware/serialkit/serializer/extstore"
)

var pixelsCodec = extstore.Codec[[]byte]{
	Write: func(a *archive.Archive, pixels []byte) error {
		return a.WriteBuffer(pixels)
	},
	Read: func(a *archive.Archive) ([]byte, error) {
		var pixels []byte
		err := a.ReadBuffer(&pixels)

		return pixels, err
	},
}

// Image is an 8 bit per channel image whose pixels can be stored externally.
type Image struct {
	Width, Height uint32
	Channels      uint8

	pixels *extstore.Payload[[]byte]
}

// NewImage creates an image with the given row-major, interleaved pixels.
// The pixels must hold exactly width*height*channels bytes.
func NewImage(width, height uint32, channels uint8, pixels []byte) (*Image, error) {
	i := &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
	}
	if err := i.SetPixels(pixels); err != nil {
		return nil, err
	}

	return i, nil
}

// Pixels returns the pixels. They are nil for externally stored images that are not loaded.
func (i *Image) Pixels() []byte {
	return i.payload().Value()
}

// SetPixels replaces the pixels and embeds them again.
func (i *Image) SetPixels(pixels []byte) error {
	if err := i.checkPixels(pixels); err != nil {
		return err
	}
	i.payload().Set(pixels)

	return nil
}

func (i *Image) payload() *extstore.Payload[[]byte] {
	if i.pixels == nil {
		i.pixels = extstore.NewPayload(pixelsCodec, []byte(nil))
	}

	return i.pixels
}

func (i *Image) size() uint64 {
	return uint64(i.Width) * uint64(i.Height) * uint64(i.Channels)
}

func (i *Image) checkPixels(pixels []byte) error {
	if uint64(len(pixels)) != i.size() {
		return ierrors.Wrapf(ErrInvalidImage, "%d bytes for %dx%d pixels with %d channels", len(pixels), i.Width, i.Height, i.Channels)
	}

	return nil
}

// IsExternallyStored reports whether the pixels are stored in a side file.
func (i *Image) IsExternallyStored() bool {
	return i.payload().IsSpilled()
}

// ConvertToExternalStorage stores the pixels in the side file baseName + ".bin".
// It is a no-op for images that are stored externally already.
func (i *Image) ConvertToExternalStorage(c *extstore.Controller, baseName string) error {
	if i.payload().IsSpilled() {
		return nil
	}

	return i.pixels.ConvertToExternalStorage(c, baseName+".bin")
}

// Load loads externally stored pixels. Pixels that do not match the image size are dropped again.
func (i *Image) Load(c *extstore.Controller) error {
	pixels := i.payload()
	if !pixels.IsSpilled() {
		return nil
	}
	if err := pixels.Load(c); err != nil {
		return err
	}

	if err := i.checkPixels(pixels.Value()); err != nil {
		pixels.Unload()

		return ierrors.Wrapf(err, "side file %s", pixels.Path())
	}

	return nil
}

// Unload drops the in-memory copy of externally stored pixels.
func (i *Image) Unload() {
	i.payload().Unload()
}

// ExternalPaths returns the side file of the pixels if they are stored externally.
func (i *Image) ExternalPaths() []string {
	if !i.payload().IsSpilled() {
		return nil
	}

	return []string{i.pixels.Path()}
}

// Patch returns a copy of the region with the top left corner (x, y) and the given size.
func (i *Image) Patch(x, y, width, height uint32) (*Image, error) {
	if !i.payload().IsLoaded() {
		return nil, ierrors.Wrap(ErrNotLoaded, "image pixels")
	}
	if width > i.Width || x > i.Width-width || height > i.Height || y > i.Height-height {
		return nil, ierrors.Wrapf(ErrInvalidZone, "patch %dx%d at (%d,%d) exceeds image of %dx%d", width, height, x, y, i.Width, i.Height)
	}

	pixels := i.pixels.Value()
	if err := i.checkPixels(pixels); err != nil {
		return nil, err
	}

	stride := int(i.Width) * int(i.Channels)
	rowBytes := int(width) * int(i.Channels)

	patch := make([]byte, 0, rowBytes*int(height))
	for row := y; row < y+height; row++ {
		start := int(row)*stride + int(x)*int(i.Channels)
		patch = append(patch, pixels[start:start+rowBytes]...)
	}

	return NewImage(width, height, i.Channels, patch)
}

func (i *Image) SerializeVersion() uint8 { return 0 }

func (i *Image) SerializeTo(a *archive.Archive) error {
	if err := archive.Write(a, i.Width); err != nil {
		return err
	}
	if err := archive.Write(a, i.Height); err != nil {
		return err
	}
	if err := archive.Write(a, i.Channels); err != nil {
		return err
	}

	pixels := i.payload()
	if !pixels.IsSpilled() {
		if err := i.checkPixels(pixels.Value()); err != nil {
			return err
		}
	}

	return pixels.WriteTo(a)
}

func (i *Image) SerializeFrom(a *archive.Archive, version uint8) error {
	if version != 0 {
		return archive.UnsupportedVersion(a, i, version)
	}

	if err := archive.Read(a, &i.Width); err != nil {
		return err
	}
	if err := archive.Read(a, &i.Height); err != nil {
		return err
	}
	if err := archive.Read(a, &i.Channels); err != nil {
		return err
	}

	pixels := i.payload()
	if err := pixels.ReadFrom(a); err != nil {
		return err
	}

	if pixels.IsSpilled() {
		return nil
	}

	return i.checkPixels(pixels.Value())
}
