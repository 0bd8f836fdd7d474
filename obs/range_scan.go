package obs

import (
	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/serializer/archive"
	"github.com/roboware/serialkit/serializer/extstore"
)

// Points3D holds the coordinates of a point cloud as three parallel slices.
type Points3D struct {
	X, Y, Z []float32
}

// Len returns the number of points.
func (p Points3D) Len() int {
	return len(p.X)
}

func (p Points3D) validate() error {
	if len(p.Y) != len(p.X) || len(p.Z) != len(p.X) {
		return ierrors.Errorf("points have %d x, %d y and %d z coordinates", len(p.X), len(p.Y), len(p.Z))
	}

	return nil
}

var points3DCodec = extstore.Codec[Points3D]{
	Write: func(a *archive.Archive, p Points3D) error {
		if err := p.validate(); err != nil {
			return err
		}

		for _, coordinates := range [][]float32{p.X, p.Y, p.Z} {
			if err := archive.WriteSlice(a, coordinates); err != nil {
				return err
			}
		}

		return nil
	},
	Read: func(a *archive.Archive) (Points3D, error) {
		var p Points3D
		for _, coordinates := range []*[]float32{&p.X, &p.Y, &p.Z} {
			if err := archive.ReadSlice(a, coordinates); err != nil {
				return p, err
			}
		}

		return p, p.validate()
	},
}

// RangeScan3D is the output of a time-of-flight or structured-light 3D camera: a point cloud,
// a range image and optional intensity and confidence images. The point cloud and the range
// image can be stored externally.
type RangeScan3D struct {
	Header

	MaxRange   float32
	SensorPose Pose3D
	StdError   float32

	HasPoints3D   bool
	HasRangeImage bool

	// IntensityImage and ConfidenceImage are nil if the sensor does not provide them.
	IntensityImage  *Image
	ConfidenceImage *Image

	CameraParams          CameraParams
	CameraParamsIntensity CameraParams

	points     *extstore.Payload[Points3D]
	rangeImage *extstore.Payload[Matrix]
}

// NewRangeScan3D creates an empty scan.
func NewRangeScan3D() *RangeScan3D {
	return &RangeScan3D{
		MaxRange:              5,
		StdError:              0.01,
		CameraParams:          *NewCameraParams(),
		CameraParamsIntensity: *NewCameraParams(),
		points:                extstore.NewPayload(points3DCodec, Points3D{}),
		rangeImage:            extstore.NewPayload(matrixCodec, Matrix{}),
	}
}

// Points returns the point cloud. It is empty for externally stored points that are not loaded.
func (s *RangeScan3D) Points() Points3D {
	return s.pointsPayload().Value()
}

// SetPoints replaces the point cloud and embeds it again.
func (s *RangeScan3D) SetPoints(points Points3D) error {
	if err := points.validate(); err != nil {
		return err
	}

	s.HasPoints3D = true
	s.pointsPayload().Set(points)

	return nil
}

// RangeImage returns the range image. It is empty for an externally stored image that is not loaded.
func (s *RangeScan3D) RangeImage() Matrix {
	return s.rangeImagePayload().Value()
}

// SetRangeImage replaces the range image and embeds it again.
func (s *RangeScan3D) SetRangeImage(m Matrix) {
	s.HasRangeImage = true
	s.rangeImagePayload().Set(m)
}

// Points3DIsExternallyStored reports whether the point cloud is stored in a side file.
func (s *RangeScan3D) Points3DIsExternallyStored() bool {
	return s.pointsPayload().IsSpilled()
}

// RangeImageIsExternallyStored reports whether the range image is stored in a side file.
func (s *RangeScan3D) RangeImageIsExternallyStored() bool {
	return s.rangeImagePayload().IsSpilled()
}

// Points3DConvertToExternalStorage stores the point cloud in the side file at path.
func (s *RangeScan3D) Points3DConvertToExternalStorage(c *extstore.Controller, path string) error {
	return s.pointsPayload().ConvertToExternalStorage(c, path)
}

// RangeImageConvertToExternalStorage stores the range image in the side file at path.
func (s *RangeScan3D) RangeImageConvertToExternalStorage(c *extstore.Controller, path string) error {
	return s.rangeImagePayload().ConvertToExternalStorage(c, path)
}

// ConvertToExternalStorage stores every embedded payload in side files named after baseName.
func (s *RangeScan3D) ConvertToExternalStorage(c *extstore.Controller, baseName string) error {
	if s.HasPoints3D && !s.pointsPayload().IsSpilled() {
		if err := s.Points3DConvertToExternalStorage(c, baseName+"_3d.bin"); err != nil {
			return err
		}
	}

	if s.HasRangeImage && !s.rangeImagePayload().IsSpilled() {
		if err := s.RangeImageConvertToExternalStorage(c, baseName+"_ranges.bin"); err != nil {
			return err
		}
	}

	if s.IntensityImage != nil {
		if err := s.IntensityImage.ConvertToExternalStorage(c, baseName+"_intensity"); err != nil {
			return err
		}
	}

	if s.ConfidenceImage != nil {
		return s.ConfidenceImage.ConvertToExternalStorage(c, baseName+"_confidence")
	}

	return nil
}

// Load loads all externally stored payloads.
func (s *RangeScan3D) Load(c *extstore.Controller) error {
	if s.HasPoints3D {
		if err := s.pointsPayload().Load(c); err != nil {
			return ierrors.Wrap(err, "failed to load points")
		}
	}

	if s.HasRangeImage {
		if err := s.rangeImagePayload().Load(c); err != nil {
			return ierrors.Wrap(err, "failed to load range image")
		}
	}

	for _, image := range s.images() {
		if err := image.Load(c); err != nil {
			return ierrors.Wrap(err, "failed to load image")
		}
	}

	return nil
}

// Unload drops the in-memory copies of all externally stored payloads. Embedded payloads stay in memory.
func (s *RangeScan3D) Unload() {
	s.pointsPayload().Unload()
	s.rangeImagePayload().Unload()

	for _, image := range s.images() {
		image.Unload()
	}
}

// ExternalPaths returns the side files of all externally stored payloads.
func (s *RangeScan3D) ExternalPaths() []string {
	var paths []string
	if s.pointsPayload().IsSpilled() {
		paths = append(paths, s.pointsPayload().Path())
	}
	if s.rangeImagePayload().IsSpilled() {
		paths = append(paths, s.rangeImagePayload().Path())
	}
	for _, image := range s.images() {
		paths = append(paths, image.ExternalPaths()...)
	}

	return paths
}

// Zone extracts the rows [r1, r2) and columns [c1, c2) of the sensor into a new scan.
// The resolution of the sensor is taken from CameraParams and all payloads have to be loaded.
func (s *RangeScan3D) Zone(r1, r2, c1, c2 uint32) (*RangeScan3D, error) {
	cols, rows := s.CameraParams.NCols, s.CameraParams.NRows
	if r1 >= r2 || c1 >= c2 || r2 > rows || c2 > cols {
		return nil, ierrors.Wrapf(ErrInvalidZone, "rows [%d,%d) and columns [%d,%d) of %dx%d", r1, r2, c1, c2, rows, cols)
	}

	zone := NewRangeScan3D()
	zone.Header = s.Header
	zone.MaxRange = s.MaxRange
	zone.SensorPose = s.SensorPose
	zone.StdError = s.StdError
	zone.CameraParams = s.CameraParams
	zone.CameraParamsIntensity = s.CameraParamsIntensity

	if s.HasRangeImage {
		if !s.rangeImagePayload().IsLoaded() {
			return nil, ierrors.Wrap(ErrNotLoaded, "range image")
		}

		rangeImage := s.rangeImagePayload().Value()
		if rangeImage.Rows < r2 || rangeImage.Cols < c2 {
			return nil, ierrors.Wrapf(ErrInvalidZone, "range image of %dx%d", rangeImage.Rows, rangeImage.Cols)
		}
		zone.SetRangeImage(rangeImage.Sub(r1, r2, c1, c2))
	}

	var err error
	if s.IntensityImage != nil {
		if zone.IntensityImage, err = s.IntensityImage.Patch(c1, r1, c2-c1, r2-r1); err != nil {
			return nil, ierrors.Wrap(err, "intensity image")
		}
	}
	if s.ConfidenceImage != nil {
		if zone.ConfidenceImage, err = s.ConfidenceImage.Patch(c1, r1, c2-c1, r2-r1); err != nil {
			return nil, ierrors.Wrap(err, "confidence image")
		}
	}

	if s.HasPoints3D {
		if !s.pointsPayload().IsLoaded() {
			return nil, ierrors.Wrap(ErrNotLoaded, "points")
		}

		points := s.pointsPayload().Value()
		if points.Len() < int(rows)*int(cols) {
			return nil, ierrors.Wrapf(ErrInvalidZone, "%d points for a %dx%d sensor", points.Len(), rows, cols)
		}

		var sub Points3D
		for r := r1; r < r2; r++ {
			for c := c1; c < c2; c++ {
				idx := int(r)*int(cols) + int(c)
				sub.X = append(sub.X, points.X[idx])
				sub.Y = append(sub.Y, points.Y[idx])
				sub.Z = append(sub.Z, points.Z[idx])
			}
		}
		if err = zone.SetPoints(sub); err != nil {
			return nil, err
		}
	}

	return zone, nil
}

func (s *RangeScan3D) pointsPayload() *extstore.Payload[Points3D] {
	if s.points == nil {
		s.points = extstore.NewPayload(points3DCodec, Points3D{})
	}

	return s.points
}

func (s *RangeScan3D) rangeImagePayload() *extstore.Payload[Matrix] {
	if s.rangeImage == nil {
		s.rangeImage = extstore.NewPayload(matrixCodec, Matrix{})
	}

	return s.rangeImage
}

func (s *RangeScan3D) images() []*Image {
	images := make([]*Image, 0, 2)
	for _, image := range []*Image{s.IntensityImage, s.ConfidenceImage} {
		if image != nil {
			images = append(images, image)
		}
	}

	return images
}

// Version history:
//
//	0: points with a legacy validity byte per point, no images
//	1: flag for points, range, intensity and confidence images
//	2: camera parameters
//	3: descriptors of the externally stored points and range image
//	4: camera parameters of the intensity image
func (s *RangeScan3D) SerializeVersion() uint8 { return 4 }

func (s *RangeScan3D) SerializeTo(a *archive.Archive) error {
	if err := archive.Write(a, s.MaxRange); err != nil {
		return err
	}
	if err := a.WriteObject(&s.SensorPose); err != nil {
		return err
	}

	if err := archive.Write(a, s.HasPoints3D); err != nil {
		return err
	}
	if s.HasPoints3D {
		// spilled points are written as an empty cloud, even if loaded
		var points Points3D
		if !s.pointsPayload().IsSpilled() {
			points = s.pointsPayload().Value()
		}
		if err := writeInlinePoints(a, points); err != nil {
			return err
		}
	}

	if err := archive.Write(a, s.HasRangeImage); err != nil {
		return err
	}
	if s.HasRangeImage {
		var rangeImage Matrix
		if !s.rangeImagePayload().IsSpilled() {
			rangeImage = s.rangeImagePayload().Value()
		}
		if err := a.WriteObject(&rangeImage); err != nil {
			return err
		}
	}

	for _, image := range []*Image{s.IntensityImage, s.ConfidenceImage} {
		if err := archive.Write(a, image != nil); err != nil {
			return err
		}
		if image != nil {
			if err := a.WriteObject(image); err != nil {
				return err
			}
		}
	}

	if err := a.WriteObject(&s.CameraParams); err != nil {
		return err
	}
	if err := a.WriteObject(&s.CameraParamsIntensity); err != nil {
		return err
	}

	if err := archive.Write(a, s.StdError); err != nil {
		return err
	}
	if err := a.WriteTime(s.Time); err != nil {
		return err
	}
	if err := a.WriteString(s.Label); err != nil {
		return err
	}

	if err := s.pointsPayload().WriteDescriptor(a); err != nil {
		return err
	}

	return s.rangeImagePayload().WriteDescriptor(a)
}

func (s *RangeScan3D) SerializeFrom(a *archive.Archive, version uint8) error {
	if version > 4 {
		return archive.UnsupportedVersion(a, s, version)
	}

	if err := archive.Read(a, &s.MaxRange); err != nil {
		return err
	}
	if err := a.ReadInto(&s.SensorPose); err != nil {
		return err
	}

	s.HasPoints3D = true
	if version >= 1 {
		if err := archive.Read(a, &s.HasPoints3D); err != nil {
			return err
		}
	}

	var points Points3D
	if s.HasPoints3D {
		var err error
		if points, err = readInlinePoints(a, version == 0); err != nil {
			return err
		}
	}

	var rangeImage Matrix
	s.HasRangeImage = false
	s.IntensityImage = nil
	s.ConfidenceImage = nil

	if version >= 1 {
		if err := archive.Read(a, &s.HasRangeImage); err != nil {
			return err
		}
		if s.HasRangeImage {
			if err := a.ReadInto(&rangeImage); err != nil {
				return err
			}
		}

		for _, target := range []**Image{&s.IntensityImage, &s.ConfidenceImage} {
			var present bool
			if err := archive.Read(a, &present); err != nil {
				return err
			}
			if present {
				image, err := archive.ReadAs[*Image](a)
				if err != nil {
					return err
				}
				*target = image
			}
		}

		if version >= 2 {
			if err := a.ReadInto(&s.CameraParams); err != nil {
				return err
			}

			if version >= 4 {
				if err := a.ReadInto(&s.CameraParamsIntensity); err != nil {
					return err
				}
			} else {
				s.CameraParamsIntensity = s.CameraParams
			}
		}
	}

	if err := archive.Read(a, &s.StdError); err != nil {
		return err
	}
	if err := a.ReadTime(&s.Time); err != nil {
		return err
	}
	if err := a.ReadString(&s.Label); err != nil {
		return err
	}

	s.pointsPayload().Set(points)
	s.rangeImagePayload().Set(rangeImage)

	if version >= 3 {
		if err := s.pointsPayload().ReadDescriptor(a); err != nil {
			return err
		}
		if !s.pointsPayload().IsSpilled() {
			s.pointsPayload().Set(points)
		}

		if err := s.rangeImagePayload().ReadDescriptor(a); err != nil {
			return err
		}
		if !s.rangeImagePayload().IsSpilled() {
			s.rangeImagePayload().Set(rangeImage)
		}
	}

	return nil
}

func writeInlinePoints(a *archive.Archive, p Points3D) error {
	if err := p.validate(); err != nil {
		return err
	}

	if err := archive.Write(a, uint32(p.Len())); err != nil {
		return err
	}

	for _, coordinates := range [][]float32{p.X, p.Y, p.Z} {
		if err := archive.WriteArray(a, coordinates); err != nil {
			return err
		}
	}

	return nil
}

func readInlinePoints(a *archive.Archive, legacyValidity bool) (Points3D, error) {
	var (
		p     Points3D
		count uint32
	)
	if err := archive.Read(a, &count); err != nil {
		return p, err
	}

	for _, coordinates := range []*[]float32{&p.X, &p.Y, &p.Z} {
		if err := archive.ReadArray(a, coordinates, int(count)); err != nil {
			return p, err
		}
	}

	if legacyValidity {
		// one validity byte per point, no longer used
		var validity []uint8
		if err := archive.ReadArray(a, &validity, int(count)); err != nil {
			return p, err
		}
	}

	return p, nil
}
