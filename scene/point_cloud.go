package scene

import (
	"math"

	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/serializer/archive"
)

// ErrInvalidCoordinate is returned for coordinate indices other than 0 (x), 1 (y) and 2 (z).
var ErrInvalidCoordinate = ierrors.New("invalid coordinate index")

// Point is a coloured point. The colour channels are in [0, 1].
type Point struct {
	X, Y, Z float32
	R, G, B float32
}

func (p Point) coordinate(index int) float32 {
	switch index {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// Colormap maps a value in [0, 1] to a colour.
type Colormap uint8

const (
	ColormapGrayscale Colormap = iota
	ColormapJet
)

// Color returns the colour of v. Values outside [0, 1] are clamped.
func (c Colormap) Color(v float32) (r, g, b float32) {
	v = clamp(v)

	if c == ColormapGrayscale {
		return v, v, v
	}

	return jet(v, 3), jet(v, 2), jet(v, 1)
}

func jet(v float32, offset float32) float32 {
	return clamp(1.5 - float32(math.Abs(float64(4*v-offset))))
}

func clamp(v float32) float32 {
	switch {
	case v < 0 || math.IsNaN(float64(v)):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// PointCloudColoured is a cloud of individually coloured points.
type PointCloudColoured struct {
	name        string
	visible     bool
	PointSize   float32
	PointSmooth bool

	points []Point
}

// NewPointCloudColoured creates an empty, visible cloud.
func NewPointCloudColoured() *PointCloudColoured {
	return &PointCloudColoured{
		visible:   true,
		PointSize: 1,
	}
}

func (c *PointCloudColoured) Name() string {
	return c.name
}

func (c *PointCloudColoured) SetName(name string) {
	c.name = name
}

func (c *PointCloudColoured) IsVisible() bool {
	return c.visible
}

func (c *PointCloudColoured) SetVisible(visible bool) {
	c.visible = visible
}

// PushBack appends a point.
func (c *PointCloudColoured) PushBack(p Point) {
	c.points = append(c.points, p)
}

// Len returns the number of points.
func (c *PointCloudColoured) Len() int {
	return len(c.points)
}

// Point returns the i-th point.
func (c *PointCloudColoured) Point(i int) Point {
	return c.points[i]
}

// SetPoint replaces the i-th point.
func (c *PointCloudColoured) SetPoint(i int, p Point) {
	c.points[i] = p
}

// Clear removes all points.
func (c *PointCloudColoured) Clear() {
	c.points = nil
}

// BoundingBox returns the corners of the axis aligned box enclosing all points.
// ok is false for an empty cloud.
func (c *PointCloudColoured) BoundingBox() (minimum, maximum [3]float32, ok bool) {
	if len(c.points) == 0 {
		return minimum, maximum, false
	}

	for i := 0; i < 3; i++ {
		minimum[i] = c.points[0].coordinate(i)
		maximum[i] = minimum[i]
	}

	for _, p := range c.points[1:] {
		for i := 0; i < 3; i++ {
			v := p.coordinate(i)
			if v < minimum[i] {
				minimum[i] = v
			}
			if v > maximum[i] {
				maximum[i] = v
			}
		}
	}

	return minimum, maximum, true
}

// RecolorizeByCoordinate colours every point by mapping the coordinate with the given index
// from [coordMin, coordMax] to [0, 1].
func (c *PointCloudColoured) RecolorizeByCoordinate(coordMin, coordMax float32, coordIndex int, colormap Colormap) error {
	if coordIndex < 0 || coordIndex > 2 {
		return ierrors.Wrapf(ErrInvalidCoordinate, "index %d", coordIndex)
	}

	span := coordMax - coordMin
	if span == 0 {
		span = 1
	}

	for i := range c.points {
		p := &c.points[i]
		p.R, p.G, p.B = colormap.Color((p.coordinate(coordIndex) - coordMin) / span)
	}

	return nil
}

// Version 0 had no point smoothing flag.
func (c *PointCloudColoured) SerializeVersion() uint8 { return 1 }

func (c *PointCloudColoured) SerializeTo(a *archive.Archive) error {
	if err := a.WriteString(c.name); err != nil {
		return err
	}
	if err := archive.Write(a, c.visible); err != nil {
		return err
	}
	if err := archive.Write(a, c.PointSize); err != nil {
		return err
	}
	if err := archive.Write(a, c.PointSmooth); err != nil {
		return err
	}

	if err := archive.Write(a, uint32(len(c.points))); err != nil {
		return err
	}

	values := make([]float32, 0, 6*len(c.points))
	for _, p := range c.points {
		values = append(values, p.X, p.Y, p.Z, p.R, p.G, p.B)
	}

	return archive.WriteArray(a, values)
}

func (c *PointCloudColoured) SerializeFrom(a *archive.Archive, version uint8) error {
	if version > 1 {
		return archive.UnsupportedVersion(a, c, version)
	}

	if err := a.ReadString(&c.name); err != nil {
		return err
	}
	if err := archive.Read(a, &c.visible); err != nil {
		return err
	}
	if err := archive.Read(a, &c.PointSize); err != nil {
		return err
	}

	c.PointSmooth = false
	if version >= 1 {
		if err := archive.Read(a, &c.PointSmooth); err != nil {
			return err
		}
	}

	var count uint32
	if err := archive.Read(a, &count); err != nil {
		return err
	}

	var values []float32
	if err := archive.ReadArray(a, &values, 6*int(count)); err != nil {
		return err
	}

	c.points = make([]Point, count)
	for i := range c.points {
		v := values[6*i : 6*i+6]
		c.points[i] = Point{X: v[0], Y: v[1], Z: v[2], R: v[3], G: v[4], B: v[5]}
	}

	return nil
}
