package obs

import "github.com/roboware/serialkit/serializer/archive"

// CameraParams holds the intrinsic calibration of a pinhole camera.
type CameraParams struct {
	NCols, NRows   uint32
	Fx, Fy, Cx, Cy float64
	// Dist holds the distortion coefficients k1, k2, p1, p2 and k3.
	Dist              [5]float64
	FocalLengthMeters float64
}

// NewCameraParams returns the parameters of an uncalibrated 640x480 camera.
func NewCameraParams() *CameraParams {
	return &CameraParams{
		NCols:             640,
		NRows:             480,
		Fx:                500,
		Fy:                500,
		Cx:                320,
		Cy:                240,
		FocalLengthMeters: 0.002,
	}
}

// Version 0 stored four distortion coefficients, version 1 added k3.
func (c *CameraParams) SerializeVersion() uint8 { return 1 }

func (c *CameraParams) SerializeTo(a *archive.Archive) error {
	if err := archive.Write(a, c.NCols); err != nil {
		return err
	}
	if err := archive.Write(a, c.NRows); err != nil {
		return err
	}

	values := append([]float64{c.Fx, c.Fy, c.Cx, c.Cy}, c.Dist[:]...)
	for _, v := range append(values, c.FocalLengthMeters) {
		if err := archive.Write(a, v); err != nil {
			return err
		}
	}

	return nil
}

func (c *CameraParams) SerializeFrom(a *archive.Archive, version uint8) error {
	var distCount int
	switch version {
	case 0:
		distCount = 4
	case 1:
		distCount = 5
	default:
		return archive.UnsupportedVersion(a, c, version)
	}

	if err := archive.Read(a, &c.NCols); err != nil {
		return err
	}
	if err := archive.Read(a, &c.NRows); err != nil {
		return err
	}

	c.Dist = [5]float64{}
	targets := []*float64{&c.Fx, &c.Fy, &c.Cx, &c.Cy}
	for i := 0; i < distCount; i++ {
		targets = append(targets, &c.Dist[i])
	}
	for _, v := range append(targets, &c.FocalLengthMeters) {
		if err := archive.Read(a, v); err != nil {
			return err
		}
	}

	return nil
}
