// Package obs contains the persisted sensor observations.
package obs

import (
	"time"

	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/serializer/archive"
	"github.com/roboware/serialkit/serializer/extstore"
)

// Class names written to archives.
const (
	ObservationClass  = "Observation"
	Pose3DClass       = "Pose3D"
	CameraParamsClass = "CameraParams"
	MatrixClass       = "MatrixF"
	ImageClass        = "Image"
	RangeScan3DClass  = "RangeScan3D"
	SensoryFrameClass = "SensoryFrame"
)

// ErrInvalidZone is returned for zones that are empty or exceed the sensor resolution.
var ErrInvalidZone = ierrors.New("invalid zone")

// ErrInvalidImage is returned for images whose pixels do not match their size.
var ErrInvalidImage = ierrors.New("invalid image")

// ErrNotLoaded is returned by operations that need a spilled payload in memory.
var ErrNotLoaded = ierrors.New("payload not loaded")

// Observation is a single sensor reading.
type Observation interface {
	archive.Serializable
	extstore.Externalizable

	// Timestamp returns the time the observation was taken.
	Timestamp() time.Time
	// SensorLabel returns the name of the sensor that took the observation.
	SensorLabel() string
}

// Header holds the fields every observation carries.
type Header struct {
	Time  time.Time
	Label string
}

// Timestamp returns the time the observation was taken.
func (h *Header) Timestamp() time.Time {
	return h.Time
}

// SensorLabel returns the name of the sensor that took the observation.
func (h *Header) SensorLabel() string {
	return h.Label
}

// RegisterClasses registers all observation classes.
func RegisterClasses(r *archive.Registry) error {
	classes := []struct {
		name    string
		factory archive.Factory
		base    string
	}{
		{name: Pose3DClass, factory: func() archive.Serializable { return new(Pose3D) }},
		{name: CameraParamsClass, factory: func() archive.Serializable { return NewCameraParams() }},
		{name: MatrixClass, factory: func() archive.Serializable { return new(Matrix) }},
		{name: ImageClass, factory: func() archive.Serializable { return &Image{} }},
		{name: RangeScan3DClass, factory: func() archive.Serializable { return NewRangeScan3D() }, base: ObservationClass},
		{name: SensoryFrameClass, factory: func() archive.Serializable { return new(SensoryFrame) }},
	}

	for _, class := range classes {
		if err := r.Register(class.name, class.factory, archive.WithBaseName(class.base)); err != nil {
			return ierrors.Wrapf(err, "failed to register %s", class.name)
		}
	}

	return nil
}
