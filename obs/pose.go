package obs

import "github.com/roboware/serialkit/serializer/archive"

// Pose3D is a position with yaw, pitch and roll angles in radians.
type Pose3D struct {
	X, Y, Z          float64
	Yaw, Pitch, Roll float64
}

func (p *Pose3D) SerializeVersion() uint8 { return 0 }

func (p *Pose3D) SerializeTo(a *archive.Archive) error {
	for _, v := range []float64{p.X, p.Y, p.Z, p.Yaw, p.Pitch, p.Roll} {
		if err := archive.Write(a, v); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pose3D) SerializeFrom(a *archive.Archive, version uint8) error {
	if version != 0 {
		return archive.UnsupportedVersion(a, p, version)
	}

	for _, v := range []*float64{&p.X, &p.Y, &p.Z, &p.Yaw, &p.Pitch, &p.Roll} {
		if err := archive.Read(a, v); err != nil {
			return err
		}
	}

	return nil
}
