package obs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roboware/serialkit/kvstore/mapdb"
	"github.com/roboware/serialkit/obs"
	"github.com/roboware/serialkit/serializer/archive"
	"github.com/roboware/serialkit/serializer/extstore"
	"github.com/roboware/serialkit/serializer/stream"
)

// sampleScan returns a scan of a sensor with 3 columns and 2 rows.
func sampleScan(t *testing.T) *obs.RangeScan3D {
	t.Helper()

	scan := obs.NewRangeScan3D()
	scan.Time = sampleTime()
	scan.Label = "SWISSRANGER"
	scan.MaxRange = 10
	scan.SensorPose = obs.Pose3D{X: 1, Y: 2, Z: 0.5, Yaw: 0.1}
	scan.StdError = 0.02
	scan.CameraParams.NCols = 3
	scan.CameraParams.NRows = 2
	scan.CameraParamsIntensity = scan.CameraParams
	scan.CameraParamsIntensity.Fx = 400

	require.NoError(t, scan.SetPoints(samplePoints()))

	rangeImage := obs.NewMatrix(2, 3)
	for i := range rangeImage.Data {
		rangeImage.Data[i] = float32(i) * 0.5
	}
	scan.SetRangeImage(rangeImage)

	intensity, err := obs.NewImage(3, 2, 1, []byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	scan.IntensityImage = intensity

	return scan
}

func samplePoints() obs.Points3D {
	var points obs.Points3D
	for i := 0; i < 6; i++ {
		points.X = append(points.X, float32(i))
		points.Y = append(points.Y, float32(10+i))
		points.Z = append(points.Z, float32(20+i))
	}

	return points
}

func requireSameScan(t *testing.T, expected, actual *obs.RangeScan3D) {
	t.Helper()

	require.Equal(t, expected.Header, actual.Header)
	require.Equal(t, expected.MaxRange, actual.MaxRange)
	require.Equal(t, expected.SensorPose, actual.SensorPose)
	require.Equal(t, expected.StdError, actual.StdError)
	require.Equal(t, expected.CameraParams, actual.CameraParams)
	require.Equal(t, expected.CameraParamsIntensity, actual.CameraParamsIntensity)
	require.Equal(t, expected.HasPoints3D, actual.HasPoints3D)
	require.Equal(t, expected.HasRangeImage, actual.HasRangeImage)
	require.Equal(t, expected.Points(), actual.Points())
	require.Equal(t, expected.RangeImage(), actual.RangeImage())
	require.Equal(t, expected.IntensityImage == nil, actual.IntensityImage == nil)
	if expected.IntensityImage != nil {
		require.Equal(t, expected.IntensityImage.Pixels(), actual.IntensityImage.Pixels())
	}
	require.Nil(t, actual.ConfidenceImage)
}

func TestRangeScan3D_RoundTrip(t *testing.T) {
	registry := newRegistry(t)
	scan := sampleScan(t)

	data, err := archive.Marshal(registry, scan)
	require.NoError(t, err)

	result, err := archive.ReadAs[*obs.RangeScan3D](archive.New(stream.NewByteBufferFromBytes(data), registry))
	require.NoError(t, err)
	requireSameScan(t, scan, result)
	require.Empty(t, result.ExternalPaths())
}

func TestRangeScan3D_ExternalStorage(t *testing.T) {
	registry := newRegistry(t)

	for name, backend := range map[string]extstore.Backend{
		"file":   extstore.NewFileBackend(),
		"memory": extstore.NewKVBackend(mapdb.NewMapDB()),
	} {
		t.Run(name, func(t *testing.T) {
			controller := extstore.NewController(
				extstore.WithBaseDirectory(t.TempDir()),
				extstore.WithBackend(backend),
				extstore.WithCompression(stream.CompressionGzip),
			)

			original := sampleScan(t)
			scan := sampleScan(t)
			require.NoError(t, scan.ConvertToExternalStorage(controller, "scan"))

			require.True(t, scan.Points3DIsExternallyStored())
			require.True(t, scan.RangeImageIsExternallyStored())
			require.True(t, scan.IntensityImage.IsExternallyStored())
			require.Equal(t, []string{"scan_3d.bin", "scan_ranges.bin", "scan_intensity.bin"}, scan.ExternalPaths())
			require.Zero(t, scan.Points().Len())

			spilled, err := archive.Marshal(registry, scan)
			require.NoError(t, err)

			embedded, err := archive.Marshal(registry, original)
			require.NoError(t, err)
			require.Less(t, len(spilled), len(embedded))

			result, err := archive.ReadAs[*obs.RangeScan3D](archive.New(stream.NewByteBufferFromBytes(spilled), registry))
			require.NoError(t, err)
			require.Equal(t, scan.ExternalPaths(), result.ExternalPaths())

			for i := 0; i < 2; i++ {
				require.NoError(t, result.Load(controller))
				requireSameScan(t, original, result)

				// loading does not change what is archived
				reserialized, err := archive.Marshal(registry, result)
				require.NoError(t, err)
				require.Equal(t, spilled, reserialized)

				result.Unload()
				require.Zero(t, result.Points().Len())
				require.True(t, result.RangeImage().Empty())
				require.Nil(t, result.IntensityImage.Pixels())
			}

			// spilling again leaves the existing side files alone
			require.NoError(t, result.ConvertToExternalStorage(controller, "other"))
			require.Equal(t, scan.ExternalPaths(), result.ExternalPaths())

			require.ErrorIs(t, result.Points3DConvertToExternalStorage(controller, "x.bin"), extstore.ErrAlreadySpilled)
		})
	}
}

func TestRangeScan3D_MissingExternalFile(t *testing.T) {
	registry := newRegistry(t)
	controller := extstore.NewController(extstore.WithBaseDirectory(t.TempDir()))

	scan := sampleScan(t)
	require.NoError(t, scan.Points3DConvertToExternalStorage(controller, "points.bin"))

	data, err := archive.Marshal(registry, scan)
	require.NoError(t, err)

	result, err := archive.ReadAs[*obs.RangeScan3D](archive.New(stream.NewByteBufferFromBytes(data), registry))
	require.NoError(t, err)

	err = result.Load(controller.WithBaseDir(t.TempDir()))
	require.ErrorIs(t, err, extstore.ErrMissingExternalFile)

	require.NoError(t, result.Load(controller))
	require.Equal(t, samplePoints(), result.Points())
}

func TestRangeScan3D_UnloadEmbedded(t *testing.T) {
	scan := sampleScan(t)
	scan.Unload()

	require.Equal(t, samplePoints(), scan.Points())
	require.False(t, scan.RangeImage().Empty())
	require.NotNil(t, scan.IntensityImage.Pixels())
}

func TestRangeScan3D_Version0(t *testing.T) {
	registry := newRegistry(t)

	buffer := stream.NewByteBuffer()
	a := archive.New(buffer, registry)
	require.NoError(t, a.WriteString(obs.RangeScan3DClass))
	require.NoError(t, archive.Write(a, uint8(0)))
	require.NoError(t, archive.Write(a, float32(8)))
	require.NoError(t, a.WriteObject(&obs.Pose3D{X: 1}))
	require.NoError(t, archive.Write(a, uint32(2)))
	require.NoError(t, archive.WriteArray(a, []float32{1, 2}))
	require.NoError(t, archive.WriteArray(a, []float32{3, 4}))
	require.NoError(t, archive.WriteArray(a, []float32{5, 6}))
	require.NoError(t, archive.WriteArray(a, []uint8{1, 0}))
	require.NoError(t, archive.Write(a, float32(0.05)))
	require.NoError(t, a.WriteTime(sampleTime()))
	require.NoError(t, a.WriteString("OLD"))

	reader := archive.New(stream.NewByteBufferFromBytes(bytesOf(t, buffer)), registry)
	scan, err := archive.ReadAs[*obs.RangeScan3D](reader)
	require.NoError(t, err)

	available, err := reader.Available()
	require.NoError(t, err)
	require.Zero(t, available)

	require.Equal(t, float32(8), scan.MaxRange)
	require.Equal(t, obs.Pose3D{X: 1}, scan.SensorPose)
	require.True(t, scan.HasPoints3D)
	require.Equal(t, obs.Points3D{X: []float32{1, 2}, Y: []float32{3, 4}, Z: []float32{5, 6}}, scan.Points())
	require.False(t, scan.HasRangeImage)
	require.Nil(t, scan.IntensityImage)
	require.Equal(t, *obs.NewCameraParams(), scan.CameraParams)
	require.Equal(t, *obs.NewCameraParams(), scan.CameraParamsIntensity)
	require.Equal(t, float32(0.05), scan.StdError)
	require.Equal(t, sampleTime(), scan.Timestamp())
	require.Equal(t, "OLD", scan.SensorLabel())
	require.False(t, scan.Points3DIsExternallyStored())
}

func TestRangeScan3D_Version2(t *testing.T) {
	registry := newRegistry(t)

	camera := obs.CameraParams{NCols: 3, NRows: 2, Fx: 100, Fy: 101, Cx: 1.5, Cy: 1, FocalLengthMeters: 0.01}

	buffer := stream.NewByteBuffer()
	a := archive.New(buffer, registry)
	require.NoError(t, a.WriteString(obs.RangeScan3DClass))
	require.NoError(t, archive.Write(a, uint8(2)))
	require.NoError(t, archive.Write(a, float32(8)))
	require.NoError(t, a.WriteObject(&obs.Pose3D{}))
	require.NoError(t, archive.Write(a, false)) // points
	require.NoError(t, archive.Write(a, true))  // range image
	require.NoError(t, a.WriteObject(&obs.Matrix{Rows: 1, Cols: 2, Data: []float32{7, 8}}))
	require.NoError(t, archive.Write(a, false)) // intensity image
	require.NoError(t, archive.Write(a, false)) // confidence image
	require.NoError(t, a.WriteObject(&camera))
	require.NoError(t, archive.Write(a, float32(0.05)))
	require.NoError(t, a.WriteTime(sampleTime()))
	require.NoError(t, a.WriteString("V2"))

	scan, err := archive.ReadAs[*obs.RangeScan3D](archive.New(stream.NewByteBufferFromBytes(bytesOf(t, buffer)), registry))
	require.NoError(t, err)

	require.False(t, scan.HasPoints3D)
	require.Zero(t, scan.Points().Len())
	require.True(t, scan.HasRangeImage)
	require.Equal(t, obs.Matrix{Rows: 1, Cols: 2, Data: []float32{7, 8}}, scan.RangeImage())
	require.Equal(t, camera, scan.CameraParams)
	require.Equal(t, camera, scan.CameraParamsIntensity)
	require.Equal(t, "V2", scan.SensorLabel())
}

func TestRangeScan3D_Version3(t *testing.T) {
	registry := newRegistry(t)

	buffer := stream.NewByteBuffer()
	a := archive.New(buffer, registry)
	require.NoError(t, a.WriteString(obs.RangeScan3DClass))
	require.NoError(t, archive.Write(a, uint8(3)))
	require.NoError(t, archive.Write(a, float32(8)))
	require.NoError(t, a.WriteObject(&obs.Pose3D{}))
	require.NoError(t, archive.Write(a, true)) // points, stored externally
	require.NoError(t, archive.Write(a, uint32(0)))
	require.NoError(t, archive.Write(a, false)) // range image
	require.NoError(t, archive.Write(a, false)) // intensity image
	require.NoError(t, archive.Write(a, false)) // confidence image
	require.NoError(t, a.WriteObject(obs.NewCameraParams()))
	require.NoError(t, archive.Write(a, float32(0.05)))
	require.NoError(t, a.WriteTime(sampleTime()))
	require.NoError(t, a.WriteString("V3"))
	require.NoError(t, archive.Write(a, true))
	require.NoError(t, a.WriteString("old_3d.bin"))
	require.NoError(t, archive.Write(a, false))

	scan, err := archive.ReadAs[*obs.RangeScan3D](archive.New(stream.NewByteBufferFromBytes(bytesOf(t, buffer)), registry))
	require.NoError(t, err)

	require.True(t, scan.HasPoints3D)
	require.True(t, scan.Points3DIsExternallyStored())
	require.False(t, scan.RangeImageIsExternallyStored())
	require.Equal(t, []string{"old_3d.bin"}, scan.ExternalPaths())
}

func TestRangeScan3D_UnsupportedVersion(t *testing.T) {
	registry := newRegistry(t)

	buffer := stream.NewByteBuffer()
	a := archive.New(buffer, registry)
	require.NoError(t, a.WriteString(obs.RangeScan3DClass))
	require.NoError(t, archive.Write(a, uint8(5)))

	_, err := archive.Unmarshal(registry, bytesOf(t, buffer))
	require.ErrorIs(t, err, archive.ErrUnsupportedVersion)
}

func TestRangeScan3D_Zone(t *testing.T) {
	scan := sampleScan(t)

	zone, err := scan.Zone(0, 2, 1, 3)
	require.NoError(t, err)

	require.Equal(t, []float32{1, 2, 4, 5}, zone.Points().X)
	require.Equal(t, []float32{11, 12, 14, 15}, zone.Points().Y)
	require.Equal(t, obs.Matrix{Rows: 2, Cols: 2, Data: []float32{0.5, 1, 2, 2.5}}, zone.RangeImage())
	require.Equal(t, []byte{2, 3, 5, 6}, zone.IntensityImage.Pixels())
	require.Equal(t, scan.SensorPose, zone.SensorPose)
	require.Equal(t, scan.CameraParams, zone.CameraParams)

	for _, bounds := range [][4]uint32{{1, 1, 0, 1}, {0, 1, 2, 2}, {0, 3, 0, 1}, {0, 1, 0, 4}} {
		_, err = scan.Zone(bounds[0], bounds[1], bounds[2], bounds[3])
		require.ErrorIs(t, err, obs.ErrInvalidZone, "bounds %v", bounds)
	}

	controller := extstore.NewController(extstore.WithBaseDirectory(t.TempDir()))
	require.NoError(t, scan.Points3DConvertToExternalStorage(controller, "p.bin"))

	_, err = scan.Zone(0, 2, 1, 3)
	require.ErrorIs(t, err, obs.ErrNotLoaded)
}
