package extstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roboware/serialkit/serializer/extstore"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name     string
		baseDir  string
		path     string
		expected string
	}{
		{name: "relative", baseDir: "/data", path: "scan_3d.bin", expected: "/data/scan_3d.bin"},
		{name: "trailing slash", baseDir: "/data/", path: "scan_3d.bin", expected: "/data/scan_3d.bin"},
		{name: "trailing backslash", baseDir: `C:\data\`, path: "scan_3d.bin", expected: `C:\data\scan_3d.bin`},
		{name: "nested relative", baseDir: "imgs", path: "a/b.bin", expected: "imgs/a/b.bin"},
		{name: "absolute slash", baseDir: "/data", path: "/tmp/x.bin", expected: "/tmp/x.bin"},
		{name: "absolute backslash", baseDir: "/data", path: `\\share\x.bin`, expected: `\\share\x.bin`},
		{name: "drive letter backslash", baseDir: "/data", path: `D:\x.bin`, expected: `D:\x.bin`},
		{name: "drive letter slash", baseDir: "/data", path: "d:/x.bin", expected: "d:/x.bin"},
		{name: "drive letter without separator", baseDir: "/data", path: "d:x.bin", expected: "/data/d:x.bin"},
		{name: "empty base", baseDir: "", path: "x.bin", expected: "x.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := extstore.ResolvePath(tt.baseDir, tt.path)
			require.NoError(t, err)
			require.Equal(t, tt.expected, resolved)
		})
	}

	_, err := extstore.ResolvePath("/data", "")
	require.ErrorIs(t, err, extstore.ErrInvalidPath)
}

func TestController_WithBaseDir(t *testing.T) {
	controller := extstore.NewController(extstore.WithBaseDirectory("/data"))
	derived := controller.WithBaseDir("/other")

	resolved, err := derived.AbsolutePath("x.bin")
	require.NoError(t, err)
	require.Equal(t, "/other/x.bin", resolved)

	// the original controller is unchanged
	resolved, err = controller.AbsolutePath("x.bin")
	require.NoError(t, err)
	require.Equal(t, "/data/x.bin", resolved)
	require.Same(t, controller.Stats(), derived.Stats())
}
