package extstore

import (
	"strings"

	"github.com/roboware/serialkit/ierrors"
)

// IsAbsolutePath reports whether path starts with a path separator or a drive letter followed by a separator.
func IsAbsolutePath(path string) bool {
	if path == "" {
		return false
	}

	if path[0] == '/' || path[0] == '\\' {
		return true
	}

	return len(path) >= 3 && isDriveLetter(path[0]) && path[1] == ':' && (path[2] == '/' || path[2] == '\\')
}

// ResolvePath joins a relative path with the base directory. Absolute paths and empty base directories
// leave the path untouched. A separator is only inserted if the base directory does not end with one.
func ResolvePath(baseDir string, path string) (string, error) {
	if path == "" {
		return "", ierrors.Wrap(ErrInvalidPath, "empty path")
	}

	if baseDir == "" || IsAbsolutePath(path) {
		return path, nil
	}

	if strings.HasSuffix(baseDir, "/") || strings.HasSuffix(baseDir, "\\") {
		return baseDir + path, nil
	}

	return baseDir + "/" + path, nil
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
