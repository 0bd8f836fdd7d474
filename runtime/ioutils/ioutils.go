package ioutils

import (
	"os"

	"github.com/roboware/serialkit/ierrors"
)

// PathExists returns whether the given file or directory exists.
func PathExists(path string) (exists bool, isDirectory bool, err error) {
	fileInfo, err := os.Stat(path)
	if err == nil {
		return true, fileInfo.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, false, nil
	}

	return false, false, err
}

// CreateDirectory checks if the directory exists,
// otherwise it creates it with given permissions.
func CreateDirectory(dir string, perm os.FileMode) error {
	exists, isDir, err := PathExists(dir)
	if err != nil {
		return err
	}

	if exists {
		if !isDir {
			return ierrors.Errorf("given path is a file instead of a directory %s", dir)
		}

		return nil
	}

	return os.MkdirAll(dir, perm)
}
