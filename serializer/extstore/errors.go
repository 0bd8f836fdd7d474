package extstore

import "github.com/roboware/serialkit/ierrors"

var (
	// ErrAlreadySpilled is returned when a spilled payload is spilled again.
	ErrAlreadySpilled = ierrors.New("payload is already stored externally")
	// ErrMissingExternalFile is returned when the side file of a spilled payload does not exist.
	ErrMissingExternalFile = ierrors.New("external file is missing")
	// ErrInvalidPath is returned for empty relative paths.
	ErrInvalidPath = ierrors.New("invalid path")
)
