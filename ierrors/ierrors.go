// Package ierrors provides the error construction and inspection helpers used throughout the module.
// It keeps the small surface of the standard library "errors" package and adds wrapping helpers.
// All errors created or wrapped through this package carry a stack trace and are built on
// github.com/cockroachdb/errors, so they can be printed with "%+v" for full details.
package ierrors

import (
	stderrors "errors"

	"github.com/cockroachdb/errors"
)

// New returns an error that formats as the given text.
// Each call to New returns a distinct error value even if the text is identical.
func New(text string) error {
	return errors.New(text)
}

// Errorf formats according to a format specifier and returns the string as a
// value that satisfies error. The %w verb wraps its operand.
func Errorf(format string, args ...any) error {
	return errors.Errorf(format, args...)
}

// Wrap prepends an error with a message and wraps it into a new error.
// Wrap returns nil if err is nil.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf prepends an error with a message format specifier and arguments
// and wraps it into a new error.
// Wrapf returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}

// WithMessage appends a message to the error and wraps it into a new error.
func WithMessage(err error, message string) error {
	return errors.WithMessage(err, message)
}

// WithMessagef appends a formatted message to the error and wraps it into a new error.
func WithMessagef(err error, format string, args ...any) error {
	return errors.WithMessagef(err, format, args...)
}

// WithStack annotates err with a stack trace at the point WithStack was called.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// Join returns an error that wraps the given errors.
// Any nil error values are discarded and Join returns nil if errs contains no non-nil values.
func Join(errs ...error) error {
	joined := stderrors.Join(errs...)
	if joined == nil {
		return nil
	}

	return errors.WithStack(joined)
}

// Unwrap returns the result of calling the Unwrap method on err, if err's
// type contains an Unwrap method returning error. Otherwise, Unwrap returns nil.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target, and if one is found, sets
// target to that error value and returns true. Otherwise, it returns false.
func As(err error, target any) bool {
	return errors.As(err, target)
}
