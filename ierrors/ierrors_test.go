package ierrors_test

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roboware/serialkit/ierrors"
)

var errSentinel = ierrors.New("sentinel")

type customError struct {
	code int
}

func (c *customError) Error() string {
	return fmt.Sprintf("custom %d", c.code)
}

func TestWrap(t *testing.T) {
	err := ierrors.Wrap(errSentinel, "reading header")
	require.True(t, ierrors.Is(err, errSentinel))
	require.Equal(t, "reading header: sentinel", err.Error())

	err = ierrors.Wrapf(err, "record %d", 7)
	require.True(t, ierrors.Is(err, errSentinel))
	require.Equal(t, "record 7: reading header: sentinel", err.Error())

	require.NoError(t, ierrors.Wrap(nil, "nothing"))
}

func TestErrorfWraps(t *testing.T) {
	err := ierrors.Errorf("failed to read: %w", io.ErrUnexpectedEOF)
	require.True(t, ierrors.Is(err, io.ErrUnexpectedEOF))
}

func TestWithMessage(t *testing.T) {
	err := ierrors.WithMessagef(errSentinel, "class %s", "Foo")
	require.True(t, ierrors.Is(err, errSentinel))
	require.Contains(t, err.Error(), "class Foo")
}

func TestAs(t *testing.T) {
	err := ierrors.Wrap(&customError{code: 3}, "outer")

	var target *customError
	require.True(t, ierrors.As(err, &target))
	require.Equal(t, 3, target.code)
}

func TestJoin(t *testing.T) {
	require.NoError(t, ierrors.Join(nil, nil))

	other := ierrors.New("other")
	err := ierrors.Join(errSentinel, nil, other)
	require.True(t, ierrors.Is(err, errSentinel))
	require.True(t, ierrors.Is(err, other))
}
