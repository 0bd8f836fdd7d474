// Package extstore keeps large payloads either embedded in an archive or spilled to side files
// that are loaded on demand.
package extstore

import (
	"go.uber.org/atomic"

	"github.com/roboware/serialkit/ierrors"
	"github.com/roboware/serialkit/logger"
	"github.com/roboware/serialkit/runtime/options"
	"github.com/roboware/serialkit/serializer/archive"
	"github.com/roboware/serialkit/serializer/stream"
)

// Stats counts the transitions performed through a Controller and the controllers derived from it.
type Stats struct {
	Spilled      *atomic.Uint64
	Loaded       *atomic.Uint64
	Unloaded     *atomic.Uint64
	BytesWritten *atomic.Uint64
	BytesRead    *atomic.Uint64
}

func newStats() *Stats {
	return &Stats{
		Spilled:      atomic.NewUint64(0),
		Loaded:       atomic.NewUint64(0),
		Unloaded:     atomic.NewUint64(0),
		BytesWritten: atomic.NewUint64(0),
		BytesRead:    atomic.NewUint64(0),
	}
}

// Controller resolves side file paths against a base directory and creates and opens them
// through a Backend. Controllers are values: WithBaseDir derives a new one instead of changing
// shared state.
type Controller struct {
	baseDir     string
	backend     Backend
	compression stream.Compression
	registry    *archive.Registry
	logger      *logger.Logger
	stats       *Stats
}

// NewController creates a Controller. By default side files are plain files in the working directory.
func NewController(opts ...options.Option[Controller]) *Controller {
	return options.Apply(&Controller{
		compression: stream.CompressionNone,
		stats:       newStats(),
	}, opts, func(c *Controller) {
		if c.backend == nil {
			c.backend = NewFileBackend()
		}
		if c.registry == nil {
			c.registry = archive.DefaultRegistry
		}
		if c.logger == nil {
			c.logger = logger.NewNopLogger()
		}
	})
}

// WithBaseDirectory sets the directory relative paths are resolved against.
func WithBaseDirectory(baseDir string) options.Option[Controller] {
	return func(c *Controller) {
		c.baseDir = baseDir
	}
}

// WithBackend sets the Backend storing the side files.
func WithBackend(backend Backend) options.Option[Controller] {
	return func(c *Controller) {
		c.backend = backend
	}
}

// WithCompression sets the compression applied to side files.
func WithCompression(compression stream.Compression) options.Option[Controller] {
	return func(c *Controller) {
		c.compression = compression
	}
}

// WithRegistry sets the registry used by the archives on side files.
func WithRegistry(registry *archive.Registry) options.Option[Controller] {
	return func(c *Controller) {
		c.registry = registry
	}
}

// WithControllerLogger sets the logger of the Controller.
func WithControllerLogger(log *logger.Logger) options.Option[Controller] {
	return func(c *Controller) {
		c.logger = log
	}
}

// WithBaseDir returns a copy of the Controller that resolves relative paths against baseDir.
// The copy shares backend and statistics with c.
func (c *Controller) WithBaseDir(baseDir string) *Controller {
	derived := *c
	derived.baseDir = baseDir

	return &derived
}

// BaseDir returns the directory relative paths are resolved against.
func (c *Controller) BaseDir() string {
	return c.baseDir
}

// Backend returns the Backend storing the side files.
func (c *Controller) Backend() Backend {
	return c.backend
}

// Compression returns the compression applied to side files.
func (c *Controller) Compression() stream.Compression {
	return c.compression
}

// Stats returns the transition counters.
func (c *Controller) Stats() *Stats {
	return c.stats
}

// AbsolutePath resolves path against the base directory of the Controller.
func (c *Controller) AbsolutePath(path string) (string, error) {
	return ResolvePath(c.baseDir, path)
}

// Exists reports whether the side file at the relative path exists.
func (c *Controller) Exists(path string) (bool, error) {
	absolutePath, err := c.AbsolutePath(path)
	if err != nil {
		return false, err
	}

	return c.backend.Exists(absolutePath)
}

// Remove deletes the side file at the relative path.
func (c *Controller) Remove(path string) error {
	absolutePath, err := c.AbsolutePath(path)
	if err != nil {
		return err
	}

	return c.backend.Remove(absolutePath)
}

// write creates the side file at path and passes an archive on it to writeFunc.
func (c *Controller) write(path string, writeFunc func(a *archive.Archive) error) (err error) {
	absolutePath, err := c.AbsolutePath(path)
	if err != nil {
		return err
	}

	inner, err := c.backend.Create(absolutePath)
	if err != nil {
		return ierrors.Wrapf(err, "failed to create %s", absolutePath)
	}

	s, err := stream.Wrap(inner, c.compression)
	if err != nil {
		return ierrors.Join(ierrors.Wrapf(err, "failed to wrap %s", absolutePath), inner.Close())
	}

	if err = writeFunc(archive.New(s, c.registry, archive.WithLogger(c.logger))); err != nil {
		return ierrors.Join(ierrors.Wrapf(err, "failed to write %s", absolutePath), s.Close())
	}

	size, err := s.Size()
	if err != nil {
		return ierrors.Join(ierrors.Wrapf(err, "failed to get size of %s", absolutePath), s.Close())
	}

	if err = s.Close(); err != nil {
		return ierrors.Wrapf(err, "failed to close %s", absolutePath)
	}

	c.stats.Spilled.Inc()
	c.stats.BytesWritten.Add(uint64(size))
	c.logger.Debugw("stored payload externally", "path", absolutePath, "bytes", size, "compression", c.compression.String())

	return nil
}

// read opens the side file at path and passes an archive on it to readFunc.
func (c *Controller) read(path string, readFunc func(a *archive.Archive) error) error {
	absolutePath, err := c.AbsolutePath(path)
	if err != nil {
		return err
	}

	inner, err := c.backend.Open(absolutePath)
	if err != nil {
		return err
	}

	s, err := stream.Wrap(inner, c.compression)
	if err != nil {
		return ierrors.Join(ierrors.Wrapf(err, "failed to wrap %s", absolutePath), inner.Close())
	}
	defer s.Close()

	size, err := s.Size()
	if err != nil {
		return ierrors.Wrapf(err, "failed to get size of %s", absolutePath)
	}

	if err = readFunc(archive.New(s, c.registry, archive.WithLogger(c.logger))); err != nil {
		return ierrors.Wrapf(err, "failed to read %s", absolutePath)
	}

	c.stats.Loaded.Inc()
	c.stats.BytesRead.Add(uint64(size))
	c.logger.Debugw("loaded external payload", "path", absolutePath, "bytes", size)

	return nil
}
