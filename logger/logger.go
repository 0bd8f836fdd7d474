// Package logger creates the zap based loggers used by the archive tooling.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roboware/serialkit/ierrors"
)

// Logger is the logger type handed to all components.
type Logger = zap.SugaredLogger

// NewRootLogger creates a new root logger from the provided configuration.
// Empty settings are taken from DefaultCfg.
func NewRootLogger(cfg Config) (*Logger, error) {
	if cfg.Level == "" {
		cfg.Level = DefaultCfg.Level
	}
	if cfg.StacktraceLevel == "" {
		cfg.StacktraceLevel = DefaultCfg.StacktraceLevel
	}
	if cfg.Encoding == "" {
		cfg.Encoding = DefaultCfg.Encoding
	}
	if len(cfg.OutputPaths) == 0 {
		cfg.OutputPaths = DefaultCfg.OutputPaths
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, ierrors.Wrapf(err, "invalid log level %q", cfg.Level)
	}

	var stacktraceLevel zapcore.Level
	if err := stacktraceLevel.UnmarshalText([]byte(cfg.StacktraceLevel)); err != nil {
		return nil, ierrors.Wrapf(err, "invalid stacktrace level %q", cfg.StacktraceLevel)
	}

	zapCfg := &zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		DisableCaller:     cfg.DisableCaller,
		DisableStacktrace: cfg.DisableStacktrace,
		Encoding:          cfg.Encoding,
		EncoderConfig:     defaultEncoderConfig,
		OutputPaths:       cfg.OutputPaths,
		ErrorOutputPaths:  []string{"stderr"},
	}

	root, err := zapCfg.Build(zap.AddStacktrace(stacktraceLevel))
	if err != nil {
		return nil, ierrors.Wrap(err, "unable to build root logger")
	}

	return root.Sugar(), nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return zap.NewNop().Sugar()
}
