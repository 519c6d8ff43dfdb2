// Package logutil initializes the process logger of the lexgen command.
package logutil

import (
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig serializes log related config in toml/json.
type LogConfig struct {
	// Log level.
	// One of "debug", "info", "warn", "error", "dpanic", "panic", and "fatal".
	Level string `toml:"level" json:"level"`
	// Format of the log, one of `text`, `json` or `console`.
	Format string `toml:"format" json:"format"`
	// Log filename, leave empty to log to stdout.
	File string `toml:"file" json:"file"`
}

// NewLogConfig creates a LogConfig.
func NewLogConfig(level, format, file string) *LogConfig {
	return &LogConfig{
		Level:  level,
		Format: format,
		File:   file,
	}
}

// InitLogger initializes the global logger with cfg and returns it.
func InitLogger(cfg *LogConfig, opts ...zap.Option) (*zap.Logger, error) {
	opts = append(opts, zap.AddStacktrace(zapcore.FatalLevel))
	gl, props, err := log.InitLogger(&log.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		File: log.FileLogConfig{
			Filename: cfg.File,
		},
	}, opts...)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.ReplaceGlobals(gl, props)
	return gl, nil
}
