// Package logger builds charmbracelet/log loggers for the engine, the server and the CLI.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a charm logger on stderr that respects the global log level.
// Stdout is reserved for the IPC stream in server mode.
func New(prefix string) *log.Logger {
	return NewWithConfig(os.Stderr, prefix, log.GetLevel(), false, true, log.TextFormatter)
}

// NewWithConfig creates a charm logger with custom options.
func NewWithConfig(w io.Writer, prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}

// FileOptions controls log file rotation.
type FileOptions struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultFileOptions matches a small long-running helper process.
func DefaultFileOptions() FileOptions {
	return FileOptions{MaxSizeMB: 10, MaxBackups: 2, MaxAgeDays: 30}
}

// NewFile creates a logfmt logger writing to a rotated file.
// The returned closer releases the file.
func NewFile(path, prefix string, level log.Level, opts FileOptions) (*log.Logger, io.Closer) {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}
	return NewWithConfig(rotator, prefix, level, true, true, log.LogfmtFormatter), rotator
}
