package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/phuslu/log"
)

// Options selects where log entries go and at which level.
type Options struct {
	Level string
	// File, when set, sends entries to a rotating log file instead of Console.
	File       string
	MaxSize    int64
	MaxBackups int
}

// New builds a logger. Entries go to File when set, otherwise to console
// (stderr when console is nil).
func New(opts Options, console io.Writer) (*log.Logger, error) {
	logger := &log.Logger{
		Level:      log.ParseLevel(levelOrDefault(opts.Level)),
		TimeFormat: "15:04:05",
	}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, err
		}
		maxSize := opts.MaxSize
		if maxSize <= 0 {
			maxSize = 10 * 1024 * 1024
		}
		backups := opts.MaxBackups
		if backups <= 0 {
			backups = 3
		}
		logger.Writer = &log.FileWriter{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: backups,
		}
		return logger, nil
	}
	if console == nil {
		console = os.Stderr
	}
	logger.Writer = &log.ConsoleWriter{Writer: console}
	return logger, nil
}

// Discard returns a logger that drops every entry.
func Discard() *log.Logger {
	return &log.Logger{Writer: &log.IOWriter{Writer: io.Discard}}
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return level
}
