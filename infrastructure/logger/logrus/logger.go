// ABOUTME: Logrus-backed implementation of the core Logger interface
// ABOUTME: Emits JSON lines to stdout or to a size-rotated file via lumberjack

package logrus

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls level and destination
type Config struct {
	// Level is a logrus level name; unknown names fall back to info
	Level string

	// File enables rotation into this path when set
	File string

	// MaxSizeMB, MaxBackups and MaxAgeDays tune rotation
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Logger implements interfaces.Logger on top of logrus
type Logger struct {
	entry  *logrus.Logger
	closer io.Closer
}

// NewLogger creates a logger writing JSON entries
func NewLogger(cfg Config) *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	out := &Logger{entry: l}
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
			Compress:   true,
		}
		l.SetOutput(rotator)
		out.closer = rotator
	} else {
		l.SetOutput(os.Stdout)
	}
	return out
}

// NewWithWriter creates a logger writing to w, mainly for tests
func NewWithWriter(w io.Writer, level string) *Logger {
	l := NewLogger(Config{Level: level})
	l.entry.SetOutput(w)
	return l
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.entry.WithFields(logrus.Fields(fields)).Warn(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.entry.WithFields(logrus.Fields(fields)).Error(msg)
}

// Close flushes and closes the rotating file, if any
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func orDefault(v, d int) int {
	if v > 0 {
		return v
	}
	return d
}
