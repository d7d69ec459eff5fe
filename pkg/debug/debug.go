// Package debug implements the store's write-only debug sink.
//
// The sink appends one line per event to {dir}/debug.log in the form
// "[<timestamp>] <LEVEL> - <message>" and echoes events to stderr. It is a
// pure observer: a sink failure never fails the table operation that
// produced the event.
package debug

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// FileName is the log file created under the database directory.
const FileName = "debug.log"

// Level is the severity of a debug event.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel maps a configuration string to a Level. Unknown values fall
// back to Info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Sink writes store events to the debug log. A disabled sink discards
// everything and touches no files. Sink methods are safe for concurrent
// use.
type Sink struct {
	mu      sync.Mutex
	file    *os.File
	console *slog.Logger
	min     Level
	enabled bool
}

// NewSink opens (or creates) the debug log under dir. Events below min are
// dropped. When enabled is false the returned sink is a no-op.
//
// A sink that cannot open its file degrades to console-only output rather
// than failing: the debugger must never take the database down with it.
func NewSink(enabled bool, min Level, dir string) *Sink {
	s := &Sink{enabled: enabled, min: min}
	if !enabled {
		return s
	}

	s.console = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug}))

	path := filepath.Join(dir, FileName)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		s.console.Warn("debug log unavailable", "path", path, "err", err)
		return s
	}
	s.file = file
	return s
}

// Log emits one event at the given level.
func (s *Sink) Log(level Level, msg string) {
	if !s.enabled || level < s.min {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.console != nil {
		switch level {
		case LevelWarning:
			s.console.Warn(msg)
		case LevelError:
			s.console.Error(msg)
		default:
			s.console.Info(msg)
		}
	}

	if s.file != nil {
		line := fmt.Sprintf("[%s] %s - %s\n", time.Now().Format(time.RFC3339), level, msg)
		// Best effort: a failed append is not an error the store can act on.
		_, _ = s.file.WriteString(line)
	}
}

// Infof logs a formatted event at Info level.
func (s *Sink) Infof(format string, args ...any) {
	s.Log(LevelInfo, fmt.Sprintf(format, args...))
}

// Warningf logs a formatted event at Warning level.
func (s *Sink) Warningf(format string, args ...any) {
	s.Log(LevelWarning, fmt.Sprintf(format, args...))
}

// Errorf logs a formatted event at Error level.
func (s *Sink) Errorf(format string, args ...any) {
	s.Log(LevelError, fmt.Sprintf(format, args...))
}

// Close releases the log file. Safe on a disabled sink.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
