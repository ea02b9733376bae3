// Package logger wraps zerolog with a dated log file plus console output.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	zl   zerolog.Logger
	file *os.File
	set  bool
)

// Init opens today's log file under logDir and routes all package-level
// logging to it and to stderr.
func Init(logDir string) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	logFile := filepath.Join(logDir, fmt.Sprintf("goalachiever_%s.log", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	out := io.MultiWriter(console, f)

	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		_ = file.Close()
	}
	file = f
	zl = zerolog.New(out).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	set = true
	return nil
}

// SetLevel changes the minimum level of the package logger.
func SetLevel(level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	zl = get().Level(level)
	set = true
}

// Close releases the log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

func get() zerolog.Logger {
	if !set {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return zl
}

func Debug(format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	l := get()
	l.Debug().Msgf(format, v...)
}

func Info(format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	l := get()
	l.Info().Msgf(format, v...)
}

func Warn(format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	l := get()
	l.Warn().Msgf(format, v...)
}

func Error(format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	l := get()
	l.Error().Msgf(format, v...)
}

// With returns a child logger carrying a component field, for call sites that
// want structured events instead of the package-level helpers.
func With(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return get().With().Str("component", component).Logger()
}
