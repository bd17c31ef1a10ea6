// Package log configures the structured logger used by the mlp command.
//
// Records go to stderr, colorized when stderr is a terminal, and optionally
// to a log file that is rotated by size. Library packages do not log; they
// return errors and leave reporting to the caller.
package log

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrick/logrotate/rotator"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Rotation settings for the log file.
const (
	RotateThresholdKB = 10 * 1024
	MaxRolls          = 3
)

// Config selects the log level and outputs.
type Config struct {
	Level   string // debug, info, warn or error; empty means info
	LogFile string // Optional path of a rotated log file
	NoColor bool   // Disable colors even on a terminal
}

// Logger is an slog.Logger that owns its outputs.
type Logger struct {
	*slog.Logger
	w *logWriter
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: expected debug, info, warn or error", s)
	}
	return lvl, nil
}

// New creates a Logger writing to stderr and, when cfg.LogFile is set, to a
// rotated log file.
func New(cfg Config) (*Logger, error) {
	useColor := !cfg.NoColor && isTerminal(os.Stderr) && os.Getenv("TERM") != "dumb"

	var term io.Writer = os.Stderr
	if useColor {
		term = colorable.NewColorableStderr()
	}
	return newLogger(cfg, term, useColor)
}

func newLogger(cfg Config, term io.Writer, useColor bool) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	lw := &logWriter{term: term}
	if useColor {
		lw.term = colorWriter{w: term}
	}
	if cfg.LogFile != "" {
		r, err := initLogRotator(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		lw.logRotator = r
	}

	var handler slog.Handler = slog.NewTextHandler(lw.term, &slog.HandlerOptions{Level: level})
	if lw.logRotator != nil {
		file := slog.NewTextHandler(lw.logRotator, &slog.HandlerOptions{Level: level})
		handler = teeHandler{handler, file}
	}

	return &Logger{Logger: slog.New(handler), w: lw}, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	return l.w.Close()
}

// Discard returns a Logger that drops every record.
func Discard() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1})),
		w:      &logWriter{term: io.Discard},
	}
}

// logWriter holds the outputs of a Logger.
type logWriter struct {
	// logRotator is one of the logging outputs. It should be closed on
	// application shutdown.
	logRotator *rotator.Rotator

	// Terminal output, colorable when attached to a tty.
	term io.Writer
}

func (lw *logWriter) Close() error {
	if lw.logRotator != nil {
		return lw.logRotator.Close()
	}
	return nil
}

// initLogRotator creates the log directory and opens logFile for rotation.
func initLogRotator(logFile string) (*rotator.Rotator, error) {
	if dir := filepath.Dir(logFile); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	r, err := rotator.New(logFile, RotateThresholdKB, false, MaxRolls)
	if err != nil {
		return nil, fmt.Errorf("failed to create file rotator: %w", err)
	}
	return r, nil
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ANSI colors per level.
const (
	colorReset = "\x1b[0m"
	colorDebug = "\x1b[36m"
	colorInfo  = "\x1b[32m"
	colorWarn  = "\x1b[33m"
	colorError = "\x1b[31m"
)

var levelColors = []struct {
	field, colored []byte
}{
	{[]byte("level=ERROR"), []byte("level=" + colorError + "ERROR" + colorReset)},
	{[]byte("level=WARN"), []byte("level=" + colorWarn + "WARN" + colorReset)},
	{[]byte("level=INFO"), []byte("level=" + colorInfo + "INFO" + colorReset)},
	{[]byte("level=DEBUG"), []byte("level=" + colorDebug + "DEBUG" + colorReset)},
}

// colorWriter colors the level field of each text record it receives.
// slog handlers write one record per call.
type colorWriter struct {
	w io.Writer
}

func (c colorWriter) Write(p []byte) (int, error) {
	out := p
	for _, lc := range levelColors {
		if bytes.Contains(p, lc.field) {
			out = bytes.Replace(p, lc.field, lc.colored, 1)
			break
		}
	}
	if _, err := c.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

// teeHandler sends every record to each of its handlers.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, lvl) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
