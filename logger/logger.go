// SPDX-License-Identifier: GPL-3.0-or-later

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
)

var isTerm = isatty.IsTerminal(os.Stderr.Fd())

var defaultLogger = New()

// Default returns the process-wide logger.
func Default() *Logger {
	return defaultLogger
}

// Logger is a thin printf-style wrapper over slog used by every component.
type Logger struct {
	muted atomic.Bool
	sl    *slog.Logger
}

// New creates a Logger writing to stderr.
// A colored handler is used when stderr is a terminal.
func New() *Logger {
	if isTerm {
		return &Logger{sl: slog.New(withCallDepth(4, newTerminalHandler()))}
	}
	return &Logger{sl: slog.New(withCallDepth(4, newTextHandler(os.Stderr)))}
}

// NewWithWriter creates a Logger writing plain text to w. Used in tests.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{sl: slog.New(withCallDepth(4, newTextHandler(w)))}
}

// With returns a child logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	if l.isNil() {
		return &Logger{sl: New().sl.With(args...)}
	}
	ll := &Logger{sl: l.sl.With(args...)}
	ll.muted.Store(l.muted.Load())
	return ll
}

func (l *Logger) Mute()   { l.muted.Store(true) }
func (l *Logger) Unmute() { l.muted.Store(false) }

func (l *Logger) isNil() bool { return l == nil || l.sl == nil }

func (l *Logger) log(level slog.Level, msg string) {
	if l.isNil() {
		defaultLogger.log(level, msg)
		return
	}
	if l.muted.Load() || !Level.Enabled(level) {
		return
	}
	l.sl.Log(context.Background(), level, msg)
}

func (l *Logger) Error(a ...any)                   { l.log(slog.LevelError, fmt.Sprint(a...)) }
func (l *Logger) Warning(a ...any)                 { l.log(slog.LevelWarn, fmt.Sprint(a...)) }
func (l *Logger) Notice(a ...any)                  { l.log(levelNotice, fmt.Sprint(a...)) }
func (l *Logger) Info(a ...any)                    { l.log(slog.LevelInfo, fmt.Sprint(a...)) }
func (l *Logger) Debug(a ...any)                   { l.log(slog.LevelDebug, fmt.Sprint(a...)) }
func (l *Logger) Errorf(format string, a ...any)   { l.log(slog.LevelError, fmt.Sprintf(format, a...)) }
func (l *Logger) Warningf(format string, a ...any) { l.log(slog.LevelWarn, fmt.Sprintf(format, a...)) }
func (l *Logger) Noticef(format string, a ...any)  { l.log(levelNotice, fmt.Sprintf(format, a...)) }
func (l *Logger) Infof(format string, a ...any)    { l.log(slog.LevelInfo, fmt.Sprintf(format, a...)) }
func (l *Logger) Debugf(format string, a ...any)   { l.log(slog.LevelDebug, fmt.Sprintf(format, a...)) }
