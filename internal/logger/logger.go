package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
)

type Logger struct {
	logger zerolog.Logger
	level  LogLevel
	tag    string
}

// NewLogger writes JSON lines to w. A nil writer discards everything.
func NewLogger(w io.Writer, level LogLevel) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{
		logger: zerolog.New(w).With().Timestamp().Logger(),
		level:  level,
	}
}

// NewConsoleLogger writes human readable lines with microsecond timestamps.
func NewConsoleLogger(w io.Writer, level LogLevel) *Logger {
	if w == nil {
		w = os.Stdout
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: "2006/01/02 15:04:05.000000"}
	return &Logger{
		logger: zerolog.New(cw).With().Timestamp().Logger(),
		level:  level,
	}
}

// WithTag creates a new logger with a tag prefix
func (l *Logger) WithTag(tag string) *Logger {
	return &Logger{
		logger: l.logger,
		level:  l.level,
		tag:    tag,
	}
}

func (l *Logger) event(e *zerolog.Event) *zerolog.Event {
	if l.tag != "" {
		return e.Str("tag", l.tag)
	}
	return e
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.level >= LogLevelDebug {
		l.event(l.logger.Debug()).Msgf(format, v...)
	}
}

func (l *Logger) Infof(format string, v ...interface{}) {
	if l.level >= LogLevelInfo {
		l.event(l.logger.Info()).Msgf(format, v...)
	}
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.level >= LogLevelWarning {
		l.event(l.logger.Warn()).Msgf(format, v...)
	}
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.level >= LogLevelError {
		l.event(l.logger.Error()).Msgf(format, v...)
	}
}

func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.event(l.logger.Fatal()).Msgf(format, v...)
}
