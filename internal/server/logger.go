package server

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger interface for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
}

// Field represents a structured log field
type Field struct {
	Key   string
	Value interface{}
}

// ZerologLogger writes fields as zerolog event attributes
type ZerologLogger struct {
	logger zerolog.Logger
}

func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// NewDefaultLogger logs JSON lines with timestamps to stdout
func NewDefaultLogger() *ZerologLogger {
	return NewWriterLogger(os.Stdout)
}

func NewWriterLogger(w io.Writer) *ZerologLogger {
	return NewZerologLogger(zerolog.New(w).With().Timestamp().Logger())
}

func (l *ZerologLogger) Debug(msg string, fields ...Field) {
	l.log(l.logger.Debug(), msg, fields)
}

func (l *ZerologLogger) Info(msg string, fields ...Field) {
	l.log(l.logger.Info(), msg, fields)
}

func (l *ZerologLogger) Error(msg string, fields ...Field) {
	l.log(l.logger.Error(), msg, fields)
}

func (l *ZerologLogger) Warn(msg string, fields ...Field) {
	l.log(l.logger.Warn(), msg, fields)
}

func (l *ZerologLogger) log(e *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case error:
			e = e.AnErr(f.Key, v)
		default:
			e = e.Interface(f.Key, sanitizeValue(v))
		}
	}
	e.Msg(msg)
}

// Request paths come straight from the client; keep log lines bounded.
func sanitizeValue(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		if len(s) > 100 {
			return s[:100] + "...[truncated]"
		}
	}
	return v
}

// NullLogger discards all logs (for testing)
type NullLogger struct{}

func (n *NullLogger) Debug(msg string, fields ...Field) {}
func (n *NullLogger) Info(msg string, fields ...Field)  {}
func (n *NullLogger) Error(msg string, fields ...Field) {}
func (n *NullLogger) Warn(msg string, fields ...Field)  {}
