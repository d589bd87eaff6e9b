// Package logger is a small JSON line logger for the request-facing parts
// of the system (the HTTP server and the Gemini client), where logs carry
// per-request fields. The background binaries log through slog instead.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Field is one key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// String builds a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int builds an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 builds an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Any builds a field from an arbitrary value.
func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Err builds the conventional "error" field. A nil error logs as null.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Component tags a line with the emitting subsystem.
func Component(name string) Field {
	return Field{Key: "component", Value: name}
}

// Latency records an elapsed duration in milliseconds.
func Latency(d time.Duration) Field {
	return Field{Key: "latency_ms", Value: d.Milliseconds()}
}

// Options configures a Logger.
type Options struct {
	// Output defaults to os.Stdout.
	Output io.Writer

	// Level is the minimum severity that gets written.
	Level Level
}

// Logger writes one JSON object per line. Loggers derived with With share
// the parent's output and write lock.
type Logger struct {
	out    io.Writer
	level  Level
	fields []Field

	mu *sync.Mutex
}

// New creates a Logger.
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	return &Logger{
		out:   out,
		level: opts.Level,
		mu:    &sync.Mutex{},
	}
}

// Default returns an info-level logger on stdout.
func Default() *Logger {
	return New(Options{Level: LevelInfo})
}

// With returns a child logger whose lines carry the given fields.
func (l *Logger) With(fields ...Field) *Logger {
	child := &Logger{
		out:    l.out,
		level:  l.level,
		fields: make([]Field, 0, len(l.fields)+len(fields)),
		mu:     l.mu,
	}
	child.fields = append(child.fields, l.fields...)
	child.fields = append(child.fields, fields...)
	return child
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

func (l *Logger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	entry := make(map[string]any, len(l.fields)+len(fields)+3)
	entry["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg
	for _, f := range l.fields {
		entry[f.Key] = f.Value
	}
	for _, f := range fields {
		entry[f.Key] = f.Value
	}

	line, err := json.Marshal(entry)
	if err != nil {
		// Values that cannot marshal still produce a line.
		line = []byte(fmt.Sprintf(`{"ts":%q,"level":%q,"msg":%q,"logger_error":%q}`,
			time.Now().UTC().Format(time.RFC3339Nano), level.String(), msg, err.Error()))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(line, '\n'))
}
