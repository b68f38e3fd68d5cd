// Package logger provides structured logging for validflux built on logrus,
// with a clean human-readable formatter for terminal use.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Buffer pool to reduce allocations in the formatter
var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// Logger defines the interface for logging
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// logger implements Logger using logrus
type logger struct {
	logrus *logrus.Logger
	level  logrus.Level
	format string
}

// New creates a new logger. Level is one of debug/info/warn/error; format
// is "json" or anything else for the clean text formatter.
func New(level, format string) Logger {
	l := logrus.New()
	l.SetLevel(parseLevel(level))
	l.SetOutput(os.Stderr)

	switch strings.ToLower(format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&CleanFormatter{})
	}

	return &logger{logrus: l, level: l.GetLevel(), format: format}
}

// NewSilent creates a logger that discards all output
func NewSilent() Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.SetOutput(io.Discard)
	l.SetFormatter(&CleanFormatter{})
	return &logger{logrus: l, level: logrus.InfoLevel, format: "text"}
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func (l *logger) Debug(msg string, args ...any) { l.logWithFields(logrus.DebugLevel, msg, args...) }
func (l *logger) Info(msg string, args ...any)  { l.logWithFields(logrus.InfoLevel, msg, args...) }
func (l *logger) Warn(msg string, args ...any)  { l.logWithFields(logrus.WarnLevel, msg, args...) }
func (l *logger) Error(msg string, args ...any) { l.logWithFields(logrus.ErrorLevel, msg, args...) }

// WithField creates a logger with a single structured field
func (l *logger) WithField(key string, value interface{}) Logger {
	return &logger{
		logrus: l.logrus.WithField(key, value).Logger,
		level:  l.level,
		format: l.format,
	}
}

// WithFields creates a logger with structured fields
func (l *logger) WithFields(fields map[string]interface{}) Logger {
	return &logger{
		logrus: l.logrus.WithFields(logrus.Fields(fields)).Logger,
		level:  l.level,
		format: l.format,
	}
}

// logWithFields forwards log messages with structured fields to logrus.
// Early exit for disabled levels avoids field allocation overhead.
func (l *logger) logWithFields(level logrus.Level, msg string, args ...any) {
	if l == nil || l.logrus == nil {
		return
	}
	if !l.logrus.IsLevelEnabled(level) {
		return
	}

	fields := fieldsFromArgs(args...)
	var entry *logrus.Entry
	if fields != nil {
		entry = l.logrus.WithFields(fields)
	} else {
		entry = logrus.NewEntry(l.logrus)
	}

	switch level {
	case logrus.DebugLevel:
		entry.Debug(msg)
	case logrus.WarnLevel:
		entry.Warn(msg)
	case logrus.ErrorLevel:
		entry.Error(msg)
	default:
		entry.Info(msg)
	}
}

// fieldsFromArgs converts variadic key/value pairs into logrus fields
func fieldsFromArgs(args ...any) logrus.Fields {
	if len(args) == 0 {
		return nil
	}

	fields := make(logrus.Fields, len(args)/2+1)
	for i := 0; i < len(args); {
		if i+1 < len(args) {
			if key, ok := args[i].(string); ok {
				fields[key] = args[i+1]
				i += 2
				continue
			}
		}
		fields[fmt.Sprintf("arg%d", i)] = args[i]
		i++
	}
	return fields
}

// CleanFormatter formats log entries in a clean, human-readable format
// using pooled buffers.
type CleanFormatter struct {
	levelStrings     map[logrus.Level]string
	levelStringsOnce sync.Once
}

// Pre-compute level strings with colors to avoid repeated Sprint calls
func (f *CleanFormatter) getLevelStrings() map[logrus.Level]string {
	f.levelStringsOnce.Do(func() {
		f.levelStrings = map[logrus.Level]string{
			logrus.DebugLevel: DebugColor.Sprint("DEBUG"),
			logrus.InfoLevel:  SuccessColor.Sprint("INFO "),
			logrus.WarnLevel:  WarnColor.Sprint("WARN "),
			logrus.ErrorLevel: ErrorColor.Sprint("ERROR"),
			logrus.FatalLevel: ErrorColor.Sprint("FATAL"),
			logrus.PanicLevel: ErrorColor.Sprint("PANIC"),
			logrus.TraceLevel: DebugColor.Sprint("TRACE"),
		}
	})
	return f.levelStrings
}

// Format implements logrus.Formatter
func (f *CleanFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	timestamp := entry.Time.Format("2006-01-02T15:04:05")

	levelStrings := f.getLevelStrings()
	levelText, ok := levelStrings[entry.Level]
	if !ok {
		levelText = levelStrings[logrus.InfoLevel]
	}

	buf.WriteString(levelText)
	buf.WriteByte(' ')
	buf.WriteByte('[')
	buf.WriteString(timestamp)
	buf.WriteString("] ")
	buf.WriteString(entry.Message)

	for k, v := range entry.Data {
		buf.WriteByte(' ')
		buf.WriteString(k)
		buf.WriteByte('=')
		fmt.Fprint(buf, v)
	}

	buf.WriteByte('\n')

	// Return a copy since the buffer goes back to the pool
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}
