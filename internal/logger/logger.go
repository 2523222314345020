package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
)

// Logger is the leveled key/value logging contract used across the module
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	SetLevel(level string)
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// Level of a log line
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// SimpleLogger writes "[LEVEL] msg k=v ..." lines through a stdlib *log.Logger
type SimpleLogger struct {
	out    *log.Logger
	level  Level
	fields map[string]interface{}
}

// New creates a logger writing to w at the given level name
func New(w io.Writer, level string) *SimpleLogger {
	l := &SimpleLogger{
		out:    log.New(w, "", log.LstdFlags),
		level:  InfoLevel,
		fields: make(map[string]interface{}),
	}
	l.SetLevel(level)
	return l
}

// NewDefault logs to stderr at INFO
func NewDefault() Logger {
	return New(os.Stderr, "info")
}

// Nop discards everything
func Nop() Logger {
	return New(io.Discard, "error")
}

func (l *SimpleLogger) Debug(msg string, fields ...interface{}) { l.logAt(DebugLevel, "DEBUG", msg, fields) }
func (l *SimpleLogger) Info(msg string, fields ...interface{})  { l.logAt(InfoLevel, "INFO", msg, fields) }
func (l *SimpleLogger) Warn(msg string, fields ...interface{})  { l.logAt(WarnLevel, "WARN", msg, fields) }
func (l *SimpleLogger) Error(msg string, fields ...interface{}) { l.logAt(ErrorLevel, "ERROR", msg, fields) }

// SetLevel accepts debug, info, warn/warning and error in any case; unknown names are ignored
func (l *SimpleLogger) SetLevel(level string) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		l.level = DebugLevel
	case "INFO":
		l.level = InfoLevel
	case "WARN", "WARNING":
		l.level = WarnLevel
	case "ERROR":
		l.level = ErrorLevel
	}
}

func (l *SimpleLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *SimpleLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &SimpleLogger{out: l.out, level: l.level, fields: merged}
}

func (l *SimpleLogger) logAt(lvl Level, name, msg string, kv []interface{}) {
	if lvl < l.level {
		return
	}
	parts := []string{"[" + name + "]", msg}

	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, l.fields[k]))
	}
	// odd trailing key is dropped
	for i := 0; i+1 < len(kv); i += 2 {
		parts = append(parts, fmt.Sprintf("%v=%v", kv[i], kv[i+1]))
	}
	l.out.Println(strings.Join(parts, " "))
}
