// Package logging provides the leveled console logger shared by the server,
// the ingestion pipeline, and the MCP adapter.
package logging

import (
	"log"
	"os"
	"strings"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

// Logger is a simple leveled logger that writes to the console.
type Logger struct {
	*log.Logger
	min level
}

// NewLogger creates a Logger filtering below the named level. Unknown names
// default to info.
func NewLogger(minLevel string) *Logger {
	return &Logger{
		Logger: log.New(os.Stdout, "", log.LstdFlags),
		min:    parseLevel(minLevel),
	}
}

func parseLevel(name string) level {
	switch strings.ToLower(name) {
	case "debug":
		return levelDebug
	case "warn", "warning":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.min <= levelDebug {
		l.Printf("DEBUG: "+msg, args...)
	}
}

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...interface{}) {
	if l.min <= levelInfo {
		l.Printf("INFO: "+msg, args...)
	}
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.min <= levelWarn {
		l.Printf("WARN: "+msg, args...)
	}
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...interface{}) {
	if l.min <= levelError {
		l.Printf("ERROR: "+msg, args...)
	}
}
