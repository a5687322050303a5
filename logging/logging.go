// Package logging provides real-time console output for bridge transports.
// The bridge itself surfaces no errors; this package gives registries and
// composition roots an optional monitoring channel.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger provides structured logging to stdout.
type Logger struct {
	mu        sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel maps a config string to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// New creates a new Logger.
func New() *Logger {
	return &Logger{
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// WithComponent returns a new logger with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	var parts []string
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry in traditional format: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Transport event helpers ---
// Called by registries and composition roots for real-time monitoring.

// SubscribeAdded logs a new topic subscription.
func (l *Logger) SubscribeAdded(topic string) {
	l.Debug("subscribe", map[string]interface{}{
		"topic": topic,
	})
}

// SubscribeRemoved logs a removed topic subscription.
func (l *Logger) SubscribeRemoved(topic string) {
	l.Debug("unsubscribe", map[string]interface{}{
		"topic": topic,
	})
}

// MessageRelayed logs a message forwarded to a peer process.
func (l *Logger) MessageRelayed(topic string, size int) {
	l.Debug("relay", map[string]interface{}{
		"topic": topic,
		"bytes": size,
	})
}

// PeerConnected logs an established peer link.
func (l *Logger) PeerConnected(remote string) {
	l.Info("peer_connected", map[string]interface{}{
		"remote": remote,
	})
}

// PeerDisconnected logs a lost peer link.
func (l *Logger) PeerDisconnected(remote string, err error) {
	fields := map[string]interface{}{
		"remote": remote,
	}
	if err != nil {
		fields["error"] = err.Error()
		l.Warn("peer_disconnected", fields)
		return
	}
	l.Info("peer_disconnected", fields)
}

// RelayDropped logs a message that could not be forwarded.
func (l *Logger) RelayDropped(topic string, err error) {
	l.Warn("relay_dropped", map[string]interface{}{
		"topic": topic,
		"error": err.Error(),
	})
}
