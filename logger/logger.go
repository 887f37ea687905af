package logger

import (
	"context"
	"log"

	"github.com/google/uuid"
)

type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

// Logger is the logging surface used by every tool. Fields are free-form
// key/value maps appended to the message.
type Logger interface {
	Debug(message string, fields ...map[string]interface{})
	Info(message string, fields ...map[string]interface{})
	Warn(message string, fields ...map[string]interface{})
	Error(message string, fields ...map[string]interface{})
	WithContext(ctx context.Context) Logger
}

var globalLogger Logger
var minLogLevel LogLevel = INFO

// Initialize sets up the global logger.
func Initialize(logger Logger) {
	globalLogger = logger
}

// SetLogLevel sets the minimum log level.
func SetLogLevel(level LogLevel) {
	minLogLevel = level
}

// ParseLevel maps a level name to a LogLevel, defaulting to INFO.
func ParseLevel(name string) LogLevel {
	switch LogLevel(name) {
	case DEBUG, INFO, WARN, ERROR:
		return LogLevel(name)
	default:
		return INFO
	}
}

func shouldLog(level LogLevel) bool {
	levels := map[LogLevel]int{
		DEBUG: 0,
		INFO:  1,
		WARN:  2,
		ERROR: 3,
	}
	return levels[level] >= levels[minLogLevel]
}

// GetLogger returns the global logger, falling back to stdout logging when
// Initialize was never called.
func GetLogger() Logger {
	if globalLogger == nil {
		return &StandardLogger{}
	}
	return globalLogger
}

type requestIDKey struct{}

// NewRequestID returns a fresh request identifier for one tool invocation.
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID stores a request id in the context so WithContext-derived
// loggers can attach it to every line.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// StandardLogger writes to stdout through the standard log package. In
// Lambda this is all that is needed: the runtime forwards stdout to
// CloudWatch.
type StandardLogger struct {
	ctx context.Context
}

func (l *StandardLogger) WithContext(ctx context.Context) Logger {
	return &StandardLogger{ctx: ctx}
}

func (l *StandardLogger) Debug(message string, fields ...map[string]interface{}) {
	l.write(DEBUG, message, fields...)
}

func (l *StandardLogger) Info(message string, fields ...map[string]interface{}) {
	l.write(INFO, message, fields...)
}

func (l *StandardLogger) Warn(message string, fields ...map[string]interface{}) {
	l.write(WARN, message, fields...)
}

func (l *StandardLogger) Error(message string, fields ...map[string]interface{}) {
	l.write(ERROR, message, fields...)
}

func (l *StandardLogger) write(level LogLevel, message string, fields ...map[string]interface{}) {
	if !shouldLog(level) {
		return
	}
	if requestID := RequestIDFromContext(l.ctx); requestID != "" {
		message = message + " | request_id=" + requestID
	}
	if len(fields) > 0 {
		log.Printf("[%s] %s %v", level, message, fields)
	} else {
		log.Printf("[%s] %s", level, message)
	}
}

// Convenience functions for the global logger.
func Debug(message string, fields ...map[string]interface{}) {
	GetLogger().Debug(message, fields...)
}

func Info(message string, fields ...map[string]interface{}) {
	GetLogger().Info(message, fields...)
}

func Warn(message string, fields ...map[string]interface{}) {
	GetLogger().Warn(message, fields...)
}

func Error(message string, fields ...map[string]interface{}) {
	GetLogger().Error(message, fields...)
}

func WithContext(ctx context.Context) Logger {
	return GetLogger().WithContext(ctx)
}
