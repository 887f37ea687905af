package logger

import (
	"context"
	"testing"
)

func TestShouldLogRespectsLevel(t *testing.T) {
	defer SetLogLevel(INFO)

	SetLogLevel(ERROR)
	if shouldLog(DEBUG) || shouldLog(INFO) || shouldLog(WARN) {
		t.Error("only ERROR should pass at ERROR level")
	}
	if !shouldLog(ERROR) {
		t.Error("ERROR should pass at ERROR level")
	}

	SetLogLevel(DEBUG)
	for _, level := range []LogLevel{DEBUG, INFO, WARN, ERROR} {
		if !shouldLog(level) {
			t.Errorf("%s should pass at DEBUG level", level)
		}
	}
}

func TestGetLoggerFallsBackToStandard(t *testing.T) {
	previous := globalLogger
	defer Initialize(previous)

	globalLogger = nil
	if _, ok := GetLogger().(*StandardLogger); !ok {
		t.Error("expected StandardLogger fallback")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	requestID := NewRequestID()
	if requestID == "" {
		t.Fatal("expected non-empty request id")
	}

	ctx := WithRequestID(context.Background(), requestID)
	if got := RequestIDFromContext(ctx); got != requestID {
		t.Errorf("expected %s, got %s", requestID, got)
	}

	if RequestIDFromContext(context.Background()) != "" {
		t.Error("expected empty request id for bare context")
	}
}

func TestWithContextReturnsLogger(t *testing.T) {
	base := &StandardLogger{}
	derived := base.WithContext(WithRequestID(context.Background(), "req-1"))
	if derived == nil {
		t.Fatal("WithContext returned nil")
	}
	// Must not panic with or without fields.
	derived.Info("message")
	derived.Info("message", map[string]interface{}{"key": "value"})
}
