package utils

import (
	"context"
	"strings"
	"time"

	"medagent-tools/errors"
	"medagent-tools/logger"
)

type RetryConfig struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
}

// RetryConfigWithAttempts returns the default retry configuration with the
// attempt count overridden when attempts is positive.
func RetryConfigWithAttempts(attempts int) RetryConfig {
	config := DefaultRetryConfig()
	if attempts > 0 {
		config.MaxAttempts = attempts
	}
	return config
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    100 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        2 * time.Second,
	}
}

// RetryWithBackoff runs operation until it succeeds, fails with a
// non-retryable error, exhausts MaxAttempts, or the context is cancelled.
func RetryWithBackoff(ctx context.Context, config RetryConfig, operation func() error) error {
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		lastErr = operation()

		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) {
			return lastErr
		}

		if attempt == config.MaxAttempts {
			break
		}

		logger.Warn("Retrying after transient failure", map[string]interface{}{
			"attempt":      attempt,
			"max_attempts": config.MaxAttempts,
			"error":        lastErr.Error(),
			"backoff":      backoff.String(),
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * config.BackoffMultiplier)
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	logger.Error("All retry attempts exhausted", map[string]interface{}{
		"max_attempts": config.MaxAttempts,
		"error":        lastErr.Error(),
	})
	return lastErr
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if toolErr, ok := err.(*errors.ToolError); ok {
		switch toolErr.Code {
		case errors.ErrCodeThrottling, errors.ErrCodeAWSService:
			return true
		case errors.ErrCodeValidation, errors.ErrCodeImage:
			// Bad input does not get better on retry.
			return false
		case errors.ErrCodeVision, errors.ErrCodeDrugInfo, errors.ErrCodePlanStore:
			if toolErr.Cause != nil {
				return isRetryable(toolErr.Cause)
			}
			return false
		}
	}

	errMsg := err.Error()
	retryablePatterns := []string{
		"timeout",
		"Timeout",
		"ServiceUnavailable",
		"InternalServer",
		"TooManyRequests",
		"Throttling",
		"connection reset",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}
