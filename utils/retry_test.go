package utils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"medagent-tools/errors"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func fastRetryConfig(maxAttempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       maxAttempts,
		InitialBackoff:    1 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        10 * time.Millisecond,
	}
}

func TestRetryBackoff_Property(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("retries up to max attempts for retryable errors", prop.ForAll(
		func(maxAttempts int) bool {
			attemptCount := 0
			operation := func() error {
				attemptCount++
				return errors.NewThrottlingError("throttled", nil)
			}

			_ = RetryWithBackoff(context.Background(), fastRetryConfig(maxAttempts), operation)
			return attemptCount == maxAttempts
		},
		gen.IntRange(1, 5),
	))

	properties.Property("does not retry validation errors", prop.ForAll(
		func(errorMsg string) bool {
			attemptCount := 0
			operation := func() error {
				attemptCount++
				return errors.NewValidationError(errorMsg)
			}

			_ = RetryWithBackoff(context.Background(), fastRetryConfig(3), operation)
			return attemptCount == 1
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
	))

	properties.Property("stops retrying on success", prop.ForAll(
		func(successAfter int) bool {
			attemptCount := 0
			operation := func() error {
				attemptCount++
				if attemptCount >= successAfter {
					return nil
				}
				return errors.NewAWSServiceError("unavailable", nil)
			}

			err := RetryWithBackoff(context.Background(), fastRetryConfig(5), operation)
			return err == nil && attemptCount == successAfter
		},
		gen.IntRange(1, 3),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRetryDoesNotRetryImageErrors(t *testing.T) {
	attemptCount := 0
	operation := func() error {
		attemptCount++
		return errors.NewImageError("corrupt image data", nil)
	}

	_ = RetryWithBackoff(context.Background(), fastRetryConfig(3), operation)
	if attemptCount != 1 {
		t.Errorf("expected 1 attempt, got %d", attemptCount)
	}
}

func TestRetryFollowsWrappedCause(t *testing.T) {
	attemptCount := 0
	operation := func() error {
		attemptCount++
		return errors.NewDrugInfoError("lookup failed", fmt.Errorf("request timeout"))
	}

	_ = RetryWithBackoff(context.Background(), fastRetryConfig(3), operation)
	if attemptCount != 3 {
		t.Errorf("expected 3 attempts for retryable cause, got %d", attemptCount)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	operation := func() error {
		return errors.NewThrottlingError("throttled", nil)
	}

	err := RetryWithBackoff(ctx, fastRetryConfig(5), operation)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCleanMarkdown(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"**Medication Name**: Advil", "Medication Name: Advil"},
		{"# Analysis\n\nThe pill is round.", "Analysis The pill is round."},
		{"`200mg` twice daily", "200mg twice daily"},
		{"  plain   text  ", "plain text"},
		{"_likely_ Tylenol", "likely Tylenol"},
	}

	for _, tc := range cases {
		if got := CleanMarkdown(tc.input); got != tc.expected {
			t.Errorf("CleanMarkdown(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
