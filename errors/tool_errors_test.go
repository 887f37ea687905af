package errors

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestErrorMessagePresence_Property(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation errors contain descriptive messages", prop.ForAll(
		func(message string) bool {
			err := NewValidationError(message)
			return len(err.Error()) > 0 && err.Code == ErrCodeValidation
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
	))

	properties.Property("wrapped errors keep both message and cause", prop.ForAll(
		func(message, causeMsg string) bool {
			cause := errors.New(causeMsg)
			constructors := []func(string, error) *ToolError{
				NewImageError,
				NewVisionError,
				NewDrugInfoError,
				NewPlanStoreError,
				NewThrottlingError,
				NewAWSServiceError,
			}
			for _, newErr := range constructors {
				err := newErr(message, cause)
				if len(err.Error()) == 0 || !errors.Is(err, cause) {
					return false
				}
			}
			return true
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestErrorCodes(t *testing.T) {
	cases := []struct {
		err  *ToolError
		code string
	}{
		{NewImageError("bad image", nil), ErrCodeImage},
		{NewVisionError("model failed", nil), ErrCodeVision},
		{NewDrugInfoError("lookup failed", nil), ErrCodeDrugInfo},
		{NewPlanStoreError("fetch failed", nil), ErrCodePlanStore},
		{NewThrottlingError("throttled", nil), ErrCodeThrottling},
		{NewAWSServiceError("unavailable", nil), ErrCodeAWSService},
	}

	for _, tc := range cases {
		if tc.err.Code != tc.code {
			t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
		}
	}
}
