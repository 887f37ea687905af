package errors

import "fmt"

const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeImage      = "IMAGE_ERROR"
	ErrCodeVision     = "VISION_ERROR"
	ErrCodeDrugInfo   = "DRUG_INFO_ERROR"
	ErrCodePlanStore  = "PLAN_STORE_ERROR"
	ErrCodeThrottling = "THROTTLING_ERROR"
	ErrCodeAWSService = "AWS_SERVICE_ERROR"
)

type ToolError struct {
	Code    string
	Message string
	Cause   error
}

func (e *ToolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ToolError) Unwrap() error {
	return e.Cause
}

func NewValidationError(message string) *ToolError {
	return &ToolError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

func NewImageError(message string, cause error) *ToolError {
	return &ToolError{
		Code:    ErrCodeImage,
		Message: message,
		Cause:   cause,
	}
}

func NewVisionError(message string, cause error) *ToolError {
	return &ToolError{
		Code:    ErrCodeVision,
		Message: message,
		Cause:   cause,
	}
}

func NewDrugInfoError(message string, cause error) *ToolError {
	return &ToolError{
		Code:    ErrCodeDrugInfo,
		Message: message,
		Cause:   cause,
	}
}

func NewPlanStoreError(message string, cause error) *ToolError {
	return &ToolError{
		Code:    ErrCodePlanStore,
		Message: message,
		Cause:   cause,
	}
}

func NewThrottlingError(message string, cause error) *ToolError {
	return &ToolError{
		Code:    ErrCodeThrottling,
		Message: message,
		Cause:   cause,
	}
}

func NewAWSServiceError(message string, cause error) *ToolError {
	return &ToolError{
		Code:    ErrCodeAWSService,
		Message: message,
		Cause:   cause,
	}
}
