package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"medagent-tools/agent"
	"medagent-tools/errors"
	"medagent-tools/logger"
	"medagent-tools/metrics"
	"medagent-tools/services"
)

// ImageAnalyzer abstracts the image-analysis service for testing.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, imageData, prompt string) (*services.CombinedResponse, error)
}

const imageAnalysisTool = "image-analysis"

type ImageAnalysisHandler struct {
	service ImageAnalyzer
	log     logger.Logger
}

func NewImageAnalysisHandler(service ImageAnalyzer) *ImageAnalysisHandler {
	return &ImageAnalysisHandler{
		service: service,
		log:     logger.GetLogger(),
	}
}

// errorBody is the defensive failure shape of the image-analysis tool. It
// carries an HTTP-style status alongside the agent envelope status because
// the original API contract distinguished caller mistakes from pipeline
// failures.
type errorBody struct {
	Success      bool   `json:"success"`
	Error        string `json:"error"`
	ErrorCode    string `json:"error_code"`
	UserResponse string `json:"user_response"`
}

func (h *ImageAnalysisHandler) Handle(ctx context.Context, event agent.InvocationEvent) (agent.Response, error) {
	ctx = logger.WithRequestID(ctx, logger.NewRequestID())
	log := h.log.WithContext(ctx)

	imageData, ok := event.Parameter("image_data")
	if !ok || imageData == "" {
		log.Warn("Missing image_data parameter")
		metrics.ObserveOutcome(imageAnalysisTool, false)
		return agent.BuildErrorResponse(&event, errorBody{
			Error:        "Could not find image_data in the agent's request.",
			ErrorCode:    errors.ErrCodeValidation,
			UserResponse: "Please attach a photo of the medication you would like identified.",
		}, http.StatusBadRequest), nil
	}

	prompt, _ := event.Parameter("prompt")

	log.Info("Starting image analysis", map[string]interface{}{
		"image_data_length": len(imageData),
	})

	result, err := h.service.Analyze(ctx, imageData, prompt)
	if err != nil {
		metrics.ObserveOutcome(imageAnalysisTool, false)
		body, status := imageAnalysisErrorBody(err)
		return agent.BuildErrorResponse(&event, body, status), nil
	}

	log.Info("Image analysis completed", map[string]interface{}{
		"medication_name": result.Identification.IdentifiedMedication,
		"confidence":      result.Identification.ConfidenceScore,
		"processing_time": fmt.Sprintf("%.2fs", result.ProcessingTime),
	})

	metrics.ObserveOutcome(imageAnalysisTool, true)
	return agent.BuildResponse(&event, result), nil
}

func imageAnalysisErrorBody(err error) (errorBody, int) {
	var toolErr *errors.ToolError
	if !stderrors.As(err, &toolErr) {
		return errorBody{
			Error:        err.Error(),
			ErrorCode:    errors.ErrCodeVision,
			UserResponse: "An error occurred while analyzing the image. Please try again.",
		}, http.StatusInternalServerError
	}

	switch toolErr.Code {
	case errors.ErrCodeValidation, errors.ErrCodeImage:
		return errorBody{
			Error:     toolErr.Message,
			ErrorCode: toolErr.Code,
			UserResponse: fmt.Sprintf(
				"There was a problem with the image you provided: %s. Please try uploading a clearer photo of the medication.",
				toolErr.Message),
		}, http.StatusBadRequest
	case errors.ErrCodeThrottling:
		return errorBody{
			Error:        toolErr.Message,
			ErrorCode:    toolErr.Code,
			UserResponse: "The analysis service is busy right now. Please try again in a moment.",
		}, http.StatusInternalServerError
	default:
		return errorBody{
			Error:        toolErr.Message,
			ErrorCode:    toolErr.Code,
			UserResponse: "An error occurred while analyzing the image. Please try again.",
		}, http.StatusInternalServerError
	}
}
