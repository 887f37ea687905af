package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"medagent-tools/errors"
	"medagent-tools/imaging"
	"medagent-tools/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

type VisionClient interface {
	AnalyzeImage(ctx context.Context, prompt, imageBase64, mediaType string) (string, error)
}

// BedrockVisionClient invokes a multimodal Llama model on Bedrock to read
// medication packaging from a photo.
type BedrockVisionClient struct {
	client    *bedrockruntime.Client
	modelId   string
	maxTokens int
	timeout   time.Duration
	log       logger.Logger
}

func NewBedrockVisionClient(cfg aws.Config, modelId string, maxTokens int, timeout time.Duration) *BedrockVisionClient {
	return &BedrockVisionClient{
		client:    bedrockruntime.NewFromConfig(cfg),
		modelId:   modelId,
		maxTokens: maxTokens,
		timeout:   timeout,
		log:       logger.GetLogger(),
	}
}

type llamaImageSource struct {
	Bytes string `json:"bytes"`
}

type llamaImage struct {
	Format string           `json:"format"`
	Source llamaImageSource `json:"source"`
}

type llamaVisionRequest struct {
	Prompt      string       `json:"prompt"`
	MaxGenLen   int          `json:"max_gen_len"`
	Temperature float64      `json:"temperature"`
	TopP        float64      `json:"top_p"`
	Images      []llamaImage `json:"images"`
}

type llamaVisionResponse struct {
	Generation string `json:"generation"`
	Outputs    []struct {
		Text string `json:"text"`
	} `json:"outputs"`
}

const llamaPromptTemplate = "<|begin_of_text|><|start_header_id|>user<|end_header_id|>\n\n%s\n\n[Image: %s base64 data provided]<|eot_id|><|start_header_id|>assistant<|end_header_id|>\n\n"

func renderPrompt(prompt, mediaType string) string {
	return fmt.Sprintf(llamaPromptTemplate, prompt, mediaType)
}

func (c *BedrockVisionClient) AnalyzeImage(ctx context.Context, prompt, imageBase64, mediaType string) (string, error) {
	request := llamaVisionRequest{
		Prompt:      renderPrompt(prompt, mediaType),
		MaxGenLen:   c.maxTokens,
		Temperature: 0.1,
		TopP:        0.9,
		Images: []llamaImage{
			{
				Format: imaging.FormatFromMediaType(mediaType),
				Source: llamaImageSource{Bytes: imageBase64},
			},
		},
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return "", errors.NewVisionError("failed to marshal vision request", err)
	}

	input := &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelId),
		Body:        requestBody,
		ContentType: aws.String("application/json"),
	}

	c.log.Info("Calling vision model", map[string]interface{}{
		"model_id": c.modelId,
	})

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	output, err := c.client.InvokeModel(ctx, input)
	if err != nil {
		return "", c.handleAWSError(err)
	}

	var response llamaVisionResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", errors.NewVisionError("failed to parse vision model response", err)
	}

	text := response.Generation
	if text == "" && len(response.Outputs) > 0 {
		text = response.Outputs[0].Text
	}
	if text == "" {
		return "", errors.NewVisionError("vision model returned an empty response", nil)
	}

	return text, nil
}

func (c *BedrockVisionClient) handleAWSError(err error) error {
	errMsg := err.Error()

	if strings.Contains(errMsg, "ValidationException") || strings.Contains(errMsg, "invalid") {
		return errors.NewValidationError(fmt.Sprintf("invalid input for vision model: %v", err))
	}

	if strings.Contains(errMsg, "ThrottlingException") || strings.Contains(errMsg, "TooManyRequestsException") {
		return errors.NewThrottlingError("vision model throttled", err)
	}

	if strings.Contains(errMsg, "AccessDeniedException") || strings.Contains(errMsg, "UnauthorizedException") {
		return errors.NewAWSServiceError("invalid or missing AWS credentials", err)
	}

	if strings.Contains(errMsg, "ServiceUnavailableException") || strings.Contains(errMsg, "InternalServerException") {
		return errors.NewAWSServiceError("vision model service unavailable", err)
	}

	if strings.Contains(errMsg, "ModelTimeoutException") {
		return errors.NewVisionError("vision model timed out", err)
	}

	return errors.NewVisionError("vision model invocation failed", err)
}
