package aws

import (
	"encoding/json"
	"strings"
	"testing"

	"medagent-tools/errors"
)

func TestBedrockVisionClient_HandleAWSError(t *testing.T) {
	client := &BedrockVisionClient{
		modelId: "test-model",
	}

	tests := []struct {
		name         string
		errorMsg     string
		expectedCode string
	}{
		{
			name:         "validation exception",
			errorMsg:     "ValidationException: invalid input",
			expectedCode: errors.ErrCodeValidation,
		},
		{
			name:         "throttling exception",
			errorMsg:     "ThrottlingException: rate exceeded",
			expectedCode: errors.ErrCodeThrottling,
		},
		{
			name:         "access denied",
			errorMsg:     "AccessDeniedException: not authorized",
			expectedCode: errors.ErrCodeAWSService,
		},
		{
			name:         "service unavailable",
			errorMsg:     "ServiceUnavailableException: try again",
			expectedCode: errors.ErrCodeAWSService,
		},
		{
			name:         "model timeout",
			errorMsg:     "ModelTimeoutException: generation took too long",
			expectedCode: errors.ErrCodeVision,
		},
		{
			name:         "unknown error",
			errorMsg:     "something unexpected happened",
			expectedCode: errors.ErrCodeVision,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := client.handleAWSError(&fakeError{msg: tt.errorMsg})
			toolErr, ok := mapped.(*errors.ToolError)
			if !ok {
				t.Fatalf("expected *errors.ToolError, got %T", mapped)
			}
			if toolErr.Code != tt.expectedCode {
				t.Errorf("got code %q, want %q", toolErr.Code, tt.expectedCode)
			}
		})
	}
}

func TestLlamaVisionRequestShape(t *testing.T) {
	request := llamaVisionRequest{
		Prompt:      "identify this medication",
		MaxGenLen:   1000,
		Temperature: 0.1,
		TopP:        0.9,
		Images: []llamaImage{
			{Format: "jpeg", Source: llamaImageSource{Bytes: "QUJDRA=="}},
		},
	}

	encoded, err := json.Marshal(request)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("failed to unmarshal request: %v", err)
	}

	for _, key := range []string{"prompt", "max_gen_len", "temperature", "top_p", "images"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("request body missing %q field", key)
		}
	}

	images := decoded["images"].([]interface{})
	first := images[0].(map[string]interface{})
	if first["format"] != "jpeg" {
		t.Errorf("got image format %v, want jpeg", first["format"])
	}
	source := first["source"].(map[string]interface{})
	if source["bytes"] != "QUJDRA==" {
		t.Errorf("got image bytes %v", source["bytes"])
	}
}

func TestLlamaVisionResponseFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "generation field preferred",
			body: `{"generation":"This is Aspirin 325mg"}`,
			want: "This is Aspirin 325mg",
		},
		{
			name: "outputs text fallback",
			body: `{"generation":"","outputs":[{"text":"Medication: Tylenol"}]}`,
			want: "Medication: Tylenol",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var response llamaVisionResponse
			if err := json.Unmarshal([]byte(tt.body), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			text := response.Generation
			if text == "" && len(response.Outputs) > 0 {
				text = response.Outputs[0].Text
			}
			if text != tt.want {
				t.Errorf("got %q, want %q", text, tt.want)
			}
		})
	}
}

func TestLlamaPromptTemplate(t *testing.T) {
	prompt := "identify this medication"
	rendered := renderPrompt(prompt, "image/png")
	if !strings.Contains(rendered, prompt) {
		t.Error("rendered prompt missing the analysis instructions")
	}
	if !strings.Contains(rendered, "image/png") {
		t.Error("rendered prompt missing the media type")
	}
	if !strings.HasPrefix(rendered, "<|begin_of_text|>") {
		t.Error("rendered prompt missing the Llama header tokens")
	}
}

type fakeError struct {
	msg string
}

func (e *fakeError) Error() string {
	return e.msg
}
