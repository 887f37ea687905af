package routing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medagent-tools/agent"
)

type echoHandler struct {
	body map[string]string
}

func (h *echoHandler) Handle(ctx context.Context, event agent.InvocationEvent) (agent.Response, error) {
	return agent.BuildResponse(&event, h.body), nil
}

func testRouter() http.Handler {
	handler := &echoHandler{body: map[string]string{"ok": "yes"}}
	return SetupRoutes(handler, handler, handler)
}

func TestHealthCheck(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/medagent/healthcheck", nil)

	testRouter().ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("got status %d", recorder.Code)
	}
	var response Response
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if response.Message != "I'm OK" {
		t.Errorf("got message %q", response.Message)
	}
}

func TestToolEndpointRoundTrip(t *testing.T) {
	event := `{
		"actionGroup": "medication-tools",
		"apiPath": "/drug-info",
		"httpMethod": "POST",
		"parameters": [{"name": "drug_name", "value": "Aspirin"}]
	}`

	for _, path := range []string{
		"/api/medagent/drug-info",
		"/api/medagent/recovery-plan",
		"/api/medagent/image-analysis",
	} {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("POST", path, strings.NewReader(event))

		testRouter().ServeHTTP(recorder, request)

		if recorder.Code != http.StatusOK {
			t.Errorf("%s: got status %d", path, recorder.Code)
			continue
		}

		var response agent.Response
		if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
			t.Fatalf("%s: invalid envelope: %v", path, err)
		}
		if response.MessageVersion != "1.0" {
			t.Errorf("%s: got message version %q", path, response.MessageVersion)
		}
		if response.Response.ActionGroup != "medication-tools" {
			t.Errorf("%s: action group not echoed: %q", path, response.Response.ActionGroup)
		}
	}
}

func TestToolEndpointRejectsBadJSON(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/medagent/drug-info", strings.NewReader("{not json"))

	testRouter().ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", recorder.Code)
	}
}

func TestNotFound(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/medagent/unknown", nil)

	testRouter().ServeHTTP(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404", recorder.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/metrics", nil)

	testRouter().ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("got status %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "go_") {
		t.Error("metrics output missing default collectors")
	}
}
