package agent

import "encoding/json"

const messageVersion = "1.0"

// ResponseContent wraps the JSON string body the agent framework expects.
type ResponseContent struct {
	Body string `json:"body"`
}

// ActionResponse is the inner response object of the agent envelope.
type ActionResponse struct {
	ActionGroup    string                     `json:"actionGroup"`
	ApiPath        string                     `json:"apiPath"`
	HttpMethod     string                     `json:"httpMethod"`
	HttpStatusCode int                        `json:"httpStatusCode"`
	ResponseBody   map[string]ResponseContent `json:"responseBody"`
}

// Response is the standard Bedrock Agent tool response envelope. Logical
// failures are reported inside a normal envelope, not as handler errors.
type Response struct {
	MessageVersion string         `json:"messageVersion"`
	Response       ActionResponse `json:"response"`
}

// BuildResponse wraps body in the standard envelope with status 200,
// echoing the invocation's action group, path and method. The body is
// marshalled into the JSON string the framework requires.
func BuildResponse(event *InvocationEvent, body interface{}) Response {
	return buildResponse(event, body, 200)
}

// BuildErrorResponse is the defensive variant used where the caller wants a
// non-200 status to surface (the agent still receives a normal envelope).
func BuildErrorResponse(event *InvocationEvent, body interface{}, statusCode int) Response {
	return buildResponse(event, body, statusCode)
}

func buildResponse(event *InvocationEvent, body interface{}, statusCode int) Response {
	encoded, err := json.Marshal(body)
	if err != nil {
		// A body that cannot be marshalled still has to produce a valid
		// envelope for the agent.
		encoded = []byte(`{"error":"failed to encode response body"}`)
	}

	return Response{
		MessageVersion: messageVersion,
		Response: ActionResponse{
			ActionGroup:    event.ActionGroup,
			ApiPath:        event.ApiPath,
			HttpMethod:     event.HttpMethod,
			HttpStatusCode: statusCode,
			ResponseBody: map[string]ResponseContent{
				"application/json": {Body: string(encoded)},
			},
		},
	}
}
