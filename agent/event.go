// Package agent models the Bedrock Agent tool invocation envelope: the
// inbound event with its several historical parameter layouts, and the
// response wrapper the agent framework expects back.
package agent

import "encoding/json"

// Parameter is one name/value pair as sent by the agent.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ContentBody holds the properties list nested under a content type key.
type ContentBody struct {
	Properties []Parameter `json:"properties"`
}

// RequestBody is the nested body carried inside the "input" object.
type RequestBody struct {
	Content map[string]ContentBody `json:"content"`
}

// EventInput is the "input" object of the newer agent event layout. Direct
// fields appear alongside RequestBody in some invocations.
type EventInput struct {
	RequestBody RequestBody `json:"RequestBody"`

	fields map[string]json.RawMessage
}

func (in *EventInput) UnmarshalJSON(data []byte) error {
	type alias EventInput
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*in = EventInput(decoded)
	// Retain the raw object so direct fields stay reachable.
	return json.Unmarshal(data, &in.fields)
}

// InvocationEvent is a Bedrock Agent tool invocation. Parameters may arrive
// in any of five shapes depending on the agent configuration and schema
// generation; Parameter probes them in a fixed fallback order.
type InvocationEvent struct {
	ActionGroup string      `json:"actionGroup"`
	ApiPath     string      `json:"apiPath"`
	HttpMethod  string      `json:"httpMethod"`
	Input       EventInput  `json:"input"`
	Parameters  []Parameter `json:"parameters"`

	requestBody map[string]json.RawMessage
	topLevel    map[string]json.RawMessage
}

func (e *InvocationEvent) UnmarshalJSON(data []byte) error {
	type alias InvocationEvent
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*e = InvocationEvent(decoded)

	var envelope struct {
		RequestBody map[string]json.RawMessage `json:"requestBody"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil {
		e.requestBody = envelope.RequestBody
	}
	return json.Unmarshal(data, &e.topLevel)
}

// extractor probes one event shape for a named parameter.
type extractor func(e *InvocationEvent, name string) (string, bool)

// extractors is the fallback order: nested RequestBody properties, flat
// parameters list, requestBody object, top-level fields, input direct
// fields. First success short-circuits the rest.
var extractors = []extractor{
	fromRequestBodyProperties,
	fromParametersList,
	fromRequestBodyObject,
	fromTopLevel,
	fromInputFields,
}

// Parameter returns the named parameter, probing each supported event shape
// in order.
func (e *InvocationEvent) Parameter(name string) (string, bool) {
	for _, extract := range extractors {
		if value, ok := extract(e, name); ok {
			return value, true
		}
	}
	return "", false
}

func fromRequestBodyProperties(e *InvocationEvent, name string) (string, bool) {
	content, ok := e.Input.RequestBody.Content["application/json"]
	if !ok {
		return "", false
	}
	return findParameter(content.Properties, name)
}

func fromParametersList(e *InvocationEvent, name string) (string, bool) {
	return findParameter(e.Parameters, name)
}

func fromRequestBodyObject(e *InvocationEvent, name string) (string, bool) {
	return stringField(e.requestBody, name)
}

func fromTopLevel(e *InvocationEvent, name string) (string, bool) {
	return stringField(e.topLevel, name)
}

func fromInputFields(e *InvocationEvent, name string) (string, bool) {
	return stringField(e.Input.fields, name)
}

func findParameter(params []Parameter, name string) (string, bool) {
	for _, param := range params {
		if param.Name == name && param.Value != "" {
			return param.Value, true
		}
	}
	return "", false
}

func stringField(fields map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := fields[name]
	if !ok {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err == nil && value != "" {
		return value, true
	}
	// Some agent schemas serialize numbers unquoted.
	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil && number.String() != "" {
		return number.String(), true
	}
	return "", false
}
