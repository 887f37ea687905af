// Package handlers implements the Lambda entry points invoked by the
// Bedrock Agent. Logical failures never surface as Go errors: the agent
// expects a well-formed envelope either way, so every path answers with
// BuildResponse and a body the agent can relay to the patient.
package handlers

import (
	"context"
	stderrors "errors"
	"fmt"

	"medagent-tools/agent"
	"medagent-tools/errors"
	"medagent-tools/logger"
	"medagent-tools/metrics"
	"medagent-tools/openfda"
)

// DrugInfoGetter abstracts the drug-info service for testing.
type DrugInfoGetter interface {
	GetDrugInfo(ctx context.Context, drugName string) (*openfda.DrugSummary, error)
}

const drugInfoTool = "drug-info"

type DrugInfoHandler struct {
	service DrugInfoGetter
	log     logger.Logger
}

func NewDrugInfoHandler(service DrugInfoGetter) *DrugInfoHandler {
	return &DrugInfoHandler{
		service: service,
		log:     logger.GetLogger(),
	}
}

func (h *DrugInfoHandler) Handle(ctx context.Context, event agent.InvocationEvent) (agent.Response, error) {
	ctx = logger.WithRequestID(ctx, logger.NewRequestID())
	log := h.log.WithContext(ctx)

	drugName, ok := event.Parameter("drug_name")
	if !ok || drugName == "" {
		log.Warn("Missing drug_name parameter")
		metrics.ObserveOutcome(drugInfoTool, false)
		return agent.BuildResponse(&event, map[string]string{
			"error": "Could not find drug_name in the agent's request.",
		}), nil
	}

	log.Info("Looking up drug information", map[string]interface{}{
		"drug_name": drugName,
	})

	summary, err := h.service.GetDrugInfo(ctx, drugName)
	if err != nil {
		metrics.ObserveOutcome(drugInfoTool, false)
		return agent.BuildResponse(&event, map[string]string{
			"error": drugInfoErrorMessage(drugName, err),
		}), nil
	}

	metrics.ObserveOutcome(drugInfoTool, true)
	return agent.BuildResponse(&event, summary), nil
}

func drugInfoErrorMessage(drugName string, err error) string {
	if stderrors.Is(err, openfda.ErrNotFound) {
		return fmt.Sprintf("No information found for '%s'.", drugName)
	}

	var toolErr *errors.ToolError
	if stderrors.As(err, &toolErr) {
		switch toolErr.Code {
		case errors.ErrCodeValidation:
			return toolErr.Message
		case errors.ErrCodeThrottling:
			return "The drug information service is busy right now. Please try again in a moment."
		}
	}

	return fmt.Sprintf("An unexpected error occurred while looking up '%s'. Please try again.", drugName)
}
