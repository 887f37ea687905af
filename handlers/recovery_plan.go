package handlers

import (
	"context"
	"strconv"

	"medagent-tools/agent"
	"medagent-tools/logger"
	"medagent-tools/metrics"
)

// PlanProvider abstracts the recovery-plan service for testing.
type PlanProvider interface {
	PlanForDay(ctx context.Context, day int) (string, error)
}

const recoveryPlanTool = "recovery-plan"

type RecoveryPlanHandler struct {
	service PlanProvider
	log     logger.Logger
}

func NewRecoveryPlanHandler(service PlanProvider) *RecoveryPlanHandler {
	return &RecoveryPlanHandler{
		service: service,
		log:     logger.GetLogger(),
	}
}

func (h *RecoveryPlanHandler) Handle(ctx context.Context, event agent.InvocationEvent) (agent.Response, error) {
	ctx = logger.WithRequestID(ctx, logger.NewRequestID())
	log := h.log.WithContext(ctx)

	dayValue, ok := event.Parameter("day")
	if !ok || dayValue == "" {
		log.Warn("Missing day parameter")
		metrics.ObserveOutcome(recoveryPlanTool, false)
		return agent.BuildResponse(&event, map[string]string{
			"error": "I'm sorry, you need to specify which day you want the plan for.",
		}), nil
	}

	day, err := strconv.Atoi(dayValue)
	if err != nil {
		log.Warn("Non-numeric day parameter", map[string]interface{}{
			"day": dayValue,
		})
		metrics.ObserveOutcome(recoveryPlanTool, false)
		return agent.BuildResponse(&event, map[string]string{
			"error": "The day must be a whole number, for example 3.",
		}), nil
	}

	log.Info("Fetching recovery plan", map[string]interface{}{
		"day": day,
	})

	plan, err := h.service.PlanForDay(ctx, day)
	if err != nil {
		metrics.ObserveOutcome(recoveryPlanTool, false)
		return agent.BuildResponse(&event, map[string]string{
			"error": "An error occurred while fetching the recovery plan. Please try again.",
		}), nil
	}

	metrics.ObserveOutcome(recoveryPlanTool, true)
	return agent.BuildResponse(&event, map[string]string{
		"plan": plan,
	}), nil
}
