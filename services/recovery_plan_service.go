package services

import (
	"context"

	"medagent-tools/aws"
	"medagent-tools/logger"
	"medagent-tools/utils"
)

// NoPlanMessage is returned when the protocol has no entry for the day.
const NoPlanMessage = "No plan found for that day."

// RecoveryPlanService answers "what should I do on day N" questions from
// the recovery protocol document.
type RecoveryPlanService struct {
	store aws.PlanStore
	retry utils.RetryConfig
	log   logger.Logger
}

func NewRecoveryPlanService(store aws.PlanStore, retry utils.RetryConfig) *RecoveryPlanService {
	return &RecoveryPlanService{
		store: store,
		retry: retry,
		log:   logger.GetLogger(),
	}
}

// PlanForDay returns the task text for the requested post-operative day.
// A day outside the protocol timeline yields NoPlanMessage, not an error.
func (s *RecoveryPlanService) PlanForDay(ctx context.Context, day int) (string, error) {
	var protocol *aws.RecoveryProtocol
	err := utils.RetryWithBackoff(ctx, s.retry, func() error {
		fetched, fetchErr := s.store.FetchProtocol(ctx)
		if fetchErr != nil {
			return fetchErr
		}
		protocol = fetched
		return nil
	})
	if err != nil {
		return "", err
	}

	for _, entry := range protocol.Timeline {
		if entry.Day == day {
			return entry.Tasks.String(), nil
		}
	}

	s.log.Info("No protocol entry for requested day", map[string]interface{}{
		"day": day,
	})
	return NoPlanMessage, nil
}
