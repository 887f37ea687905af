package services

import (
	"context"
	"testing"

	"medagent-tools/aws"
	"medagent-tools/errors"
)

type mockPlanStore struct {
	calls int
	fetch func(ctx context.Context) (*aws.RecoveryProtocol, error)
}

func (m *mockPlanStore) FetchProtocol(ctx context.Context) (*aws.RecoveryProtocol, error) {
	m.calls++
	return m.fetch(ctx)
}

func kneeProtocol() *aws.RecoveryProtocol {
	return &aws.RecoveryProtocol{
		SurgeryType: "knee_arthroscopy",
		Timeline: []aws.ProtocolDay{
			{Day: 1, Tasks: aws.TaskList{"Rest, ice and elevate the knee."}},
			{Day: 2, Tasks: aws.TaskList{"Ankle pumps every hour.", "Quad sets, 3 sets of 10."}},
			{Day: 7, Tasks: aws.TaskList{"Begin stationary bike with no resistance."}},
		},
	}
}

func TestPlanForDay(t *testing.T) {
	store := &mockPlanStore{fetch: func(ctx context.Context) (*aws.RecoveryProtocol, error) {
		return kneeProtocol(), nil
	}}
	service := NewRecoveryPlanService(store, fastRetry())

	tests := []struct {
		name string
		day  int
		want string
	}{
		{"first day", 1, "Rest, ice and elevate the knee."},
		{"multi-task day", 2, "Ankle pumps every hour. Quad sets, 3 sets of 10."},
		{"later entry", 7, "Begin stationary bike with no resistance."},
		{"missing day", 3, NoPlanMessage},
		{"day beyond timeline", 100, NoPlanMessage},
		{"negative day", -1, NoPlanMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := service.PlanForDay(context.Background(), tt.day)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan != tt.want {
				t.Errorf("got %q, want %q", plan, tt.want)
			}
		})
	}
}

func TestPlanForDayStoreError(t *testing.T) {
	store := &mockPlanStore{fetch: func(ctx context.Context) (*aws.RecoveryProtocol, error) {
		return nil, errors.NewPlanStoreError("protocol document not found", nil)
	}}
	service := NewRecoveryPlanService(store, fastRetry())

	_, err := service.PlanForDay(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	toolErr, ok := err.(*errors.ToolError)
	if !ok || toolErr.Code != errors.ErrCodePlanStore {
		t.Errorf("expected plan store error, got %v", err)
	}
	if store.calls != 1 {
		t.Errorf("non-retryable failure should not be retried, got %d attempts", store.calls)
	}
}

func TestPlanForDayRetriesThrottling(t *testing.T) {
	store := &mockPlanStore{}
	store.fetch = func(ctx context.Context) (*aws.RecoveryProtocol, error) {
		if store.calls < 2 {
			return nil, errors.NewThrottlingError("S3 request throttled", nil)
		}
		return kneeProtocol(), nil
	}
	service := NewRecoveryPlanService(store, fastRetry())

	plan, err := service.PlanForDay(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan != "Rest, ice and elevate the knee." {
		t.Errorf("got %q", plan)
	}
	if store.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", store.calls)
	}
}
