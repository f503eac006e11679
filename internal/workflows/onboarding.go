// Package workflows hosts the Temporal store onboarding saga.
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/nishat1/Instock/internal/core/domain"
	"github.com/nishat1/Instock/internal/pkg/validation"
)

// OnboardingInput is the input for the store onboarding workflow.
type OnboardingInput struct {
	Store     domain.StoreInput
	RequestID string
}

// StoreOnboardingWorkflow geocodes a store, inserts it and announces it. If the
// announcement fails, the inserted store is deleted (saga compensation) so that
// no store exists that cache invalidators never heard of.
func StoreOnboardingWorkflow(ctx workflow.Context, input OnboardingInput) (string, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting store onboarding", "name", input.Store.Name, "requestID", input.RequestID)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	// Step 1: Geocode
	var pos domain.GeocodeResult
	if err := workflow.ExecuteActivity(ctx, ActivityGeocodeStore, input.Store).Get(ctx, &pos); err != nil {
		return "", err
	}

	// Step 2: Insert
	var storeID string
	if err := workflow.ExecuteActivity(ctx, ActivityInsertStore, input.Store, pos).Get(ctx, &storeID); err != nil {
		return "", err
	}

	// Step 3: Announce
	if err := workflow.ExecuteActivity(ctx, ActivityAnnounceStore, storeID).Get(ctx, nil); err != nil {
		logger.Warn("store announcement failed, compensating", "storeID", storeID, "error", err)
		_ = workflow.ExecuteActivity(ctx, ActivityDeleteStore, storeID).Get(ctx, nil)
		return "", err
	}

	logger.Info("Store onboarded", "storeID", storeID)
	return storeID, nil
}

// Registry is satisfied by worker.Worker and the Temporal test environment.
type Registry interface {
	RegisterWorkflow(w interface{})
	RegisterActivity(a interface{})
}

// Register adds the onboarding workflow and its activities to r.
func Register(r Registry, acts *OnboardingActivities) {
	r.RegisterWorkflow(StoreOnboardingWorkflow)
	r.RegisterActivity(acts)
}

// Starter starts onboarding workflows on a task queue.
type Starter struct {
	client    client.Client
	taskQueue string
}

// NewStarter creates a Starter.
func NewStarter(c client.Client, taskQueue string) *Starter {
	return &Starter{client: c, taskQueue: taskQueue}
}

// StartOnboarding validates in and starts a workflow for it, returning the workflow id.
func (s *Starter) StartOnboarding(ctx context.Context, in domain.StoreInput) (string, error) {
	if err := validation.Struct(in); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	opts := client.StartWorkflowOptions{
		ID:        "store-onboarding-" + uuid.NewString(),
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, StoreOnboardingWorkflow, OnboardingInput{Store: in})
	if err != nil {
		return "", fmt.Errorf("start onboarding: %w", err)
	}
	return run.GetID(), nil
}
