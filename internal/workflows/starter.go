package workflows

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/core/ports"
)

// WorkflowStarter is the subset of client.Client used to start runs.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// Starter implements ports.ForecastStarter.
type Starter struct {
	client    WorkflowStarter
	taskQueue string
}

// NewStarter creates a starter on taskQueue, or TaskQueue when empty.
func NewStarter(c WorkflowStarter, taskQueue string) *Starter {
	if taskQueue == "" {
		taskQueue = TaskQueue
	}
	return &Starter{client: c, taskQueue: taskQueue}
}

// Start launches a forecast workflow for a fresh payload.
func (s *Starter) Start(ctx context.Context, inv domain.Invocation) (ports.WorkflowRun, error) {
	opts := client.StartWorkflowOptions{
		ID:        "forecast-" + uuid.NewString(),
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, ForecastWorkflow, inv)
	if err != nil {
		return ports.WorkflowRun{}, fmt.Errorf("start workflow: %w", err)
	}
	return ports.WorkflowRun{WorkflowID: run.GetID(), RunID: run.GetRunID()}, nil
}
