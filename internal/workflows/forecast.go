package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
)

const (
	// TaskQueue is the queue forecast workflows and activities run on.
	TaskQueue = "forecast-queue"

	// InvokeActivity is the registered name of ForecastActivities.Invoke.
	InvokeActivity = "Invoke"
)

// Application error types raised by the Invoke activity.
const (
	ErrTypeQueryIncomplete = "QueryIncomplete"
	ErrTypeQueryFailed     = "QueryFailed"
	ErrTypeUnknownStatus   = "UnknownStatus"
	ErrTypeEmptyResultSet  = "EmptyResultSet"
	ErrTypeMalformedRow    = "MalformedRow"
	ErrTypeTooLarge        = "DatasetTooLarge"
	ErrTypeEmptyAnimation  = "EmptyAnimation"
	ErrTypeInvalidRequest  = "InvalidRequest"
)

// SubmitOptions governs the first activation, which submits the query.
func SubmitOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidRequest},
		},
	}
}

// PollOptions governs the follow-up activations. QueryIncomplete is retried
// with backoff until the query finishes or the schedule-to-close budget runs
// out; terminal outcomes stop immediately.
func PollOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		ScheduleToCloseTimeout: 2 * time.Hour,
		StartToCloseTimeout:    15 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 1.5,
			MaximumInterval:    time.Minute,
			NonRetryableErrorTypes: []string{
				ErrTypeQueryFailed,
				ErrTypeUnknownStatus,
				ErrTypeEmptyResultSet,
				ErrTypeMalformedRow,
				ErrTypeTooLarge,
				ErrTypeEmptyAnimation,
				ErrTypeInvalidRequest,
			},
		},
	}
}

// ForecastWorkflow submits the forecast query, then keeps re-invoking the
// pipeline with the returned payload until the animation is published or a
// terminal error occurs.
func ForecastWorkflow(ctx workflow.Context, inv domain.Invocation) (domain.Invocation, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting forecast workflow", "element", inv.ElementIdentifier, "extentKm", inv.ExtentKm)

	// Every retry of the submission carries the same token, so the query
	// engine starts at most one query per run.
	if inv.RequestToken == "" {
		inv.RequestToken = workflow.GetInfo(ctx).WorkflowExecution.ID
	}

	var submitted domain.Invocation
	subCtx := workflow.WithActivityOptions(ctx, SubmitOptions())
	if err := workflow.ExecuteActivity(subCtx, InvokeActivity, inv).Get(subCtx, &submitted); err != nil {
		return inv, err
	}
	logger.Info("Forecast query submitted", "jobID", submitted.JobID)

	var result domain.Invocation
	pollCtx := workflow.WithActivityOptions(ctx, PollOptions())
	if err := workflow.ExecuteActivity(pollCtx, InvokeActivity, submitted).Get(pollCtx, &result); err != nil {
		logger.Warn("Forecast workflow failed", "jobID", submitted.JobID, "error", err)
		return submitted, err
	}

	logger.Info("Forecast animation published", "jobID", result.JobID, "key", result.ArtifactKey, "frames", result.Frames)
	return result, nil
}
