package workflows

import (
	"context"
	"errors"
	"log/slog"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/pkg/logging"
)

// Invoker runs one activation of the pipeline.
type Invoker interface {
	Invoke(ctx context.Context, inv domain.Invocation) (domain.Invocation, error)
}

// ForecastActivities holds the activity implementations for the forecast workflow.
type ForecastActivities struct {
	Service Invoker
	Logger  *slog.Logger
}

// Invoke runs one activation and translates its outcome for the retry policy.
func (a *ForecastActivities) Invoke(ctx context.Context, inv domain.Invocation) (domain.Invocation, error) {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	info := activity.GetInfo(ctx)
	logger = logger.With("workflow_id", info.WorkflowExecution.ID, "attempt", info.Attempt)

	out, err := a.Service.Invoke(logging.WithLogger(ctx, logger), inv)
	if err != nil {
		return out, ToApplicationError(err)
	}
	return out, nil
}

// ToApplicationError maps pipeline errors onto typed Temporal application
// errors. Only QueryIncomplete and untyped errors stay retryable.
func ToApplicationError(err error) error {
	if errors.Is(err, domain.ErrQueryIncomplete) {
		return temporal.NewApplicationErrorWithCause(err.Error(), ErrTypeQueryIncomplete, err)
	}
	terminal := []struct {
		target error
		kind   string
	}{
		{domain.ErrInvalidRequest, ErrTypeInvalidRequest},
		{domain.ErrQueryFailed, ErrTypeQueryFailed},
		{domain.ErrUnknownStatus, ErrTypeUnknownStatus},
		{domain.ErrEmptyResultSet, ErrTypeEmptyResultSet},
		{domain.ErrMalformedRow, ErrTypeMalformedRow},
		{domain.ErrDatasetTooLarge, ErrTypeTooLarge},
		{domain.ErrEmptyAnimation, ErrTypeEmptyAnimation},
	}

	for _, t := range terminal {
		if errors.Is(err, t.target) {
			return temporal.NewNonRetryableApplicationError(err.Error(), t.kind, err)
		}
	}
	return err
}
