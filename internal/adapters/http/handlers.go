package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/core/usecases"
	"github.com/samirrijal/ndfdanim/internal/pkg/logging"
)

// ArtifactList is the response of the artifact catalog listing.
type ArtifactList struct {
	Data  []domain.Artifact `json:"data"`
	Count int               `json:"count"`
}

func parseInvocation(c *fiber.Ctx) (domain.Invocation, error) {
	var inv domain.Invocation
	if len(c.Body()) == 0 {
		return inv, errors.New("request body is required")
	}
	if err := c.BodyParser(&inv); err != nil {
		return inv, errors.New("invalid JSON body")
	}
	return inv, nil
}

// StartForecastHandler starts a forecast workflow for a first-invocation
// payload and answers 202 with the workflow identifiers.
func StartForecastHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Starter == nil {
			return errInternal(c, "workflow starter not available")
		}
		inv, err := parseInvocation(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if inv.JobID != "" {
			return errBadRequest(c, "job_id must be empty when starting a forecast")
		}
		if err := usecases.Validate(inv); err != nil {
			return errBadRequest(c, err.Error())
		}

		run, err := deps.Starter.Start(c.UserContext(), inv)
		if err != nil {
			logging.FromContext(c.UserContext()).Error("start forecast failed", "error", err)
			return errInternal(c, "failed to start forecast")
		}
		return c.Status(fiber.StatusAccepted).JSON(run)
	}
}

// InvokeHandler runs exactly one activation and maps its outcome onto the
// response status. An incomplete query answers 202 with the payload to send
// back on the next call.
func InvokeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Forecasts == nil {
			return errInternal(c, "forecast service not available")
		}
		inv, err := parseInvocation(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), deps.invokeTimeout())
		defer cancel()

		out, err := deps.Forecasts.Invoke(ctx, inv)
		switch {
		case err == nil:
			return c.JSON(out)
		case errors.Is(err, domain.ErrQueryIncomplete):
			return c.Status(fiber.StatusAccepted).JSON(out)
		case errors.Is(err, domain.ErrInvalidRequest):
			return errBadRequest(c, err.Error())
		case errors.Is(err, domain.ErrEmptyResultSet),
			errors.Is(err, domain.ErrMalformedRow),
			errors.Is(err, domain.ErrDatasetTooLarge):
			return errUnprocessable(c, err.Error())
		case errors.Is(err, domain.ErrQueryFailed), errors.Is(err, domain.ErrUnknownStatus):
			return errBadGateway(c, err.Error())
		default:
			logging.FromContext(c.UserContext()).Error("invocation failed", "job_id", out.JobID, "error", err)
			return errInternal(c, err.Error())
		}
	}
}

// GetJobHandler returns the latest tracked state of a query job.
func GetJobHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Jobs == nil {
			return errInternal(c, "job tracker not available")
		}
		view, err := deps.Jobs.Get(c.UserContext(), c.Params("id"))
		if errors.Is(err, domain.ErrNotFound) {
			return errNotFound(c, "job not found")
		}
		if errors.Is(err, domain.ErrInvalidRequest) {
			return errBadRequest(c, err.Error())
		}
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(view)
	}
}

// ListArtifactsHandler returns the most recently published animations.
func ListArtifactsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Artifacts == nil {
			return errInternal(c, "artifact catalog not available")
		}
		artifacts, err := deps.Artifacts.Recent(c.UserContext(), c.QueryInt("limit", 0))
		if err != nil {
			return errInternal(c, err.Error())
		}
		if artifacts == nil {
			artifacts = []domain.Artifact{}
		}
		return c.JSON(ArtifactList{Data: artifacts, Count: len(artifacts)})
	}
}

// GetArtifactHandler returns the animation published by one job.
func GetArtifactHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Artifacts == nil {
			return errInternal(c, "artifact catalog not available")
		}
		artifact, err := deps.Artifacts.ByJob(c.UserContext(), c.Params("job_id"))
		if errors.Is(err, domain.ErrNotFound) {
			return errNotFound(c, "artifact not found")
		}
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(artifact)
	}
}
