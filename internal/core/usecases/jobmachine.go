package usecases

import (
	"fmt"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
)

// Step is the action an activation takes for a job.
type Step int

// Activation steps.
const (
	StepSubmit Step = iota
	StepPoll
	StepWait
	StepFail
	StepRender
)

func (s Step) String() string {
	switch s {
	case StepSubmit:
		return "submit"
	case StepPoll:
		return "poll"
	case StepWait:
		return "wait"
	case StepFail:
		return "fail"
	case StepRender:
		return "render"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Next decides what an activation does before talking to the query engine.
// A job that was submitted once is only ever polled again.
func Next(job domain.QueryJob) Step {
	if job.ID == "" {
		return StepSubmit
	}
	return StepPoll
}

// Classify maps a polled status to the activation's outcome. The returned
// error is nil only for StepRender.
func Classify(status domain.JobStatus) (Step, error) {
	switch status {
	case domain.JobStatusQueued, domain.JobStatusRunning:
		return StepWait, domain.ErrQueryIncomplete
	case domain.JobStatusFailed:
		return StepFail, domain.ErrQueryFailed
	case domain.JobStatusSucceeded:
		return StepRender, nil
	default:
		return StepFail, fmt.Errorf("%w: %q", domain.ErrUnknownStatus, status)
	}
}
