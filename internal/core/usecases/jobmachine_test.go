package usecases_test

import (
	"errors"
	"testing"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
	"github.com/samirrijal/ndfdanim/internal/core/usecases"
)

func TestNext(t *testing.T) {
	if got := usecases.Next(domain.QueryJob{}); got != usecases.StepSubmit {
		t.Errorf("expected submit for a new job, got %s", got)
	}
	for _, st := range []domain.JobStatus{"", domain.JobStatusQueued, domain.JobStatusSucceeded, domain.JobStatusFailed} {
		if got := usecases.Next(domain.QueryJob{ID: "q-1", Status: st}); got != usecases.StepPoll {
			t.Errorf("expected poll for status %q, got %s", st, got)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		status domain.JobStatus
		step   usecases.Step
		err    error
	}{
		{domain.JobStatusQueued, usecases.StepWait, domain.ErrQueryIncomplete},
		{domain.JobStatusRunning, usecases.StepWait, domain.ErrQueryIncomplete},
		{domain.JobStatusFailed, usecases.StepFail, domain.ErrQueryFailed},
		{domain.JobStatusSucceeded, usecases.StepRender, nil},
		{"BOGUS", usecases.StepFail, domain.ErrUnknownStatus},
	}
	for _, tc := range cases {
		step, err := usecases.Classify(tc.status)
		if step != tc.step {
			t.Errorf("%s: expected step %s, got %s", tc.status, tc.step, step)
		}
		if !errors.Is(err, tc.err) {
			t.Errorf("%s: expected error %v, got %v", tc.status, tc.err, err)
		}
	}
}

func TestClassify_IncompleteIsNotFailure(t *testing.T) {
	_, err := usecases.Classify(domain.JobStatusRunning)
	if errors.Is(err, domain.ErrQueryFailed) {
		t.Fatal("incomplete must not be reported as failed")
	}
}

func TestClassify_TerminalIsStable(t *testing.T) {
	for _, st := range []domain.JobStatus{domain.JobStatusSucceeded, domain.JobStatusFailed} {
		s1, e1 := usecases.Classify(st)
		s2, e2 := usecases.Classify(st)
		if s1 != s2 || e1 != e2 {
			t.Errorf("%s classified differently on repeat: %s/%v vs %s/%v", st, s1, e1, s2, e2)
		}
	}
}
