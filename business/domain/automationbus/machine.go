package automationbus

import (
	"time"
)

// The functions in this file are the only way a state value moves. They are
// pure: the tenant run processor threads the returned copies through a run
// and commits them in one batch.

// Advance returns the state moved past the current step. The index is
// monotonically non-decreasing over a state's lifetime.
func Advance(s State, nextStepTime time.Time, now time.Time) State {
	s.NextStepIndex++
	s.NextStepTime = nextStepTime.UTC()
	s.UpdatedAt = now.UTC()

	return s
}

// Complete returns the state marked completed. The step list is exhausted.
func Complete(s State, now time.Time) State {
	s.Status = StatusCompleted
	s.UpdatedAt = now.UTC()

	return s
}

// Fail returns the state marked with an unrecoverable send failure. The
// index is left where it is so an external reactivation resumes at the
// same step.
func Fail(s State, msg string, now time.Time) State {
	s.Status = StatusError
	s.ErrorMessage = msg
	s.UpdatedAt = now.UTC()

	return s
}
