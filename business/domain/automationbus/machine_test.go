package automationbus_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/automationbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/stepkind"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/timeunit"
	"github.com/stretchr/testify/require"
)

func TestStepAt(t *testing.T) {
	atm := automationbus.Automation{
		Steps: []automationbus.Step{
			{Kind: stepkind.Send},
			{Kind: stepkind.Delay, Amount: 2, Unit: timeunit.Days},
		},
	}

	step, ok := atm.StepAt(0)
	require.True(t, ok)
	require.True(t, step.Kind.Equal(stepkind.Send))

	_, ok = atm.StepAt(2)
	require.False(t, ok, "an index past the end of the list means the sequence is exhausted")

	_, ok = atm.StepAt(-1)
	require.False(t, ok)
}

func TestIsDue(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	st := automationbus.State{
		Status:       automationbus.StatusActive,
		NextStepTime: now,
	}
	require.True(t, st.IsDue(now), "a state is due when next step time is not after now")
	require.False(t, st.IsDue(now.Add(-time.Second)))

	st.Status = automationbus.StatusError
	require.False(t, st.IsDue(now), "terminal states are never due")
}

func TestTransitions(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	st := automationbus.State{
		ID:            uuid.New(),
		NextStepIndex: 1,
		Status:        automationbus.StatusActive,
	}

	adv := automationbus.Advance(st, now.Add(48*time.Hour), now)
	require.Equal(t, 2, adv.NextStepIndex)
	require.Equal(t, now.Add(48*time.Hour), adv.NextStepTime)
	require.True(t, adv.Status.Equal(automationbus.StatusActive))

	done := automationbus.Complete(st, now)
	require.True(t, done.Status.Equal(automationbus.StatusCompleted))
	require.Equal(t, 1, done.NextStepIndex)

	failed := automationbus.Fail(st, "provider rejected", now)
	require.True(t, failed.Status.Equal(automationbus.StatusError))
	require.Equal(t, "provider rejected", failed.ErrorMessage)
	require.Equal(t, 1, failed.NextStepIndex, "a failed send keeps its index so reactivation retries the same step")
}
