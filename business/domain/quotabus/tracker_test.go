package quotabus_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/quotabus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/plan"
	"github.com/stretchr/testify/require"
)

func TestQuotasForPlan(t *testing.T) {
	free := quotabus.QuotasForPlan(plan.Free)
	require.Equal(t, 50, free.MaxSendsPerDay)
	require.Equal(t, 10, free.MaxSendsPerHour)
	require.Equal(t, 3, free.MaxConsecutiveFailures)

	ent := quotabus.QuotasForPlan(plan.Enterprise)
	require.Equal(t, 50000, ent.MaxSendsPerDay)

	unknown := quotabus.QuotasForPlan(plan.Plan{})
	require.Equal(t, free, unknown, "an unrecognized plan must degrade to the most conservative quotas")
}

func TestResetIfWindowElapsed(t *testing.T) {
	tenantID := uuid.New()
	start := time.Date(2026, time.March, 10, 23, 30, 0, 0, time.UTC)

	tr := quotabus.NewTracking(tenantID, start)
	tr.SentToday = 40
	tr.SentThisHour = 8

	// Within both windows nothing changes.
	tr2, changed := quotabus.ResetIfWindowElapsed(tr, start.Add(10*time.Minute))
	require.False(t, changed)
	require.Equal(t, tr, tr2)

	// Crossing UTC midnight resets the daily counter even though less than
	// an hour has passed.
	tr2, changed = quotabus.ResetIfWindowElapsed(tr, start.Add(45*time.Minute))
	require.True(t, changed)
	require.Equal(t, 0, tr2.SentToday)
	require.Equal(t, 8, tr2.SentThisHour)

	// A full hour elapsed resets the hourly counter independently.
	tr3, changed := quotabus.ResetIfWindowElapsed(tr2, start.Add(2*time.Hour))
	require.True(t, changed)
	require.Equal(t, 0, tr3.SentThisHour)

	// Resets are idempotent within the same window.
	tr4, changed := quotabus.ResetIfWindowElapsed(tr3, start.Add(2*time.Hour))
	require.False(t, changed)
	require.Equal(t, tr3, tr4)
}

func TestIsExceeded(t *testing.T) {
	q := quotabus.Quotas{MaxSendsPerDay: 50, MaxSendsPerHour: 10, MaxConsecutiveFailures: 3}

	var tr quotabus.Tracking
	require.False(t, quotabus.IsExceeded(tr, q))

	tr.SentThisHour = 10
	require.True(t, quotabus.IsExceeded(tr, q), "either ceiling alone blocks sending")

	tr.SentThisHour = 0
	tr.SentToday = 50
	require.True(t, quotabus.IsExceeded(tr, q))
}

func TestRecordSuccessClosesBreaker(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	q := quotabus.Quotas{MaxSendsPerDay: 50, MaxSendsPerHour: 10, MaxConsecutiveFailures: 3}

	var tr quotabus.Tracking
	tr.ConsecutiveFailures = 3
	tripped := now.Add(-time.Hour)
	tr.CircuitTrippedAt = &tripped

	tr = quotabus.RecordSuccess(tr, now)

	require.Equal(t, 1, tr.SentToday)
	require.Equal(t, 1, tr.SentThisHour)
	require.Equal(t, 0, tr.ConsecutiveFailures)
	require.Nil(t, tr.CircuitTrippedAt)
	require.NotNil(t, tr.LastSendAt)
	require.False(t, quotabus.IsCircuitOpen(tr, q, now))
}

func TestCircuitBreakerTripAndCooldown(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	q := quotabus.Quotas{MaxSendsPerDay: 50, MaxSendsPerHour: 10, MaxConsecutiveFailures: 3}

	var tr quotabus.Tracking

	// Failures below the threshold leave the breaker closed.
	tr = quotabus.RecordFailure(tr, q, now)
	tr = quotabus.RecordFailure(tr, q, now)
	require.False(t, quotabus.IsCircuitOpen(tr, q, now))
	require.Nil(t, tr.CircuitTrippedAt)

	// The third failure trips it.
	tr = quotabus.RecordFailure(tr, q, now)
	require.NotNil(t, tr.CircuitTrippedAt)
	require.True(t, quotabus.IsCircuitOpen(tr, q, now))

	// Still open just before the cooldown elapses.
	require.True(t, quotabus.IsCircuitOpen(tr, q, now.Add(quotabus.CooldownPeriod-time.Second)))

	// After the cooldown the breaker reports closed for the probe, but the
	// failure streak is untouched.
	probeTime := now.Add(quotabus.CooldownPeriod)
	require.False(t, quotabus.IsCircuitOpen(tr, q, probeTime))
	require.Equal(t, 3, tr.ConsecutiveFailures)
}

func TestCircuitBreakerFailedProbeReTrips(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	q := quotabus.Quotas{MaxSendsPerDay: 50, MaxSendsPerHour: 10, MaxConsecutiveFailures: 3}

	var tr quotabus.Tracking
	for range 3 {
		tr = quotabus.RecordFailure(tr, q, now)
	}
	firstTrip := *tr.CircuitTrippedAt

	// A failure while the breaker is open does not refresh the trip time.
	tr = quotabus.RecordFailure(tr, q, now.Add(10*time.Minute))
	require.Equal(t, firstTrip, *tr.CircuitTrippedAt)

	// The failed probe after the cooldown re-trips with a fresh timestamp,
	// starting a new full cooldown.
	probeTime := now.Add(quotabus.CooldownPeriod + time.Minute)
	tr = quotabus.RecordFailure(tr, q, probeTime)
	require.Equal(t, probeTime, *tr.CircuitTrippedAt)
	require.True(t, quotabus.IsCircuitOpen(tr, q, probeTime.Add(quotabus.CooldownPeriod-time.Second)))
	require.False(t, quotabus.IsCircuitOpen(tr, q, probeTime.Add(quotabus.CooldownPeriod)))
}
