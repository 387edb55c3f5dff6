package quotabus

import (
	"time"
)

// CooldownPeriod is how long a tripped circuit breaker blocks a tenant's
// sending before a single probe attempt is allowed through.
const CooldownPeriod = 30 * time.Minute

// ResetIfWindowElapsed returns the tracking with any elapsed quota windows
// zeroed. The daily window resets on a UTC calendar day change, the hourly
// window after a fixed hour has elapsed. The two resets are independent and
// both may fire in the same call. The second return reports whether
// anything changed.
func ResetIfWindowElapsed(t Tracking, now time.Time) (Tracking, bool) {
	now = now.UTC()
	changed := false

	ly, lm, ld := t.LastDailyReset.UTC().Date()
	ny, nm, nd := now.Date()
	if ly != ny || lm != nm || ld != nd {
		t.SentToday = 0
		t.LastDailyReset = now
		changed = true
	}

	if now.Sub(t.LastHourlyReset) >= time.Hour {
		t.SentThisHour = 0
		t.LastHourlyReset = now
		changed = true
	}

	return t, changed
}

// IsExceeded reports whether the tenant has no send budget left in either
// window. Gating happens before a send is attempted, which is what keeps
// the counters at or under the ceilings.
func IsExceeded(t Tracking, q Quotas) bool {
	return t.SentToday >= q.MaxSendsPerDay || t.SentThisHour >= q.MaxSendsPerHour
}

// RecordSuccess returns the tracking updated for one delivered message.
// A single success fully closes the circuit breaker.
func RecordSuccess(t Tracking, now time.Time) Tracking {
	now = now.UTC()

	t.SentToday++
	t.SentThisHour++
	t.ConsecutiveFailures = 0
	t.CircuitTrippedAt = nil
	t.LastSendAt = &now

	return t
}

// RecordFailure returns the tracking updated for one failed delivery. The
// breaker trips when the failure streak reaches the plan threshold, and
// re-trips with a refreshed timestamp when the post-cooldown probe fails.
func RecordFailure(t Tracking, q Quotas, now time.Time) Tracking {
	now = now.UTC()

	t.ConsecutiveFailures++

	if t.ConsecutiveFailures >= q.MaxConsecutiveFailures {
		if t.CircuitTrippedAt == nil || now.Sub(*t.CircuitTrippedAt) >= CooldownPeriod {
			t.CircuitTrippedAt = &now
		}
	}

	return t
}

// IsCircuitOpen reports whether the tenant's sending is suspended. Once the
// cooldown has elapsed the breaker reports closed without clearing the
// failure streak: exactly one probe attempt goes through, and only a
// recorded success closes the breaker for good.
func IsCircuitOpen(t Tracking, q Quotas, now time.Time) bool {
	if t.ConsecutiveFailures < q.MaxConsecutiveFailures {
		return false
	}

	if t.CircuitTrippedAt == nil {
		return true
	}

	return now.UTC().Sub(*t.CircuitTrippedAt) < CooldownPeriod
}
