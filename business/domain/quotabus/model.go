package quotabus

import (
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/plan"
)

// Quotas represents the send ceilings derived from a tenant's plan. The
// engine only reads these.
type Quotas struct {
	MaxSendsPerDay         int
	MaxSendsPerHour        int
	MaxConsecutiveFailures int
}

// Set of quotas per plan. Unknown plans degrade to the most conservative
// set, never to an error.
var planQuotas = map[string]Quotas{
	plan.Free.String():         {MaxSendsPerDay: 50, MaxSendsPerHour: 10, MaxConsecutiveFailures: 3},
	plan.Starter.String():      {MaxSendsPerDay: 500, MaxSendsPerHour: 100, MaxConsecutiveFailures: 5},
	plan.Professional.String(): {MaxSendsPerDay: 5000, MaxSendsPerHour: 1000, MaxConsecutiveFailures: 10},
	plan.Enterprise.String():   {MaxSendsPerDay: 50000, MaxSendsPerHour: 10000, MaxConsecutiveFailures: 10},
}

// QuotasForPlan returns the quota set for the specified plan.
func QuotasForPlan(p plan.Plan) Quotas {
	if q, exists := planQuotas[p.String()]; exists {
		return q
	}

	return planQuotas[plan.Free.String()]
}

// Tracking represents a tenant's rolling send counters and circuit breaker
// bookkeeping. Values are immutable, the tracker functions return updated
// copies that the tenant run processor threads forward and persists.
type Tracking struct {
	TenantID            uuid.UUID
	SentToday           int
	SentThisHour        int
	LastDailyReset      time.Time
	LastHourlyReset     time.Time
	ConsecutiveFailures int
	CircuitTrippedAt    *time.Time
	LastSendAt          *time.Time
}

// NewTracking constructs a zeroed tracking value for a tenant that has
// never sent.
func NewTracking(tenantID uuid.UUID, now time.Time) Tracking {
	return Tracking{
		TenantID:        tenantID,
		LastDailyReset:  now.UTC(),
		LastHourlyReset: now.UTC(),
	}
}
