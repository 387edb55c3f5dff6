package engine

import (
	"sync"

	"github.com/google/uuid"
)

// Summary reports what a single engine run did across all tenants.
type Summary struct {
	TenantsProcessed      int
	StepsAdvanced         int
	SendsDelivered        int
	SkippedQuota          int
	SkippedCircuitBreaker int
	Errors                map[uuid.UUID]string
}

// tenantResult carries the per-tenant counters back to the coordinator.
type tenantResult struct {
	stepsAdvanced  int
	sendsDelivered int
	skippedQuota   int
	skippedCircuit bool
}

type summaryCollector struct {
	mu      sync.Mutex
	summary Summary
}

func newSummaryCollector() *summaryCollector {
	return &summaryCollector{
		summary: Summary{
			Errors: make(map[uuid.UUID]string),
		},
	}
}

func (sc *summaryCollector) add(res tenantResult) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.summary.TenantsProcessed++
	sc.summary.StepsAdvanced += res.stepsAdvanced
	sc.summary.SendsDelivered += res.sendsDelivered
	sc.summary.SkippedQuota += res.skippedQuota
	if res.skippedCircuit {
		sc.summary.SkippedCircuitBreaker++
	}
}

func (sc *summaryCollector) fail(tenantID uuid.UUID, msg string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.summary.Errors[tenantID] = msg
}

func (sc *summaryCollector) result() Summary {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.summary
}
