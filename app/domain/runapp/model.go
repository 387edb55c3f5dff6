package runapp

import (
	"encoding/json"

	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/engine"
)

// Run represents the outcome of one engine run.
type Run struct {
	TenantsProcessed      int               `json:"tenantsProcessed"`
	StepsAdvanced         int               `json:"stepsAdvanced"`
	SendsDelivered        int               `json:"sendsDelivered"`
	SkippedQuota          int               `json:"skippedQuota"`
	SkippedCircuitBreaker int               `json:"skippedCircuitBreaker"`
	Errors                map[string]string `json:"errors,omitempty"`
}

// Encode implements the web.Encoder interface.
func (r Run) Encode() ([]byte, string, error) {
	data, err := json.Marshal(r)
	return data, "application/json", err
}

func toAppRun(summary engine.Summary) Run {
	run := Run{
		TenantsProcessed:      summary.TenantsProcessed,
		StepsAdvanced:         summary.StepsAdvanced,
		SendsDelivered:        summary.SendsDelivered,
		SkippedQuota:          summary.SkippedQuota,
		SkippedCircuitBreaker: summary.SkippedCircuitBreaker,
	}

	if len(summary.Errors) > 0 {
		run.Errors = make(map[string]string, len(summary.Errors))
		for tenantID, msg := range summary.Errors {
			run.Errors[tenantID.String()] = msg
		}
	}

	return run
}
