package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/automationbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/leadbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/quotabus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/templatebus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/tenantbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/delivery"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/sqldb"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/stepkind"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/logger"
)

// processor runs one tenant through one engine pass. All quota and breaker
// decisions thread an in-memory tracking value, and the tracking is
// persisted after every send outcome since a delivered message is a side
// effect that cannot roll back. State changes accumulate in memory and
// commit in a single transaction at the end of the pass.
type processor struct {
	log         *logger.Logger
	db          sqldb.Beginner
	quotaBus    *quotabus.Core
	autoBus     *automationbus.Core
	leadBus     *leadbus.Core
	templateBus *templatebus.Core
	tenantBus   *tenantbus.Core
	registry    *delivery.Registry
	sendTimeout time.Duration
}

func (p processor) run(ctx context.Context, tenant tenantbus.Tenant, now time.Time) (tenantResult, error) {
	var res tenantResult

	quotas := quotabus.QuotasForPlan(tenant.Plan)

	tracking, err := p.quotaBus.Track(ctx, tenant.ID, now)
	if err != nil {
		return tenantResult{}, fmt.Errorf("track: %w", err)
	}

	tracking, changed := quotabus.ResetIfWindowElapsed(tracking, now)
	if changed {
		if err := p.quotaBus.Save(ctx, tracking); err != nil {
			return tenantResult{}, fmt.Errorf("save tracking: %w", err)
		}
	}

	if quotabus.IsCircuitOpen(tracking, quotas, now) {
		p.log.Info(ctx, "engine tenant circuit open", "tenantID", tenant.ID, "failures", tracking.ConsecutiveFailures)
		res.skippedCircuit = true
		return res, nil
	}

	automations, err := p.autoBus.QueryEnabledByTenant(ctx, tenant.ID)
	if err != nil {
		return tenantResult{}, fmt.Errorf("query automations: %w", err)
	}

	states, err := p.autoBus.QueryActiveStates(ctx, tenant.ID)
	if err != nil {
		return tenantResult{}, fmt.Errorf("query states: %w", err)
	}

	byID := make(map[string]automationbus.Automation, len(automations))
	for _, atm := range automations {
		byID[atm.ID.String()] = atm
	}

	var dirty []automationbus.State

	for _, st := range states {
		if !st.IsDue(now) {
			continue
		}

		atm, exists := byID[st.AutomationID.String()]
		if !exists {
			continue
		}

		next, outcome, err := p.processState(ctx, tenant, atm, st, &tracking, quotas, now)
		if err != nil {
			return tenantResult{}, err
		}

		switch outcome {
		case outcomeAdvanced:
			res.stepsAdvanced++
			dirty = append(dirty, next)
		case outcomeDelivered:
			res.stepsAdvanced++
			res.sendsDelivered++
			dirty = append(dirty, next)
		case outcomeFailed, outcomeCompleted:
			dirty = append(dirty, next)
		case outcomeSkippedQuota:
			res.skippedQuota++
		case outcomeSkipped:
		}

		// A tripped breaker stops the rest of this tenant's sends for
		// the run. Delay steps would still be safe, but the pass ends
		// here so the commit reflects a consistent cut.
		if quotabus.IsCircuitOpen(tracking, quotas, now) {
			p.log.Warn(ctx, "engine tenant circuit tripped mid run", "tenantID", tenant.ID)
			break
		}
	}

	if err := p.commitStates(ctx, dirty); err != nil {
		return tenantResult{}, fmt.Errorf("commit states: %w", err)
	}

	return res, nil
}

type stepOutcome int

const (
	outcomeSkipped stepOutcome = iota
	outcomeSkippedQuota
	outcomeAdvanced
	outcomeDelivered
	outcomeFailed
	outcomeCompleted
)

// processState advances a single due state by one step. The returned state
// is only meaningful for outcomes that change it. Errors returned here are
// storage failures and abort the tenant's pass.
func (p processor) processState(ctx context.Context, tenant tenantbus.Tenant, atm automationbus.Automation, st automationbus.State, tracking *quotabus.Tracking, quotas quotabus.Quotas, now time.Time) (automationbus.State, stepOutcome, error) {
	step, exists := atm.StepAt(st.NextStepIndex)
	if !exists {
		return automationbus.Complete(st, now), outcomeCompleted, nil
	}

	if step.Kind.Equal(stepkind.Delay) {
		next := automationbus.Advance(st, now.Add(step.Unit.Duration(step.Amount)), now)
		return next, outcomeAdvanced, nil
	}

	if quotabus.IsExceeded(*tracking, quotas) {
		return st, outcomeSkippedQuota, nil
	}

	prv := atm.Provider
	if prv.String() == "" {
		prv = tenant.DefaultProvider
	}

	adapter, err := p.registry.Lookup(prv)
	if err != nil {
		p.log.Warn(ctx, "engine send skipped, unknown provider", "tenantID", tenant.ID, "stateID", st.ID, "provider", prv)
		return st, outcomeSkipped, nil
	}

	cred, err := p.tenantBus.QueryCredential(ctx, tenant.ID, adapter.Name())
	if err != nil {
		if errors.Is(err, tenantbus.ErrCredentialNotFound) {
			p.log.Warn(ctx, "engine send skipped, missing credential", "tenantID", tenant.ID, "stateID", st.ID, "provider", adapter.Name())
			return st, outcomeSkipped, nil
		}
		return st, outcomeSkipped, fmt.Errorf("query credential: %w", err)
	}

	if !adapter.ValidateCredential(cred) {
		p.log.Warn(ctx, "engine send skipped, incomplete credential", "tenantID", tenant.ID, "stateID", st.ID, "provider", adapter.Name())
		return st, outcomeSkipped, nil
	}

	lead, err := p.leadBus.QueryByID(ctx, st.LeadID)
	if err != nil {
		if errors.Is(err, leadbus.ErrNotFound) {
			p.log.Warn(ctx, "engine send skipped, orphaned lead", "tenantID", tenant.ID, "stateID", st.ID, "leadID", st.LeadID)
			return st, outcomeSkipped, nil
		}
		return st, outcomeSkipped, fmt.Errorf("query lead: %w", err)
	}

	tpl, err := p.templateBus.QueryByID(ctx, step.TemplateID)
	if err != nil {
		if errors.Is(err, templatebus.ErrNotFound) {
			p.log.Warn(ctx, "engine send skipped, missing template", "tenantID", tenant.ID, "stateID", st.ID, "templateID", step.TemplateID)
			return st, outcomeSkipped, nil
		}
		return st, outcomeSkipped, fmt.Errorf("query template: %w", err)
	}

	msg := delivery.Message{
		To:      lead.Email,
		ToName:  lead.Name,
		Subject: tpl.Subject,
		HTML:    tpl.HTML,
	}

	// Cancellation is honored between tenants only. An in-flight send runs
	// to its own timeout so a shutdown never records a vendor failure.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.sendTimeout)
	defer cancel()

	messageID, sendErr := adapter.Send(sendCtx, cred, msg)

	if sendErr != nil {
		*tracking = quotabus.RecordFailure(*tracking, quotas, now)
		if err := p.quotaBus.Save(ctx, *tracking); err != nil {
			return st, outcomeSkipped, fmt.Errorf("save tracking: %w", err)
		}

		p.log.Error(ctx, "engine send failed", "tenantID", tenant.ID, "stateID", st.ID, "provider", adapter.Name(), "err", sendErr)

		return automationbus.Fail(st, sendErr.Error(), now), outcomeFailed, nil
	}

	*tracking = quotabus.RecordSuccess(*tracking, now)
	if err := p.quotaBus.Save(ctx, *tracking); err != nil {
		return st, outcomeSkipped, fmt.Errorf("save tracking: %w", err)
	}

	p.log.Info(ctx, "engine send delivered", "tenantID", tenant.ID, "stateID", st.ID, "provider", adapter.Name(), "messageID", messageID)

	next := automationbus.Advance(st, now, now)
	if _, exists := atm.StepAt(next.NextStepIndex); !exists {
		next = automationbus.Complete(next, now)
	}

	return next, outcomeDelivered, nil
}

// commitStates writes the batch of changed states in one transaction.
func (p processor) commitStates(ctx context.Context, sts []automationbus.State) error {
	if len(sts) == 0 {
		return nil
	}

	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil {
			if errors.Is(err, sql.ErrTxDone) {
				return
			}
			p.log.Error(ctx, "engine commit rollback", "err", err)
		}
	}()

	autoBus, err := p.autoBus.NewWithTx(tx)
	if err != nil {
		return fmt.Errorf("newwithtx: %w", err)
	}

	if err := autoBus.UpdateStates(ctx, sts); err != nil {
		return fmt.Errorf("updatestates: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
