// Package automationapp maintains the app layer api for the automation
// domain.
package automationapp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/app/sdk/errs"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/automationbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/leadbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/web"
)

type app struct {
	autoBus *automationbus.Core
	leadBus *leadbus.Core
}

func newApp(autoBus *automationbus.Core, leadBus *leadbus.Core) *app {
	return &app{
		autoBus: autoBus,
		leadBus: leadBus,
	}
}

// create adds a new automation to the tenant.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var app NewAutomation
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tenantID, err := uuid.Parse(web.Param(r, "tenant_id"))
	if err != nil {
		return errs.NewFieldErrors("tenant_id", err)
	}

	na, err := toBusNewAutomation(tenantID, app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	atm, err := a.autoBus.Create(ctx, na)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "create: automation[%+v]: %s", na, err)
	}

	return toAppAutomation(atm)
}

// enroll starts a lead through an automation.
func (a *app) enroll(ctx context.Context, r *http.Request) web.Encoder {
	var app NewEnrollment
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	automationID, err := uuid.Parse(web.Param(r, "automation_id"))
	if err != nil {
		return errs.NewFieldErrors("automation_id", err)
	}

	leadID, err := uuid.Parse(app.LeadID)
	if err != nil {
		return errs.NewFieldErrors("leadId", err)
	}

	atm, err := a.autoBus.QueryByID(ctx, automationID)
	if err != nil {
		if errors.Is(err, automationbus.ErrNotFound) {
			return errs.New(errs.NotFound, err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "query automation: %s", err)
	}

	ld, err := a.leadBus.QueryByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, leadbus.ErrNotFound) {
			return errs.New(errs.NotFound, err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "query lead: %s", err)
	}

	if ld.TenantID != atm.TenantID {
		return errs.Newf(errs.InvalidArgument, "lead[%s] does not belong to tenant[%s]", ld.ID, atm.TenantID)
	}

	st, err := a.autoBus.Enroll(ctx, atm, ld.ID, time.Now())
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "enroll: automationID[%s] leadID[%s]: %s", atm.ID, ld.ID, err)
	}

	return toAppState(st)
}

// reactivate moves an errored state back to active so the next run retries
// the failed step.
func (a *app) reactivate(ctx context.Context, r *http.Request) web.Encoder {
	stateID, err := uuid.Parse(web.Param(r, "state_id"))
	if err != nil {
		return errs.NewFieldErrors("state_id", err)
	}

	st, err := a.autoBus.Reactivate(ctx, stateID, time.Now())
	if err != nil {
		if errors.Is(err, automationbus.ErrStateNotFound) {
			return errs.New(errs.NotFound, err)
		}
		if errors.Is(err, automationbus.ErrNotInError) {
			return errs.New(errs.FailedPrecondition, err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "reactivate: stateID[%s]: %s", stateID, err)
	}

	return toAppState(st)
}
