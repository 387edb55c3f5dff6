// Package tenantapp maintains the app layer api for the tenant domain.
package tenantapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/kenxsak/omniflow-buisness-sub001/app/sdk/errs"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/leadbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/templatebus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/tenantbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/web"
	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
)

type app struct {
	tenantBus   *tenantbus.Core
	leadBus     *leadbus.Core
	templateBus *templatebus.Core
}

func newApp(tenantBus *tenantbus.Core, leadBus *leadbus.Core, templateBus *templatebus.Core) *app {
	return &app{
		tenantBus:   tenantBus,
		leadBus:     leadBus,
		templateBus: templateBus,
	}
}

// create adds a new tenant to the system.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var app NewTenant
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	nt, err := toBusNewTenant(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tnt, err := a.tenantBus.Create(ctx, nt)
	if err != nil {
		if errors.Is(err, tenantbus.ErrUniqueSlug) {
			return errs.New(errs.Aborted, tenantbus.ErrUniqueSlug)
		}
		return errs.Errorf(errs.InternalOnlyLog, "create: tenant[%+v]: %s", nt, err)
	}

	return toAppTenant(tnt)
}

// update updates an existing tenant.
func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var app UpdateTenant
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tenantID, err := uuid.Parse(web.Param(r, "tenant_id"))
	if err != nil {
		return errs.NewFieldErrors("tenant_id", err)
	}

	tnt, err := a.tenantBus.QueryByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenantbus.ErrNotFound) {
			return errs.New(errs.NotFound, err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "query tenant: %s", err)
	}

	ut, err := toBusUpdateTenant(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	updTnt, err := a.tenantBus.Update(ctx, tnt, ut)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "update: tenantID[%s] ut[%+v]: %s", tnt.ID, ut, err)
	}

	return toAppTenant(updTnt)
}

// queryByID returns a tenant by its ID.
func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	tenantID, err := uuid.Parse(web.Param(r, "tenant_id"))
	if err != nil {
		return errs.NewFieldErrors("tenant_id", err)
	}

	tnt, err := a.tenantBus.QueryByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenantbus.ErrNotFound) {
			return errs.New(errs.NotFound, err)
		}
		return errs.Errorf(errs.InternalOnlyLog, "query: tenantID[%s]: %s", tenantID, err)
	}

	return toAppTenant(tnt)
}

// saveCredential stores or replaces a tenant's provider credential.
func (a *app) saveCredential(ctx context.Context, r *http.Request) web.Encoder {
	var app Credential
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tenantID, err := uuid.Parse(web.Param(r, "tenant_id"))
	if err != nil {
		return errs.NewFieldErrors("tenant_id", err)
	}

	prv, err := provider.Parse(web.Param(r, "provider"))
	if err != nil {
		return errs.NewFieldErrors("provider", err)
	}

	if err := a.tenantBus.SaveCredential(ctx, tenantID, prv, toBusCredential(app)); err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "savecredential: tenantID[%s] provider[%s]: %s", tenantID, prv, err)
	}

	return nil
}

// createLead adds a new lead to the tenant.
func (a *app) createLead(ctx context.Context, r *http.Request) web.Encoder {
	var app NewLead
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tenantID, err := uuid.Parse(web.Param(r, "tenant_id"))
	if err != nil {
		return errs.NewFieldErrors("tenant_id", err)
	}

	ld, err := a.leadBus.Create(ctx, leadbus.NewLead{
		TenantID: tenantID,
		Email:    app.Email,
		Name:     app.Name,
	})
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "create lead: tenantID[%s]: %s", tenantID, err)
	}

	return toAppLead(ld)
}

// createTemplate adds a new template to the tenant.
func (a *app) createTemplate(ctx context.Context, r *http.Request) web.Encoder {
	var app NewTemplate
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tenantID, err := uuid.Parse(web.Param(r, "tenant_id"))
	if err != nil {
		return errs.NewFieldErrors("tenant_id", err)
	}

	tpl, err := a.templateBus.Create(ctx, templatebus.NewTemplate{
		TenantID: tenantID,
		Name:     app.Name,
		Subject:  app.Subject,
		HTML:     app.HTML,
	})
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "create template: tenantID[%s]: %s", tenantID, err)
	}

	return toAppTemplate(tpl)
}
