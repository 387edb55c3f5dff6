package tenantapp

import (
	"net/http"

	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/leadbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/templatebus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/tenantbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	TenantBus   *tenantbus.Core
	LeadBus     *leadbus.Core
	TemplateBus *templatebus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	api := newApp(cfg.TenantBus, cfg.LeadBus, cfg.TemplateBus)

	app.HandlerFunc(http.MethodPost, version, "/tenants", api.create)
	app.HandlerFunc(http.MethodGet, version, "/tenants/{tenant_id}", api.queryByID)
	app.HandlerFunc(http.MethodPut, version, "/tenants/{tenant_id}", api.update)
	app.HandlerFunc(http.MethodPut, version, "/tenants/{tenant_id}/credentials/{provider}", api.saveCredential)
	app.HandlerFunc(http.MethodPost, version, "/tenants/{tenant_id}/leads", api.createLead)
	app.HandlerFunc(http.MethodPost, version, "/tenants/{tenant_id}/templates", api.createTemplate)
}
