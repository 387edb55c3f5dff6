package automationapp

import (
	"net/http"

	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/automationbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/domain/leadbus"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	AutoBus *automationbus.Core
	LeadBus *leadbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	api := newApp(cfg.AutoBus, cfg.LeadBus)

	app.HandlerFunc(http.MethodPost, version, "/tenants/{tenant_id}/automations", api.create)
	app.HandlerFunc(http.MethodPost, version, "/automations/{automation_id}/enrollments", api.enroll)
	app.HandlerFunc(http.MethodPost, version, "/states/{state_id}/reactivate", api.reactivate)
}
