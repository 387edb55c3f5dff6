// Package all binds all the routes into the specified app.
package all

import (
	"github.com/kenxsak/omniflow-buisness-sub001/app/domain/automationapp"
	"github.com/kenxsak/omniflow-buisness-sub001/app/domain/checkapp"
	"github.com/kenxsak/omniflow-buisness-sub001/app/domain/runapp"
	"github.com/kenxsak/omniflow-buisness-sub001/app/domain/tenantapp"
	"github.com/kenxsak/omniflow-buisness-sub001/app/sdk/mux"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/web"
)

// Routes constructs the add value which provides the implementation of
// of RouteAdder for specifying what routes to bind to this instance.
func Routes() add {
	return add{}
}

type add struct{}

func (add) Add(app *web.App, cfg mux.Config) {
	checkapp.Routes(app, checkapp.Config{
		Build: cfg.Build,
		Log:   cfg.Log,
		DB:    cfg.DB,
	})

	tenantapp.Routes(app, tenantapp.Config{
		TenantBus:   cfg.BusConfig.TenantBus,
		LeadBus:     cfg.BusConfig.LeadBus,
		TemplateBus: cfg.BusConfig.TemplateBus,
	})

	automationapp.Routes(app, automationapp.Config{
		AutoBus: cfg.BusConfig.AutoBus,
		LeadBus: cfg.BusConfig.LeadBus,
	})

	runapp.Routes(app, runapp.Config{
		Coordinator: cfg.Coordinator,
	})
}
