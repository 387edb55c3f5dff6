package runapp

import (
	"net/http"

	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/engine"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Coordinator *engine.Coordinator
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	api := newApp(cfg.Coordinator)

	app.HandlerFunc(http.MethodPost, version, "/runs", api.trigger)
}
