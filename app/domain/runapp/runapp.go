// Package runapp maintains the app layer api for triggering engine runs.
package runapp

import (
	"context"
	"net/http"

	"github.com/kenxsak/omniflow-buisness-sub001/app/sdk/errs"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/engine"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/web"
)

type app struct {
	coordinator *engine.Coordinator
}

func newApp(coordinator *engine.Coordinator) *app {
	return &app{
		coordinator: coordinator,
	}
}

// trigger kicks off one engine run synchronously and reports the summary.
// The per-tenant single flight guard makes this safe alongside the
// scheduled runs.
func (a *app) trigger(ctx context.Context, r *http.Request) web.Encoder {
	summary, err := a.coordinator.RunOnce(ctx)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "runonce: %s", err)
	}

	return toAppRun(summary)
}
