package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/kenxsak/omniflow-buisness-sub001/app/sdk/errs"
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/web"
	"github.com/kenxsak/omniflow-buisness-sub001/foundation/logger"
)

// Logger executes logging before and after a request.
func Logger(log *logger.Logger) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			now := time.Now()

			path := r.URL.Path
			if r.URL.RawQuery != "" {
				path = path + "?" + r.URL.RawQuery
			}

			log.Info(ctx, "request started", "method", r.Method, "path", path, "remoteaddr", r.RemoteAddr)

			resp := next(ctx, r)
			err := checkIsError(resp)

			var statusCode = errs.OK
			if err != nil {
				statusCode = errs.Internal

				var appErr *errs.Error
				if errs.IsError(err) {
					appErr = errs.GetError(err)
					statusCode = appErr.Code
				}
			}

			log.Info(ctx, "request completed", "method", r.Method, "path", path, "remoteaddr", r.RemoteAddr,
				"statuscode", statusCode, "since", time.Since(now).String())

			return resp
		}

		return h
	}

	return m
}
