// Package mid provides app level middleware support.
package mid

import (
	"github.com/kenxsak/omniflow-buisness-sub001/business/sdk/web"
)

func checkIsError(e web.Encoder) error {
	err, hasError := e.(error)
	if hasError {
		return err
	}

	return nil
}
