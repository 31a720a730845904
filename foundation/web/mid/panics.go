package mid

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/abumaher/syncwatch/foundation/web"
)

// Panics recovers from panics and converts the panic to an error so it is
// reported and the service keeps running.
func Panics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					trace := debug.Stack()
					err = fmt.Errorf("PANIC [%v] TRACE[%s]", rec, string(trace))
				}
			}()

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
