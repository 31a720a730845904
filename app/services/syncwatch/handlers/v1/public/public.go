// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/abumaher/syncwatch/foundation/monitor/state"
	"github.com/abumaher/syncwatch/foundation/web"
)

// Handlers manages the set of status endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Status returns the latest sync status of every monitored node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	statuses := h.State.Statuses()

	return web.Respond(ctx, w, statuses, http.StatusOK)
}

// Health is a liveness probe for the monitor itself.
func (h Handlers) Health(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Status string `json:"status"`
	}{
		Status: "up",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
